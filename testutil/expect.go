// Package testutil provides test helpers shared by the compiler and
// engine test suites.
package testutil

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/coremoon/SimplicityHL/errors"
)

// ExpectEqual fails t when actual and expected differ, dumping both
// structures for inspection.
func ExpectEqual(t testing.TB, actual, expected interface{}, msg string) {
	t.Helper()
	if !reflect.DeepEqual(actual, expected) {
		t.Errorf("%s:\ngot:\n%swant:\n%s", msg, spew.Sdump(actual), spew.Sdump(expected))
	}
}

// ExpectError fails t unless err's root is expected.
func ExpectError(t testing.TB, err, expected error) {
	t.Helper()
	if errors.Root(err) != expected {
		t.Errorf("got error %v, expected %v", err, expected)
	}
}

// FatalErr stops the test, printing err together with the stack trace
// recorded when err was first wrapped.
func FatalErr(t testing.TB, err error) {
	t.Helper()
	args := []interface{}{err}
	for _, frame := range errors.Stack(err) {
		file := frame.File
		if rel := filepath.Base(file); rel != "" {
			file = rel
		}
		funcname := frame.Func[strings.IndexByte(frame.Func, '.')+1:]
		s := fmt.Sprintf("\n%s:%d: %s", file, frame.Line, funcname)
		args = append(args, s)
	}
	t.Fatal(args...)
}
