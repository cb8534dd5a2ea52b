package errors

import (
	"io"
	"testing"
)

func TestWrap(t *testing.T) {
	err := Wrap(io.EOF, "reading witness document")
	if got := err.Error(); got != "reading witness document: EOF" {
		t.Errorf("err.Error() = %q", got)
	}
	if Root(err) != io.EOF {
		t.Errorf("Root(err) = %v, want io.EOF", Root(err))
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, "context"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
	if err := WithDetail(nil, "context"); err != nil {
		t.Errorf("WithDetail(nil) = %v, want nil", err)
	}
}

func TestWrapfMulti(t *testing.T) {
	err := Wrapf(io.EOF, "step %d", 1)
	err = Wrapf(err, "step %d", 2)
	if got := err.Error(); got != "step 2: step 1: EOF" {
		t.Errorf("err.Error() = %q", got)
	}
	if Root(err) != io.EOF {
		t.Errorf("Root(err) = %v, want io.EOF", Root(err))
	}
}

func TestDetail(t *testing.T) {
	err := WithDetail(io.EOF, "main.simf")
	err = WithDetail(err, "instantiating")
	if got := Detail(err); got != "main.simf; instantiating" {
		t.Errorf("Detail(err) = %q", got)
	}
	if Root(err) != io.EOF {
		t.Errorf("Root(err) = %v, want io.EOF", Root(err))
	}
}

func TestStack(t *testing.T) {
	err := Wrap(io.EOF, "ctx")
	if len(Stack(err)) == 0 {
		t.Error("Stack(err) is empty, want frames")
	}
	if Stack(io.EOF) != nil {
		t.Error("Stack of unwrapped error should be nil")
	}
}
