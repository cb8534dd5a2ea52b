package checked

import (
	"math"
	"testing"
)

func TestAddUint32(t *testing.T) {
	cases := []struct {
		a, b   uint32
		sum    uint32
		wantOK bool
	}{
		{1, 2, 3, true},
		{math.MaxUint32, 0, math.MaxUint32, true},
		{math.MaxUint32, 1, 0, false},
		{math.MaxUint32 - 1, 1, math.MaxUint32, true},
	}
	for _, c := range cases {
		sum, ok := AddUint32(c.a, c.b)
		if ok != c.wantOK {
			t.Errorf("AddUint32(%d, %d) ok = %v, want %v", c.a, c.b, ok, c.wantOK)
		}
		if ok && sum != c.sum {
			t.Errorf("AddUint32(%d, %d) = %d, want %d", c.a, c.b, sum, c.sum)
		}
	}
}

func TestSubUint32(t *testing.T) {
	if _, ok := SubUint32(0, 1); ok {
		t.Error("SubUint32(0, 1) ok = true, want underflow")
	}
	if diff, ok := SubUint32(5, 3); !ok || diff != 2 {
		t.Errorf("SubUint32(5, 3) = %d, %v", diff, ok)
	}
}

func TestMulUint64(t *testing.T) {
	if _, ok := MulUint64(math.MaxUint64, 2); ok {
		t.Error("MulUint64(MaxUint64, 2) ok = true, want overflow")
	}
	if p, ok := MulUint64(1<<32, 1<<31); !ok || p != 1<<63 {
		t.Errorf("MulUint64(1<<32, 1<<31) = %d, %v", p, ok)
	}
	if p, ok := MulUint64(0, math.MaxUint64); !ok || p != 0 {
		t.Errorf("MulUint64(0, MaxUint64) = %d, %v", p, ok)
	}
}

func TestAddUint8(t *testing.T) {
	if _, ok := AddUint8(math.MaxUint8, 1); ok {
		t.Error("AddUint8(MaxUint8, 1) ok = true, want overflow")
	}
	if sum, ok := AddUint8(200, 55); !ok || sum != 255 {
		t.Errorf("AddUint8(200, 55) = %d, %v", sum, ok)
	}
}

func TestLshiftUint32(t *testing.T) {
	if _, ok := LshiftUint32(1, 32); ok {
		t.Error("LshiftUint32(1, 32) ok = true, want overflow")
	}
	if r, ok := LshiftUint32(1, 31); !ok || r != 1<<31 {
		t.Errorf("LshiftUint32(1, 31) = %d, %v", r, ok)
	}
}
