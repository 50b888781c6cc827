package mathx

import "testing"

func TestClamp(t *testing.T) {
	cases := []struct{ v, lo, hi, want int }{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
		{5, 10, 0, 5}, // swapped bounds
	}
	for _, c := range cases {
		if got := Clamp(c.v, c.lo, c.hi); got != c.want {
			t.Fatalf("Clamp(%d,%d,%d) = %d, want %d", c.v, c.lo, c.hi, got, c.want)
		}
	}
	if got := Clamp(1e12, -2147483648.0, 2147483647.0); got != 2147483647.0 {
		t.Fatalf("float clamp = %v", got)
	}
}

func TestMinFloorDiv(t *testing.T) {
	if Min(uint32(3), 7) != 3 || Min(-2, -5) != -5 {
		t.Fatal("Min")
	}
	if FloorDiv(uint32(1024), 270) != 3 {
		t.Fatal("FloorDiv(1024, 270) != 3")
	}
	if FloorDiv(uint32(1), 0) != 0 {
		t.Fatal("FloorDiv by zero should be 0")
	}
}
