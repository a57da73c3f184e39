package harness

import "testing"

func TestClockWithoutJitter(t *testing.T) {
	c := NewClock(0.016, 0, 1)
	for i := 0; i < 10; i++ {
		if got := c.Next(); got != 0.016 {
			t.Fatalf("Next() = %v, expected 0.016", got)
		}
	}
}

func TestClockJitterBounds(t *testing.T) {
	c := NewClock(0.016, 0.004, 7)
	for i := 0; i < 1000; i++ {
		got := c.Next()
		if got < 0.012 || got > 0.020 {
			t.Fatalf("Next() = %v, expected within [0.012, 0.020]", got)
		}
	}
}

func TestClockReproducible(t *testing.T) {
	a := NewClock(0.016, 0.004, 42)
	b := NewClock(0.016, 0.004, 42)
	for i := 0; i < 100; i++ {
		if x, y := a.Next(), b.Next(); x != y {
			t.Fatalf("frame %d: %v != %v", i, x, y)
		}
	}
}
