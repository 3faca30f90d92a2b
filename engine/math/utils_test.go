package math

import "testing"

func TestClampWithinRange(t *testing.T) {
	if got := Clamp(5, 0, 10); got != 5 {
		t.Fatalf("Clamp(5, 0, 10) = %d, want 5", got)
	}
}

func TestClampBelowLow(t *testing.T) {
	if got := Clamp(-5, 0, 10); got != 0 {
		t.Fatalf("Clamp(-5, 0, 10) = %d, want 0", got)
	}
}

func TestClampAboveHigh(t *testing.T) {
	if got := Clamp(15, 0, 10); got != 10 {
		t.Fatalf("Clamp(15, 0, 10) = %d, want 10", got)
	}
}

func TestClampFloat(t *testing.T) {
	if got := Clamp(0.5, 0.0, 1.0); got != 0.5 {
		t.Fatalf("Clamp(0.5, 0.0, 1.0) = %v, want 0.5", got)
	}
	if got := Clamp(-0.1, 0.0, 1.0); got != 0.0 {
		t.Fatalf("Clamp(-0.1, 0.0, 1.0) = %v, want 0.0", got)
	}
}
