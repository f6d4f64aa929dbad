package random

import "testing"

func TestResolve(t *testing.T) {
	got, err := Resolve(42)
	if err != nil || got != 42 {
		t.Fatalf("Resolve(42) = %d, %v", got, err)
	}
	a, err := Resolve(0)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	b, err := Resolve(0)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if a == b {
		t.Fatalf("two fresh seeds collided: %d", a)
	}
}

func TestDerive(t *testing.T) {
	if Derive(7, 0) != Derive(7, 0) {
		t.Fatal("derive is not deterministic")
	}
	seen := map[int64]bool{}
	for n := 0; n < 8; n++ {
		s := Derive(7, n)
		if seen[s] {
			t.Fatalf("stream %d repeats a seed", n)
		}
		seen[s] = true
	}
	if Derive(7, 1) == Derive(8, 1) {
		t.Fatal("different games share a stream")
	}
}
