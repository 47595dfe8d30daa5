package entropy

import "testing"

func TestSkewedRandomBounds(t *testing.T) {
	tests := []struct {
		name     string
		draws    []float64
		min, max int
		want     int
	}{
		{"all zero", []float64{0, 0, 0}, 6, 240, 6},
		{"quarter", []float64{0.25, 0.25, 0.25}, 0, 100, 50},
		{"near one", []float64{0.999, 0.999, 0.999}, 1, 20, 19},
		{"empty range", []float64{0.5, 0.5, 0.5}, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SkewedRandom(NewScripted(tt.draws...), tt.min, tt.max)
			if got != tt.want {
				t.Fatalf("SkewedRandom = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSeededRandIsReproducible(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 10; i++ {
		if a.Float64() != b.Float64() {
			t.Fatalf("draw %d differs between identically seeded sources", i)
		}
	}
}

func TestScriptedIntnStaysInRange(t *testing.T) {
	s := NewScripted(0, 0.5, 0.9999999)
	for _, want := range []int{0, 2, 4} {
		if got := s.Intn(5); got != want {
			t.Fatalf("Intn = %d, want %d", got, want)
		}
	}
	if s.Drawn() != 3 {
		t.Fatalf("Drawn = %d", s.Drawn())
	}
}

func TestNewSeedNonZero(t *testing.T) {
	for i := 0; i < 5; i++ {
		if NewSeed() == 0 {
			t.Fatal("seed must be non-zero")
		}
	}
}

func TestPickEmpty(t *testing.T) {
	if _, ok := Pick[string](NewScripted(0.3), nil); ok {
		t.Fatal("expected no pick from empty slice")
	}
	got, ok := Pick(NewScripted(0.6), []string{"a", "b"})
	if !ok || got != "b" {
		t.Fatalf("Pick = %q, %v", got, ok)
	}
}
