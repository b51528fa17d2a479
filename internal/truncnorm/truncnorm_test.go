package truncnorm

import (
	"math"
	"math/rand/v2"
	"testing"
)

func newTestRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func TestSampleWithinDefaultBounds(t *testing.T) {
	rng := newTestRNG(42)
	const (
		mean  = 0.014
		stdev = 0.0775
		draws = 10000
	)

	var sum float64
	for i := 0; i < draws; i++ {
		v, err := Sample(rng, mean, stdev, nil)
		if err != nil {
			t.Fatalf("Sample failed on draw %d: %v", i, err)
		}
		if v < mean-DefaultSigmaBound*stdev || v > mean+DefaultSigmaBound*stdev {
			t.Fatalf("draw %d = %v outside [%v, %v]", i, v,
				mean-DefaultSigmaBound*stdev, mean+DefaultSigmaBound*stdev)
		}
		sum += v
	}

	// Empirical mean of a symmetric truncation should match the
	// distribution mean well within a couple of standard errors.
	empirical := sum / draws
	tolerance := 4 * stdev / math.Sqrt(draws)
	if math.Abs(empirical-mean) > tolerance {
		t.Errorf("empirical mean %v, want %v ± %v", empirical, mean, tolerance)
	}
}

func TestSampleZeroStdev(t *testing.T) {
	rng := newTestRNG(1)
	v, err := Sample(rng, 0.25, 0, nil)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if v != 0.25 {
		t.Errorf("Sample with zero stdev = %v, want exactly 0.25", v)
	}
}

func TestSampleNegativeStdev(t *testing.T) {
	rng := newTestRNG(1)
	if _, err := Sample(rng, 0, -1, nil); err == nil {
		t.Error("expected error for negative stdev, got nil")
	}
}

func TestSampleExplicitLowerBound(t *testing.T) {
	rng := newTestRNG(7)
	const (
		mean  = 0.0
		stdev = 1.0
		floor = -0.5
	)
	for i := 0; i < 5000; i++ {
		v, err := Sample(rng, mean, stdev, AtLeast(floor))
		if err != nil {
			t.Fatalf("Sample failed: %v", err)
		}
		if v < floor {
			t.Fatalf("draw %d = %v below explicit floor %v", i, v, floor)
		}
		if v > mean+DefaultSigmaBound*stdev {
			t.Fatalf("draw %d = %v above default upper bound", i, v)
		}
	}
}

func TestSampleBoundsOnlyTighten(t *testing.T) {
	// A lower bound wider than the default -3 sigma must not loosen the
	// default truncation.
	rng := newTestRNG(11)
	for i := 0; i < 5000; i++ {
		v, err := Sample(rng, 0, 1, AtLeast(-100))
		if err != nil {
			t.Fatalf("Sample failed: %v", err)
		}
		if v < -DefaultSigmaBound {
			t.Fatalf("draw %d = %v below default -3 sigma despite loose explicit bound", i, v)
		}
	}
}

func TestSampleBothBounds(t *testing.T) {
	rng := newTestRNG(13)
	for i := 0; i < 5000; i++ {
		v, err := Sample(rng, 0, 1, Between(-0.25, 0.75))
		if err != nil {
			t.Fatalf("Sample failed: %v", err)
		}
		if v < -0.25 || v > 0.75 {
			t.Fatalf("draw %d = %v outside [-0.25, 0.75]", i, v)
		}
	}
}

func TestSampleEmptyInterval(t *testing.T) {
	rng := newTestRNG(3)
	_, err := Sample(rng, 0, 1, Between(2, -2))
	if err == nil {
		t.Fatal("expected empty-interval error, got nil")
	}
}

func TestSampleDeterministicUnderSeed(t *testing.T) {
	a := newTestRNG(99)
	b := newTestRNG(99)
	for i := 0; i < 100; i++ {
		va, err := Sample(a, 0.1, 0.02, nil)
		if err != nil {
			t.Fatalf("Sample failed: %v", err)
		}
		vb, err := Sample(b, 0.1, 0.02, nil)
		if err != nil {
			t.Fatalf("Sample failed: %v", err)
		}
		if va != vb {
			t.Fatalf("draw %d diverged: %v vs %v", i, va, vb)
		}
	}
}
