// Package truncnorm provides sampling from normal distributions truncated to
// a bounded interval, including diagonal-covariance multivariate sampling.
package truncnorm

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultSigmaBound is the hard truncation applied to every sample, in
// standard deviations either side of the mean. Explicit bounds can tighten
// this interval but never widen it.
const DefaultSigmaBound = 3.0

// ErrEmptyInterval is returned when the requested truncation bounds leave no
// interval to sample from after standardisation.
var ErrEmptyInterval = errors.New("truncnorm: empty sampling interval")

// Bounds describes an optional truncation interval in absolute (unscaled)
// units. A nil pointer leaves that side at the default sigma bound.
type Bounds struct {
	Lower *float64
	Upper *float64
}

// AtLeast returns bounds with only a lower limit.
func AtLeast(lo float64) *Bounds {
	return &Bounds{Lower: &lo}
}

// AtMost returns bounds with only an upper limit.
func AtMost(hi float64) *Bounds {
	return &Bounds{Upper: &hi}
}

// Between returns bounds limited on both sides.
func Between(lo, hi float64) *Bounds {
	return &Bounds{Lower: &lo, Upper: &hi}
}

// Sample draws a single value from N(mean, stdev²) conditioned on lying
// within the truncation interval. The interval is always clamped to
// ±DefaultSigmaBound standard deviations; explicit bounds only tighten it.
//
// A zero stdev collapses the distribution to a point mass at the mean.
func Sample(rng *rand.Rand, mean, stdev float64, b *Bounds) (float64, error) {
	if stdev < 0 {
		return 0, fmt.Errorf("truncnorm: negative stdev %v", stdev)
	}
	if stdev == 0 {
		return mean, nil
	}

	// Standardised truncation interval.
	lo := -DefaultSigmaBound
	hi := DefaultSigmaBound
	if b != nil {
		if b.Lower != nil {
			lo = math.Max((*b.Lower-mean)/stdev, lo)
		}
		if b.Upper != nil {
			hi = math.Min((*b.Upper-mean)/stdev, hi)
		}
	}
	if lo > hi {
		return 0, fmt.Errorf("%w: [%v, %v] after standardisation", ErrEmptyInterval, lo, hi)
	}

	// Inverse-CDF sampling: draw uniformly between the CDF values of the
	// interval edges, then map back through the standard normal quantile.
	cdfLo := distuv.UnitNormal.CDF(lo)
	cdfHi := distuv.UnitNormal.CDF(hi)
	u := cdfLo + rng.Float64()*(cdfHi-cdfLo)
	z := distuv.UnitNormal.Quantile(u)

	// The CDF/Quantile round trip can drift past the interval edges by a few
	// ulps; clamp so callers can rely on the bound exactly.
	z = math.Max(lo, math.Min(hi, z))

	return mean + stdev*z, nil
}
