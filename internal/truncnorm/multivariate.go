package truncnorm

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// ErrInvalidNoiseModel is returned when a multivariate distribution cannot be
// constructed from the supplied mean and covariance.
var ErrInvalidNoiseModel = errors.New("truncnorm: invalid noise model")

// Diagonal is a multivariate normal distribution with diagonal covariance.
// Each axis is sampled independently through the truncated scalar sampler;
// no cross-axis correlation is modelled.
type Diagonal struct {
	mean     []float64
	variance []float64
	stdev    []float64
}

// NewDiagonal constructs a Diagonal from a mean vector and the diagonal of
// the covariance matrix. The two slices must have equal length and every
// variance must be non-negative.
func NewDiagonal(mean, variance []float64) (*Diagonal, error) {
	if len(mean) != len(variance) {
		return nil, fmt.Errorf("%w: mean has %d dims, variance has %d", ErrInvalidNoiseModel, len(mean), len(variance))
	}
	if len(mean) == 0 {
		return nil, fmt.Errorf("%w: zero dimensions", ErrInvalidNoiseModel)
	}
	d := &Diagonal{
		mean:     append([]float64(nil), mean...),
		variance: append([]float64(nil), variance...),
		stdev:    make([]float64, len(variance)),
	}
	for i, v := range variance {
		if v < 0 {
			return nil, fmt.Errorf("%w: negative variance %v on axis %d", ErrInvalidNoiseModel, v, i)
		}
		d.stdev[i] = math.Sqrt(v)
	}
	return d, nil
}

// NewFromSym constructs a Diagonal from a full covariance matrix, rejecting
// any matrix with non-zero off-diagonal terms.
func NewFromSym(mean []float64, cov mat.Symmetric) (*Diagonal, error) {
	n := cov.SymmetricDim()
	if len(mean) != n {
		return nil, fmt.Errorf("%w: mean has %d dims, covariance is %dx%d", ErrInvalidNoiseModel, len(mean), n, n)
	}
	variance := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				variance[i] = cov.At(i, i)
				continue
			}
			if cov.At(i, j) != 0 {
				return nil, fmt.Errorf("%w: non-zero covariance %v at (%d,%d), only diagonal covariance is supported", ErrInvalidNoiseModel, cov.At(i, j), i, j)
			}
		}
	}
	return NewDiagonal(mean, variance)
}

// MustDiagonal is like NewDiagonal but panics on error. It exists for
// building static parameter tables at package init.
func MustDiagonal(mean, variance []float64) *Diagonal {
	d, err := NewDiagonal(mean, variance)
	if err != nil {
		panic(err)
	}
	return d
}

// Dim returns the number of axes.
func (d *Diagonal) Dim() int { return len(d.mean) }

// Mean returns a copy of the mean vector.
func (d *Diagonal) Mean() []float64 { return append([]float64(nil), d.mean...) }

// Variance returns a copy of the covariance diagonal.
func (d *Diagonal) Variance() []float64 { return append([]float64(nil), d.variance...) }

// Sample draws one value per axis. trunc may be nil (default bounds on every
// axis) or must have one entry per axis, where a nil entry means default
// bounds for that axis.
func (d *Diagonal) Sample(rng *rand.Rand, trunc []*Bounds) ([]float64, error) {
	if trunc != nil && len(trunc) != len(d.mean) {
		return nil, fmt.Errorf("truncnorm: %d truncation entries for %d axes", len(trunc), len(d.mean))
	}
	out := make([]float64, len(d.mean))
	for i := range d.mean {
		var b *Bounds
		if trunc != nil {
			b = trunc[i]
		}
		v, err := Sample(rng, d.mean[i], d.stdev[i], b)
		if err != nil {
			return nil, fmt.Errorf("axis %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
