// Package profile sweeps the atmosphere and gravity models over a range of
// altitudes and summarises the result.
package profile

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/yegors/stdatmo/internal/atmosphere"
	"github.com/yegors/stdatmo/internal/gravity"
)

// ErrInvalidRange is returned for a sweep that cannot be generated
var ErrInvalidRange = errors.New("invalid profile range")

// Limits bounds what a single sweep may request
type Limits struct {
	FloorM     float64 // lowest altitude accepted by the atmosphere model
	MaxSamples int     // 0 means unbounded
}

// DefaultLimits mirrors the defaults of the [model] and [profile] config sections
var DefaultLimits = Limits{FloorM: atmosphere.DefaultFloorM, MaxSamples: 10000}

// Sample is one row of a profile
type Sample struct {
	atmosphere.State
	GravityMs2   float64 `json:"gravity_ms2"`
	Extrapolated bool    `json:"extrapolated"`
}

// Count returns the number of samples from..to inclusive at the given step
func Count(from, to, step float64) (int, error) {
	for _, v := range []float64{from, to, step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: non-finite bound", ErrInvalidRange)
		}
	}
	if step <= 0 {
		return 0, fmt.Errorf("%w: step must be positive, got %g", ErrInvalidRange, step)
	}
	if to < from {
		return 0, fmt.Errorf("%w: to (%g) is below from (%g)", ErrInvalidRange, to, from)
	}
	// Tolerate accumulated rounding so that e.g. 0..1 step 0.1 includes 1.
	n := math.Floor((to-from)/step+1e-9) + 1
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: too many samples", ErrInvalidRange)
	}
	return int(n), nil
}

// Check returns the sample count of a sweep, rejecting ranges that are
// invalid or exceed MaxSamples
func (l Limits) Check(from, to, step float64) (int, error) {
	n, err := Count(from, to, step)
	if err != nil {
		return 0, err
	}
	if l.MaxSamples > 0 && n > l.MaxSamples {
		return 0, fmt.Errorf("%w: %d samples exceeds limit of %d", ErrInvalidRange, n, l.MaxSamples)
	}
	return n, nil
}

// Each evaluates every altitude of the sweep in ascending order and hands
// the sample to fn. It stops at the first error from the models, from fn, or
// from ctx.
func Each(ctx context.Context, from, to, step float64, lim Limits, fn func(Sample) error) error {
	n, err := lim.Check(from, to, step)
	if err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		s, err := At(from+float64(i)*step, lim.FloorM)
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
	}
	return nil
}

// At evaluates a single sample with the domain-checked models
func At(altitudeM, floorM float64) (Sample, error) {
	st, err := atmosphere.EvaluateChecked(altitudeM, floorM)
	if err != nil {
		return Sample{}, err
	}
	g, err := gravity.GravityChecked(altitudeM)
	if err != nil {
		return Sample{}, err
	}
	return Sample{State: st, GravityMs2: g, Extrapolated: st.Extrapolated()}, nil
}

// Sweep collects the whole profile in memory
func Sweep(ctx context.Context, from, to, step float64, lim Limits) ([]Sample, error) {
	n, err := lim.Check(from, to, step)
	if err != nil {
		return nil, err
	}

	samples := make([]Sample, 0, n)
	err = Each(ctx, from, to, step, lim, func(s Sample) error {
		samples = append(samples, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return samples, nil
}

// Range is the spread of one quantity over a profile
type Range struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// Summary describes a profile as a whole
type Summary struct {
	Count               int   `json:"count"`
	ExtrapolatedSamples int   `json:"extrapolated_samples"`
	AltitudeM           Range `json:"altitude_m"`
	TemperatureK        Range `json:"temperature_k"`
	DensityKgM3         Range `json:"density_kg_m3"`
	GravityMs2          Range `json:"gravity_ms2"`
}

// Summarize computes min/max/mean of the main quantities of a profile
func Summarize(samples []Sample) (Summary, error) {
	if len(samples) == 0 {
		return Summary{}, fmt.Errorf("%w: empty profile", ErrInvalidRange)
	}

	alt := make(stats.Float64Data, len(samples))
	temp := make(stats.Float64Data, len(samples))
	rho := make(stats.Float64Data, len(samples))
	g := make(stats.Float64Data, len(samples))

	sum := Summary{Count: len(samples)}
	for i, s := range samples {
		alt[i] = s.AltitudeM
		temp[i] = s.TemperatureK
		rho[i] = s.DensityKgM3
		g[i] = s.GravityMs2
		if s.Extrapolated {
			sum.ExtrapolatedSamples++
		}
	}

	var err error
	if sum.AltitudeM, err = rangeOf(alt); err != nil {
		return Summary{}, err
	}
	if sum.TemperatureK, err = rangeOf(temp); err != nil {
		return Summary{}, err
	}
	if sum.DensityKgM3, err = rangeOf(rho); err != nil {
		return Summary{}, err
	}
	if sum.GravityMs2, err = rangeOf(g); err != nil {
		return Summary{}, err
	}
	return sum, nil
}

func rangeOf(data stats.Float64Data) (Range, error) {
	lo, err := stats.Min(data)
	if err != nil {
		return Range{}, fmt.Errorf("min: %w", err)
	}
	hi, err := stats.Max(data)
	if err != nil {
		return Range{}, fmt.Errorf("max: %w", err)
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return Range{}, fmt.Errorf("mean: %w", err)
	}
	return Range{Min: lo, Max: hi, Mean: mean}, nil
}
