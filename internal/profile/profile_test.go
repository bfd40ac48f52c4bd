package profile

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yegors/stdatmo/internal/atmosphere"
	"github.com/yegors/stdatmo/internal/gravity"
	"github.com/yegors/stdatmo/internal/physics"
)

func TestCount(t *testing.T) {
	n, err := Count(-1000, 87000, 100)
	require.NoError(t, err)
	assert.Equal(t, 881, n)

	n, err = Count(0, 1, 0.1)
	require.NoError(t, err)
	assert.Equal(t, 11, n)

	n, err = Count(500, 500, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCount_Invalid(t *testing.T) {
	cases := []struct {
		name           string
		from, to, step float64
	}{
		{"zero step", 0, 100, 0},
		{"negative step", 0, 100, -1},
		{"reversed", 100, 0, 10},
		{"nan", math.NaN(), 100, 10},
		{"infinite", 0, math.Inf(1), 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Count(tc.from, tc.to, tc.step)
			assert.ErrorIs(t, err, ErrInvalidRange)
		})
	}
}

func TestSweep(t *testing.T) {
	samples, err := Sweep(context.Background(), -1000, 87000, 100, DefaultLimits)
	require.NoError(t, err)
	require.Len(t, samples, 881)

	assert.Equal(t, -1000.0, samples[0].AltitudeM)
	assert.Equal(t, 87000.0, samples[len(samples)-1].AltitudeM)

	at := samples[10]
	assert.Equal(t, 0.0, at.AltitudeM)
	assert.Equal(t, atmosphere.Evaluate(0), at.State)
	assert.Equal(t, gravity.Gravity(0), at.GravityMs2)
	assert.False(t, at.Extrapolated)

	assert.True(t, samples[len(samples)-1].Extrapolated)
}

func TestSweep_Limits(t *testing.T) {
	_, err := Sweep(context.Background(), 0, 1000, 1, Limits{FloorM: atmosphere.DefaultFloorM, MaxSamples: 100})
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = Sweep(context.Background(), -8000, 0, 100, DefaultLimits)
	assert.ErrorIs(t, err, physics.ErrDomain)
}

func TestEach_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	seen := 0

	err := Each(ctx, 0, 10000, 100, DefaultLimits, func(Sample) error {
		seen++
		if seen == 3 {
			cancel()
		}
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, seen)
}

func TestEach_StopsOnCallbackError(t *testing.T) {
	stop := errors.New("stop")
	err := Each(context.Background(), 0, 10000, 100, DefaultLimits, func(s Sample) error {
		if s.AltitudeM >= 500 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
}

func TestSummarize(t *testing.T) {
	samples, err := Sweep(context.Background(), 0, 20000, 1000, DefaultLimits)
	require.NoError(t, err)

	sum, err := Summarize(samples)
	require.NoError(t, err)

	assert.Equal(t, 21, sum.Count)
	assert.Zero(t, sum.ExtrapolatedSamples)
	assert.Equal(t, 0.0, sum.AltitudeM.Min)
	assert.Equal(t, 20000.0, sum.AltitudeM.Max)
	assert.InDelta(t, 10000.0, sum.AltitudeM.Mean, 1e-9)
	assert.Equal(t, samples[0].DensityKgM3, sum.DensityKgM3.Max)
	assert.Equal(t, samples[20].DensityKgM3, sum.DensityKgM3.Min)
	assert.Equal(t, 288.15, sum.TemperatureK.Max)
	assert.Equal(t, physics.G0, sum.GravityMs2.Max)

	_, err = Summarize(nil)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestWriteCSV(t *testing.T) {
	samples, err := Sweep(context.Background(), 0, 200, 100, DefaultLimits)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, samples))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, CSVHeader, records[0])
	assert.Equal(t, []string{"0", "0", "0", "288.15", "101325"}, records[1][:5])
	assert.Equal(t, "9.80665", records[1][7])
}
