package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yegors/stdatmo/internal/airdata"
	"github.com/yegors/stdatmo/internal/atmosphere"
	"github.com/yegors/stdatmo/internal/physics"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestEvalJSON(t *testing.T) {
	out, err := run(t, "eval", "0", "--json")
	require.NoError(t, err)

	var s atmosphere.State
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, 0, s.Layer)
	assert.InDelta(t, 288.15, s.TemperatureK, 1e-9)
	assert.InDelta(t, 1.2248, s.DensityKgM3, 1e-4)
}

func TestEvalText(t *testing.T) {
	out, err := run(t, "eval", "90000")
	require.NoError(t, err)
	assert.Contains(t, out, "layer               7 (isothermal)")
	assert.Contains(t, out, "extrapolated")
}

func TestEvalRejectsBelowFloor(t *testing.T) {
	_, err := run(t, "eval", "--", "-6000")
	require.Error(t, err)
	assert.ErrorIs(t, err, physics.ErrDomain)
}

func TestEvalRejectsGarbage(t *testing.T) {
	_, err := run(t, "eval", "ten")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a number")
}

func TestGravity(t *testing.T) {
	out, err := run(t, "gravity", "0")
	require.NoError(t, err)
	assert.Equal(t, "9.806650 m/s^2\n", out)

	_, err = run(t, "gravity", "--", "-7000000")
	assert.ErrorIs(t, err, physics.ErrDomain)
}

func TestLayers(t *testing.T) {
	out, err := run(t, "layers")
	require.NoError(t, err)
	assert.Contains(t, out, "84,852")
	assert.Contains(t, out, "101,325")
	assert.Contains(t, out, "isothermal")
}

func TestProfileCSV(t *testing.T) {
	out, err := run(t, "profile", "--from", "0", "--to", "1000", "--step", "250", "--format", "csv")
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewBufferString(out)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 6) // header + 5 samples
}

func TestProfileJSONSummary(t *testing.T) {
	out, err := run(t, "profile", "--from", "0", "--to", "20000", "--step", "1000", "--format", "json")
	require.NoError(t, err)

	var doc struct {
		Summary struct {
			Count int `json:"count"`
		} `json:"summary"`
		Samples []json.RawMessage `json:"samples"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 21, doc.Summary.Count)
	assert.Len(t, doc.Samples, 21)
}

func TestProfileTable(t *testing.T) {
	out, err := run(t, "profile", "--from", "0", "--to", "2000", "--step", "1000")
	require.NoError(t, err)
	assert.Contains(t, out, "alt (m)")
	assert.Contains(t, out, "1,000")
}

func TestProfileErrors(t *testing.T) {
	_, err := run(t, "profile", "--from", "0", "--to", "1000", "--step", "0")
	assert.Error(t, err)

	_, err = run(t, "profile", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestAirDataJSON(t *testing.T) {
	out, err := run(t, "airdata", "--altitude-ft", "10000", "--tas-kt", "250", "--json")
	require.NoError(t, err)

	var r airdata.Report
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.InDelta(t, 3048.0, r.AltitudeM, 1e-9)
	assert.InDelta(t, 250.0, r.TASKt, 1e-3)
	assert.Less(t, r.CASKt, r.TASKt)
	assert.InDelta(t, r.StaticTempK-physics.ZeroCelsius, r.StaticTempC, 1e-9)
}

func TestAirDataText(t *testing.T) {
	out, err := run(t, "airdata", "--altitude-m", "15000", "--tas-ms", "600")
	require.NoError(t, err)
	assert.Contains(t, out, "mach")
	assert.Contains(t, out, "supersonic")
}

func TestAirDataFlags(t *testing.T) {
	_, err := run(t, "airdata", "--altitude-m", "1000")
	assert.Error(t, err)

	_, err = run(t, "airdata", "--altitude-m", "1000", "--altitude-ft", "3000", "--tas-ms", "100")
	assert.Error(t, err)

	_, err = run(t, "airdata", "--altitude-m", "1000", "--tas-ms", "-1")
	assert.ErrorIs(t, err, physics.ErrDomain)
}

func TestInverseAltitudes(t *testing.T) {
	s := atmosphere.Evaluate(5000)

	out, err := run(t, "pressure-altitude", strconv.FormatFloat(s.PressurePa, 'g', -1, 64))
	require.NoError(t, err)
	assert.Equal(t, "5000.000 m (16,404 ft)\n", out)

	out, err = run(t, "density-altitude", strconv.FormatFloat(s.DensityKgM3, 'g', -1, 64))
	require.NoError(t, err)
	assert.Contains(t, out, "5000.000 m")

	_, err = run(t, "pressure-altitude", "1e7")
	assert.ErrorIs(t, err, airdata.ErrNoSolution)

	_, err = run(t, "density-altitude", "thick")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "density_kg_m3")
}
