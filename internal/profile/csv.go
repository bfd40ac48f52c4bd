package profile

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CSVHeader is the column order written by WriteCSV
var CSVHeader = []string{
	"altitude_m",
	"geopotential_height_m",
	"layer",
	"temperature_k",
	"pressure_pa",
	"density_kg_m3",
	"sound_speed_ms",
	"gravity_ms2",
}

// WriteCSV writes the samples with a header row
func WriteCSV(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, s := range samples {
		if err := cw.Write(csvRecord(s)); err != nil {
			return fmt.Errorf("write sample at %g m: %w", s.AltitudeM, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvRecord(s Sample) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return []string{
		f(s.AltitudeM),
		f(s.GeopotentialHeightM),
		strconv.Itoa(s.Layer),
		f(s.TemperatureK),
		f(s.PressurePa),
		f(s.DensityKgM3),
		f(s.SoundSpeedMs),
		f(s.GravityMs2),
	}
}
