// Package atmosphere implements the 1976 U.S. Standard Atmosphere up to about
// 86 km geopotential height. All functions are pure over the constant layer
// table and safe for concurrent use.
package atmosphere

import (
	"math"

	"github.com/yegors/stdatmo/internal/physics"
)

// DefaultFloorM is the lowest geometric altitude accepted by EvaluateChecked
// unless the caller configures another floor
const DefaultFloorM = -5000.0

// State is the atmospheric state at one altitude
type State struct {
	AltitudeM           float64 `json:"altitude_m"`
	GeopotentialHeightM float64 `json:"geopotential_height_m"`
	Layer               int     `json:"layer"`
	TemperatureK        float64 `json:"temperature_k"`
	PressurePa          float64 `json:"pressure_pa"`
	DensityKgM3         float64 `json:"density_kg_m3"`
	SoundSpeedMs        float64 `json:"sound_speed_ms"`
}

// Extrapolated reports whether the state lies in the top layer, where the
// model is a continuation of the table rather than part of the standard
func (s State) Extrapolated() bool {
	return s.Layer == LayerCount-1
}

// GeopotentialHeight converts a geometric altitude (m) to geopotential height (m)
func GeopotentialHeight(altitudeM float64) float64 {
	return altitudeM * physics.EarthRadius / (physics.EarthRadius + altitudeM)
}

// GeometricAltitude converts a geopotential height (m) back to geometric altitude (m)
func GeometricAltitude(h float64) float64 {
	return h * physics.EarthRadius / (physics.EarthRadius - h)
}

// Evaluate computes the standard atmosphere at a geometric altitude. No range
// validation is done: below the table floor layer 0 is extended downwards,
// above the ceiling the top layer is extended upwards.
func Evaluate(altitudeM float64) State {
	h := GeopotentialHeight(altitudeM)
	k := StandardLayers.Index(h)
	layer := StandardLayers[k]

	t := layer.Temperature(h)
	p := layer.Pressure(h)

	return State{
		AltitudeM:           altitudeM,
		GeopotentialHeightM: h,
		Layer:               k,
		TemperatureK:        t,
		PressurePa:          p,
		DensityKgM3:         p / (physics.R * t),
		SoundSpeedMs:        math.Sqrt(physics.Gamma * physics.R * t),
	}
}

// StdAtmo returns temperature (K), density (kg/m^3) and speed of sound (m/s)
// at a geometric altitude
func StdAtmo(altitudeM float64) (temperatureK, densityKgM3, soundSpeedMs float64) {
	s := Evaluate(altitudeM)
	return s.TemperatureK, s.DensityKgM3, s.SoundSpeedMs
}

// EvaluateChecked is Evaluate with an explicit domain policy. It rejects
// non-finite altitudes, altitudes at or below the Earth's centre, altitudes
// below floorM and any input that yields a non-positive temperature.
func EvaluateChecked(altitudeM, floorM float64) (State, error) {
	if math.IsNaN(altitudeM) || math.IsInf(altitudeM, 0) {
		return State{}, domainError(altitudeM, "altitude is not finite")
	}
	if altitudeM <= -physics.EarthRadius {
		return State{}, domainError(altitudeM, "at or below Earth centre")
	}
	if altitudeM < floorM {
		return State{}, domainError(altitudeM, "below model floor")
	}

	s := Evaluate(altitudeM)
	if !(s.TemperatureK > 0) {
		return State{}, domainError(altitudeM, "non-positive temperature")
	}
	return s, nil
}

func domainError(altitudeM float64, reason string) error {
	return &physics.DomainError{Quantity: "atmosphere", AltitudeM: altitudeM, Reason: reason}
}
