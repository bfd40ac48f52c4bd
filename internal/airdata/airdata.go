// Package airdata derives flight quantities (Mach, calibrated airspeed,
// pressure and density altitude) from the standard atmosphere.
package airdata

import (
	"errors"
	"fmt"
	"math"

	"github.com/yegors/stdatmo/internal/atmosphere"
	"github.com/yegors/stdatmo/internal/physics"
)

// Search bounds for the inverse lookups, geometric metres
const (
	SearchFloorM   = atmosphere.DefaultFloorM
	SearchCeilingM = 86000.0

	bisectionTolM    = 1e-6
	bisectionMaxIter = 200
)

// ErrNoSolution is returned when an inverse lookup target lies outside the
// standard profile between SearchFloorM and SearchCeilingM
var ErrNoSolution = errors.New("no standard altitude matches value")

// SoundSpeed returns the speed of sound in m/s for a given temperature in Kelvin
func SoundSpeed(tempK float64) float64 {
	if tempK <= 0 {
		return 0
	}
	return math.Sqrt(physics.Gamma * physics.R * tempK)
}

// Mach returns the Mach number for a true airspeed (m/s) at a geometric altitude
func Mach(tasMs, altitudeM float64) float64 {
	return MachAtTemperature(tasMs, atmosphere.Evaluate(altitudeM).TemperatureK)
}

// MachAtTemperature returns the Mach number for a true airspeed (m/s) in air
// at the given static temperature (K)
func MachAtTemperature(tasMs, tempK float64) float64 {
	a := SoundSpeed(tempK)
	if a == 0 {
		return 0
	}
	return tasMs / a
}

// TASFromMach returns true airspeed in m/s for a Mach number at a geometric altitude
func TASFromMach(mach, altitudeM float64) float64 {
	return mach * atmosphere.Evaluate(altitudeM).SoundSpeedMs
}

// TotalAirTemperature returns the stagnation temperature (K)
// Formula: TAT = SAT * (1 + (gamma-1)/2 * M^2)
func TotalAirTemperature(staticK, mach float64) float64 {
	return staticK * (1.0 + 0.5*(physics.Gamma-1)*mach*mach)
}

// DynamicPressure returns 0.5*rho*v^2 (Pa) at a geometric altitude
func DynamicPressure(altitudeM, tasMs float64) float64 {
	return 0.5 * atmosphere.Evaluate(altitudeM).DensityKgM3 * tasMs * tasMs
}

// CalibratedAirspeed calculates CAS (m/s) from TAS using the subsonic
// compressible flow relation (Saint-Venant)
func CalibratedAirspeed(tasMs, altitudeM float64) float64 {
	return calibratedAirspeed(atmosphere.Evaluate(altitudeM), tasMs)
}

func calibratedAirspeed(s atmosphere.State, tasMs float64) float64 {
	sl := atmosphere.Evaluate(0)

	mach := MachAtTemperature(tasMs, s.TemperatureK)

	// qc = P * [ (1 + 0.2 * M^2)^3.5 - 1 ]
	qc := s.PressurePa * (math.Pow(1+0.2*mach*mach, 3.5) - 1)

	// CAS = a0 * sqrt( 5 * [ (qc/P0 + 1)^(1/3.5) - 1 ] )
	term := qc/sl.PressurePa + 1
	if term < 1 {
		return 0
	}
	return sl.SoundSpeedMs * math.Sqrt(5*(math.Pow(term, 1/3.5)-1))
}

// Report is the full set of air data for one flight condition
type Report struct {
	AltitudeM         float64 `json:"altitude_m"`
	AltitudeFt        float64 `json:"altitude_ft"`
	TASMs             float64 `json:"tas_ms"`
	TASKt             float64 `json:"tas_kt"`
	Mach              float64 `json:"mach"`
	StaticTempK       float64 `json:"static_temperature_k"`
	StaticTempC       float64 `json:"static_temperature_c"`
	TotalTempK        float64 `json:"total_temperature_k"`
	TotalTempC        float64 `json:"total_temperature_c"`
	DynamicPressurePa float64 `json:"dynamic_pressure_pa"`
	CASMs             float64 `json:"cas_ms"`
	CASKt             float64 `json:"cas_kt"`
	Supersonic        bool    `json:"supersonic"` // CAS relation is only valid below Mach 1
}

// Compute evaluates every air data quantity for a true airspeed (m/s) at a
// geometric altitude, applying the same domain checks as
// atmosphere.EvaluateChecked
func Compute(altitudeM, tasMs, floorM float64) (Report, error) {
	if math.IsNaN(tasMs) || math.IsInf(tasMs, 0) || tasMs < 0 {
		return Report{}, &physics.DomainError{Quantity: "airspeed", AltitudeM: altitudeM, Reason: "true airspeed must be finite and non-negative"}
	}
	s, err := atmosphere.EvaluateChecked(altitudeM, floorM)
	if err != nil {
		return Report{}, err
	}

	mach := MachAtTemperature(tasMs, s.TemperatureK)
	tat := TotalAirTemperature(s.TemperatureK, mach)
	cas := calibratedAirspeed(s, tasMs)

	return Report{
		AltitudeM:         altitudeM,
		AltitudeFt:        altitudeM * physics.MetersToFeet,
		TASMs:             tasMs,
		TASKt:             tasMs * physics.MsToKnots,
		Mach:              mach,
		StaticTempK:       s.TemperatureK,
		StaticTempC:       s.TemperatureK - physics.ZeroCelsius,
		TotalTempK:        tat,
		TotalTempC:        tat - physics.ZeroCelsius,
		DynamicPressurePa: 0.5 * s.DensityKgM3 * tasMs * tasMs,
		CASMs:             cas,
		CASKt:             cas * physics.MsToKnots,
		Supersonic:        mach >= 1,
	}, nil
}

// PressureAltitude returns the geometric altitude (m) at which the standard
// atmosphere has the given static pressure
func PressureAltitude(pressurePa float64) (float64, error) {
	alt, err := invert(pressurePa, func(s atmosphere.State) float64 { return s.PressurePa })
	if err != nil {
		return 0, fmt.Errorf("pressure altitude for %g Pa: %w", pressurePa, err)
	}
	return alt, nil
}

// DensityAltitude returns the geometric altitude (m) at which the standard
// atmosphere has the given density
func DensityAltitude(densityKgM3 float64) (float64, error) {
	alt, err := invert(densityKgM3, func(s atmosphere.State) float64 { return s.DensityKgM3 })
	if err != nil {
		return 0, fmt.Errorf("density altitude for %g kg/m^3: %w", densityKgM3, err)
	}
	return alt, nil
}

// invert bisects for the altitude where quantity(Evaluate(alt)) == target.
// quantity must decrease with altitude, which holds for pressure and density.
func invert(target float64, quantity func(atmosphere.State) float64) (float64, error) {
	lo, hi := SearchFloorM, SearchCeilingM
	qLo, qHi := quantity(atmosphere.Evaluate(lo)), quantity(atmosphere.Evaluate(hi))

	if math.IsNaN(target) || target > qLo || target < qHi {
		return 0, ErrNoSolution
	}

	for i := 0; i < bisectionMaxIter && hi-lo > bisectionTolM; i++ {
		mid := 0.5 * (lo + hi)
		if quantity(atmosphere.Evaluate(mid)) > target {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi), nil
}
