// Package gravity models local gravitational acceleration with the
// inverse-square law referenced to sea level.
package gravity

import (
	"math"

	"github.com/yegors/stdatmo/internal/physics"
)

// Gravity returns the gravitational acceleration (m/s^2) at a geometric
// altitude (m). It is undefined at altitudeM == -EarthRadius.
func Gravity(altitudeM float64) float64 {
	ratio := physics.EarthRadius / (physics.EarthRadius + altitudeM)
	return physics.G0 * ratio * ratio
}

// GravityChecked is Gravity with the degenerate inputs reported as a
// *physics.DomainError
func GravityChecked(altitudeM float64) (float64, error) {
	if math.IsNaN(altitudeM) || math.IsInf(altitudeM, 0) {
		return 0, &physics.DomainError{Quantity: "gravity", AltitudeM: altitudeM, Reason: "altitude is not finite"}
	}
	if altitudeM <= -physics.EarthRadius {
		return 0, &physics.DomainError{Quantity: "gravity", AltitudeM: altitudeM, Reason: "at or below Earth centre"}
	}
	return Gravity(altitudeM), nil
}
