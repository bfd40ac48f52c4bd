package physics

// Constants
const (
	R           = 287.1     // Specific gas constant for air (J/(kg·K))
	Gamma       = 1.4       // Ratio of specific heats
	EarthRadius = 6378137.0 // Reference Earth radius (m)
	G0          = 9.80665   // Sea-level gravitational acceleration (m/s^2)

	ZeroCelsius  = 273.15   // 0°C in Kelvin
	KnotsToMs    = 0.514444 // Conversion factor from Knots to m/s
	MsToKnots    = 1.94384  // Conversion factor from m/s to Knots
	FeetToMeters = 0.3048
	MetersToFeet = 1 / FeetToMeters
)

// HydrostaticConstant is g0/R, the factor shared by both pressure closed forms
const HydrostaticConstant = G0 / R
