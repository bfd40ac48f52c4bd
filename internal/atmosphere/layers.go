package atmosphere

import (
	"fmt"
	"math"

	"github.com/yegors/stdatmo/internal/physics"
)

// LayerCount is the number of layers in the 1976 standard table up to 86 km
const LayerCount = 8

// Closure tolerances used by LayerTable.Validate. The published base pressures
// were derived with the standard gas constant (287.053), so evaluating them
// with R = 287.1 drifts by a few parts in 10^4 at each boundary.
const (
	temperatureClosureTolK = 1e-6
	pressureClosureRelTol  = 1e-3
)

// LayerKind tags which closed form of the hydrostatic equation a layer uses
type LayerKind int

const (
	Gradient LayerKind = iota
	Isothermal
)

func (k LayerKind) String() string {
	switch k {
	case Isothermal:
		return "isothermal"
	case Gradient:
		return "gradient"
	default:
		return fmt.Sprintf("LayerKind(%d)", int(k))
	}
}

// Layer is one row of the reference table, anchored at its base
type Layer struct {
	BaseHeightM      float64 `json:"base_geopotential_height_m"`
	LapseRateKPerM   float64 `json:"temperature_gradient_k_per_m"`
	BaseTemperatureK float64 `json:"base_temperature_k"`
	BasePressurePa   float64 `json:"base_pressure_pa"`
}

// LayerTable is the ordered set of layers, lowest first
type LayerTable [LayerCount]Layer

// StandardLayers is the 1976 U.S. Standard Atmosphere reference table
var StandardLayers = LayerTable{
	{BaseHeightM: 0.0, LapseRateKPerM: -6.5e-3, BaseTemperatureK: 288.15, BasePressurePa: 101325.0},
	{BaseHeightM: 11.0e3, LapseRateKPerM: 0.0, BaseTemperatureK: 216.65, BasePressurePa: 22632.0},
	{BaseHeightM: 20.0e3, LapseRateKPerM: 1.0e-3, BaseTemperatureK: 216.65, BasePressurePa: 5474.9},
	{BaseHeightM: 32.0e3, LapseRateKPerM: 2.8e-3, BaseTemperatureK: 228.65, BasePressurePa: 868.02},
	{BaseHeightM: 47.0e3, LapseRateKPerM: 0.0, BaseTemperatureK: 270.65, BasePressurePa: 110.91},
	{BaseHeightM: 51.0e3, LapseRateKPerM: -2.8e-3, BaseTemperatureK: 270.65, BasePressurePa: 66.939},
	{BaseHeightM: 71.0e3, LapseRateKPerM: -2.0e-3, BaseTemperatureK: 214.65, BasePressurePa: 3.9564},
	{BaseHeightM: 84.852e3, LapseRateKPerM: 0.0, BaseTemperatureK: 186.946, BasePressurePa: 0.3734},
}

// Kind reports whether the layer is isothermal. The comparison is exact: any
// non-zero lapse rate, however small, uses the gradient form.
func (l Layer) Kind() LayerKind {
	if l.LapseRateKPerM == 0 {
		return Isothermal
	}
	return Gradient
}

// Temperature returns the layer temperature (K) at geopotential height h
func (l Layer) Temperature(h float64) float64 {
	return l.BaseTemperatureK + l.LapseRateKPerM*(h-l.BaseHeightM)
}

// Pressure returns the layer pressure (Pa) at geopotential height h
func (l Layer) Pressure(h float64) float64 {
	switch l.Kind() {
	case Isothermal:
		return l.BasePressurePa * math.Exp(physics.HydrostaticConstant*(l.BaseHeightM-h)/l.BaseTemperatureK)
	default:
		return l.BasePressurePa * math.Pow(l.BaseTemperatureK/l.Temperature(h), physics.G0/(physics.R*l.LapseRateKPerM))
	}
}

// Index returns the layer that contains geopotential height h. Each layer owns
// its lower boundary; heights at or above the last base select the top layer
// and heights below the first base select layer 0.
func (t *LayerTable) Index(h float64) int {
	k := 0
	for i := range t {
		if h < t[i].BaseHeightM {
			break
		}
		k = i
	}
	return k
}

// Top returns the base of the highest layer, where extrapolation begins
func (t *LayerTable) Top() float64 {
	return t[LayerCount-1].BaseHeightM
}

// Validate checks the table invariants: a zero first base, strictly
// increasing bases, and that every layer's base values match the layer below
// evaluated at the shared boundary.
func (t *LayerTable) Validate() error {
	if t[0].BaseHeightM != 0 {
		return fmt.Errorf("layer 0 base must be 0 m, got %g", t[0].BaseHeightM)
	}

	for k := 1; k < LayerCount; k++ {
		below, cur := t[k-1], t[k]
		if cur.BaseHeightM <= below.BaseHeightM {
			return fmt.Errorf("layer %d base %g m is not above layer %d base %g m", k, cur.BaseHeightM, k-1, below.BaseHeightM)
		}

		if got := below.Temperature(cur.BaseHeightM); math.Abs(got-cur.BaseTemperatureK) > temperatureClosureTolK {
			return fmt.Errorf("layer %d base temperature %g K does not match layer %d at boundary (%g K)", k, cur.BaseTemperatureK, k-1, got)
		}

		got := below.Pressure(cur.BaseHeightM)
		if math.Abs(got-cur.BasePressurePa) > pressureClosureRelTol*cur.BasePressurePa {
			return fmt.Errorf("layer %d base pressure %g Pa does not match layer %d at boundary (%g Pa)", k, cur.BasePressurePa, k-1, got)
		}
	}

	for k, l := range t {
		if l.BaseTemperatureK <= 0 || l.BasePressurePa <= 0 {
			return fmt.Errorf("layer %d has non-positive base values", k)
		}
	}

	return nil
}
