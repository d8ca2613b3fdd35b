package rotor

import "math"

// Static-thrust measurements digitized from NACA Technical Note 262 for
// a five-bladed test propeller, used to validate the solver. The
// report's coefficient convention is twice the one used here, so the
// published values are halved.
var (
	TN262Collective  = []float64{0, 2, 4, 6, 8, 10, 12}
	TN262ThrustCoeff = []float64{0, 0.0005905, 0.00181, 0.00347, 0.005515, 0.00774, 0.01}
	TN262PowerCoeff  = []float64{0.000119, 0.000135, 0.000198, 0.00034, 0.000543, 0.0008175, 0.00114}
)

// StaticTestCase bundles a rotor with the conditions of a static-thrust
// test: no axial inflow, fixed rpm, sea-level air.
type StaticTestCase struct {
	Blade      Blade
	NumBlades  int
	AirDensity float64
	RPM        float64
}

// TN262Case returns the TN-262 propeller in inch units: untwisted NACA
// 0015 blades, constant chord outboard, tapering to the root cutout.
// The density is sea-level standard converted to snail/in^3.
func TN262Case() StaticTestCase {
	const (
		slugPerKg  = 0.06852177
		inPerMeter = 1 / 0.0254
	)
	rho := 1.225 * slugPerKg / (inPerMeter * inPerMeter * inPerMeter) / 12
	return StaticTestCase{
		Blade: Blade{
			Radial: []float64{1.5, 5, 30},
			Chord:  []float64{0.75, 2, 2},
			Twist:  []float64{0, 0, 0},
		},
		NumBlades:  5,
		AirDensity: rho,
		RPM:        960,
	}
}

// TipSpeedRatioInflow returns the axial inflow that puts the case at
// the given tip speed ratio, om*R/V.
func (c StaticTestCase) TipSpeedRatioInflow(tsr float64) float64 {
	om := c.RPM / 60 * 2 * math.Pi
	return om * c.Blade.OuterRadius() / tsr
}
