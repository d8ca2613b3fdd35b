package airfoil

import (
	"errors"
	"fmt"
	"math"
)

// Model names accepted in configuration files. TableModelName selects a
// TablePolar built from inline samples; the others select ThinAirfoil,
// either with explicit parameters or one of the presets.
const (
	TableModelName       = "table"
	ThinAirfoilModelName = "thin-airfoil"
	NACA0015ModelName    = "naca0015"
	NACA6412ModelName    = "naca6412"
)

// ThinAirfoil is a closed-form section polar. Below stall it follows
// thin-airfoil theory, a linear lift curve through the zero-lift angle
// plus a quadratic drag polar. Far beyond stall it follows flat-plate
// relations scaled by Cd90, the drag coefficient of the section held
// normal to the flow. Between the two regimes the coefficients are
// cosine-blended over BlendRange degrees, which keeps the curves and
// their slopes continuous through stall.
type ThinAirfoil struct {
	LiftSlope     float64 `json:"lift_slope"`      // per radian
	AlphaZeroLift float64 `json:"alpha_zero_lift"` // degrees
	CdMin         float64 `json:"cd_min"`
	KDrag         float64 `json:"k_drag"` // cd = CdMin + KDrag*cl^2
	AlphaStall    float64 `json:"alpha_stall"`
	BlendRange    float64 `json:"blend_range"`
	Cd90          float64 `json:"cd_90"`
}

// NACA0015 returns a thin-airfoil polar tuned for the NACA 0015 section,
// the blade section of the static-thrust test propeller. The slope and
// drag constants were fit against the NACA TN-262 measurements.
func NACA0015() ThinAirfoil {
	return ThinAirfoil{
		LiftSlope:     5.4,
		AlphaZeroLift: 0,
		CdMin:         0.0090,
		KDrag:         0.029,
		AlphaStall:    14,
		BlendRange:    6,
		Cd90:          1.98,
	}
}

// NACA6412 returns a thin-airfoil polar for the NACA 6412 section used
// on the demonstration vehicle's rotor blades. The stall angle and blend
// are generous: a highly cambered section at low Reynolds number stalls
// soft and late, and the blades spend the whole startup deep in that
// regime.
func NACA6412() ThinAirfoil {
	return ThinAirfoil{
		LiftSlope:     6.0,
		AlphaZeroLift: -5.8,
		CdMin:         0.008,
		KDrag:         0.009,
		AlphaStall:    20,
		BlendRange:    10,
		Cd90:          1.98,
	}
}

// Validate checks that the parameters describe a usable polar. The
// blend range in particular must be positive because it divides the
// stall transition.
func (a ThinAirfoil) Validate() error {
	if a.LiftSlope <= 0 {
		return fmt.Errorf("lift slope %g must be positive", a.LiftSlope)
	}
	if a.CdMin < 0 || a.KDrag < 0 {
		return errors.New("drag constants must not be negative")
	}
	if a.AlphaStall <= 0 {
		return fmt.Errorf("stall angle %g must be positive", a.AlphaStall)
	}
	if a.BlendRange <= 0 {
		return fmt.Errorf("blend range %g must be positive", a.BlendRange)
	}
	if a.Cd90 <= 0 {
		return fmt.Errorf("flat-plate drag coefficient %g must be positive", a.Cd90)
	}
	return nil
}

// Coefficients evaluates the blended polar at alpha degrees.
func (a ThinAirfoil) Coefficients(alpha float64) (cl, cd float64) {
	rad := (alpha - a.AlphaZeroLift) * math.Pi / 180
	clLin := a.LiftSlope * rad
	cdLin := a.CdMin + a.KDrag*clLin*clLin

	ar := alpha * math.Pi / 180
	sin, cos := math.Sin(ar), math.Cos(ar)
	clPlate := a.Cd90 * sin * cos
	cdPlate := a.Cd90*sin*sin + a.CdMin*cos*cos

	w := a.blend(alpha)
	return w*clLin + (1-w)*clPlate, w*cdLin + (1-w)*cdPlate
}

// blend is 1 in the linear regime, 0 in the flat-plate regime, and a
// half-cosine ramp across BlendRange degrees past the stall angle.
func (a ThinAirfoil) blend(alpha float64) float64 {
	t := (math.Abs(alpha-a.AlphaZeroLift) - a.AlphaStall) / a.BlendRange
	switch {
	case t <= 0:
		return 1
	case t >= 1:
		return 0
	default:
		return 0.5 * (1 + math.Cos(math.Pi*t))
	}
}
