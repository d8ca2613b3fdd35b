// Package rotor implements a blade element momentum solver for a rotor
// in axial flow. The blade is described by its planform at a handful of
// radial stations; the solver discretizes it into strips, balances the
// blade element forces on each strip against momentum theory for the
// annulus it sweeps, and integrates the converged strip loads into
// thrust, torque, and power.
package rotor

import (
	"errors"
	"fmt"

	"github.com/montagdude/ddwfttw-vehicle/internal/airfoil"
)

// Blade describes one blade's planform at ordered radial stations.
// Chord and twist between stations are interpolated linearly. Twist is
// in degrees, positive leading edge up; radial and chord share whatever
// length unit the rest of the case uses.
type Blade struct {
	Radial []float64 `json:"radial"`
	Chord  []float64 `json:"chord"`
	Twist  []float64 `json:"twist"`
}

// Validate checks that the planform is usable: at least two stations,
// strictly increasing radii starting inboard of the tip but outboard of
// the axis, and positive chord everywhere. The root radius must be
// positive because station radii divide the momentum balance.
func (b Blade) Validate() error {
	if len(b.Radial) < 2 {
		return errors.New("blade needs at least two radial stations")
	}
	if len(b.Chord) != len(b.Radial) || len(b.Twist) != len(b.Radial) {
		return errors.New("blade radial, chord, and twist lengths differ")
	}
	if b.Radial[0] <= 0 {
		return fmt.Errorf("blade root radius %g must be positive", b.Radial[0])
	}
	for i := 1; i < len(b.Radial); i++ {
		if b.Radial[i] <= b.Radial[i-1] {
			return errors.New("blade radial stations must be strictly increasing")
		}
	}
	for i, c := range b.Chord {
		if c <= 0 {
			return fmt.Errorf("blade chord %g at station %d must be positive", c, i)
		}
	}
	return nil
}

// InnerRadius returns the root cutout radius.
func (b Blade) InnerRadius() float64 { return b.Radial[0] }

// OuterRadius returns the tip radius.
func (b Blade) OuterRadius() float64 { return b.Radial[len(b.Radial)-1] }

// ChordAt interpolates the chord at radius r, clamped to the root and
// tip values outside the defined planform.
func (b Blade) ChordAt(r float64) float64 { return airfoil.Interp(r, b.Radial, b.Chord) }

// TwistAt interpolates the twist in degrees at radius r, clamped like
// ChordAt.
func (b Blade) TwistAt(r float64) float64 { return airfoil.Interp(r, b.Radial, b.Twist) }
