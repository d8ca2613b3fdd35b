// Package vehicle models the longitudinal force balance on a
// wheel-driven rotor vehicle. The wheels gear the rotor, so rotor speed
// is slaved to ground speed; at each ground speed the model evaluates
// rotor thrust, the shaft torque reflected back through the drivetrain
// as a retarding force at the wheels, body drag in the relative wind,
// and rolling resistance.
package vehicle

import (
	"errors"
	"fmt"
	"math"

	"github.com/montagdude/ddwfttw-vehicle/internal/airfoil"
	"github.com/montagdude/ddwfttw-vehicle/internal/rotor"
)

// Environment is the ambient state the vehicle runs in. WindSpeed is
// positive blowing in the direction of travel, the tailwind the vehicle
// is trying to beat.
type Environment struct {
	AirDensity float64 `json:"air_density"`
	Gravity    float64 `json:"gravity"`
	WindSpeed  float64 `json:"wind_speed"`
}

// Validate checks the ambient state. Zero gravity is allowed and just
// disables rolling resistance.
func (e Environment) Validate() error {
	if e.AirDensity <= 0 {
		return fmt.Errorf("air density %g must be positive", e.AirDensity)
	}
	if e.Gravity < 0 {
		return fmt.Errorf("gravity %g must not be negative", e.Gravity)
	}
	return nil
}

// SchedulePoint maps a ground speed to a collective pitch angle in
// degrees.
type SchedulePoint struct {
	Speed float64 `json:"speed"`
	Angle float64 `json:"angle"`
}

// Schedule is a collective pitch schedule over ground speed,
// interpolated linearly and clamped to the end angles outside the
// listed speeds.
type Schedule []SchedulePoint

// Validate checks that the schedule speeds never decrease. Repeated
// speeds are allowed; the interpolation steps across them.
func (s Schedule) Validate() error {
	for i := 1; i < len(s); i++ {
		if s[i].Speed < s[i-1].Speed {
			return errors.New("collective schedule speeds must not decrease")
		}
	}
	return nil
}

// Params are the fixed properties of the vehicle. GearRatio is wheel
// revolutions per rotor revolution, so a ratio above one spins the
// rotor slower than the wheels.
type Params struct {
	Mass              float64 `json:"mass"`
	WheelRadius       float64 `json:"wheel_radius"`
	GearRatio         float64 `json:"gear_ratio"`
	GearEfficiency    float64 `json:"gear_efficiency"`
	FrontalArea       float64 `json:"frontal_area"`
	CDFront           float64 `json:"cd_front"`
	CDBack            float64 `json:"cd_back"`
	RollingResistance float64 `json:"rolling_resistance"`
}

// Validate checks the vehicle properties.
func (p Params) Validate() error {
	if p.Mass <= 0 {
		return fmt.Errorf("mass %g must be positive", p.Mass)
	}
	if p.WheelRadius <= 0 {
		return fmt.Errorf("wheel radius %g must be positive", p.WheelRadius)
	}
	if p.GearRatio <= 0 {
		return fmt.Errorf("gear ratio %g must be positive", p.GearRatio)
	}
	if p.GearEfficiency <= 0 || p.GearEfficiency > 1 {
		return fmt.Errorf("gear efficiency %g must be in (0, 1]", p.GearEfficiency)
	}
	if p.FrontalArea < 0 {
		return fmt.Errorf("frontal area %g must not be negative", p.FrontalArea)
	}
	if p.CDFront < 0 || p.CDBack < 0 {
		return errors.New("drag coefficients must not be negative")
	}
	if p.RollingResistance < 0 {
		return fmt.Errorf("rolling resistance %g must not be negative", p.RollingResistance)
	}
	return nil
}

// Breakdown is the force balance on the vehicle at one instant, all in
// the direction of travel. Net is the sum the equations of motion see.
type Breakdown struct {
	RotorThrust float64 `json:"rotor_thrust"`
	AeroDrag    float64 `json:"aero_drag"`
	RotorDrag   float64 `json:"rotor_drag"`
	Rolling     float64 `json:"rolling"`
	Net         float64 `json:"net"`
}

// Vehicle evaluates the force balance. The rotor solver is optional; a
// nil solver models an unpowered chassis, useful for coastdown checks.
type Vehicle struct {
	Params
	schedSpeeds []float64
	schedAngles []float64
	solver      *rotor.Solver
}

// New builds a vehicle. An empty schedule pins the collective at zero.
func New(p Params, schedule Schedule, solver *rotor.Solver) (*Vehicle, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("vehicle params: %w", err)
	}
	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	v := &Vehicle{Params: p, solver: solver}
	for _, pt := range schedule {
		v.schedSpeeds = append(v.schedSpeeds, pt.Speed)
		v.schedAngles = append(v.schedAngles, pt.Angle)
	}
	return v, nil
}

// Collective returns the scheduled collective pitch in degrees at the
// given ground speed.
func (v *Vehicle) Collective(speed float64) float64 {
	if len(v.schedSpeeds) == 0 {
		return 0
	}
	return airfoil.Interp(speed, v.schedSpeeds, v.schedAngles)
}

// RotorRPM returns the rotor speed geared from the wheels at the given
// ground speed.
func (v *Vehicle) RotorRPM(speed float64) float64 {
	wheelRPM := speed / (2 * math.Pi * v.WheelRadius) * 60
	return wheelRPM / v.GearRatio
}

// Forces evaluates the force balance at one ground speed. The rotor
// sees the vehicle-relative wind as axial inflow: negative while the
// tailwind still outruns the vehicle, positive once the vehicle outruns
// it. The rotor result is returned alongside the breakdown so callers
// can log convergence and blade loading.
func (v *Vehicle) Forces(env Environment, speed float64) (Breakdown, rotor.Forces) {
	rpm := v.RotorRPM(speed)
	vrel := speed - env.WindSpeed

	rf := rotor.Forces{Converged: true}
	powered := v.solver != nil && rpm > 0
	if powered {
		rf = v.solver.Solve(rotor.OperatingPoint{
			AirDensity:  env.AirDensity,
			AxialInflow: vrel,
			RPM:         rpm,
			Collective:  v.Collective(speed),
		})
	}

	q := 0.5 * env.AirDensity * vrel * vrel * v.FrontalArea
	var aero float64
	if vrel < 0 {
		aero = v.CDBack * q
	} else {
		aero = -v.CDFront * q
	}

	var rotorDrag float64
	if powered {
		om := rpm / 60 * 2 * math.Pi
		wheelTorque := rf.Power / om / (v.GearRatio * v.GearEfficiency)
		rotorDrag = -wheelTorque / v.WheelRadius
	}

	var rolling float64
	switch {
	case speed > 0:
		rolling = -v.RollingResistance * v.Mass * env.Gravity
	case speed < 0:
		rolling = v.RollingResistance * v.Mass * env.Gravity
	}

	bd := Breakdown{
		RotorThrust: rf.Thrust,
		AeroDrag:    aero,
		RotorDrag:   rotorDrag,
		Rolling:     rolling,
	}
	bd.Net = bd.RotorThrust + bd.AeroDrag + bd.RotorDrag + bd.Rolling
	return bd, rf
}
