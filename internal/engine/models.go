package engine

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/montagdude/ddwfttw-vehicle/internal/airfoil"
	"github.com/montagdude/ddwfttw-vehicle/internal/rotor"
	"github.com/montagdude/ddwfttw-vehicle/internal/vehicle"
)

// SimulationMeta holds the identity and timing parameters for a
// simulation run. Integrator selects the scheme by name and defaults to
// forward Euler. SteadyWindow and SteadySpeedTol, when both set, stop
// the run once the speed has varied by less than the tolerance over the
// trailing window.
type SimulationMeta struct {
	SimulationID   string  `json:"simulation_id"`
	RunTime        float64 `json:"run_time"`  // seconds
	TimeStep       float64 `json:"time_step"` // seconds
	Integrator     string  `json:"integrator,omitempty"`
	SteadyWindow   float64 `json:"steady_window,omitempty"` // seconds
	SteadySpeedTol float64 `json:"steady_speed_tol,omitempty"`
}

// RotorConfig describes the rotor: blade planform, blade count, solver
// settings, and the section polar. The polar arrives in JSON under
// "airfoil" with a "model" discriminator and is resolved during
// unmarshaling.
type RotorConfig struct {
	NumBlades int           `json:"num_blades"`
	Blade     rotor.Blade   `json:"blade"`
	Solver    rotor.Params  `json:"solver"`
	Polar     airfoil.Polar `json:"-"`
}

// SolverParams returns the configured solver settings with defaults
// filled in for anything left unset.
func (rc RotorConfig) SolverParams() rotor.Params {
	p := rc.Solver
	def := rotor.DefaultParams()
	if p.Stations == 0 {
		p.Stations = def.Stations
	}
	if p.Tolerance == 0 {
		p.Tolerance = def.Tolerance
	}
	if p.MaxIters == 0 {
		p.MaxIters = def.MaxIters
	}
	if p.Relaxation == 0 {
		p.Relaxation = def.Relaxation
	}
	return p
}

// UnmarshalJSON resolves the airfoil model discriminator.
func (rc *RotorConfig) UnmarshalJSON(data []byte) error {
	var raw struct {
		NumBlades int             `json:"num_blades"`
		Blade     rotor.Blade     `json:"blade"`
		Solver    rotor.Params    `json:"solver"`
		Airfoil   json.RawMessage `json:"airfoil"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Airfoil) == 0 {
		return errors.New("rotor config missing airfoil")
	}
	polar, err := unmarshalPolar(raw.Airfoil)
	if err != nil {
		return fmt.Errorf("airfoil: %w", err)
	}
	rc.NumBlades = raw.NumBlades
	rc.Blade = raw.Blade
	rc.Solver = raw.Solver
	rc.Polar = polar
	return nil
}

func unmarshalPolar(data json.RawMessage) (airfoil.Polar, error) {
	var disc struct {
		Model string `json:"model"`
	}
	if err := json.Unmarshal(data, &disc); err != nil {
		return nil, err
	}
	switch disc.Model {
	case airfoil.NACA0015ModelName:
		return airfoil.NACA0015(), nil
	case airfoil.NACA6412ModelName:
		return airfoil.NACA6412(), nil
	case airfoil.ThinAirfoilModelName:
		var ta airfoil.ThinAirfoil
		if err := json.Unmarshal(data, &ta); err != nil {
			return nil, err
		}
		if err := ta.Validate(); err != nil {
			return nil, err
		}
		return ta, nil
	case airfoil.TableModelName:
		var t airfoil.Table
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, err
		}
		p, err := airfoil.NewTablePolar(t)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown airfoil model %q", disc.Model)
	}
}

// VehicleConfig is the vehicle section of the input: the fixed vehicle
// properties, the collective pitch schedule, and optionally a rotor.
// Without a rotor the vehicle is an unpowered chassis.
type VehicleConfig struct {
	vehicle.Params
	Collective vehicle.Schedule `json:"collective_schedule,omitempty"`
	Rotor      *RotorConfig     `json:"rotor,omitempty"`
}

// SimulationInput is the JSON-serialisable input to the engine.
// InitialSpeed defaults to half the wind speed, the push start the
// record attempts used.
type SimulationInput struct {
	Meta         SimulationMeta      `json:"simulation_meta"`
	Environment  vehicle.Environment `json:"environment"`
	Vehicle      VehicleConfig       `json:"vehicle"`
	InitialSpeed *float64            `json:"initial_speed,omitempty"`
}

// SimulationLogRow is the state after one timestep together with the
// force breakdown that produced it. For multi-stage integrators the
// breakdown comes from the step's first evaluation; RotorConverged
// covers every evaluation in the step.
type SimulationLogRow struct {
	Timestamp      float64           `json:"timestamp"` // seconds
	Position       float64           `json:"position"`
	Speed          float64           `json:"speed"`
	Collective     float64           `json:"collective"` // degrees
	Forces         vehicle.Breakdown `json:"forces"`
	RotorConverged bool              `json:"rotor_converged"`
}

// SimulationLog is the complete output of a simulation run.
type SimulationLog struct {
	Meta   SimulationMeta     `json:"simulation_meta"`
	Output []SimulationLogRow `json:"output"`
}
