// Package engine implements the downwind vehicle simulation loop.
//
// The simulation advances in fixed timesteps. Each step has two passes:
//
//  1. Force pass - the vehicle evaluates its force balance at the
//     current speed: rotor thrust from the blade element solver, body
//     drag in the relative wind, the rotor's shaft torque reflected to
//     the wheels, and rolling resistance.
//
//  2. Motion pass - the configured integrator advances position and
//     speed under the net force, re-evaluating the force balance at
//     whatever intermediate states the scheme asks for.
//
// The run ends at the configured run time, or early once the net force
// stops being positive (the vehicle cannot accelerate further) or the
// speed has been steady for the configured window.
package engine

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/brunoga/deep"

	"github.com/montagdude/ddwfttw-vehicle/internal/integrator"
	"github.com/montagdude/ddwfttw-vehicle/internal/rotor"
	"github.com/montagdude/ddwfttw-vehicle/internal/vehicle"
)

// Sim is the simulation engine state for one run.
type Sim struct {
	meta    SimulationMeta
	env     vehicle.Environment
	veh     *vehicle.Vehicle
	integ   integrator.Integrator
	state   integrator.State
	curTime float64
}

// NewSim constructs a Sim from a SimulationInput, validating the
// configuration and building the rotor solver and vehicle. The input is
// deep-copied first so the caller cannot reach into a running
// simulation through shared slices.
func NewSim(input SimulationInput) (*Sim, error) {
	input, err := deep.Copy(input)
	if err != nil {
		return nil, fmt.Errorf("copying input: %w", err)
	}

	if input.Meta.TimeStep <= 0 {
		return nil, fmt.Errorf("time step %g must be positive", input.Meta.TimeStep)
	}
	if input.Meta.RunTime <= 0 {
		return nil, fmt.Errorf("run time %g must be positive", input.Meta.RunTime)
	}
	if (input.Meta.SteadyWindow > 0) != (input.Meta.SteadySpeedTol > 0) {
		return nil, fmt.Errorf("steady detection needs both window and tolerance, got window=%g tol=%g",
			input.Meta.SteadyWindow, input.Meta.SteadySpeedTol)
	}
	if input.Meta.SteadyWindow < 0 || input.Meta.SteadySpeedTol < 0 {
		return nil, fmt.Errorf("steady detection window and tolerance must not be negative")
	}
	integ, err := integrator.New(input.Meta.Integrator)
	if err != nil {
		return nil, err
	}
	if err := input.Environment.Validate(); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	var solver *rotor.Solver
	if rc := input.Vehicle.Rotor; rc != nil {
		solver, err = rotor.NewSolver(rc.Blade, rc.NumBlades, rc.Polar, rc.SolverParams())
		if err != nil {
			return nil, fmt.Errorf("rotor: %w", err)
		}
	}
	veh, err := vehicle.New(input.Vehicle.Params, input.Vehicle.Collective, solver)
	if err != nil {
		return nil, err
	}

	speed := 0.5 * input.Environment.WindSpeed
	if input.InitialSpeed != nil {
		speed = *input.InitialSpeed
	}

	return &Sim{
		meta:  input.Meta,
		env:   input.Environment,
		veh:   veh,
		integ: integ,
		state: integrator.State{Speed: speed},
	}, nil
}

// Run executes the full simulation and returns the log.
func (s *Sim) Run() SimulationLog {
	simLog := SimulationLog{Meta: s.meta}
	for s.curTime < s.meta.RunTime {
		row := s.step()
		simLog.Output = append(simLog.Output, row)

		if !row.RotorConverged {
			log.Printf("rotor solve did not converge at t=%.2f s, speed=%.4f", row.Timestamp, row.Speed)
		}
		if row.Forces.Net <= 0 {
			log.Printf("net force no longer positive at t=%.1f s; max speed reached", row.Timestamp)
			break
		}
		if s.steadyReached(simLog.Output) {
			log.Printf("speed steady within %g over %.1f s window; stopping at t=%.1f s",
				s.meta.SteadySpeedTol, s.meta.SteadyWindow, row.Timestamp)
			break
		}
	}
	return simLog
}

// step advances the simulation by one timestep and returns the
// resulting log row. The logged force breakdown comes from the first
// acceleration evaluation of the step, the one at the step's starting
// state; the logged position and speed are from after the step.
func (s *Sim) step() SimulationLogRow {
	var (
		first     vehicle.Breakdown
		captured  bool
		converged = true
	)
	accel := func(t float64, st integrator.State) float64 {
		bd, rf := s.veh.Forces(s.env, st.Speed)
		if !captured {
			first = bd
			captured = true
		}
		if !rf.Converged {
			converged = false
		}
		return bd.Net / s.veh.Mass
	}

	s.state = s.integ.Step(s.state, s.curTime, s.meta.TimeStep, accel)
	s.curTime += s.meta.TimeStep

	return SimulationLogRow{
		Timestamp:      s.curTime,
		Position:       s.state.Position,
		Speed:          s.state.Speed,
		Collective:     s.veh.Collective(s.state.Speed),
		Forces:         first,
		RotorConverged: converged,
	}
}

// steadyReached reports whether the speed span over the trailing steady
// window is within the tolerance. The window must be fully covered by
// logged rows before it can trigger.
func (s *Sim) steadyReached(rows []SimulationLogRow) bool {
	if s.meta.SteadyWindow <= 0 || s.meta.SteadySpeedTol <= 0 {
		return false
	}
	last := rows[len(rows)-1]
	cutoff := last.Timestamp - s.meta.SteadyWindow
	lo, hi := last.Speed, last.Speed
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].Timestamp < cutoff {
			return hi-lo <= s.meta.SteadySpeedTol
		}
		if rows[i].Speed < lo {
			lo = rows[i].Speed
		}
		if rows[i].Speed > hi {
			hi = rows[i].Speed
		}
	}
	return false
}

// RunJSON is the primary entry point for all compilation targets (CLI
// and WASM). It accepts a JSON-encoded SimulationInput, runs the
// simulation, and returns a JSON-encoded SimulationLog.
func RunJSON(jsonInput string) (string, error) {
	var input SimulationInput
	if err := json.Unmarshal([]byte(jsonInput), &input); err != nil {
		return "", fmt.Errorf("invalid input JSON: %w", err)
	}

	sim, err := NewSim(input)
	if err != nil {
		return "", err
	}

	simLog := sim.Run()

	out, err := json.Marshal(simLog)
	if err != nil {
		return "", fmt.Errorf("marshaling output: %w", err)
	}
	return string(out), nil
}
