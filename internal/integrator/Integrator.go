// Package integrator provides time integration schemes for the vehicle
// equations of motion. The state is one-dimensional, position and speed
// along the course; the acceleration closure supplies the physics. New
// schemes plug in by implementing Integrator and extending New.
package integrator

import "fmt"

// State is the longitudinal vehicle state.
type State struct {
	Position float64 `json:"position"`
	Speed    float64 `json:"speed"`
}

// AccelFunc returns the acceleration at time t in state s.
type AccelFunc func(t float64, s State) float64

// Integrator advances a state through one timestep of length dt
// starting at time t.
type Integrator interface {
	Step(s State, t, dt float64, accel AccelFunc) State
}

// New returns the integrator for a method name from a configuration
// file. An empty name selects forward Euler.
func New(method string) (Integrator, error) {
	switch method {
	case "", EulerMethodName:
		return ForwardEuler{}, nil
	case RK4MethodName:
		return RungeKutta4{}, nil
	default:
		return nil, fmt.Errorf("unknown integrator method %q", method)
	}
}
