package integrator

// EulerMethodName selects ForwardEuler in configuration files.
const EulerMethodName = "euler"

// ForwardEuler is the explicit first-order scheme. The vehicle problem
// relaxes toward a stable equilibrium, so first order at a modest
// timestep is usually plenty.
type ForwardEuler struct{}

// Step advances the state with one evaluation of the acceleration.
func (ForwardEuler) Step(s State, t, dt float64, accel AccelFunc) State {
	a := accel(t, s)
	return State{
		Position: s.Position + s.Speed*dt,
		Speed:    s.Speed + a*dt,
	}
}
