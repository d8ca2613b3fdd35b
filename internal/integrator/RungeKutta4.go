package integrator

// RK4MethodName selects RungeKutta4 in configuration files.
const RK4MethodName = "rk4"

// RungeKutta4 is the classical fourth-order scheme, four acceleration
// evaluations per step. Worth it when each evaluation is cheap relative
// to the accuracy gained; here each one is a full rotor solve, so the
// default stays Euler.
type RungeKutta4 struct{}

// Step advances the state with the classical four-stage update. The
// position derivative is the speed, so each stage carries both.
func (RungeKutta4) Step(s State, t, dt float64, accel AccelFunc) State {
	k1x := s.Speed
	k1v := accel(t, s)

	s2 := State{Position: s.Position + 0.5*dt*k1x, Speed: s.Speed + 0.5*dt*k1v}
	k2x := s2.Speed
	k2v := accel(t+0.5*dt, s2)

	s3 := State{Position: s.Position + 0.5*dt*k2x, Speed: s.Speed + 0.5*dt*k2v}
	k3x := s3.Speed
	k3v := accel(t+0.5*dt, s3)

	s4 := State{Position: s.Position + dt*k3x, Speed: s.Speed + dt*k3v}
	k4x := s4.Speed
	k4v := accel(t+dt, s4)

	return State{
		Position: s.Position + dt/6*(k1x+2*k2x+2*k3x+k4x),
		Speed:    s.Speed + dt/6*(k1v+2*k2v+2*k3v+k4v),
	}
}
