package rotor

import "github.com/montagdude/ddwfttw-vehicle/internal/airfoil"

// Performance is the rotor performance at one collective setting in a
// static sweep.
type Performance struct {
	Collective float64
	CT         float64
	CP         float64
	Converged  bool
}

// Sweep solves a static-thrust sweep: zero axial inflow at fixed rho
// and rpm, marching through the collective settings in order. Warm
// starting is forced on so each point seeds the next, which matters at
// the heavy under-relaxation the default settings use.
func Sweep(blade Blade, numBlades int, polar airfoil.Polar, params Params, rho, rpm float64, collectives []float64) ([]Performance, error) {
	params.WarmStart = true
	s, err := NewSolver(blade, numBlades, polar, params)
	if err != nil {
		return nil, err
	}
	perf := make([]Performance, len(collectives))
	for i, theta := range collectives {
		f := s.Solve(OperatingPoint{
			AirDensity: rho,
			RPM:        rpm,
			Collective: theta,
		})
		perf[i] = Performance{
			Collective: theta,
			CT:         f.CT,
			CP:         f.CP,
			Converged:  f.Converged,
		}
	}
	return perf, nil
}
