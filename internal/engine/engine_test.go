package engine

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/montagdude/ddwfttw-vehicle/internal/airfoil"
	"github.com/montagdude/ddwfttw-vehicle/internal/rotor"
	"github.com/montagdude/ddwfttw-vehicle/internal/vehicle"
)

const (
	demoWind = 10 * (5280.0 / 3600.0)
	demoRho  = 0.0023768925503953276
)

// demoInput is the 10 mph tailwind demonstration run: the full cart
// with the two-bladed rotor, ramping collective from flat to 9 degrees
// as it accelerates through wind speed.
func demoInput() SimulationInput {
	speeds := []float64{0.5, 0.8, 1.0, 1.5, 2.0, 2.2, 2.5, 2.6}
	angles := []float64{0, 2, 4, 6, 8, 9, 9, 9}
	sched := make(vehicle.Schedule, len(speeds))
	for i := range speeds {
		sched[i] = vehicle.SchedulePoint{Speed: speeds[i] * demoWind, Angle: angles[i]}
	}
	return SimulationInput{
		Meta: SimulationMeta{
			SimulationID: "demo",
			RunTime:      600,
			TimeStep:     0.5,
		},
		Environment: vehicle.Environment{
			AirDensity: demoRho,
			Gravity:    32.174,
			WindSpeed:  demoWind,
		},
		Vehicle: VehicleConfig{
			Params: vehicle.Params{
				Mass:              650.0 / 32.174,
				WheelRadius:       1.25,
				GearRatio:         1.5,
				GearEfficiency:    0.85,
				FrontalArea:       20,
				CDFront:           0.3,
				CDBack:            0.4,
				RollingResistance: 0.01,
			},
			Collective: sched,
			Rotor: &RotorConfig{
				NumBlades: 2,
				Blade: rotor.Blade{
					Radial: []float64{1, 2.5, 3.5, 8.75},
					Chord:  []float64{0.2, 1.1, 1.2, 0.3},
					Twist:  []float64{26, 18, 16, 8},
				},
				Solver: rotor.Params{Stations: 25, Tolerance: 1e-8, MaxIters: 2000, Relaxation: 0.05},
				Polar:  airfoil.NACA6412(),
			},
		},
	}
}

func chassisInput() SimulationInput {
	v0 := 10.0
	return SimulationInput{
		Meta: SimulationMeta{SimulationID: "coast", RunTime: 0.3, TimeStep: 0.1},
		Environment: vehicle.Environment{
			AirDensity: demoRho,
			Gravity:    32.174,
		},
		Vehicle: VehicleConfig{
			Params: vehicle.Params{
				Mass:              650.0 / 32.174,
				WheelRadius:       1.25,
				GearRatio:         1.5,
				GearEfficiency:    0.85,
				FrontalArea:       20,
				CDFront:           0.3,
				CDBack:            0.4,
				RollingResistance: 0.01,
			},
		},
		InitialSpeed: &v0,
	}
}

func TestNewSimValidation(t *testing.T) {
	good := demoInput()
	_, err := NewSim(good)
	assert.NoError(t, err)

	in := demoInput()
	in.Meta.TimeStep = 0
	_, err = NewSim(in)
	assert.Error(t, err, "zero timestep should fail")

	in = demoInput()
	in.Meta.RunTime = -1
	_, err = NewSim(in)
	assert.Error(t, err, "negative run time should fail")

	in = demoInput()
	in.Meta.Integrator = "leapfrog"
	_, err = NewSim(in)
	assert.Error(t, err, "unknown integrator should fail")

	in = demoInput()
	in.Meta.SteadyWindow = 10
	_, err = NewSim(in)
	assert.Error(t, err, "steady window without tolerance should fail")

	in = demoInput()
	in.Environment.AirDensity = 0
	_, err = NewSim(in)
	assert.Error(t, err, "zero air density should fail")

	in = demoInput()
	in.Vehicle.Rotor.Blade.Radial[0] = 0
	_, err = NewSim(in)
	assert.Error(t, err, "bad blade should fail")

	in = demoInput()
	in.Vehicle.Rotor.Polar = nil
	_, err = NewSim(in)
	assert.Error(t, err, "missing polar should fail")

	in = demoInput()
	in.Vehicle.Collective = vehicle.Schedule{{Speed: 10, Angle: 0}, {Speed: 5, Angle: 2}}
	_, err = NewSim(in)
	assert.Error(t, err, "descending schedule should fail")

	in = demoInput()
	in.Vehicle.GearRatio = 0
	_, err = NewSim(in)
	assert.Error(t, err, "zero gear ratio should fail")
}

func TestNewSimCopiesInput(t *testing.T) {
	in := demoInput()
	sim, err := NewSim(in)
	require.NoError(t, err)

	// Mutating the caller's slices after construction must not change
	// the run.
	in.Vehicle.Collective[0].Angle = 45
	in.Vehicle.Rotor.Blade.Chord[0] = 99

	simLog := runFor(sim, 3)
	assert.InDelta(t, 7.3461515293, simLog.Output[0].Speed, 1e-4)
}

// runFor advances a bounded number of steps for tests that do not need
// the whole trajectory.
func runFor(s *Sim, steps int) SimulationLog {
	simLog := SimulationLog{Meta: s.meta}
	for i := 0; i < steps; i++ {
		simLog.Output = append(simLog.Output, s.step())
	}
	return simLog
}

func TestDemoRunEuler(t *testing.T) {
	sim, err := NewSim(demoInput())
	require.NoError(t, err)
	simLog := sim.Run()

	rows := simLog.Output
	require.NotEmpty(t, rows)
	assert.GreaterOrEqual(t, len(rows), 600)
	assert.LessOrEqual(t, len(rows), 1200)

	first := rows[0]
	assert.InDelta(t, 0.5, first.Timestamp, 1e-12)
	assert.InDelta(t, 7.3461515293, first.Speed, 1e-4)
	assert.InDelta(t, 0.5179230036, first.Forces.Net, 2e-3)
	assert.InDelta(t, 8.4175374604, first.Forces.RotorThrust, 1e-2)
	assert.Less(t, first.Collective, 0.1, "collective starts almost flat")

	last := rows[len(rows)-1]
	assert.InDelta(t, 34.2249857399, last.Speed, 5e-3, "steady state of the demo run")
	assert.Less(t, last.Speed, 3*demoWind, "steady speed stays well under three times the wind")
	assert.Greater(t, last.Speed, 2*demoWind, "the vehicle beats twice the wind speed")
	assert.InDelta(t, 0.0, last.Forces.Net, 1e-6, "the run ends force-balanced")
	assert.InDelta(t, 9.0, last.Collective, 1e-9, "schedule tops out at nine degrees")

	for i, row := range rows {
		assert.True(t, row.RotorConverged, "row %d should converge", i)
		if i > 0 {
			assert.GreaterOrEqual(t, row.Speed, rows[i-1].Speed-1e-9,
				"speed should never drop, row %d", i)
			assert.Greater(t, row.Position, rows[i-1].Position, "it keeps moving forward")
		}
	}
}

func TestDemoRunRK4(t *testing.T) {
	in := demoInput()
	in.Meta.Integrator = "rk4"
	sim, err := NewSim(in)
	require.NoError(t, err)
	simLog := sim.Run()

	rows := simLog.Output
	require.NotEmpty(t, rows)
	last := rows[len(rows)-1]
	assert.InDelta(t, 34.2249857399, last.Speed, 5e-3, "both schemes find the same equilibrium")
	assert.InDelta(t, 0.0, last.Forces.Net, 1e-6)
	for i := 1; i < len(rows); i++ {
		assert.GreaterOrEqual(t, rows[i].Speed, rows[i-1].Speed-1e-9)
	}
}

func TestSteadyWindowStopsEarly(t *testing.T) {
	in := demoInput()
	in.Meta.SteadyWindow = 10
	in.Meta.SteadySpeedTol = 1e-6
	sim, err := NewSim(in)
	require.NoError(t, err)
	simLog := sim.Run()

	require.NotEmpty(t, simLog.Output)
	last := simLog.Output[len(simLog.Output)-1]
	assert.Less(t, last.Timestamp, 600.0, "steady detection should beat the horizon")
	assert.InDelta(t, 34.2249857399, last.Speed, 1e-3, "it stops already at the plateau")
}

func TestRunStopsWhenNetForceNonPositive(t *testing.T) {
	sim, err := NewSim(chassisInput())
	require.NoError(t, err)
	simLog := sim.Run()

	// Coasting with no rotor the net force is negative immediately, so
	// the run records one row and stops.
	require.Len(t, simLog.Output, 1)
	row := simLog.Output[0]
	assert.InDelta(t, 0.1, row.Timestamp, 1e-12)
	assert.InDelta(t, 1.0, row.Position, 1e-9)
	assert.InDelta(t, 9.9642964243, row.Speed, 1e-9)
	assert.InDelta(t, -7.2130677651, row.Forces.Net, 1e-9)
	assert.True(t, row.RotorConverged)
}

func TestRunJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(chassisInput())
	require.NoError(t, err)

	out, err := RunJSON(string(data))
	require.NoError(t, err)

	var simLog SimulationLog
	require.NoError(t, json.Unmarshal([]byte(out), &simLog))
	assert.Equal(t, "coast", simLog.Meta.SimulationID)
	require.Len(t, simLog.Output, 1)
	assert.InDelta(t, 9.9642964243, simLog.Output[0].Speed, 1e-9)
	assert.InDelta(t, -7.2130677651, simLog.Output[0].Forces.Net, 1e-9)

	assert.Contains(t, out, `"rotor_thrust"`)
	assert.Contains(t, out, `"timestamp"`)
}

func TestRunJSONRejectsBadInput(t *testing.T) {
	_, err := RunJSON("{not json")
	assert.Error(t, err)

	_, err = RunJSON(`{"simulation_meta": {"run_time": 10, "time_step": 0}}`)
	assert.Error(t, err)
}

func TestRotorConfigUnmarshalJSON(t *testing.T) {
	var rc RotorConfig
	err := json.Unmarshal([]byte(`{
		"num_blades": 2,
		"blade": {"radial": [1, 8.75], "chord": [0.5, 0.3], "twist": [20, 8]},
		"airfoil": {"model": "naca6412"}
	}`), &rc)
	require.NoError(t, err)
	assert.Equal(t, 2, rc.NumBlades)
	ta, ok := rc.Polar.(airfoil.ThinAirfoil)
	require.True(t, ok)
	assert.Equal(t, airfoil.NACA6412(), ta)

	err = json.Unmarshal([]byte(`{
		"num_blades": 2,
		"blade": {"radial": [1, 8.75], "chord": [0.5, 0.3], "twist": [20, 8]},
		"airfoil": {"model": "thin-airfoil", "lift_slope": 5.7, "cd_min": 0.01,
			"k_drag": 0.02, "alpha_stall": 15, "blend_range": 5, "cd_90": 1.98}
	}`), &rc)
	require.NoError(t, err)
	ta, ok = rc.Polar.(airfoil.ThinAirfoil)
	require.True(t, ok)
	assert.Equal(t, 5.7, ta.LiftSlope)

	err = json.Unmarshal([]byte(`{
		"airfoil": {"model": "table", "alpha": [-5, 0, 5], "cl": [-0.5, 0, 0.5], "cd": [0.012, 0.009, 0.012]}
	}`), &rc)
	require.NoError(t, err)
	_, isTable := rc.Polar.(*airfoil.TablePolar)
	assert.True(t, isTable)

	err = json.Unmarshal([]byte(`{"airfoil": {"model": "flat-bottom"}}`), &rc)
	assert.Error(t, err, "unknown model should fail")

	err = json.Unmarshal([]byte(`{"num_blades": 2}`), &rc)
	assert.Error(t, err, "missing airfoil should fail")

	err = json.Unmarshal([]byte(`{
		"airfoil": {"model": "thin-airfoil", "lift_slope": 5.7}
	}`), &rc)
	assert.Error(t, err, "incomplete thin-airfoil parameters should fail validation")
}

func TestSolverParamsDefaults(t *testing.T) {
	var rc RotorConfig
	p := rc.SolverParams()
	assert.Equal(t, rotor.DefaultParams(), p)

	rc.Solver = rotor.Params{Stations: 25}
	p = rc.SolverParams()
	assert.Equal(t, 25, p.Stations)
	assert.Equal(t, rotor.DefaultParams().Tolerance, p.Tolerance)
}

func TestRunJSONWithRotorConfig(t *testing.T) {
	input := `{
		"simulation_meta": {"simulation_id": "short", "run_time": 2.5, "time_step": 0.5},
		"environment": {"air_density": 0.0023768925503953276, "gravity": 32.174, "wind_speed": 14.666666666666666},
		"vehicle": {
			"mass": 20.20264810095108,
			"wheel_radius": 1.25,
			"gear_ratio": 1.5,
			"gear_efficiency": 0.85,
			"frontal_area": 20,
			"cd_front": 0.3,
			"cd_back": 0.4,
			"rolling_resistance": 0.01,
			"collective_schedule": [{"speed": 0, "angle": 0}],
			"rotor": {
				"num_blades": 2,
				"blade": {"radial": [1, 2.5, 3.5, 8.75], "chord": [0.2, 1.1, 1.2, 0.3], "twist": [26, 18, 16, 8]},
				"solver": {"stations": 25, "tolerance": 1e-8, "max_iterations": 2000, "relaxation": 0.05},
				"airfoil": {"model": "naca6412"}
			}
		}
	}`
	out, err := RunJSON(input)
	require.NoError(t, err)

	var simLog SimulationLog
	require.NoError(t, json.Unmarshal([]byte(out), &simLog))
	require.Len(t, simLog.Output, 5)
	for _, row := range simLog.Output {
		assert.True(t, row.RotorConverged)
		assert.Greater(t, row.Forces.Net, 0.0, "the cart accelerates from the push start")
	}
	assert.True(t, strings.HasPrefix(out, `{"simulation_meta"`))
}
