package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/montagdude/ddwfttw-vehicle/internal/engine"
	"github.com/montagdude/ddwfttw-vehicle/internal/vehicle"
)

func demoLog() (engine.SimulationInput, engine.SimulationLog) {
	input := engine.SimulationInput{
		Meta: engine.SimulationMeta{
			SimulationID: "archive-demo",
			RunTime:      1.0,
			TimeStep:     0.5,
			Integrator:   "euler",
		},
		Environment: vehicle.Environment{
			AirDensity: 1.225,
			Gravity:    9.81,
			WindSpeed:  4.5,
		},
	}
	simLog := engine.SimulationLog{
		Meta: input.Meta,
		Output: []engine.SimulationLogRow{
			{
				Timestamp:  0.5,
				Position:   1.2,
				Speed:      2.5,
				Collective: 1.0,
				Forces: vehicle.Breakdown{
					RotorThrust: 3.0,
					AeroDrag:    -0.5,
					RotorDrag:   -1.0,
					Rolling:     -0.25,
					Net:         1.25,
				},
				RotorConverged: true,
			},
			{
				Timestamp:  1.0,
				Position:   2.6,
				Speed:      2.9,
				Collective: 1.2,
				Forces: vehicle.Breakdown{
					RotorThrust: 2.8,
					AeroDrag:    -0.6,
					RotorDrag:   -1.1,
					Rolling:     -0.25,
					Net:         0.85,
				},
				RotorConverged: true,
			},
		},
	}
	return input, simLog
}

func TestOpenCreatesEmptyArchive(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)

	runs, err := st.Runs(10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestSaveRunRoundTrip(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)

	input, simLog := demoLog()
	id, err := st.SaveRun(input, simLog)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	runs, err := st.Runs(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, "archive-demo", runs[0].SimulationID)
	assert.Equal(t, "euler", runs[0].Integrator)
	assert.Equal(t, 4.5, runs[0].WindSpeed)
	assert.Equal(t, 0.5, runs[0].TimeStep)
	assert.Equal(t, 2, runs[0].Steps)
	assert.Equal(t, 1.0, runs[0].FinalTime)
	assert.Equal(t, 2.9, runs[0].FinalSpeed)

	samples, err := st.Samples(id)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, 0.5, samples[0].Timestamp)
	assert.Equal(t, 1.0, samples[1].Timestamp)
	assert.Equal(t, 3.0, samples[0].RotorThrust)
	assert.Equal(t, -1.1, samples[1].RotorDrag)
	assert.Equal(t, 0.85, samples[1].Net)
	assert.True(t, samples[0].RotorConverged)
}

func TestSaveRunWithEmptyLog(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)

	input, simLog := demoLog()
	simLog.Output = nil
	id, err := st.SaveRun(input, simLog)
	require.NoError(t, err)

	runs, err := st.Runs(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 0, runs[0].Steps)
	assert.Equal(t, 0.0, runs[0].FinalTime)
	assert.Equal(t, 0.0, runs[0].FinalSpeed)

	samples, err := st.Samples(id)
	require.NoError(t, err)
	assert.Empty(t, samples)
}

func TestRunsAreSeparateArchiveEntries(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)

	input, simLog := demoLog()
	first, err := st.SaveRun(input, simLog)
	require.NoError(t, err)
	second, err := st.SaveRun(input, simLog)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	runs, err := st.Runs(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	ids := []string{runs[0].ID, runs[1].ID}
	assert.Contains(t, ids, first)
	assert.Contains(t, ids, second)
	assert.False(t, runs[0].CreatedAt.Before(runs[1].CreatedAt))

	limited, err := st.Runs(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSamplesForUnknownRun(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)

	samples, err := st.Samples("no-such-run")
	require.NoError(t, err)
	assert.Empty(t, samples)
}
