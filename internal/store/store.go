// Package store archives simulation runs in a SQLite database: one row
// per run plus the full time history, so sweeps of runs can be compared
// later without re-running the solver.
package store

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/montagdude/ddwfttw-vehicle/internal/engine"
)

// Run is the summary record of one archived simulation run.
type Run struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	SimulationID string    `json:"simulation_id"`
	CreatedAt    time.Time `json:"created_at"`
	WindSpeed    float64   `json:"wind_speed"`
	TimeStep     float64   `json:"time_step"`
	Integrator   string    `json:"integrator"`
	Steps        int       `json:"steps"`
	FinalTime    float64   `json:"final_time"`
	FinalSpeed   float64   `json:"final_speed"`
}

// Sample is one logged timestep of an archived run.
type Sample struct {
	ID             uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID          string  `gorm:"index" json:"run_id"`
	Timestamp      float64 `json:"timestamp"`
	Position       float64 `json:"position"`
	Speed          float64 `json:"speed"`
	Collective     float64 `json:"collective"`
	RotorThrust    float64 `json:"rotor_thrust"`
	AeroDrag       float64 `json:"aero_drag"`
	RotorDrag      float64 `json:"rotor_drag"`
	Rolling        float64 `json:"rolling"`
	Net            float64 `json:"net"`
	RotorConverged bool    `json:"rotor_converged"`
}

// Storage is the run archive.
type Storage struct {
	db *gorm.DB
}

// Open opens the archive at path, creating it and migrating the schema
// as needed. ":memory:" gives an ephemeral archive.
func Open(path string) (*Storage, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening archive %q: %w", path, err)
	}
	if err := db.AutoMigrate(&Run{}, &Sample{}); err != nil {
		return nil, fmt.Errorf("migrating archive schema: %w", err)
	}
	return &Storage{db: db}, nil
}

// SaveRun archives a finished run and returns the generated run ID.
// The same input may be archived any number of times; each save gets
// its own ID.
func (s *Storage) SaveRun(input engine.SimulationInput, simLog engine.SimulationLog) (string, error) {
	run := Run{
		ID:           uuid.NewString(),
		SimulationID: simLog.Meta.SimulationID,
		WindSpeed:    input.Environment.WindSpeed,
		TimeStep:     simLog.Meta.TimeStep,
		Integrator:   simLog.Meta.Integrator,
		Steps:        len(simLog.Output),
	}
	if n := len(simLog.Output); n > 0 {
		run.FinalTime = simLog.Output[n-1].Timestamp
		run.FinalSpeed = simLog.Output[n-1].Speed
	}
	if err := s.db.Create(&run).Error; err != nil {
		return "", fmt.Errorf("saving run: %w", err)
	}

	if len(simLog.Output) == 0 {
		return run.ID, nil
	}
	samples := make([]Sample, len(simLog.Output))
	for i, row := range simLog.Output {
		samples[i] = Sample{
			RunID:          run.ID,
			Timestamp:      row.Timestamp,
			Position:       row.Position,
			Speed:          row.Speed,
			Collective:     row.Collective,
			RotorThrust:    row.Forces.RotorThrust,
			AeroDrag:       row.Forces.AeroDrag,
			RotorDrag:      row.Forces.RotorDrag,
			Rolling:        row.Forces.Rolling,
			Net:            row.Forces.Net,
			RotorConverged: row.RotorConverged,
		}
	}
	if err := s.db.Create(&samples).Error; err != nil {
		return "", fmt.Errorf("saving run samples: %w", err)
	}
	return run.ID, nil
}

// Runs returns the most recently archived runs, newest first.
func (s *Storage) Runs(limit int) ([]Run, error) {
	var runs []Run
	if err := s.db.Order("created_at desc").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// Samples returns the time history of one archived run in time order.
func (s *Storage) Samples(runID string) ([]Sample, error) {
	var samples []Sample
	if err := s.db.Where("run_id = ?", runID).Order("timestamp asc").Find(&samples).Error; err != nil {
		return nil, fmt.Errorf("loading samples for run %q: %w", runID, err)
	}
	return samples, nil
}
