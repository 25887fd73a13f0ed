package entity

import (
	"time"

	"github.com/google/uuid"
)

// TrainRun is one dated operation of a train.
type TrainRun struct {
	ID              uuid.UUID `db:"id"`
	TrainID         uuid.UUID `db:"train_id"`
	RunDate         time.Time `db:"run_date"`
	StandingCeiling *int      `db:"standing_ceiling"` // nil: configured default
	CreatedAt       time.Time `db:"created_at"`
}

// Ceiling returns the run's standing ceiling or def when unset.
func (r *TrainRun) Ceiling(def int) int {
	if r.StandingCeiling != nil {
		return *r.StandingCeiling
	}
	return def
}

// ScheduleStop is one stop of a run. PositionIndex grows along the run,
// the first stop has no arrival and the last has no departure.
type ScheduleStop struct {
	TrainRunID    uuid.UUID  `db:"train_run_id" json:"train_run_id"`
	StationID     uuid.UUID  `db:"station_id" json:"station_id"`
	PositionIndex int        `db:"position_index" json:"position_index"`
	ArrivalTime   *time.Time `db:"arrival_time" json:"arrival_time,omitempty"`
	DepartureTime *time.Time `db:"departure_time" json:"departure_time,omitempty"`
}
