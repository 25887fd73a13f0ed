package repository

import (
	"context"
	"fmt"

	"train-booking/internal/data/entity"
	"train-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ScheduleRepository interface {
	// FindStopsByRun returns the run's stops ordered by position
	FindStopsByRun(ctx context.Context, runID uuid.UUID) ([]*entity.ScheduleStop, error)
}

type scheduleRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewScheduleRepository(db database.PgxIface, log *zap.Logger) ScheduleRepository {
	return &scheduleRepository{
		db:  db,
		log: log.With(zap.String("repository", "schedule")),
	}
}

func (r *scheduleRepository) FindStopsByRun(ctx context.Context, runID uuid.UUID) ([]*entity.ScheduleStop, error) {
	query := `
		SELECT train_run_id, station_id, position_index, arrival_time, departure_time
		FROM schedule_stops
		WHERE train_run_id = $1
		ORDER BY position_index
	`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, runID)
	if err != nil {
		r.log.Error("Failed to find stops by run",
			zap.Error(err),
			zap.String("train_run_id", runID.String()),
		)
		return nil, fmt.Errorf("find stops by run %s: %w", runID.String(), err)
	}
	defer rows.Close()

	var stops []*entity.ScheduleStop
	for rows.Next() {
		var stop entity.ScheduleStop
		err := rows.Scan(
			&stop.TrainRunID,
			&stop.StationID,
			&stop.PositionIndex,
			&stop.ArrivalTime,
			&stop.DepartureTime,
		)
		if err != nil {
			r.log.Error("Failed to scan schedule stop row", zap.Error(err))
			return nil, fmt.Errorf("scan schedule stop row: %w", err)
		}
		stops = append(stops, &stop)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stops of run %s: %w", runID.String(), err)
	}

	return stops, nil
}
