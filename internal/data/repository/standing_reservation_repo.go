package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"train-booking/internal/data/entity"
	"train-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type StandingReservationRepository interface {
	Create(ctx context.Context, reservation *entity.StandingReservation) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.StandingReservation, error)
	FindActiveByRun(ctx context.Context, runID uuid.UUID) ([]*entity.StandingReservation, error)
	FindActiveByReservation(ctx context.Context, reservationID uuid.UUID) ([]*entity.StandingReservation, error)
	Release(ctx context.Context, id uuid.UUID, version int64) (bool, error)
	Confirm(ctx context.Context, id uuid.UUID, version int64) (bool, error)
	ExpireHolds(ctx context.Context, cutoff time.Time) (int64, error)
}

type standingReservationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewStandingReservationRepository(db database.PgxIface, log *zap.Logger) StandingReservationRepository {
	return &standingReservationRepository{
		db:  db,
		log: log.With(zap.String("repository", "standing_reservation")),
	}
}

const standingReservationSelect = `
	SELECT st.id, st.train_run_id, st.reservation_id, st.status,
	       st.departure_station_id, st.arrival_station_id,
	       dep.position_index, arr.position_index,
	       st.reserved_at, st.version, st.created_at, st.updated_at
	FROM standing_reservations st
	JOIN schedule_stops dep ON dep.train_run_id = st.train_run_id AND dep.station_id = st.departure_station_id
	JOIN schedule_stops arr ON arr.train_run_id = st.train_run_id AND arr.station_id = st.arrival_station_id
`

func scanStandingReservation(row pgx.Row) (*entity.StandingReservation, error) {
	var st entity.StandingReservation
	err := row.Scan(
		&st.ID,
		&st.TrainRunID,
		&st.ReservationID,
		&st.Status,
		&st.DepartureStationID,
		&st.ArrivalStationID,
		&st.DeparturePos,
		&st.ArrivalPos,
		&st.ReservedAt,
		&st.Version,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *standingReservationRepository) Create(ctx context.Context, st *entity.StandingReservation) error {
	query := `
		INSERT INTO standing_reservations (id, train_run_id, reservation_id, status,
			departure_station_id, arrival_station_id, reserved_at, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := database.Conn(ctx, r.db).Exec(ctx, query,
		st.ID,
		st.TrainRunID,
		st.ReservationID,
		st.Status,
		st.DepartureStationID,
		st.ArrivalStationID,
		st.ReservedAt,
		st.Version,
		st.CreatedAt,
		st.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create standing reservation",
			zap.Error(err),
			zap.String("train_run_id", st.TrainRunID.String()),
		)
		return fmt.Errorf("create standing reservation on run %s: %w", st.TrainRunID.String(), err)
	}

	return nil
}

func (r *standingReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.StandingReservation, error) {
	query := standingReservationSelect + `WHERE st.id = $1`

	st, err := scanStandingReservation(database.Conn(ctx, r.db).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find standing reservation by ID",
			zap.Error(err),
			zap.String("standing_reservation_id", id.String()),
		)
		return nil, fmt.Errorf("find standing reservation %s: %w", id.String(), err)
	}

	return st, nil
}

func (r *standingReservationRepository) FindActiveByRun(ctx context.Context, runID uuid.UUID) ([]*entity.StandingReservation, error) {
	query := standingReservationSelect + `
		WHERE st.train_run_id = $1 AND st.status IN ('RESERVED', 'LOCKED')
	`
	return r.findMany(ctx, "run "+runID.String(), query, runID)
}

func (r *standingReservationRepository) FindActiveByReservation(ctx context.Context, reservationID uuid.UUID) ([]*entity.StandingReservation, error) {
	query := standingReservationSelect + `
		WHERE st.reservation_id = $1 AND st.status IN ('RESERVED', 'LOCKED')
	`
	return r.findMany(ctx, "reservation "+reservationID.String(), query, reservationID)
}

func (r *standingReservationRepository) findMany(ctx context.Context, scope, query string, args ...any) ([]*entity.StandingReservation, error) {
	rows, err := database.Conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to find active standing reservations",
			zap.Error(err),
			zap.String("scope", scope),
		)
		return nil, fmt.Errorf("find active standing reservations of %s: %w", scope, err)
	}
	defer rows.Close()

	var out []*entity.StandingReservation
	for rows.Next() {
		st, err := scanStandingReservation(rows)
		if err != nil {
			r.log.Error("Failed to scan standing reservation row", zap.Error(err))
			return nil, fmt.Errorf("scan standing reservation row: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate standing reservations of %s: %w", scope, err)
	}

	return out, nil
}

func (r *standingReservationRepository) Release(ctx context.Context, id uuid.UUID, version int64) (bool, error) {
	query := `
		UPDATE standing_reservations
		SET status = 'AVAILABLE', reserved_at = NULL, reservation_id = NULL,
		    version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2 AND status IN ('RESERVED', 'LOCKED')
	`

	result, err := database.Conn(ctx, r.db).Exec(ctx, query, id, version)
	if err != nil {
		r.log.Error("Failed to release standing reservation",
			zap.Error(err),
			zap.String("standing_reservation_id", id.String()),
		)
		return false, fmt.Errorf("release standing reservation %s: %w", id.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *standingReservationRepository) Confirm(ctx context.Context, id uuid.UUID, version int64) (bool, error) {
	query := `
		UPDATE standing_reservations
		SET status = 'LOCKED', version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2 AND status = 'RESERVED'
	`

	result, err := database.Conn(ctx, r.db).Exec(ctx, query, id, version)
	if err != nil {
		r.log.Error("Failed to confirm standing reservation",
			zap.Error(err),
			zap.String("standing_reservation_id", id.String()),
		)
		return false, fmt.Errorf("confirm standing reservation %s: %w", id.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *standingReservationRepository) ExpireHolds(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE standing_reservations
		SET status = 'AVAILABLE', reserved_at = NULL, reservation_id = NULL,
		    version = version + 1, updated_at = NOW()
		WHERE status = 'RESERVED' AND reserved_at < $1
	`

	result, err := database.Conn(ctx, r.db).Exec(ctx, query, cutoff)
	if err != nil {
		r.log.Error("Failed to expire standing holds",
			zap.Error(err),
			zap.Time("cutoff", cutoff),
		)
		return 0, fmt.Errorf("expire standing holds before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	return result.RowsAffected(), nil
}
