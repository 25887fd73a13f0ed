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

// SeatReservationRepository owns the seat_reservations rows. Reads join the
// run's schedule_stops so every returned row carries its position interval.
type SeatReservationRepository interface {
	// LockSeat serializes writers of one (run, seat) until the transaction ends.
	LockSeat(ctx context.Context, runID, seatID uuid.UUID) error
	Create(ctx context.Context, reservation *entity.SeatReservation) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.SeatReservation, error)
	FindActiveBySeat(ctx context.Context, runID, seatID uuid.UUID) ([]*entity.SeatReservation, error)
	FindActiveByRun(ctx context.Context, runID uuid.UUID) ([]*entity.SeatReservation, error)
	FindActiveByReservation(ctx context.Context, reservationID uuid.UUID) ([]*entity.SeatReservation, error)

	// Release and Confirm report false when no row matched id and version
	// in an eligible status.
	Release(ctx context.Context, id uuid.UUID, version int64) (bool, error)
	Confirm(ctx context.Context, id uuid.UUID, version int64) (bool, error)
	ExpireHolds(ctx context.Context, cutoff time.Time) (int64, error)
}

type seatReservationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSeatReservationRepository(db database.PgxIface, log *zap.Logger) SeatReservationRepository {
	return &seatReservationRepository{
		db:  db,
		log: log.With(zap.String("repository", "seat_reservation")),
	}
}

const seatReservationSelect = `
	SELECT sr.id, sr.train_run_id, sr.seat_id, s.car_id, sr.reservation_id, sr.passenger_type,
	       sr.status, sr.departure_station_id, sr.arrival_station_id,
	       dep.position_index, arr.position_index,
	       sr.reserved_at, sr.version, sr.created_at, sr.updated_at
	FROM seat_reservations sr
	JOIN seats s ON s.id = sr.seat_id
	JOIN schedule_stops dep ON dep.train_run_id = sr.train_run_id AND dep.station_id = sr.departure_station_id
	JOIN schedule_stops arr ON arr.train_run_id = sr.train_run_id AND arr.station_id = sr.arrival_station_id
`

func scanSeatReservation(row pgx.Row) (*entity.SeatReservation, error) {
	var sr entity.SeatReservation
	err := row.Scan(
		&sr.ID,
		&sr.TrainRunID,
		&sr.SeatID,
		&sr.CarID,
		&sr.ReservationID,
		&sr.PassengerType,
		&sr.Status,
		&sr.DepartureStationID,
		&sr.ArrivalStationID,
		&sr.DeparturePos,
		&sr.ArrivalPos,
		&sr.ReservedAt,
		&sr.Version,
		&sr.CreatedAt,
		&sr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sr, nil
}

func (r *seatReservationRepository) LockSeat(ctx context.Context, runID, seatID uuid.UUID) error {
	query := `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`

	key := runID.String() + ":" + seatID.String()
	if _, err := database.Conn(ctx, r.db).Exec(ctx, query, key); err != nil {
		r.log.Error("Failed to lock seat",
			zap.Error(err),
			zap.String("train_run_id", runID.String()),
			zap.String("seat_id", seatID.String()),
		)
		return fmt.Errorf("lock seat %s on run %s: %w", seatID.String(), runID.String(), err)
	}
	return nil
}

func (r *seatReservationRepository) Create(ctx context.Context, sr *entity.SeatReservation) error {
	query := `
		INSERT INTO seat_reservations (id, train_run_id, seat_id, reservation_id, passenger_type, status,
			departure_station_id, arrival_station_id, reserved_at, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := database.Conn(ctx, r.db).Exec(ctx, query,
		sr.ID,
		sr.TrainRunID,
		sr.SeatID,
		sr.ReservationID,
		sr.PassengerType,
		sr.Status,
		sr.DepartureStationID,
		sr.ArrivalStationID,
		sr.ReservedAt,
		sr.Version,
		sr.CreatedAt,
		sr.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create seat reservation",
			zap.Error(err),
			zap.String("train_run_id", sr.TrainRunID.String()),
			zap.String("seat_id", sr.SeatID.String()),
		)
		return fmt.Errorf("create seat reservation for seat %s: %w", sr.SeatID.String(), err)
	}

	return nil
}

func (r *seatReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.SeatReservation, error) {
	query := seatReservationSelect + `WHERE sr.id = $1`

	sr, err := scanSeatReservation(database.Conn(ctx, r.db).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find seat reservation by ID",
			zap.Error(err),
			zap.String("seat_reservation_id", id.String()),
		)
		return nil, fmt.Errorf("find seat reservation %s: %w", id.String(), err)
	}

	return sr, nil
}

func (r *seatReservationRepository) FindActiveBySeat(ctx context.Context, runID, seatID uuid.UUID) ([]*entity.SeatReservation, error) {
	query := seatReservationSelect + `
		WHERE sr.train_run_id = $1 AND sr.seat_id = $2 AND sr.status IN ('RESERVED', 'LOCKED')
		ORDER BY dep.position_index
	`
	return r.findMany(ctx, "seat "+seatID.String(), query, runID, seatID)
}

func (r *seatReservationRepository) FindActiveByRun(ctx context.Context, runID uuid.UUID) ([]*entity.SeatReservation, error) {
	query := seatReservationSelect + `
		WHERE sr.train_run_id = $1 AND sr.status IN ('RESERVED', 'LOCKED')
	`
	return r.findMany(ctx, "run "+runID.String(), query, runID)
}

func (r *seatReservationRepository) FindActiveByReservation(ctx context.Context, reservationID uuid.UUID) ([]*entity.SeatReservation, error) {
	query := seatReservationSelect + `
		WHERE sr.reservation_id = $1 AND sr.status IN ('RESERVED', 'LOCKED')
	`
	return r.findMany(ctx, "reservation "+reservationID.String(), query, reservationID)
}

func (r *seatReservationRepository) findMany(ctx context.Context, scope, query string, args ...any) ([]*entity.SeatReservation, error) {
	rows, err := database.Conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to find active seat reservations",
			zap.Error(err),
			zap.String("scope", scope),
		)
		return nil, fmt.Errorf("find active seat reservations of %s: %w", scope, err)
	}
	defer rows.Close()

	var out []*entity.SeatReservation
	for rows.Next() {
		sr, err := scanSeatReservation(rows)
		if err != nil {
			r.log.Error("Failed to scan seat reservation row", zap.Error(err))
			return nil, fmt.Errorf("scan seat reservation row: %w", err)
		}
		out = append(out, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seat reservations of %s: %w", scope, err)
	}

	return out, nil
}

func (r *seatReservationRepository) Release(ctx context.Context, id uuid.UUID, version int64) (bool, error) {
	query := `
		UPDATE seat_reservations
		SET status = 'AVAILABLE', reserved_at = NULL, reservation_id = NULL,
		    version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2 AND status IN ('RESERVED', 'LOCKED')
	`

	result, err := database.Conn(ctx, r.db).Exec(ctx, query, id, version)
	if err != nil {
		r.log.Error("Failed to release seat reservation",
			zap.Error(err),
			zap.String("seat_reservation_id", id.String()),
			zap.Int64("version", version),
		)
		return false, fmt.Errorf("release seat reservation %s: %w", id.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *seatReservationRepository) Confirm(ctx context.Context, id uuid.UUID, version int64) (bool, error) {
	query := `
		UPDATE seat_reservations
		SET status = 'LOCKED', version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2 AND status = 'RESERVED'
	`

	result, err := database.Conn(ctx, r.db).Exec(ctx, query, id, version)
	if err != nil {
		r.log.Error("Failed to confirm seat reservation",
			zap.Error(err),
			zap.String("seat_reservation_id", id.String()),
			zap.Int64("version", version),
		)
		return false, fmt.Errorf("confirm seat reservation %s: %w", id.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

// ExpireHolds releases every RESERVED row held since before cutoff in one
// statement. Rows confirmed in the meantime no longer match the WHERE clause.
func (r *seatReservationRepository) ExpireHolds(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE seat_reservations
		SET status = 'AVAILABLE', reserved_at = NULL, reservation_id = NULL,
		    version = version + 1, updated_at = NOW()
		WHERE status = 'RESERVED' AND reserved_at < $1
	`

	result, err := database.Conn(ctx, r.db).Exec(ctx, query, cutoff)
	if err != nil {
		r.log.Error("Failed to expire seat holds",
			zap.Error(err),
			zap.Time("cutoff", cutoff),
		)
		return 0, fmt.Errorf("expire seat holds before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	return result.RowsAffected(), nil
}
