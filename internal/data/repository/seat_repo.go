package repository

import (
	"context"
	"errors"
	"fmt"

	"train-booking/internal/data/entity"
	"train-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// SeatRepository reads the car composition of a run. Seats and cars belong
// to the train; a run sees them through train_runs.train_id.
type SeatRepository interface {
	FindForRun(ctx context.Context, runID, seatID uuid.UUID) (*entity.Seat, error)
	FindCarsByRun(ctx context.Context, runID uuid.UUID) ([]*entity.Car, error)
	FindByCar(ctx context.Context, runID, carID uuid.UUID) ([]*entity.Seat, error)
}

type seatRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSeatRepository(db database.PgxIface, log *zap.Logger) SeatRepository {
	return &seatRepository{
		db:  db,
		log: log.With(zap.String("repository", "seat")),
	}
}

func (r *seatRepository) FindForRun(ctx context.Context, runID, seatID uuid.UUID) (*entity.Seat, error) {
	query := `
		SELECT s.id, s.car_id, s.seat_row, s.seat_column, s.seat_type
		FROM seats s
		JOIN cars c ON c.id = s.car_id
		JOIN train_runs tr ON tr.train_id = c.train_id
		WHERE tr.id = $1 AND s.id = $2
	`

	var seat entity.Seat
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, runID, seatID).Scan(
		&seat.ID,
		&seat.CarID,
		&seat.SeatRow,
		&seat.SeatColumn,
		&seat.SeatType,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find seat for run",
			zap.Error(err),
			zap.String("train_run_id", runID.String()),
			zap.String("seat_id", seatID.String()),
		)
		return nil, fmt.Errorf("find seat %s for run %s: %w", seatID.String(), runID.String(), err)
	}

	return &seat, nil
}

func (r *seatRepository) FindCarsByRun(ctx context.Context, runID uuid.UUID) ([]*entity.Car, error) {
	query := `
		SELECT c.id, c.train_id, c.car_number, c.seat_class, COUNT(s.id)
		FROM cars c
		JOIN train_runs tr ON tr.train_id = c.train_id
		LEFT JOIN seats s ON s.car_id = c.id
		WHERE tr.id = $1
		GROUP BY c.id, c.train_id, c.car_number, c.seat_class
		ORDER BY c.car_number
	`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, runID)
	if err != nil {
		r.log.Error("Failed to find cars by run",
			zap.Error(err),
			zap.String("train_run_id", runID.String()),
		)
		return nil, fmt.Errorf("find cars by run %s: %w", runID.String(), err)
	}
	defer rows.Close()

	var cars []*entity.Car
	for rows.Next() {
		var car entity.Car
		err := rows.Scan(
			&car.ID,
			&car.TrainID,
			&car.CarNumber,
			&car.SeatClass,
			&car.TotalSeats,
		)
		if err != nil {
			r.log.Error("Failed to scan car row", zap.Error(err))
			return nil, fmt.Errorf("scan car row: %w", err)
		}
		cars = append(cars, &car)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cars of run %s: %w", runID.String(), err)
	}

	return cars, nil
}

func (r *seatRepository) FindByCar(ctx context.Context, runID, carID uuid.UUID) ([]*entity.Seat, error) {
	query := `
		SELECT s.id, s.car_id, s.seat_row, s.seat_column, s.seat_type
		FROM seats s
		JOIN cars c ON c.id = s.car_id
		JOIN train_runs tr ON tr.train_id = c.train_id
		WHERE tr.id = $1 AND c.id = $2
		ORDER BY s.seat_row, s.seat_column
	`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, runID, carID)
	if err != nil {
		r.log.Error("Failed to find seats by car",
			zap.Error(err),
			zap.String("train_run_id", runID.String()),
			zap.String("car_id", carID.String()),
		)
		return nil, fmt.Errorf("find seats of car %s: %w", carID.String(), err)
	}
	defer rows.Close()

	var seats []*entity.Seat
	for rows.Next() {
		var seat entity.Seat
		err := rows.Scan(
			&seat.ID,
			&seat.CarID,
			&seat.SeatRow,
			&seat.SeatColumn,
			&seat.SeatType,
		)
		if err != nil {
			r.log.Error("Failed to scan seat row", zap.Error(err))
			return nil, fmt.Errorf("scan seat row: %w", err)
		}
		seats = append(seats, &seat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seats of car %s: %w", carID.String(), err)
	}

	return seats, nil
}
