package repository

import (
	"context"

	"train-booking/pkg/database"

	"go.uber.org/zap"
)

// Transactor runs fn in one database transaction. Repository calls made with
// the ctx handed to fn join that transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Repository struct {
	Tx                  Transactor
	TrainRun            TrainRunRepository
	Schedule            ScheduleRepository
	Seat                SeatRepository
	SeatReservation     SeatReservationRepository
	StandingReservation StandingReservationRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Tx:                  NewTransactor(db),
		TrainRun:            NewTrainRunRepository(db, log),
		Schedule:            NewScheduleRepository(db, log),
		Seat:                NewSeatRepository(db, log),
		SeatReservation:     NewSeatReservationRepository(db, log),
		StandingReservation: NewStandingReservationRepository(db, log),
	}
}

type pgTransactor struct {
	db database.PgxIface
}

func NewTransactor(db database.PgxIface) Transactor {
	return &pgTransactor{db: db}
}

func (t *pgTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return database.WithTx(ctx, t.db, fn)
}
