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

type TrainRunRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.TrainRun, error)
	// FindByIDForUpdate row-locks the run until the surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.TrainRun, error)
}

type trainRunRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTrainRunRepository(db database.PgxIface, log *zap.Logger) TrainRunRepository {
	return &trainRunRepository{
		db:  db,
		log: log.With(zap.String("repository", "train_run")),
	}
}

const trainRunColumns = `id, train_id, run_date, standing_ceiling, created_at`

func (r *trainRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.TrainRun, error) {
	query := `SELECT ` + trainRunColumns + ` FROM train_runs WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *trainRunRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.TrainRun, error) {
	query := `SELECT ` + trainRunColumns + ` FROM train_runs WHERE id = $1 FOR UPDATE`
	return r.findOne(ctx, query, id)
}

func (r *trainRunRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.TrainRun, error) {
	var run entity.TrainRun
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, id).Scan(
		&run.ID,
		&run.TrainID,
		&run.RunDate,
		&run.StandingCeiling,
		&run.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find train run",
			zap.Error(err),
			zap.String("train_run_id", id.String()),
		)
		return nil, fmt.Errorf("find train run %s: %w", id.String(), err)
	}

	return &run, nil
}
