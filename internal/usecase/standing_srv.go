package usecase

import (
	"context"
	"fmt"

	"train-booking/internal/data/entity"
	"train-booking/internal/data/repository"
	"train-booking/internal/segment"
	"train-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StandingService reports how many standing places a segment still has.
type StandingService interface {
	RemainingStanding(ctx context.Context, runID, depStationID, arrStationID string) (int, error)
}

type standingService struct {
	repo     *repository.Repository
	topology *topologyService
	config   utils.ReservationConfig
	log      *zap.Logger
}

func newStandingService(repo *repository.Repository, topology *topologyService, config utils.ReservationConfig, log *zap.Logger) *standingService {
	return &standingService{
		repo:     repo,
		topology: topology,
		config:   config,
		log:      log.With(zap.String("service", "standing")),
	}
}

func (s *standingService) RemainingStanding(ctx context.Context, runID, depStationID, arrStationID string) (int, error) {
	depID, arrID, err := parseSegment(depStationID, arrStationID)
	if err != nil {
		return 0, err
	}
	id, err := parseID("train_run_id", runID)
	if err != nil {
		return 0, err
	}

	run, err := s.findRun(ctx, id)
	if err != nil {
		return 0, err
	}
	window, err := s.topology.resolve(ctx, id, depID, arrID)
	if err != nil {
		return 0, err
	}
	return s.remaining(ctx, run, window)
}

// remaining is the run's ceiling minus the peak number of simultaneous
// standing passengers inside window, never below zero.
func (s *standingService) remaining(ctx context.Context, run *entity.TrainRun, window segment.Interval) (int, error) {
	active, err := s.repo.StandingReservation.FindActiveByRun(ctx, run.ID)
	if err != nil {
		return 0, storeErr("read standing holds of run "+run.ID.String(), err)
	}

	peak := segment.PeakOverlap(window, standingIntervals(active))
	return max(0, run.Ceiling(s.config.DefaultStandingCeiling)-peak), nil
}

func (s *standingService) findRun(ctx context.Context, id uuid.UUID) (*entity.TrainRun, error) {
	run, err := s.repo.TrainRun.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find train run "+id.String(), err)
	}
	if run == nil {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id.String())
	}
	return run, nil
}
