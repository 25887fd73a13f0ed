package usecase

import (
	"context"
	"fmt"

	"train-booking/internal/data/cache"
	"train-booking/internal/data/entity"
	"train-booking/internal/data/repository"
	"train-booking/internal/dto/response"
	"train-booking/internal/segment"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TopologyService exposes the published stop sequence of a run. Stop
// sequences are immutable once published, which makes them safe to cache.
type TopologyService interface {
	GetStops(ctx context.Context, runID string) ([]response.StopResponse, error)
}

type topologyService struct {
	repo  *repository.Repository
	cache cache.TopologyCache // nil disables caching
	log   *zap.Logger
}

func newTopologyService(repo *repository.Repository, cache cache.TopologyCache, log *zap.Logger) *topologyService {
	return &topologyService{
		repo:  repo,
		cache: cache,
		log:   log.With(zap.String("service", "topology")),
	}
}

func (s *topologyService) GetStops(ctx context.Context, runID string) ([]response.StopResponse, error) {
	id, err := parseID("train_run_id", runID)
	if err != nil {
		return nil, err
	}

	stops, err := s.stopSequence(ctx, id)
	if err != nil {
		return nil, err
	}

	out := make([]response.StopResponse, 0, len(stops))
	for _, stop := range stops {
		out = append(out, response.StopToResponse(stop))
	}
	return out, nil
}

func (s *topologyService) stopSequence(ctx context.Context, runID uuid.UUID) ([]*entity.ScheduleStop, error) {
	if s.cache != nil {
		stops, ok, err := s.cache.Get(ctx, runID)
		if err != nil {
			s.log.Warn("Topology cache read failed, falling back to store",
				zap.Error(err),
				zap.String("train_run_id", runID.String()),
			)
		}
		if ok {
			return stops, nil
		}
	}

	stops, err := s.repo.Schedule.FindStopsByRun(ctx, runID)
	if err != nil {
		return nil, storeErr("load stop sequence of run "+runID.String(), err)
	}

	if len(stops) == 0 {
		run, err := s.repo.TrainRun.FindByID(ctx, runID)
		if err != nil {
			return nil, storeErr("find train run "+runID.String(), err)
		}
		if run == nil {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID.String())
		}
		return stops, nil
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, runID, stops); err != nil {
			s.log.Warn("Failed to cache stop sequence",
				zap.Error(err),
				zap.String("train_run_id", runID.String()),
			)
		}
	}
	return stops, nil
}

// resolve maps a station pair to its position interval on the run. Stations
// that are not stops of the run, and reversed pairs, are invalid segments.
func (s *topologyService) resolve(ctx context.Context, runID, depStationID, arrStationID uuid.UUID) (segment.Interval, error) {
	stops, err := s.stopSequence(ctx, runID)
	if err != nil {
		return segment.Interval{}, err
	}

	dep, arr := -1, -1
	for _, stop := range stops {
		switch stop.StationID {
		case depStationID:
			dep = stop.PositionIndex
		case arrStationID:
			arr = stop.PositionIndex
		}
	}
	if dep < 0 {
		return segment.Interval{}, fmt.Errorf("%w: station %s is not a stop of run %s", ErrInvalidSegment, depStationID.String(), runID.String())
	}
	if arr < 0 {
		return segment.Interval{}, fmt.Errorf("%w: station %s is not a stop of run %s", ErrInvalidSegment, arrStationID.String(), runID.String())
	}

	return segment.New(dep, arr)
}
