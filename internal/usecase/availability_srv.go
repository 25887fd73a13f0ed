package usecase

import (
	"context"
	"fmt"

	"train-booking/internal/data/repository"
	"train-booking/internal/dto/response"
	"train-booking/internal/segment"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AvailabilityService answers read-only queries. It takes no locks, so a
// result is a snapshot that a concurrent reserve may already have changed.
type AvailabilityService interface {
	QuerySectionAvailability(ctx context.Context, runID, depStationID, arrStationID string) (*response.SectionAvailabilityResponse, error)
	QuerySeatMap(ctx context.Context, runID, carID, depStationID, arrStationID string) (*response.SeatMapResponse, error)
}

type availabilityService struct {
	repo     *repository.Repository
	topology *topologyService
	standing *standingService
	log      *zap.Logger
}

func newAvailabilityService(repo *repository.Repository, topology *topologyService, standing *standingService, log *zap.Logger) *availabilityService {
	return &availabilityService{
		repo:     repo,
		topology: topology,
		standing: standing,
		log:      log.With(zap.String("service", "availability")),
	}
}

func (s *availabilityService) QuerySectionAvailability(ctx context.Context, runID, depStationID, arrStationID string) (*response.SectionAvailabilityResponse, error) {
	depID, arrID, err := parseSegment(depStationID, arrStationID)
	if err != nil {
		return nil, err
	}
	id, err := parseID("train_run_id", runID)
	if err != nil {
		return nil, err
	}

	run, err := s.standing.findRun(ctx, id)
	if err != nil {
		return nil, err
	}
	window, err := s.topology.resolve(ctx, id, depID, arrID)
	if err != nil {
		return nil, err
	}

	cars, err := s.repo.Seat.FindCarsByRun(ctx, id)
	if err != nil {
		return nil, storeErr("find cars of run "+runID, err)
	}
	taken, err := s.takenSeats(ctx, id, window)
	if err != nil {
		return nil, err
	}

	takenByCar := make(map[uuid.UUID]int)
	for _, carID := range taken {
		takenByCar[carID]++
	}

	out := &response.SectionAvailabilityResponse{
		TrainRunID:         runID,
		DepartureStationID: depID.String(),
		ArrivalStationID:   arrID.String(),
		Cars:               make([]response.CarAvailabilityResponse, 0, len(cars)),
	}
	for _, car := range cars {
		out.Cars = append(out.Cars, response.CarAvailabilityResponse{
			CarID:          car.ID.String(),
			CarNumber:      car.CarNumber,
			SeatClass:      car.SeatClass,
			TotalSeats:     car.TotalSeats,
			RemainingSeats: max(0, car.TotalSeats-takenByCar[car.ID]),
		})
	}

	out.StandingRemaining, err = s.standing.remaining(ctx, run, window)
	if err != nil {
		return nil, err
	}

	s.log.Debug("Section availability computed",
		zap.String("train_run_id", runID),
		zap.Stringer("segment", window),
		zap.Int("cars", len(out.Cars)),
		zap.Int("standing_remaining", out.StandingRemaining),
	)
	return out, nil
}

func (s *availabilityService) QuerySeatMap(ctx context.Context, runID, carID, depStationID, arrStationID string) (*response.SeatMapResponse, error) {
	depID, arrID, err := parseSegment(depStationID, arrStationID)
	if err != nil {
		return nil, err
	}
	id, err := parseID("train_run_id", runID)
	if err != nil {
		return nil, err
	}
	car, err := parseID("car_id", carID)
	if err != nil {
		return nil, err
	}

	window, err := s.topology.resolve(ctx, id, depID, arrID)
	if err != nil {
		return nil, err
	}

	seats, err := s.repo.Seat.FindByCar(ctx, id, car)
	if err != nil {
		return nil, storeErr("find seats of car "+carID, err)
	}
	if len(seats) == 0 {
		return nil, fmt.Errorf("%w: car %s has no seats on run %s", ErrCarNotFound, carID, runID)
	}

	taken, err := s.takenSeats(ctx, id, window)
	if err != nil {
		return nil, err
	}

	out := &response.SeatMapResponse{
		TrainRunID: runID,
		CarID:      carID,
		Seats:      make([]response.SeatStatusResponse, 0, len(seats)),
	}
	for _, seat := range seats {
		_, held := taken[seat.ID]
		out.Seats = append(out.Seats, response.SeatStatusResponse{
			SeatID:    seat.ID.String(),
			Label:     seat.Label(),
			SeatType:  seat.SeatType,
			Available: !held,
		})
	}
	return out, nil
}

// takenSeats maps every seat with an active hold overlapping window to its car.
func (s *availabilityService) takenSeats(ctx context.Context, runID uuid.UUID, window segment.Interval) (map[uuid.UUID]uuid.UUID, error) {
	active, err := s.repo.SeatReservation.FindActiveByRun(ctx, runID)
	if err != nil {
		return nil, storeErr("read seat holds of run "+runID.String(), err)
	}

	taken := make(map[uuid.UUID]uuid.UUID)
	for _, sr := range active {
		if window.Overlaps(segment.Interval{Dep: sr.DeparturePos, Arr: sr.ArrivalPos}) {
			taken[sr.SeatID] = sr.CarID
		}
	}
	return taken, nil
}
