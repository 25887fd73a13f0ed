package usecase

import (
	"context"
	"fmt"
	"time"

	"train-booking/internal/data/entity"
	"train-booking/internal/data/repository"
	"train-booking/internal/dto/request"
	"train-booking/internal/dto/response"
	"train-booking/internal/segment"
	"train-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReservationService grants and gives back seat and standing holds. Every
// write that could break seat exclusivity or the standing ceiling runs in
// one transaction behind a lock on the contended resource.
type ReservationService interface {
	ReserveSeat(ctx context.Context, runID string, req *request.ReserveSeatRequest) (*response.SeatReservationResponse, error)
	CancelSeatReservation(ctx context.Context, id string, expectedVersion *int64) error
	ConfirmSeatReservation(ctx context.Context, id string, expectedVersion *int64) (*response.SeatReservationResponse, error)
	GetSeatReservation(ctx context.Context, id string) (*response.SeatReservationResponse, error)

	ReserveStanding(ctx context.Context, runID string, req *request.ReserveStandingRequest) (*response.StandingReservationResponse, error)
	CancelStandingReservation(ctx context.Context, id string) error
	ConfirmStandingReservation(ctx context.Context, id string) (*response.StandingReservationResponse, error)
	GetStandingReservation(ctx context.Context, id string) (*response.StandingReservationResponse, error)

	// ReleaseReservation cancels every active hold of one booking.
	ReleaseReservation(ctx context.Context, reservationID string) (*response.ReleaseResponse, error)
}

type reservationService struct {
	repo     *repository.Repository
	topology *topologyService
	config   utils.ReservationConfig
	now      func() time.Time
	log      *zap.Logger
}

func newReservationService(repo *repository.Repository, topology *topologyService, config utils.ReservationConfig, log *zap.Logger) *reservationService {
	return &reservationService{
		repo:     repo,
		topology: topology,
		config:   config,
		now:      time.Now,
		log:      log.With(zap.String("service", "reservation")),
	}
}

func (s *reservationService) ReserveSeat(ctx context.Context, runID string, req *request.ReserveSeatRequest) (*response.SeatReservationResponse, error) {
	depID, arrID, err := parseSegment(req.DepartureStationID, req.ArrivalStationID)
	if err != nil {
		return nil, err
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Reserve seat validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, utils.FormatValidationErrors(errs))
	}

	run, err := parseID("train_run_id", runID)
	if err != nil {
		return nil, err
	}
	seatID, err := parseID("seat_id", req.SeatID)
	if err != nil {
		return nil, err
	}
	reservationID, err := parseOptionalID("reservation_id", req.ReservationID)
	if err != nil {
		return nil, err
	}

	window, err := s.topology.resolve(ctx, run, depID, arrID)
	if err != nil {
		return nil, err
	}

	seat, err := s.repo.Seat.FindForRun(ctx, run, seatID)
	if err != nil {
		return nil, storeErr("find seat "+seatID.String(), err)
	}
	if seat == nil {
		return nil, fmt.Errorf("%w: seat %s is not part of run %s", ErrSeatNotFound, seatID.String(), runID)
	}

	now := s.now().UTC()
	sr := &entity.SeatReservation{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Versioned:          entity.Versioned{Version: 1},
		TrainRunID:         run,
		SeatID:             seatID,
		ReservationID:      reservationID,
		PassengerType:      entity.PassengerType(req.PassengerType),
		Status:             entity.StatusReserved,
		DepartureStationID: depID,
		ArrivalStationID:   arrID,
		ReservedAt:         &now,
		CarID:              seat.CarID,
		DeparturePos:       window.Dep,
		ArrivalPos:         window.Arr,
	}

	err = s.repo.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.SeatReservation.LockSeat(ctx, run, seatID); err != nil {
			return storeErr("lock seat "+seatID.String(), err)
		}

		active, err := s.repo.SeatReservation.FindActiveBySeat(ctx, run, seatID)
		if err != nil {
			return storeErr("read holds of seat "+seatID.String(), err)
		}
		for _, held := range active {
			if window.Overlaps(segment.Interval{Dep: held.DeparturePos, Arr: held.ArrivalPos}) {
				return fmt.Errorf("%w: seat %s is held over [%d,%d), requested %s",
					ErrSeatUnavailable, seatID.String(), held.DeparturePos, held.ArrivalPos, window.String())
			}
		}

		if err := s.repo.SeatReservation.Create(ctx, sr); err != nil {
			return storeErr("insert seat hold", err)
		}
		return nil
	})
	if err = txErr("reserve seat "+seatID.String(), err); err != nil {
		return nil, err
	}

	s.log.Info("Seat reserved",
		zap.String("seat_reservation_id", sr.ID.String()),
		zap.String("train_run_id", runID),
		zap.String("seat_id", seatID.String()),
		zap.Stringer("segment", window),
	)
	return response.SeatReservationToResponse(sr), nil
}

func (s *reservationService) CancelSeatReservation(ctx context.Context, id string, expectedVersion *int64) error {
	srID, err := parseID("seat_reservation_id", id)
	if err != nil {
		return err
	}

	err = applyVersioned(ctx, expectedVersion,
		s.seatState(srID),
		releasedOK,
		func(ctx context.Context, version int64) (bool, error) {
			ok, err := s.repo.SeatReservation.Release(ctx, srID, version)
			if err != nil {
				return false, storeErr("release seat hold "+id, err)
			}
			return ok, nil
		},
	)
	if err != nil {
		return err
	}

	s.log.Info("Seat reservation cancelled", zap.String("seat_reservation_id", id))
	return nil
}

func (s *reservationService) ConfirmSeatReservation(ctx context.Context, id string, expectedVersion *int64) (*response.SeatReservationResponse, error) {
	srID, err := parseID("seat_reservation_id", id)
	if err != nil {
		return nil, err
	}

	err = applyVersioned(ctx, expectedVersion,
		s.seatState(srID),
		lockedOK,
		func(ctx context.Context, version int64) (bool, error) {
			ok, err := s.repo.SeatReservation.Confirm(ctx, srID, version)
			if err != nil {
				return false, storeErr("confirm seat hold "+id, err)
			}
			return ok, nil
		},
	)
	if err != nil {
		return nil, err
	}

	s.log.Info("Seat reservation confirmed", zap.String("seat_reservation_id", id))
	return s.GetSeatReservation(ctx, id)
}

func (s *reservationService) GetSeatReservation(ctx context.Context, id string) (*response.SeatReservationResponse, error) {
	srID, err := parseID("seat_reservation_id", id)
	if err != nil {
		return nil, err
	}

	sr, err := s.repo.SeatReservation.FindByID(ctx, srID)
	if err != nil {
		return nil, storeErr("find seat reservation "+id, err)
	}
	if sr == nil {
		return nil, fmt.Errorf("%w: seat reservation %s", ErrReservationNotFound, id)
	}
	return response.SeatReservationToResponse(sr), nil
}

func (s *reservationService) seatState(id uuid.UUID) stateLoader {
	return func(ctx context.Context) (entity.ReservationStatus, int64, error) {
		sr, err := s.repo.SeatReservation.FindByID(ctx, id)
		if err != nil {
			return "", 0, storeErr("find seat reservation "+id.String(), err)
		}
		if sr == nil {
			return "", 0, fmt.Errorf("%w: seat reservation %s", ErrReservationNotFound, id.String())
		}
		return sr.Status, sr.Version, nil
	}
}

func (s *reservationService) ReserveStanding(ctx context.Context, runID string, req *request.ReserveStandingRequest) (*response.StandingReservationResponse, error) {
	depID, arrID, err := parseSegment(req.DepartureStationID, req.ArrivalStationID)
	if err != nil {
		return nil, err
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Reserve standing validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, utils.FormatValidationErrors(errs))
	}

	run, err := parseID("train_run_id", runID)
	if err != nil {
		return nil, err
	}
	reservationID, err := parseOptionalID("reservation_id", req.ReservationID)
	if err != nil {
		return nil, err
	}

	window, err := s.topology.resolve(ctx, run, depID, arrID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	st := &entity.StandingReservation{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Versioned:          entity.Versioned{Version: 1},
		TrainRunID:         run,
		ReservationID:      reservationID,
		Status:             entity.StatusReserved,
		DepartureStationID: depID,
		ArrivalStationID:   arrID,
		ReservedAt:         &now,
		DeparturePos:       window.Dep,
		ArrivalPos:         window.Arr,
	}

	err = s.repo.Tx.WithinTx(ctx, func(ctx context.Context) error {
		tr, err := s.repo.TrainRun.FindByIDForUpdate(ctx, run)
		if err != nil {
			return storeErr("lock train run "+runID, err)
		}
		if tr == nil {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}

		active, err := s.repo.StandingReservation.FindActiveByRun(ctx, run)
		if err != nil {
			return storeErr("read standing holds of run "+runID, err)
		}

		ceiling := tr.Ceiling(s.config.DefaultStandingCeiling)
		peak := segment.PeakOverlap(window, standingIntervals(active))
		if peak >= ceiling {
			return fmt.Errorf("%w: %d of %d standing places taken on %s",
				ErrStandingCapacityExceeded, peak, ceiling, window.String())
		}

		if err := s.repo.StandingReservation.Create(ctx, st); err != nil {
			return storeErr("insert standing hold", err)
		}
		return nil
	})
	if err = txErr("reserve standing on run "+runID, err); err != nil {
		return nil, err
	}

	s.log.Info("Standing reserved",
		zap.String("standing_reservation_id", st.ID.String()),
		zap.String("train_run_id", runID),
		zap.Stringer("segment", window),
	)
	return response.StandingReservationToResponse(st), nil
}

func (s *reservationService) CancelStandingReservation(ctx context.Context, id string) error {
	stID, err := parseID("standing_reservation_id", id)
	if err != nil {
		return err
	}

	err = applyVersioned(ctx, nil,
		s.standingState(stID),
		releasedOK,
		func(ctx context.Context, version int64) (bool, error) {
			ok, err := s.repo.StandingReservation.Release(ctx, stID, version)
			if err != nil {
				return false, storeErr("release standing hold "+id, err)
			}
			return ok, nil
		},
	)
	if err != nil {
		return err
	}

	s.log.Info("Standing reservation cancelled", zap.String("standing_reservation_id", id))
	return nil
}

func (s *reservationService) ConfirmStandingReservation(ctx context.Context, id string) (*response.StandingReservationResponse, error) {
	stID, err := parseID("standing_reservation_id", id)
	if err != nil {
		return nil, err
	}

	err = applyVersioned(ctx, nil,
		s.standingState(stID),
		lockedOK,
		func(ctx context.Context, version int64) (bool, error) {
			ok, err := s.repo.StandingReservation.Confirm(ctx, stID, version)
			if err != nil {
				return false, storeErr("confirm standing hold "+id, err)
			}
			return ok, nil
		},
	)
	if err != nil {
		return nil, err
	}

	s.log.Info("Standing reservation confirmed", zap.String("standing_reservation_id", id))
	return s.GetStandingReservation(ctx, id)
}

func (s *reservationService) GetStandingReservation(ctx context.Context, id string) (*response.StandingReservationResponse, error) {
	stID, err := parseID("standing_reservation_id", id)
	if err != nil {
		return nil, err
	}

	st, err := s.repo.StandingReservation.FindByID(ctx, stID)
	if err != nil {
		return nil, storeErr("find standing reservation "+id, err)
	}
	if st == nil {
		return nil, fmt.Errorf("%w: standing reservation %s", ErrReservationNotFound, id)
	}
	return response.StandingReservationToResponse(st), nil
}

func (s *reservationService) standingState(id uuid.UUID) stateLoader {
	return func(ctx context.Context) (entity.ReservationStatus, int64, error) {
		st, err := s.repo.StandingReservation.FindByID(ctx, id)
		if err != nil {
			return "", 0, storeErr("find standing reservation "+id.String(), err)
		}
		if st == nil {
			return "", 0, fmt.Errorf("%w: standing reservation %s", ErrReservationNotFound, id.String())
		}
		return st.Status, st.Version, nil
	}
}

func (s *reservationService) ReleaseReservation(ctx context.Context, reservationID string) (*response.ReleaseResponse, error) {
	id, err := parseID("reservation_id", reservationID)
	if err != nil {
		return nil, err
	}

	seats, err := s.repo.SeatReservation.FindActiveByReservation(ctx, id)
	if err != nil {
		return nil, storeErr("find seat holds of reservation "+reservationID, err)
	}
	standing, err := s.repo.StandingReservation.FindActiveByReservation(ctx, id)
	if err != nil {
		return nil, storeErr("find standing holds of reservation "+reservationID, err)
	}

	out := &response.ReleaseResponse{ReservationID: reservationID}
	for _, sr := range seats {
		if err := s.CancelSeatReservation(ctx, sr.ID.String(), nil); err != nil {
			return out, err
		}
		out.SeatHolds++
	}
	for _, st := range standing {
		if err := s.CancelStandingReservation(ctx, st.ID.String()); err != nil {
			return out, err
		}
		out.StandingHolds++
	}

	s.log.Info("Reservation holds released",
		zap.String("reservation_id", reservationID),
		zap.Int("seat_holds", out.SeatHolds),
		zap.Int("standing_holds", out.StandingHolds),
	)
	return out, nil
}

func standingIntervals(rows []*entity.StandingReservation) []segment.Interval {
	out := make([]segment.Interval, 0, len(rows))
	for _, st := range rows {
		out = append(out, segment.Interval{Dep: st.DeparturePos, Arr: st.ArrivalPos})
	}
	return out
}
