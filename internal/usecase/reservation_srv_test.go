package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"train-booking/internal/data/entity"
	"train-booking/internal/data/repository"
	"train-booking/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReserveSeatBackToBackSegments(t *testing.T) {
	f := newFixture(t, 4, 1, -1)

	first, err := f.reserveSeat(0, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusReserved, first.Status)
	assert.Equal(t, int64(1), first.Version)
	assert.Equal(t, 0, first.DeparturePosition)
	assert.Equal(t, 1, first.ArrivalPosition)
	assert.Equal(t, f.car.String(), first.CarID)

	_, err = f.reserveSeat(0, 1, 3)
	require.NoError(t, err, "a segment starting where another ends must be granted")

	_, err = f.reserveSeat(0, 0, 2)
	assert.ErrorIs(t, err, ErrSeatUnavailable)
}

func TestReserveSeatRejectsInvalidSegments(t *testing.T) {
	f := newFixture(t, 4, 1, -1)

	_, err := f.reserveSeat(0, 2, 1)
	assert.ErrorIs(t, err, ErrInvalidSegment, "reversed")

	_, err = f.svc.Reservation.ReserveSeat(context.Background(), f.run.String(), &request.ReserveSeatRequest{
		SeatID:             f.seats[0].String(),
		DepartureStationID: uuid.NewString(),
		ArrivalStationID:   f.stations[1].String(),
		PassengerType:      "ADULT",
	})
	assert.ErrorIs(t, err, ErrInvalidSegment, "unknown station")
}

func TestSameStationRejectedBeforeStoreAccess(t *testing.T) {
	// every repository is nil: touching the store would panic
	svc := NewService(&repository.Repository{}, newFixtureConfig(), nil, nil, zap.NewNop())
	station := uuid.NewString()

	_, err := svc.Reservation.ReserveSeat(context.Background(), uuid.NewString(), &request.ReserveSeatRequest{
		SeatID:             uuid.NewString(),
		DepartureStationID: station,
		ArrivalStationID:   station,
		PassengerType:      "ADULT",
	})
	assert.ErrorIs(t, err, ErrInvalidSegment)

	_, err = svc.Reservation.ReserveStanding(context.Background(), uuid.NewString(), &request.ReserveStandingRequest{
		DepartureStationID: station,
		ArrivalStationID:   station,
	})
	assert.ErrorIs(t, err, ErrInvalidSegment)

	_, err = svc.Availability.QuerySectionAvailability(context.Background(), uuid.NewString(), station, station)
	assert.ErrorIs(t, err, ErrInvalidSegment)
}

func TestReserveSeatValidation(t *testing.T) {
	f := newFixture(t, 4, 1, -1)

	_, err := f.svc.Reservation.ReserveSeat(context.Background(), f.run.String(), &request.ReserveSeatRequest{
		SeatID:             f.seats[0].String(),
		DepartureStationID: f.stations[0].String(),
		ArrivalStationID:   f.stations[1].String(),
		PassengerType:      "PILOT",
	})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = f.svc.Reservation.ReserveSeat(context.Background(), f.run.String(), &request.ReserveSeatRequest{
		SeatID:             uuid.NewString(),
		DepartureStationID: f.stations[0].String(),
		ArrivalStationID:   f.stations[1].String(),
		PassengerType:      "CHILD",
	})
	assert.ErrorIs(t, err, ErrSeatNotFound)

	_, err = f.svc.Reservation.ReserveSeat(context.Background(), uuid.NewString(), &request.ReserveSeatRequest{
		SeatID:             f.seats[0].String(),
		DepartureStationID: f.stations[0].String(),
		ArrivalStationID:   f.stations[1].String(),
		PassengerType:      "SENIOR",
	})
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestConcurrentSeatReservationsGrantExactlyOne(t *testing.T) {
	f := newFixture(t, 4, 1, -1)

	// every segment covers position 1, so all requests pairwise overlap
	segments := [][2]int{{0, 2}, {1, 2}, {1, 3}, {0, 3}, {0, 2}}
	const n = 40

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		granted   int
		conflicts int
		others    []error
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(seg [2]int) {
			defer wg.Done()
			<-start
			_, err := f.reserveSeat(0, seg[0], seg[1])

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				granted++
			case errors.Is(err, ErrSeatUnavailable):
				conflicts++
			default:
				others = append(others, err)
			}
		}(segments[i%len(segments)])
	}
	close(start)
	wg.Wait()

	assert.Empty(t, others)
	assert.Equal(t, 1, granted)
	assert.Equal(t, n-1, conflicts)
}

func TestConcurrentSeatReservationsOnDifferentSeats(t *testing.T) {
	f := newFixture(t, 4, 8, -1)

	var wg sync.WaitGroup
	errs := make([]error, len(f.seats))
	for i := range f.seats {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.reserveSeat(i, 0, 3)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "seat %d", i)
	}
}

func TestConcurrentStandingReservationsStayUnderCeiling(t *testing.T) {
	const ceiling = 5
	f := newFixture(t, 5, 0, ceiling)

	segments := [][2]int{{0, 2}, {1, 3}, {1, 4}, {0, 4}, {1, 2}}
	const n = ceiling + 7

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		granted  int
		rejected int
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(seg [2]int) {
			defer wg.Done()
			<-start
			_, err := f.reserveStanding(seg[0], seg[1])

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				granted++
				return
			}
			if assert.ErrorIs(t, err, ErrStandingCapacityExceeded) {
				rejected++
			}
		}(segments[i%len(segments)])
	}
	close(start)
	wg.Wait()

	assert.Equal(t, ceiling, granted)
	assert.Equal(t, n-ceiling, rejected)
}

func TestReserveStandingUsesDefaultCeiling(t *testing.T) {
	f := newFixture(t, 3, 0, -1)

	for i := 0; i < 4; i++ {
		_, err := f.reserveStanding(0, 2)
		require.NoError(t, err)
	}
	_, err := f.reserveStanding(1, 2)
	assert.ErrorIs(t, err, ErrStandingCapacityExceeded)

	// the default only covers [0,2); a back-to-back ride still fits
	f2 := newFixture(t, 4, 0, -1)
	for i := 0; i < 4; i++ {
		_, err := f2.reserveStanding(0, 2)
		require.NoError(t, err)
	}
	_, err = f2.reserveStanding(2, 3)
	assert.NoError(t, err)
}

func TestCancelSeatReservationIsIdempotent(t *testing.T) {
	f := newFixture(t, 4, 1, -1)

	sr, err := f.reserveSeat(0, 0, 3)
	require.NoError(t, err)

	require.NoError(t, f.svc.Reservation.CancelSeatReservation(context.Background(), sr.ID, &sr.Version))
	require.NoError(t, f.svc.Reservation.CancelSeatReservation(context.Background(), sr.ID, &sr.Version))

	got, err := f.svc.Reservation.GetSeatReservation(context.Background(), sr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAvailable, got.Status)
	assert.Equal(t, int64(2), got.Version)
	assert.Nil(t, got.ReservedAt)

	_, err = f.reserveSeat(0, 1, 2)
	assert.NoError(t, err, "a cancelled hold frees its segment")
}

func TestCancelSeatReservationRetriesOnceOnVersionConflict(t *testing.T) {
	f := newFixture(t, 4, 2, -1)

	sr, err := f.reserveSeat(0, 0, 3)
	require.NoError(t, err)

	f.store.bumpOnRelease = 1
	require.NoError(t, f.svc.Reservation.CancelSeatReservation(context.Background(), sr.ID, nil))

	other, err := f.reserveSeat(1, 0, 3)
	require.NoError(t, err)

	f.store.bumpOnRelease = 2
	err = f.svc.Reservation.CancelSeatReservation(context.Background(), other.ID, nil)
	assert.ErrorIs(t, err, ErrConcurrentModification)
}

func TestCancelSeatReservationWithStaleVersion(t *testing.T) {
	f := newFixture(t, 4, 1, -1)

	sr, err := f.reserveSeat(0, 0, 3)
	require.NoError(t, err)

	stale := sr.Version - 1
	require.NoError(t, f.svc.Reservation.CancelSeatReservation(context.Background(), sr.ID, &stale))

	got, err := f.svc.Reservation.GetSeatReservation(context.Background(), sr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAvailable, got.Status)
}

func TestCancelUnknownReservation(t *testing.T) {
	f := newFixture(t, 4, 1, -1)

	err := f.svc.Reservation.CancelSeatReservation(context.Background(), uuid.NewString(), nil)
	assert.ErrorIs(t, err, ErrReservationNotFound)

	err = f.svc.Reservation.CancelStandingReservation(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrReservationNotFound)

	err = f.svc.Reservation.CancelSeatReservation(context.Background(), "not-a-uuid", nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestConfirmSeatReservation(t *testing.T) {
	f := newFixture(t, 4, 1, -1)

	sr, err := f.reserveSeat(0, 0, 2)
	require.NoError(t, err)

	confirmed, err := f.svc.Reservation.ConfirmSeatReservation(context.Background(), sr.ID, &sr.Version)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusLocked, confirmed.Status)
	assert.Equal(t, int64(2), confirmed.Version)

	again, err := f.svc.Reservation.ConfirmSeatReservation(context.Background(), sr.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), again.Version)

	require.NoError(t, f.svc.Reservation.CancelSeatReservation(context.Background(), sr.ID, nil))
	_, err = f.svc.Reservation.ConfirmSeatReservation(context.Background(), sr.ID, nil)
	assert.ErrorIs(t, err, ErrHoldReleased)
}

func TestStandingCancelAndConfirm(t *testing.T) {
	f := newFixture(t, 3, 0, 1)

	st, err := f.reserveStanding(0, 2)
	require.NoError(t, err)

	_, err = f.reserveStanding(1, 2)
	require.ErrorIs(t, err, ErrStandingCapacityExceeded)

	confirmed, err := f.svc.Reservation.ConfirmStandingReservation(context.Background(), st.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusLocked, confirmed.Status)

	require.NoError(t, f.svc.Reservation.CancelStandingReservation(context.Background(), st.ID))
	require.NoError(t, f.svc.Reservation.CancelStandingReservation(context.Background(), st.ID))

	_, err = f.reserveStanding(1, 2)
	assert.NoError(t, err)

	_, err = f.svc.Reservation.ConfirmStandingReservation(context.Background(), st.ID)
	assert.ErrorIs(t, err, ErrHoldReleased)
}

func TestReleaseReservation(t *testing.T) {
	f := newFixture(t, 4, 3, -1)
	booking := uuid.New()

	for i := 0; i < 2; i++ {
		_, err := f.svc.Reservation.ReserveSeat(context.Background(), f.run.String(), &request.ReserveSeatRequest{
			SeatID:             f.seats[i].String(),
			DepartureStationID: f.stations[0].String(),
			ArrivalStationID:   f.stations[3].String(),
			ReservationID:      booking.String(),
			PassengerType:      "ADULT",
		})
		require.NoError(t, err)
	}
	_, err := f.svc.Reservation.ReserveStanding(context.Background(), f.run.String(), &request.ReserveStandingRequest{
		DepartureStationID: f.stations[1].String(),
		ArrivalStationID:   f.stations[2].String(),
		ReservationID:      booking.String(),
	})
	require.NoError(t, err)

	unrelated, err := f.reserveSeat(2, 0, 3)
	require.NoError(t, err)

	out, err := f.svc.Reservation.ReleaseReservation(context.Background(), booking.String())
	require.NoError(t, err)
	assert.Equal(t, 2, out.SeatHolds)
	assert.Equal(t, 1, out.StandingHolds)

	kept, err := f.svc.Reservation.GetSeatReservation(context.Background(), unrelated.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusReserved, kept.Status)

	out, err = f.svc.Reservation.ReleaseReservation(context.Background(), booking.String())
	require.NoError(t, err)
	assert.Zero(t, out.SeatHolds+out.StandingHolds)
}

func TestStoreFailureSurfacesAsUnavailable(t *testing.T) {
	f := newFixture(t, 4, 1, -1)
	f.store.activeErr = errors.New("connection reset by peer")

	_, err := f.reserveSeat(0, 0, 1)
	require.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Contains(t, err.Error(), f.seats[0].String())

	_, err = f.reserveStanding(0, 1)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = f.availability(0, 1)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
