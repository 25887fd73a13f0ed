package usecase

import (
	"context"
	"testing"
	"time"

	"train-booking/internal/data/entity"
	"train-booking/internal/dto/request"
	"train-booking/internal/dto/response"
	"train-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const testHoldTTL = 10 * time.Minute

var testNow = time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)

type fixture struct {
	store    *memStore
	svc      *Service
	pub      *recordingPublisher
	run      uuid.UUID
	stations []uuid.UUID
	car      uuid.UUID
	seats    []uuid.UUID
}

// newFixture builds one run calling at stops stations in order, with one
// car of seats seats. A ceiling below zero leaves the run on the default.
func newFixture(t *testing.T, stops, seats, ceiling int) *fixture {
	t.Helper()

	store := newMemStore()
	f := &fixture{
		store: store,
		pub:   &recordingPublisher{},
		run:   uuid.New(),
		car:   uuid.New(),
	}

	run := &entity.TrainRun{ID: f.run, TrainID: uuid.New(), RunDate: testNow}
	if ceiling >= 0 {
		run.StandingCeiling = &ceiling
	}
	store.runs[f.run] = run

	for i := 0; i < stops; i++ {
		station := uuid.New()
		f.stations = append(f.stations, station)
		store.stops[f.run] = append(store.stops[f.run], &entity.ScheduleStop{
			TrainRunID:    f.run,
			StationID:     station,
			PositionIndex: i,
		})
	}

	store.cars[f.car] = &entity.Car{ID: f.car, TrainID: run.TrainID, CarNumber: 1, SeatClass: entity.SeatClassStandard}
	columns := []string{"A", "B", "C", "D"}
	for i := 0; i < seats; i++ {
		seat := &entity.Seat{
			ID:         uuid.New(),
			CarID:      f.car,
			SeatRow:    i/len(columns) + 1,
			SeatColumn: columns[i%len(columns)],
			SeatType:   entity.SeatTypeWindow,
		}
		store.seats[seat.ID] = seat
		f.seats = append(f.seats, seat.ID)
	}

	config := &utils.Config{
		Reservation: utils.ReservationConfig{
			HoldTTL:                testHoldTTL,
			SweepInterval:          time.Minute,
			DefaultStandingCeiling: 4,
		},
	}
	f.svc = NewService(store.repository(), config, nil, f.pub, zap.NewNop())
	f.setNow(testNow)
	return f
}

func (f *fixture) setNow(now time.Time) {
	clock := func() time.Time { return now }
	f.svc.Reservation.(*reservationService).now = clock
	f.svc.Sweeper.now = clock
}

func (f *fixture) reserveSeat(seat, dep, arr int) (*response.SeatReservationResponse, error) {
	return f.svc.Reservation.ReserveSeat(context.Background(), f.run.String(), &request.ReserveSeatRequest{
		SeatID:             f.seats[seat].String(),
		DepartureStationID: f.stations[dep].String(),
		ArrivalStationID:   f.stations[arr].String(),
		PassengerType:      string(entity.PassengerAdult),
	})
}

func (f *fixture) reserveStanding(dep, arr int) (*response.StandingReservationResponse, error) {
	return f.svc.Reservation.ReserveStanding(context.Background(), f.run.String(), &request.ReserveStandingRequest{
		DepartureStationID: f.stations[dep].String(),
		ArrivalStationID:   f.stations[arr].String(),
	})
}

func (f *fixture) availability(dep, arr int) (*response.SectionAvailabilityResponse, error) {
	return f.svc.Availability.QuerySectionAvailability(context.Background(), f.run.String(),
		f.stations[dep].String(), f.stations[arr].String())
}

func newFixtureConfig() *utils.Config {
	return &utils.Config{
		Reservation: utils.ReservationConfig{
			HoldTTL:                testHoldTTL,
			SweepInterval:          time.Minute,
			DefaultStandingCeiling: 4,
		},
	}
}
