package usecase

import (
	"context"
	"sync"
	"time"

	"train-booking/internal/data/entity"
	"train-booking/internal/data/repository"
	"train-booking/internal/event"

	"github.com/google/uuid"
)

// memStore is an in-memory stand-in for the Postgres repositories. Its
// transactor holds keyed mutexes until WithinTx returns, the same way the
// advisory lock and the run row lock are held until commit.
type memStore struct {
	mu       sync.Mutex
	runs     map[uuid.UUID]*entity.TrainRun
	stops    map[uuid.UUID][]*entity.ScheduleStop
	cars     map[uuid.UUID]*entity.Car
	seats    map[uuid.UUID]*entity.Seat
	seatRes  map[uuid.UUID]*entity.SeatReservation
	standRes map[uuid.UUID]*entity.StandingReservation

	stopReads     int
	bumpOnRelease int
	activeErr     error
	expirePanics  int

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

func newMemStore() *memStore {
	return &memStore{
		runs:     make(map[uuid.UUID]*entity.TrainRun),
		stops:    make(map[uuid.UUID][]*entity.ScheduleStop),
		cars:     make(map[uuid.UUID]*entity.Car),
		seats:    make(map[uuid.UUID]*entity.Seat),
		seatRes:  make(map[uuid.UUID]*entity.SeatReservation),
		standRes: make(map[uuid.UUID]*entity.StandingReservation),
		locks:    make(map[string]*sync.Mutex),
	}
}

func (m *memStore) repository() *repository.Repository {
	return &repository.Repository{
		Tx:                  memTx{m},
		TrainRun:            memTrainRuns{m},
		Schedule:            memSchedule{m},
		Seat:                memSeats{m},
		SeatReservation:     memSeatReservations{m},
		StandingReservation: memStandingReservations{m},
	}
}

type memTxKey struct{}

type memTxState struct {
	unlock []func()
}

type memTx struct{ m *memStore }

func (t memTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(memTxKey{}).(*memTxState); ok {
		return fn(ctx)
	}
	state := &memTxState{}
	defer func() {
		for i := len(state.unlock) - 1; i >= 0; i-- {
			state.unlock[i]()
		}
	}()
	return fn(context.WithValue(ctx, memTxKey{}, state))
}

// lock holds key until the transaction in ctx ends. Outside a transaction
// it does nothing, like a lock taken in autocommit mode.
func (m *memStore) lock(ctx context.Context, key string) {
	state, ok := ctx.Value(memTxKey{}).(*memTxState)
	if !ok {
		return
	}
	m.lockMu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	m.lockMu.Unlock()

	l.Lock()
	state.unlock = append(state.unlock, l.Unlock)
}

type memTrainRuns struct{ m *memStore }

func (r memTrainRuns) FindByID(_ context.Context, id uuid.UUID) (*entity.TrainRun, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	run, ok := r.m.runs[id]
	if !ok {
		return nil, nil
	}
	cp := *run
	return &cp, nil
}

func (r memTrainRuns) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.TrainRun, error) {
	r.m.lock(ctx, "run:"+id.String())
	return r.FindByID(ctx, id)
}

type memSchedule struct{ m *memStore }

func (r memSchedule) FindStopsByRun(_ context.Context, runID uuid.UUID) ([]*entity.ScheduleStop, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.stopReads++
	return r.m.stops[runID], nil
}

type memSeats struct{ m *memStore }

func (r memSeats) FindForRun(_ context.Context, runID, seatID uuid.UUID) (*entity.Seat, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.runs[runID]; !ok {
		return nil, nil
	}
	seat, ok := r.m.seats[seatID]
	if !ok {
		return nil, nil
	}
	cp := *seat
	return &cp, nil
}

func (r memSeats) FindCarsByRun(_ context.Context, runID uuid.UUID) ([]*entity.Car, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.Car
	for _, car := range r.m.cars {
		cp := *car
		for _, seat := range r.m.seats {
			if seat.CarID == car.ID {
				cp.TotalSeats++
			}
		}
		out = append(out, &cp)
	}
	return out, nil
}

func (r memSeats) FindByCar(_ context.Context, runID, carID uuid.UUID) ([]*entity.Seat, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.Seat
	for _, seat := range r.m.seats {
		if seat.CarID == carID {
			cp := *seat
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memSeatReservations struct{ m *memStore }

func (r memSeatReservations) LockSeat(ctx context.Context, runID, seatID uuid.UUID) error {
	r.m.lock(ctx, runID.String()+":"+seatID.String())
	return nil
}

func (r memSeatReservations) Create(_ context.Context, sr *entity.SeatReservation) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *sr
	r.m.seatRes[sr.ID] = &cp
	return nil
}

func (r memSeatReservations) FindByID(_ context.Context, id uuid.UUID) (*entity.SeatReservation, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	sr, ok := r.m.seatRes[id]
	if !ok {
		return nil, nil
	}
	cp := *sr
	return &cp, nil
}

func (r memSeatReservations) findActive(match func(*entity.SeatReservation) bool) ([]*entity.SeatReservation, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.activeErr != nil {
		return nil, r.m.activeErr
	}
	var out []*entity.SeatReservation
	for _, sr := range r.m.seatRes {
		if sr.Status.Active() && match(sr) {
			cp := *sr
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memSeatReservations) FindActiveBySeat(_ context.Context, runID, seatID uuid.UUID) ([]*entity.SeatReservation, error) {
	return r.findActive(func(sr *entity.SeatReservation) bool {
		return sr.TrainRunID == runID && sr.SeatID == seatID
	})
}

func (r memSeatReservations) FindActiveByRun(_ context.Context, runID uuid.UUID) ([]*entity.SeatReservation, error) {
	return r.findActive(func(sr *entity.SeatReservation) bool { return sr.TrainRunID == runID })
}

func (r memSeatReservations) FindActiveByReservation(_ context.Context, reservationID uuid.UUID) ([]*entity.SeatReservation, error) {
	return r.findActive(func(sr *entity.SeatReservation) bool {
		return sr.ReservationID != nil && *sr.ReservationID == reservationID
	})
}

func (r memSeatReservations) Release(_ context.Context, id uuid.UUID, version int64) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	sr, ok := r.m.seatRes[id]
	if !ok {
		return false, nil
	}
	if r.m.bumpOnRelease > 0 {
		r.m.bumpOnRelease--
		sr.Version++
		return false, nil
	}
	if sr.Version != version || !sr.Status.Active() {
		return false, nil
	}
	sr.Status = entity.StatusAvailable
	sr.ReservedAt = nil
	sr.ReservationID = nil
	sr.Version++
	return true, nil
}

func (r memSeatReservations) Confirm(_ context.Context, id uuid.UUID, version int64) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	sr, ok := r.m.seatRes[id]
	if !ok || sr.Version != version || sr.Status != entity.StatusReserved {
		return false, nil
	}
	sr.Status = entity.StatusLocked
	sr.Version++
	return true, nil
}

func (r memSeatReservations) ExpireHolds(_ context.Context, cutoff time.Time) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.expirePanics > 0 {
		r.m.expirePanics--
		panic("seat table gone")
	}
	var n int64
	for _, sr := range r.m.seatRes {
		if sr.Status == entity.StatusReserved && sr.ReservedAt != nil && sr.ReservedAt.Before(cutoff) {
			sr.Status = entity.StatusAvailable
			sr.ReservedAt = nil
			sr.ReservationID = nil
			sr.Version++
			n++
		}
	}
	return n, nil
}

type memStandingReservations struct{ m *memStore }

func (r memStandingReservations) Create(_ context.Context, st *entity.StandingReservation) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *st
	r.m.standRes[st.ID] = &cp
	return nil
}

func (r memStandingReservations) FindByID(_ context.Context, id uuid.UUID) (*entity.StandingReservation, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st, ok := r.m.standRes[id]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (r memStandingReservations) findActive(match func(*entity.StandingReservation) bool) ([]*entity.StandingReservation, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.activeErr != nil {
		return nil, r.m.activeErr
	}
	var out []*entity.StandingReservation
	for _, st := range r.m.standRes {
		if st.Status.Active() && match(st) {
			cp := *st
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memStandingReservations) FindActiveByRun(_ context.Context, runID uuid.UUID) ([]*entity.StandingReservation, error) {
	return r.findActive(func(st *entity.StandingReservation) bool { return st.TrainRunID == runID })
}

func (r memStandingReservations) FindActiveByReservation(_ context.Context, reservationID uuid.UUID) ([]*entity.StandingReservation, error) {
	return r.findActive(func(st *entity.StandingReservation) bool {
		return st.ReservationID != nil && *st.ReservationID == reservationID
	})
}

func (r memStandingReservations) Release(_ context.Context, id uuid.UUID, version int64) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st, ok := r.m.standRes[id]
	if !ok || st.Version != version || !st.Status.Active() {
		return false, nil
	}
	st.Status = entity.StatusAvailable
	st.ReservedAt = nil
	st.ReservationID = nil
	st.Version++
	return true, nil
}

func (r memStandingReservations) Confirm(_ context.Context, id uuid.UUID, version int64) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st, ok := r.m.standRes[id]
	if !ok || st.Version != version || st.Status != entity.StatusReserved {
		return false, nil
	}
	st.Status = entity.StatusLocked
	st.Version++
	return true, nil
}

func (r memStandingReservations) ExpireHolds(_ context.Context, cutoff time.Time) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for _, st := range r.m.standRes {
		if st.Status == entity.StatusReserved && st.ReservedAt != nil && st.ReservedAt.Before(cutoff) {
			st.Status = entity.StatusAvailable
			st.ReservedAt = nil
			st.ReservationID = nil
			st.Version++
			n++
		}
	}
	return n, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.HoldsReleased
}

func (p *recordingPublisher) PublishHoldsReleased(_ context.Context, ev event.HoldsReleased) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []event.HoldsReleased {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]event.HoldsReleased(nil), p.events...)
}

type mapCache struct {
	mu    sync.Mutex
	stops map[uuid.UUID][]*entity.ScheduleStop
}

func (c *mapCache) Get(_ context.Context, runID uuid.UUID) ([]*entity.ScheduleStop, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stops, ok := c.stops[runID]
	return stops, ok, nil
}

func (c *mapCache) Set(_ context.Context, runID uuid.UUID, stops []*entity.ScheduleStop) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stops == nil {
		c.stops = make(map[uuid.UUID][]*entity.ScheduleStop)
	}
	c.stops[runID] = stops
	return nil
}
