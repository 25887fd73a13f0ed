package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"train-booking/internal/data/repository"
	"train-booking/internal/event"
	"train-booking/pkg/utils"

	"go.uber.org/zap"
)

// SweepResult counts the holds released by one sweep.
type SweepResult struct {
	Cutoff        time.Time
	SeatHolds     int64
	StandingHolds int64
}

// ExpirationSweeper periodically gives back RESERVED holds older than the
// hold TTL. LOCKED rows are never touched.
type ExpirationSweeper struct {
	repo      *repository.Repository
	publisher event.Publisher
	holdTTL   time.Duration
	interval  time.Duration
	now       func() time.Time
	log       *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewExpirationSweeper(repo *repository.Repository, config utils.ReservationConfig, publisher event.Publisher, log *zap.Logger) *ExpirationSweeper {
	if publisher == nil {
		publisher = event.NewNopPublisher()
	}
	return &ExpirationSweeper{
		repo:      repo,
		publisher: publisher,
		holdTTL:   config.HoldTTL,
		interval:  config.SweepInterval,
		now:       time.Now,
		log:       log.With(zap.String("service", "sweeper")),
	}
}

// Start launches the ticker loop. It is a no-op when already running.
func (s *ExpirationSweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}
	if s.interval <= 0 {
		s.log.Warn("Sweep interval is not positive, expired holds will not be released",
			zap.Duration("interval", s.interval))
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx, s.done)

	s.log.Info("Expiration sweeper started",
		zap.Duration("interval", s.interval),
		zap.Duration("hold_ttl", s.holdTTL),
	)
}

// Stop ends the loop and waits for an in-flight sweep to finish.
func (s *ExpirationSweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.log.Info("Expiration sweeper stopped")
}

func (s *ExpirationSweeper) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *ExpirationSweeper) tick(ctx context.Context) {
	defer func() {
		if p := recover(); p != nil {
			s.log.Error("Sweep panicked", zap.Any("panic", p), zap.Stack("stack"))
		}
	}()

	if _, err := s.Sweep(ctx); err != nil {
		s.log.Error("Sweep failed, retrying next tick", zap.Error(err))
	}
}

// Sweep releases every hold reserved before now minus the hold TTL. Each
// table is swept with one conditional statement, so a hold confirmed while
// the sweep runs is left alone.
func (s *ExpirationSweeper) Sweep(ctx context.Context) (SweepResult, error) {
	res := SweepResult{Cutoff: s.now().UTC().Add(-s.holdTTL)}

	var errs []error
	seats, err := s.repo.SeatReservation.ExpireHolds(ctx, res.Cutoff)
	if err != nil {
		errs = append(errs, storeErr("expire seat holds", err))
	}
	res.SeatHolds = seats

	standing, err := s.repo.StandingReservation.ExpireHolds(ctx, res.Cutoff)
	if err != nil {
		errs = append(errs, storeErr("expire standing holds", err))
	}
	res.StandingHolds = standing

	if total := res.SeatHolds + res.StandingHolds; total > 0 {
		s.log.Info("Expired holds released",
			zap.Int64("seat_holds", res.SeatHolds),
			zap.Int64("standing_holds", res.StandingHolds),
			zap.Time("cutoff", res.Cutoff),
		)

		ev := event.HoldsReleased{
			SeatHolds:     res.SeatHolds,
			StandingHolds: res.StandingHolds,
			Cutoff:        res.Cutoff,
			SweptAt:       s.now().UTC(),
		}
		if err := s.publisher.PublishHoldsReleased(ctx, ev); err != nil {
			s.log.Warn("Failed to publish holds released event", zap.Error(err))
		}
	}

	return res, errors.Join(errs...)
}
