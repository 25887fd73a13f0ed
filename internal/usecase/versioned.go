package usecase

import (
	"context"

	"train-booking/internal/data/entity"
)

type stateLoader func(ctx context.Context) (entity.ReservationStatus, int64, error)

// settledFunc reports whether a row in status already is where the update
// wants it (true) or can never get there (error).
type settledFunc func(status entity.ReservationStatus) (bool, error)

func releasedOK(status entity.ReservationStatus) (bool, error) {
	return status == entity.StatusAvailable, nil
}

func lockedOK(status entity.ReservationStatus) (bool, error) {
	switch status {
	case entity.StatusLocked:
		return true, nil
	case entity.StatusAvailable:
		return false, ErrHoldReleased
	}
	return false, nil
}

// applyVersioned runs a compare-and-set update keyed on the row version.
// When it matches no row the state is read again: a settled row is success,
// otherwise the update is retried once with the fresh version before
// giving up with ErrConcurrentModification.
func applyVersioned(ctx context.Context, expected *int64, load stateLoader, settled settledFunc,
	update func(ctx context.Context, version int64) (bool, error)) error {
	status, version, err := load(ctx)
	if err != nil {
		return err
	}
	if done, err := settled(status); done || err != nil {
		return err
	}
	if expected != nil {
		version = *expected
	}

	for attempt := 0; ; attempt++ {
		ok, err := update(ctx, version)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		status, version, err = load(ctx)
		if err != nil {
			return err
		}
		if done, err := settled(status); done || err != nil {
			return err
		}
		if attempt == 1 {
			return ErrConcurrentModification
		}
	}
}
