package usecase

import (
	"errors"
	"fmt"

	"train-booking/internal/segment"

	"github.com/google/uuid"
)

var (
	ErrInvalidSegment           = segment.ErrInvalid
	ErrInvalidRequest           = errors.New("invalid request")
	ErrSeatUnavailable          = errors.New("seat unavailable for the requested segment")
	ErrStandingCapacityExceeded = errors.New("standing capacity exceeded")
	ErrConcurrentModification   = errors.New("concurrent modification")
	ErrStoreUnavailable         = errors.New("reservation store unavailable")
	ErrHoldReleased             = errors.New("hold already released")

	ErrRunNotFound         = errors.New("train run not found")
	ErrSeatNotFound        = errors.New("seat not found")
	ErrCarNotFound         = errors.New("car not found")
	ErrReservationNotFound = errors.New("reservation not found")
)

var domainErrors = []error{
	ErrInvalidSegment,
	ErrInvalidRequest,
	ErrSeatUnavailable,
	ErrStandingCapacityExceeded,
	ErrConcurrentModification,
	ErrStoreUnavailable,
	ErrHoldReleased,
	ErrRunNotFound,
	ErrSeatNotFound,
	ErrCarNotFound,
	ErrReservationNotFound,
}

func isDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// storeErr marks an infrastructure failure, keeping the cause for the logs.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

// txErr passes domain errors through and marks anything else, such as a
// failed begin or commit, as a store failure.
func txErr(op string, err error) error {
	if err == nil || isDomainError(err) {
		return err
	}
	return storeErr(op, err)
}

func parseID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s %q is not a valid UUID", ErrInvalidRequest, field, value)
	}
	return id, nil
}

func parseOptionalID(field, value string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := parseID(field, value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// parseSegment rejects a same-station pair before any store access.
func parseSegment(dep, arr string) (uuid.UUID, uuid.UUID, error) {
	if dep == arr {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: departure and arrival station are both %s", ErrInvalidSegment, dep)
	}
	depID, err := parseID("departure_station_id", dep)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	arrID, err := parseID("arrival_station_id", arr)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if depID == arrID {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: departure and arrival station are both %s", ErrInvalidSegment, depID.String())
	}
	return depID, arrID, nil
}
