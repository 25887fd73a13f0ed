package adaptor

import (
	"errors"
	"net/http"

	"train-booking/internal/usecase"
	"train-booking/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Reservation  *ReservationHandler
	Availability *AvailabilityHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Reservation:  NewReservationHandler(service.Reservation, log),
		Availability: NewAvailabilityHandler(service.Availability, service.Topology, log),
	}
}

// handleServiceError maps usecase errors onto the response envelope. Store
// failures are logged with their cause but answered without details.
func handleServiceError(log *zap.Logger, w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrInvalidSegment), errors.Is(err, usecase.ErrInvalidRequest):
		log.Warn("Invalid input for "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrRunNotFound),
		errors.Is(err, usecase.ErrSeatNotFound),
		errors.Is(err, usecase.ErrCarNotFound),
		errors.Is(err, usecase.ErrReservationNotFound):
		log.Warn(operation+" failed - not found",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrSeatUnavailable),
		errors.Is(err, usecase.ErrStandingCapacityExceeded),
		errors.Is(err, usecase.ErrConcurrentModification),
		errors.Is(err, usecase.ErrHoldReleased):
		log.Info(operation+" rejected",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, usecase.ErrStoreUnavailable):
		log.Error("Store unavailable during "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseServiceUnavailable(w, "Reservation store unavailable")

	default:
		log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
