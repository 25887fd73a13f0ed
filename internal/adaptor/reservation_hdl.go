package adaptor

import (
	"encoding/json"
	"net/http"

	"train-booking/internal/dto/request"
	"train-booking/internal/usecase"
	"train-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReservationHandler struct {
	service usecase.ReservationService
	log     *zap.Logger
}

func NewReservationHandler(service usecase.ReservationService, log *zap.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log.With(zap.String("handler", "reservation")),
	}
}

// ReserveSeat handles POST /api/runs/{runID}/seat-reservations
func (h *ReservationHandler) ReserveSeat(w http.ResponseWriter, r *http.Request) {
	var req request.ReserveSeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	reservation, err := h.service.ReserveSeat(r.Context(), chi.URLParam(r, "runID"), &req)
	if err != nil {
		handleServiceError(h.log, w, err, "reserve seat")
		return
	}

	utils.ResponseCreated(w, "Seat reserved", reservation)
}

// CancelSeatReservation handles DELETE /api/seat-reservations/{id}?version=N
func (h *ReservationHandler) CancelSeatReservation(w http.ResponseWriter, r *http.Request) {
	version, err := utils.ParseOptionalInt64(r.URL.Query().Get("version"))
	if err != nil {
		utils.ResponseBadRequest(w, "Version must be an integer", nil)
		return
	}

	if err := h.service.CancelSeatReservation(r.Context(), chi.URLParam(r, "id"), version); err != nil {
		handleServiceError(h.log, w, err, "cancel seat reservation")
		return
	}

	utils.ResponseSuccess(w, "Seat reservation cancelled", nil)
}

// ConfirmSeatReservation handles POST /api/seat-reservations/{id}/confirm?version=N
func (h *ReservationHandler) ConfirmSeatReservation(w http.ResponseWriter, r *http.Request) {
	version, err := utils.ParseOptionalInt64(r.URL.Query().Get("version"))
	if err != nil {
		utils.ResponseBadRequest(w, "Version must be an integer", nil)
		return
	}

	reservation, err := h.service.ConfirmSeatReservation(r.Context(), chi.URLParam(r, "id"), version)
	if err != nil {
		handleServiceError(h.log, w, err, "confirm seat reservation")
		return
	}

	utils.ResponseSuccess(w, "Seat reservation confirmed", reservation)
}

// GetSeatReservation handles GET /api/seat-reservations/{id}
func (h *ReservationHandler) GetSeatReservation(w http.ResponseWriter, r *http.Request) {
	reservation, err := h.service.GetSeatReservation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(h.log, w, err, "get seat reservation")
		return
	}

	utils.ResponseSuccess(w, "success", reservation)
}

// ReserveStanding handles POST /api/runs/{runID}/standing-reservations
func (h *ReservationHandler) ReserveStanding(w http.ResponseWriter, r *http.Request) {
	var req request.ReserveStandingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	reservation, err := h.service.ReserveStanding(r.Context(), chi.URLParam(r, "runID"), &req)
	if err != nil {
		handleServiceError(h.log, w, err, "reserve standing")
		return
	}

	utils.ResponseCreated(w, "Standing place reserved", reservation)
}

// CancelStandingReservation handles DELETE /api/standing-reservations/{id}
func (h *ReservationHandler) CancelStandingReservation(w http.ResponseWriter, r *http.Request) {
	if err := h.service.CancelStandingReservation(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(h.log, w, err, "cancel standing reservation")
		return
	}

	utils.ResponseSuccess(w, "Standing reservation cancelled", nil)
}

// ConfirmStandingReservation handles POST /api/standing-reservations/{id}/confirm
func (h *ReservationHandler) ConfirmStandingReservation(w http.ResponseWriter, r *http.Request) {
	reservation, err := h.service.ConfirmStandingReservation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(h.log, w, err, "confirm standing reservation")
		return
	}

	utils.ResponseSuccess(w, "Standing reservation confirmed", reservation)
}

// GetStandingReservation handles GET /api/standing-reservations/{id}
func (h *ReservationHandler) GetStandingReservation(w http.ResponseWriter, r *http.Request) {
	reservation, err := h.service.GetStandingReservation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(h.log, w, err, "get standing reservation")
		return
	}

	utils.ResponseSuccess(w, "success", reservation)
}

// ReleaseReservation handles DELETE /api/reservations/{reservationID}/holds
func (h *ReservationHandler) ReleaseReservation(w http.ResponseWriter, r *http.Request) {
	released, err := h.service.ReleaseReservation(r.Context(), chi.URLParam(r, "reservationID"))
	if err != nil {
		handleServiceError(h.log, w, err, "release reservation")
		return
	}

	utils.ResponseSuccess(w, "Reservation holds released", released)
}
