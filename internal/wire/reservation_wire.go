package wire

import (
	"train-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireReservation(r chi.Router, h *adaptor.ReservationHandler) {
	r.Post("/api/runs/{runID}/seat-reservations", h.ReserveSeat)
	r.Post("/api/runs/{runID}/standing-reservations", h.ReserveStanding)

	// DELETE takes an optional ?version=N, the current version is used without it
	r.Get("/api/seat-reservations/{id}", h.GetSeatReservation)
	r.Delete("/api/seat-reservations/{id}", h.CancelSeatReservation)
	r.Post("/api/seat-reservations/{id}/confirm", h.ConfirmSeatReservation)

	r.Get("/api/standing-reservations/{id}", h.GetStandingReservation)
	r.Delete("/api/standing-reservations/{id}", h.CancelStandingReservation)
	r.Post("/api/standing-reservations/{id}/confirm", h.ConfirmStandingReservation)

	// releases every hold of one booking, e.g. when its payment failed
	r.Delete("/api/reservations/{reservationID}/holds", h.ReleaseReservation)
}
