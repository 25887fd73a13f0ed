package wire

import (
	"train-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAvailability(r chi.Router, h *adaptor.AvailabilityHandler) {
	r.Get("/api/runs/{runID}/availability", h.QuerySectionAvailability)
	r.Get("/api/runs/{runID}/stops", h.GetStops)
	r.Get("/api/runs/{runID}/cars/{carID}/seats", h.QuerySeatMap)
}
