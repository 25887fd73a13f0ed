package adaptor

import (
	"net/http"

	"train-booking/internal/dto/request"
	"train-booking/internal/usecase"
	"train-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AvailabilityHandler struct {
	service  usecase.AvailabilityService
	topology usecase.TopologyService
	log      *zap.Logger
}

func NewAvailabilityHandler(service usecase.AvailabilityService, topology usecase.TopologyService, log *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service:  service,
		topology: topology,
		log:      log.With(zap.String("handler", "availability")),
	}
}

func segmentQuery(r *http.Request) request.SegmentQuery {
	query := r.URL.Query()
	return request.SegmentQuery{
		DepartureStationID: query.Get("departure"),
		ArrivalStationID:   query.Get("arrival"),
	}
}

// QuerySectionAvailability handles GET /api/runs/{runID}/availability?departure=&arrival=
func (h *AvailabilityHandler) QuerySectionAvailability(w http.ResponseWriter, r *http.Request) {
	q := segmentQuery(r)
	if validationErrors := utils.ValidateStruct(q); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	availability, err := h.service.QuerySectionAvailability(r.Context(), chi.URLParam(r, "runID"),
		q.DepartureStationID, q.ArrivalStationID)
	if err != nil {
		handleServiceError(h.log, w, err, "query section availability")
		return
	}

	utils.ResponseSuccess(w, "success", availability)
}

// QuerySeatMap handles GET /api/runs/{runID}/cars/{carID}/seats?departure=&arrival=
func (h *AvailabilityHandler) QuerySeatMap(w http.ResponseWriter, r *http.Request) {
	q := segmentQuery(r)
	if validationErrors := utils.ValidateStruct(q); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	seatMap, err := h.service.QuerySeatMap(r.Context(), chi.URLParam(r, "runID"), chi.URLParam(r, "carID"),
		q.DepartureStationID, q.ArrivalStationID)
	if err != nil {
		handleServiceError(h.log, w, err, "query seat map")
		return
	}

	utils.ResponseSuccess(w, "success", seatMap)
}

// GetStops handles GET /api/runs/{runID}/stops
func (h *AvailabilityHandler) GetStops(w http.ResponseWriter, r *http.Request) {
	stops, err := h.topology.GetStops(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		handleServiceError(h.log, w, err, "get stops")
		return
	}

	utils.ResponseSuccess(w, "success", stops)
}
