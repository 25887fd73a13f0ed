// internal/wire/wire.go
package wire

import (
	"net/http"

	"train-booking/internal/adaptor"
	"train-booking/internal/data/cache"
	"train-booking/internal/data/repository"
	"train-booking/internal/event"
	"train-booking/internal/usecase"
	"train-booking/pkg/middleware"
	"train-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds what main needs to run the process
type App struct {
	Router  *chi.Mux
	Sweeper *usecase.ExpirationSweeper
}

// Wiring builds services, handlers and routes
func Wiring(
	repo *repository.Repository,
	config *utils.Config,
	topologyCache cache.TopologyCache,
	publisher event.Publisher,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, config, topologyCache, publisher, logger)
	handler := adaptor.NewHandler(service, logger)

	return &App{
		Router:  setupRouter(handler, logger),
		Sweeper: service.Sweeper,
	}
}

func setupRouter(handler *adaptor.Handler, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))

	wireReservation(r, handler.Reservation)
	wireAvailability(r, handler.Availability)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
