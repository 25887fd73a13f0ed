package usecase

import (
	"train-booking/internal/data/cache"
	"train-booking/internal/data/repository"
	"train-booking/internal/event"
	"train-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Topology     TopologyService
	Reservation  ReservationService
	Standing     StandingService
	Availability AvailabilityService
	Sweeper      *ExpirationSweeper
}

// NewService wires the reservation engine. topologyCache and publisher may
// be nil when Redis or RabbitMQ are not configured.
func NewService(repo *repository.Repository, config *utils.Config, topologyCache cache.TopologyCache, publisher event.Publisher, log *zap.Logger) *Service {
	topology := newTopologyService(repo, topologyCache, log)
	standing := newStandingService(repo, topology, config.Reservation, log)

	return &Service{
		Topology:     topology,
		Reservation:  newReservationService(repo, topology, config.Reservation, log),
		Standing:     standing,
		Availability: newAvailabilityService(repo, topology, standing, log),
		Sweeper:      NewExpirationSweeper(repo, config.Reservation, publisher, log),
	}
}
