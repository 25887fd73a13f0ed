package response

import (
	"time"

	"train-booking/internal/data/entity"

	"github.com/google/uuid"
)

type CarAvailabilityResponse struct {
	CarID          string           `json:"car_id"`
	CarNumber      int              `json:"car_number"`
	SeatClass      entity.SeatClass `json:"seat_class"`
	TotalSeats     int              `json:"total_seats"`
	RemainingSeats int              `json:"remaining_seats"`
}

type SectionAvailabilityResponse struct {
	TrainRunID         string                    `json:"train_run_id"`
	DepartureStationID string                    `json:"departure_station_id"`
	ArrivalStationID   string                    `json:"arrival_station_id"`
	Cars               []CarAvailabilityResponse `json:"cars"`
	StandingRemaining  int                       `json:"standing_remaining"`
}

type SeatStatusResponse struct {
	SeatID    string          `json:"seat_id"`
	Label     string          `json:"label"`
	SeatType  entity.SeatType `json:"seat_type"`
	Available bool            `json:"available"`
}

type SeatMapResponse struct {
	TrainRunID string               `json:"train_run_id"`
	CarID      string               `json:"car_id"`
	Seats      []SeatStatusResponse `json:"seats"`
}

type StopResponse struct {
	StationID     string     `json:"station_id"`
	PositionIndex int        `json:"position_index"`
	ArrivalTime   *time.Time `json:"arrival_time,omitempty"`
	DepartureTime *time.Time `json:"departure_time,omitempty"`
}

func StopToResponse(stop *entity.ScheduleStop) StopResponse {
	return StopResponse{
		StationID:     stop.StationID.String(),
		PositionIndex: stop.PositionIndex,
		ArrivalTime:   stop.ArrivalTime,
		DepartureTime: stop.DepartureTime,
	}
}

func optionalID(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
