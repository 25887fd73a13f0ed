package response

import (
	"time"

	"train-booking/internal/data/entity"
)

type SeatReservationResponse struct {
	ID                 string                   `json:"id"`
	TrainRunID         string                   `json:"train_run_id"`
	SeatID             string                   `json:"seat_id"`
	CarID              string                   `json:"car_id"`
	ReservationID      *string                  `json:"reservation_id,omitempty"`
	PassengerType      entity.PassengerType     `json:"passenger_type"`
	Status             entity.ReservationStatus `json:"status"`
	DepartureStationID string                   `json:"departure_station_id"`
	ArrivalStationID   string                   `json:"arrival_station_id"`
	DeparturePosition  int                      `json:"departure_position"`
	ArrivalPosition    int                      `json:"arrival_position"`
	ReservedAt         *time.Time               `json:"reserved_at,omitempty"`
	Version            int64                    `json:"version"`
	CreatedAt          time.Time                `json:"created_at"`
}

type StandingReservationResponse struct {
	ID                 string                   `json:"id"`
	TrainRunID         string                   `json:"train_run_id"`
	ReservationID      *string                  `json:"reservation_id,omitempty"`
	Status             entity.ReservationStatus `json:"status"`
	DepartureStationID string                   `json:"departure_station_id"`
	ArrivalStationID   string                   `json:"arrival_station_id"`
	DeparturePosition  int                      `json:"departure_position"`
	ArrivalPosition    int                      `json:"arrival_position"`
	ReservedAt         *time.Time               `json:"reserved_at,omitempty"`
	Version            int64                    `json:"version"`
	CreatedAt          time.Time                `json:"created_at"`
}

// ReleaseResponse counts the holds a booking gave back.
type ReleaseResponse struct {
	ReservationID string `json:"reservation_id"`
	SeatHolds     int    `json:"seat_holds"`
	StandingHolds int    `json:"standing_holds"`
}

func SeatReservationToResponse(sr *entity.SeatReservation) *SeatReservationResponse {
	return &SeatReservationResponse{
		ID:                 sr.ID.String(),
		TrainRunID:         sr.TrainRunID.String(),
		SeatID:             sr.SeatID.String(),
		CarID:              sr.CarID.String(),
		ReservationID:      optionalID(sr.ReservationID),
		PassengerType:      sr.PassengerType,
		Status:             sr.Status,
		DepartureStationID: sr.DepartureStationID.String(),
		ArrivalStationID:   sr.ArrivalStationID.String(),
		DeparturePosition:  sr.DeparturePos,
		ArrivalPosition:    sr.ArrivalPos,
		ReservedAt:         sr.ReservedAt,
		Version:            sr.Version,
		CreatedAt:          sr.CreatedAt,
	}
}

func StandingReservationToResponse(st *entity.StandingReservation) *StandingReservationResponse {
	return &StandingReservationResponse{
		ID:                 st.ID.String(),
		TrainRunID:         st.TrainRunID.String(),
		ReservationID:      optionalID(st.ReservationID),
		Status:             st.Status,
		DepartureStationID: st.DepartureStationID.String(),
		ArrivalStationID:   st.ArrivalStationID.String(),
		DeparturePosition:  st.DeparturePos,
		ArrivalPosition:    st.ArrivalPos,
		ReservedAt:         st.ReservedAt,
		Version:            st.Version,
		CreatedAt:          st.CreatedAt,
	}
}
