package request

type ReserveSeatRequest struct {
	SeatID             string `json:"seat_id" validate:"required,uuid"`
	DepartureStationID string `json:"departure_station_id" validate:"required,uuid"`
	ArrivalStationID   string `json:"arrival_station_id" validate:"required,uuid,nefield=DepartureStationID"`
	ReservationID      string `json:"reservation_id" validate:"omitempty,uuid"`
	PassengerType      string `json:"passenger_type" validate:"required,oneof=ADULT CHILD SENIOR DISABLED"`
}

type ReserveStandingRequest struct {
	DepartureStationID string `json:"departure_station_id" validate:"required,uuid"`
	ArrivalStationID   string `json:"arrival_station_id" validate:"required,uuid,nefield=DepartureStationID"`
	ReservationID      string `json:"reservation_id" validate:"omitempty,uuid"`
}
