package entity

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	StatusAvailable ReservationStatus = "AVAILABLE"
	StatusReserved  ReservationStatus = "RESERVED"
	StatusLocked    ReservationStatus = "LOCKED"
)

// Active reports whether the row still holds its segment.
func (s ReservationStatus) Active() bool {
	return s == StatusReserved || s == StatusLocked
}

type PassengerType string

const (
	PassengerAdult    PassengerType = "ADULT"
	PassengerChild    PassengerType = "CHILD"
	PassengerSenior   PassengerType = "SENIOR"
	PassengerDisabled PassengerType = "DISABLED"
)

// SeatReservation binds a seat to a station pair of one run. Station ids are
// authoritative; the positions and car are filled by joins when read.
type SeatReservation struct {
	Base
	Versioned
	TrainRunID         uuid.UUID         `db:"train_run_id"`
	SeatID             uuid.UUID         `db:"seat_id"`
	ReservationID      *uuid.UUID        `db:"reservation_id"`
	PassengerType      PassengerType     `db:"passenger_type"`
	Status             ReservationStatus `db:"status"`
	DepartureStationID uuid.UUID         `db:"departure_station_id"`
	ArrivalStationID   uuid.UUID         `db:"arrival_station_id"`
	ReservedAt         *time.Time        `db:"reserved_at"`

	CarID        uuid.UUID `db:"-"`
	DeparturePos int       `db:"-"`
	ArrivalPos   int       `db:"-"`
}

// StandingReservation is a standing slot over a station pair, no seat.
type StandingReservation struct {
	Base
	Versioned
	TrainRunID         uuid.UUID         `db:"train_run_id"`
	ReservationID      *uuid.UUID        `db:"reservation_id"`
	Status             ReservationStatus `db:"status"`
	DepartureStationID uuid.UUID         `db:"departure_station_id"`
	ArrivalStationID   uuid.UUID         `db:"arrival_station_id"`
	ReservedAt         *time.Time        `db:"reserved_at"`

	DeparturePos int `db:"-"`
	ArrivalPos   int `db:"-"`
}
