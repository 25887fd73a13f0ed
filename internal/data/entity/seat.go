package entity

import (
	"strconv"

	"github.com/google/uuid"
)

type SeatClass string

const (
	SeatClassStandard SeatClass = "STANDARD"
	SeatClassFirst    SeatClass = "FIRST"
)

type SeatType string

const (
	SeatTypeWindow SeatType = "WINDOW"
	SeatTypeAisle  SeatType = "AISLE"
)

// Car belongs to a train, every run of that train carries it.
type Car struct {
	ID         uuid.UUID `db:"id"`
	TrainID    uuid.UUID `db:"train_id"`
	CarNumber  int       `db:"car_number"`
	SeatClass  SeatClass `db:"seat_class"`
	TotalSeats int       `db:"-"` // counted from seats
}

type Seat struct {
	ID         uuid.UUID `db:"id"`
	CarID      uuid.UUID `db:"car_id"`
	SeatRow    int       `db:"seat_row"`    // 1, 2, 3, etc.
	SeatColumn string    `db:"seat_column"` // A, B, C, D
	SeatType   SeatType  `db:"seat_type"`
}

// Label renders the seat as printed on the ticket, e.g. 12A
func (s *Seat) Label() string {
	return strconv.Itoa(s.SeatRow) + s.SeatColumn
}
