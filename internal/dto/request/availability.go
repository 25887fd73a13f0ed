package request

// SegmentQuery is read from the departure and arrival query parameters.
type SegmentQuery struct {
	DepartureStationID string `validate:"required,uuid"`
	ArrivalStationID   string `validate:"required,uuid,nefield=DepartureStationID"`
}
