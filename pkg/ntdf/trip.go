package ntdf

import "time"

type Trip struct {
	PrimaryIdentifier string

	CreationDateTime     time.Time
	ModificationDateTime time.Time

	DataSource *DataSource

	RouteRef    string
	RotationRef string

	Type TripType

	DepartureTime time.Time
	ArrivalTime   time.Time

	VehicleType string
	Published   bool

	StopTimes []*StopTime
}

type TripType string

const (
	TripTypePassenger TripType = "Passenger"
	TripTypeEmpty     TripType = "Empty"
)

type StopTime struct {
	StopRef string

	ArrivalTime   time.Time
	DwellDuration time.Duration
}
