package ntdf

import "time"

// VehicleRotation is the ordered set of trips one vehicle performs over an
// operating day, starting and ending at a depot.
type VehicleRotation struct {
	PrimaryIdentifier string

	CreationDateTime     time.Time
	ModificationDateTime time.Time

	DataSource *DataSource

	Label    string
	DepotRef string

	// VehicleType is the depot's assignment, VehicleTypes the distinct
	// tags observed across the rotation's segments.
	VehicleType  string
	VehicleTypes []string

	OperatingDay time.Time
	ValidDays    []time.Time

	TripRefs []string
}
