package ntdf

import "time"

type Stop struct {
	PrimaryIdentifier string
	OtherIdentifiers  map[string]string

	CreationDateTime     time.Time
	ModificationDateTime time.Time

	DataSource *DataSource

	PrimaryName string
	ShortName   string
	Type        StopType

	PassengerExchange bool

	Location *Location

	Associations []StopAssociation
}

type StopType string

const (
	StopTypePlatform StopType = "Platform"
	StopTypeEntry    StopType = "Entry"
	StopTypeExit     StopType = "Exit"
	StopTypeBoundary StopType = "Boundary"
	StopTypeRouting  StopType = "Routing"
	StopTypeStopArea StopType = "StopArea"
)

type StopAssociation struct {
	Type                 string
	AssociatedIdentifier string
}
