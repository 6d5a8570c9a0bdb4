package ntdf

import "time"

type Route struct {
	PrimaryIdentifier string

	CreationDateTime     time.Time
	ModificationDateTime time.Time

	DataSource *DataSource

	LineName           string
	DestinationDisplay string
	Direction          string

	DistanceMetres float64

	Path []*RoutePathItem
}

// RoutePathItem is one stop along a route together with the distance covered
// from the route's first stop.
type RoutePathItem struct {
	StopRef string

	Location *Location

	ElapsedDistanceMetres float64
}
