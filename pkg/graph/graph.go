package graph

import (
	"time"
)

// Source coordinates and distances arrive in millimetres.
const millimetresPerMetre = 1000

type PointKind string

const (
	PointKindStop     PointKind = "stop"
	PointKindEntry    PointKind = "entry"
	PointKindExit     PointKind = "exit"
	PointKindBoundary PointKind = "boundary"
	PointKindGeneric  PointKind = "generic"
)

// GeodeticPosition is attached to a NetworkPoint by the enrichment
// stage. Elevation stays nil when no elevation service is configured.
type GeodeticPosition struct {
	Latitude  float64
	Longitude float64
	Elevation *float64
}

// NetworkPoint is a node of the source network in its native planar
// projection. It is written once during resolution and mutated once
// more when enrichment attaches a geodetic position.
type NetworkPoint struct {
	ID        int64
	ShortName string
	LongName  string

	Kind PointKind

	// Planar coordinates in metres, source projection.
	Easting  float64
	Northing float64

	PassengerExchange bool

	StopArea            *StopArea
	AdministrativeAreas []string

	Position *GeodeticPosition
}

// StopArea groups the platforms and poles of one physical stop.
type StopArea struct {
	ID       int64
	Name     string
	BookName string
}

// Link is a directed segment between two network points. Links hold
// weak references, the points are owned by the network's point table.
type Link struct {
	ID   int64
	From *NetworkPoint
	To   *NetworkPoint

	LengthMetres float64

	Intermediate []*LinkPoint
}

// LinkPoint is a shape point along a link.
type LinkPoint struct {
	Point                   *NetworkPoint
	DistanceFromStartMetres float64
}

// Route is one ordered path of the line through the network. The link
// sequence and the point sequence describe the same path at different
// granularity.
type Route struct {
	Ordinal        int64
	ExternalNumber int64

	Direction int
	MainRoute bool

	DestinationDisplays map[int64]string

	Links  []*Link
	Points []*RoutePoint

	Profiles map[int64]*TimeProfile
}

func (route *Route) LengthMetres() float64 {
	var total float64
	for _, link := range route.Links {
		total += link.LengthMetres
	}
	return total
}

// RoutePoint is one entry of a route's point sequence.
type RoutePoint struct {
	Ordinal int64
	Point   *NetworkPoint

	PassengerExchange  bool
	Published          bool
	DestinationDisplay string
}

// TimeProfile assigns running and dwell times to every point of a
// route. Entries align index for index with the route's point
// sequence.
type TimeProfile struct {
	Number  int64
	Entries []TimeProfileEntry
}

type TimeProfileEntry struct {
	RunningTime time.Duration
	DwellTime   time.Duration
}

// RouteVariant binds trips to a route by ordinal position.
type RouteVariant struct {
	Ordinal int64
	Route   *Route
}

type TripKind string

const (
	TripKindPassenger TripKind = "passenger"
	TripKindEmpty     TripKind = "empty"
)

// Trip is a single scheduled run over a route variant. Immutable once
// resolved.
type Trip struct {
	ID         int64
	LineNumber int64

	Variant *RouteVariant
	Profile *TimeProfile

	// Seconds since midnight of the operating day. Values past
	// 86400 belong to the following calendar day.
	StartSeconds int64

	Kind        TripKind
	VehicleType string
	Published   bool

	StopTimes []*StopTime
}

// Duration is the span from departure to the end of the final dwell.
func (trip *Trip) Duration() time.Duration {
	if len(trip.StopTimes) == 0 {
		return 0
	}
	last := trip.StopTimes[len(trip.StopTimes)-1]
	return last.ArrivalOffset + last.Dwell
}

func (trip *Trip) FirstPoint() *NetworkPoint {
	if len(trip.StopTimes) == 0 {
		return nil
	}
	return trip.StopTimes[0].Point
}

func (trip *Trip) LastPoint() *NetworkPoint {
	if len(trip.StopTimes) == 0 {
		return nil
	}
	return trip.StopTimes[len(trip.StopTimes)-1].Point
}

// StopTime is one halt of a trip, expressed relative to the trip's
// departure.
type StopTime struct {
	Point         *NetworkPoint
	ArrivalOffset time.Duration
	Dwell         time.Duration
}

// RotationSegment is a contiguous block of trips within a rotation.
type RotationSegment struct {
	Ordinal        int64
	VehicleWorking int64

	BeginSeconds int64
	EndSeconds   int64

	VehicleTypes []string

	Trips []*Trip
}

// VehicleRotation is the ordered duty of one vehicle on one operating
// day.
type VehicleRotation struct {
	ID    int64
	Label string

	Depot       *NetworkPoint
	VehicleType string

	OperatingDay time.Time
	ValidDays    []time.Time

	Segments []*RotationSegment
}

// Trips returns the rotation's trips across all segments in duty
// order.
func (rotation *VehicleRotation) Trips() []*Trip {
	var trips []*Trip
	for _, segment := range rotation.Segments {
		trips = append(trips, segment.Trips...)
	}
	return trips
}

func (rotation *VehicleRotation) FirstPoint() *NetworkPoint {
	trips := rotation.Trips()
	if len(trips) == 0 {
		return nil
	}
	return trips[0].FirstPoint()
}

func (rotation *VehicleRotation) LastPoint() *NetworkPoint {
	trips := rotation.Trips()
	if len(trips) == 0 {
		return nil
	}
	return trips[len(trips)-1].LastPoint()
}

// Network is the fully resolved graph for one line document.
type Network struct {
	LineNumber  int64
	LineName    string
	DataVersion string

	StopAreas map[int64]*StopArea
	Points    map[int64]*NetworkPoint
	Links     map[int64]*Link
	Routes    map[int64]*Route
	Variants  map[int64]*RouteVariant
	Trips     map[int64]*Trip

	Rotations []*VehicleRotation
}
