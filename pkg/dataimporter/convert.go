package dataimporter

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/netzplan/netzplan/pkg/graph"
	"github.com/netzplan/netzplan/pkg/ntdf"
	"github.com/netzplan/netzplan/pkg/rotations"
	"github.com/netzplan/netzplan/pkg/util"
)

// Entities is the normalized output of one document run, ready for
// emission.
type Entities struct {
	Stops     []*ntdf.Stop
	Routes    []*ntdf.Route
	Trips     []*ntdf.Trip
	Rotations []*ntdf.VehicleRotation
}

func stopIdentifier(pointID int64) string {
	return fmt.Sprintf("netzplan-point-%d", pointID)
}

func stopAreaIdentifier(areaID int64) string {
	return fmt.Sprintf("netzplan-stoparea-%d", areaID)
}

func routeIdentifier(lineNumber int64, ordinal int64) string {
	return fmt.Sprintf("netzplan-route-%d-%d", lineNumber, ordinal)
}

func tripIdentifier(tripID int64) string {
	return fmt.Sprintf("netzplan-trip-%d", tripID)
}

func rotationIdentifier(rotationID int64) string {
	return fmt.Sprintf("netzplan-rotation-%d", rotationID)
}

func stopType(kind graph.PointKind) ntdf.StopType {
	switch kind {
	case graph.PointKindStop:
		return ntdf.StopTypePlatform
	case graph.PointKindEntry:
		return ntdf.StopTypeEntry
	case graph.PointKindExit:
		return ntdf.StopTypeExit
	case graph.PointKindBoundary:
		return ntdf.StopTypeBoundary
	default:
		return ntdf.StopTypeRouting
	}
}

func location(point *graph.NetworkPoint) *ntdf.Location {
	if point.Position == nil {
		return nil
	}
	return ntdf.NewPointLocation(point.Position.Longitude, point.Position.Latitude, point.Position.Elevation)
}

// convertEntities maps the assembled graph into the normalized model.
// Only trips actually performed by a rotation are emitted, the source
// regularly declares trips no rotation ever references.
func convertEntities(network *graph.Network, assembled []*graph.VehicleRotation, datasource *ntdf.DataSource) *Entities {
	now := time.Now()
	entities := &Entities{}

	for _, area := range sortedStopAreas(network) {
		entities.Stops = append(entities.Stops, &ntdf.Stop{
			PrimaryIdentifier:    stopAreaIdentifier(area.ID),
			CreationDateTime:     now,
			ModificationDateTime: now,
			DataSource:           datasource,
			PrimaryName:          area.BookName,
			ShortName:            area.Name,
			Type:                 ntdf.StopTypeStopArea,
		})
	}

	for _, point := range sortedPoints(network) {
		stop := &ntdf.Stop{
			PrimaryIdentifier: stopIdentifier(point.ID),
			OtherIdentifiers: map[string]string{
				"source": strconv.FormatInt(point.ID, 10),
			},
			CreationDateTime:     now,
			ModificationDateTime: now,
			DataSource:           datasource,
			PrimaryName:          point.LongName,
			ShortName:            point.ShortName,
			Type:                 stopType(point.Kind),
			PassengerExchange:    point.PassengerExchange,
			Location:             location(point),
		}
		if point.StopArea != nil {
			stop.Associations = append(stop.Associations, ntdf.StopAssociation{
				Type:                 "stop_group",
				AssociatedIdentifier: stopAreaIdentifier(point.StopArea.ID),
			})
		}
		entities.Stops = append(entities.Stops, stop)
	}

	for _, route := range sortedRoutes(network) {
		entities.Routes = append(entities.Routes, convertRoute(network, route, datasource, now))
	}

	for _, rotation := range assembled {
		entities.Rotations = append(entities.Rotations, convertRotation(network, rotation, datasource, now))
		for _, trip := range rotation.Trips() {
			entities.Trips = append(entities.Trips, convertTrip(network, rotation, trip, datasource, now))
		}
	}

	return entities
}

func convertRoute(network *graph.Network, route *graph.Route, datasource *ntdf.DataSource, now time.Time) *ntdf.Route {
	converted := &ntdf.Route{
		PrimaryIdentifier:    routeIdentifier(network.LineNumber, route.Ordinal),
		CreationDateTime:     now,
		ModificationDateTime: now,
		DataSource:           datasource,
		LineName:             network.LineName,
		Direction:            strconv.Itoa(route.Direction),
		DistanceMetres:       route.LengthMetres(),
	}

	for _, routePoint := range route.Points {
		if routePoint.DestinationDisplay != "" {
			converted.DestinationDisplay = routePoint.DestinationDisplay
			break
		}
	}

	var elapsed float64
	for index, link := range route.Links {
		if index == 0 {
			converted.Path = append(converted.Path, &ntdf.RoutePathItem{
				StopRef:  stopIdentifier(link.From.ID),
				Location: location(link.From),
			})
		}
		elapsed += link.LengthMetres
		converted.Path = append(converted.Path, &ntdf.RoutePathItem{
			StopRef:               stopIdentifier(link.To.ID),
			Location:              location(link.To),
			ElapsedDistanceMetres: elapsed,
		})
	}

	return converted
}

func convertTrip(network *graph.Network, rotation *graph.VehicleRotation, trip *graph.Trip, datasource *ntdf.DataSource, now time.Time) *ntdf.Trip {
	departure := util.DepartureTime(rotation.OperatingDay, trip.StartSeconds)

	tripType := ntdf.TripTypeEmpty
	if trip.Kind == graph.TripKindPassenger {
		tripType = ntdf.TripTypePassenger
	}

	converted := &ntdf.Trip{
		PrimaryIdentifier:    tripIdentifier(trip.ID),
		CreationDateTime:     now,
		ModificationDateTime: now,
		DataSource:           datasource,
		RouteRef:             routeIdentifier(network.LineNumber, trip.Variant.Route.Ordinal),
		RotationRef:          rotationIdentifier(rotation.ID),
		Type:                 tripType,
		DepartureTime:        departure,
		ArrivalTime:          departure.Add(trip.Duration()),
		VehicleType:          trip.VehicleType,
		Published:            trip.Published,
	}

	for _, stopTime := range trip.StopTimes {
		converted.StopTimes = append(converted.StopTimes, &ntdf.StopTime{
			StopRef:       stopIdentifier(stopTime.Point.ID),
			ArrivalTime:   departure.Add(stopTime.ArrivalOffset),
			DwellDuration: stopTime.Dwell,
		})
	}

	return converted
}

func convertRotation(network *graph.Network, rotation *graph.VehicleRotation, datasource *ntdf.DataSource, now time.Time) *ntdf.VehicleRotation {
	converted := &ntdf.VehicleRotation{
		PrimaryIdentifier:    rotationIdentifier(rotation.ID),
		CreationDateTime:     now,
		ModificationDateTime: now,
		DataSource:           datasource,
		Label:                rotation.Label,
		VehicleType:          rotation.VehicleType,
		VehicleTypes:         rotations.VehicleTypes(rotation),
		OperatingDay:         rotation.OperatingDay,
		ValidDays:            rotation.ValidDays,
	}

	if rotation.Depot != nil {
		converted.DepotRef = stopIdentifier(rotation.Depot.ID)
	}

	for _, trip := range rotation.Trips() {
		converted.TripRefs = append(converted.TripRefs, tripIdentifier(trip.ID))
	}

	return converted
}

func sortedStopAreas(network *graph.Network) []*graph.StopArea {
	areas := make([]*graph.StopArea, 0, len(network.StopAreas))
	for _, area := range network.StopAreas {
		areas = append(areas, area)
	}
	sort.Slice(areas, func(i int, j int) bool { return areas[i].ID < areas[j].ID })
	return areas
}

func sortedPoints(network *graph.Network) []*graph.NetworkPoint {
	points := make([]*graph.NetworkPoint, 0, len(network.Points))
	for _, point := range network.Points {
		points = append(points, point)
	}
	sort.Slice(points, func(i int, j int) bool { return points[i].ID < points[j].ID })
	return points
}

func sortedRoutes(network *graph.Network) []*graph.Route {
	routes := make([]*graph.Route, 0, len(network.Routes))
	for _, route := range network.Routes {
		routes = append(routes, route)
	}
	sort.Slice(routes, func(i int, j int) bool { return routes[i].Ordinal < routes[j].Ordinal })
	return routes
}
