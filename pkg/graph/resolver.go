package graph

import (
	"fmt"
	"time"

	"github.com/netzplan/netzplan/pkg/dataimporter/formats/linienfahrplan"
	"github.com/netzplan/netzplan/pkg/util"

	"github.com/rs/zerolog/log"
)

type Options struct {
	// BestEffort keeps resolving past dangling references. Affected
	// trips and rotations are excluded from the network and recorded
	// in the report instead of failing the run.
	BestEffort bool
}

// Resolve turns the deserialized tree into a fully linked network.
// Entities resolve in dependency order, points and links first, then
// routes, variants, trips and finally rotations, so every lookup
// table is complete before it is consulted.
func Resolve(doc *linienfahrplan.Linienfahrplan, options Options) (*Network, *Report, error) {
	resolver := &resolver{
		doc:     doc,
		options: options,
		network: &Network{
			DataVersion: doc.Generierung.Datenversion,
			StopAreas:   map[int64]*StopArea{},
			Points:      map[int64]*NetworkPoint{},
			Links:       map[int64]*Link{},
			Routes:      map[int64]*Route{},
			Variants:    map[int64]*RouteVariant{},
			Trips:       map[int64]*Trip{},
		},
		report: &Report{},
	}

	resolver.resolveStopAreas()
	resolver.resolvePoints()
	resolver.resolveLinks()
	resolver.resolveRoutes()
	resolver.resolveVariants()
	resolver.resolveTrips()
	if err := resolver.resolveRotations(); err != nil {
		return nil, resolver.report, err
	}

	if !options.BestEffort && !resolver.report.Clean() {
		return nil, resolver.report, resolver.report.Err()
	}

	log.Info().
		Int("points", len(resolver.network.Points)).
		Int("links", len(resolver.network.Links)).
		Int("trips", len(resolver.network.Trips)).
		Int("rotations", len(resolver.network.Rotations)).
		Int("dangling", len(resolver.report.Dangling)).
		Msg("Resolved network")

	return resolver.network, resolver.report, nil
}

type resolver struct {
	doc     *linienfahrplan.Linienfahrplan
	options Options
	network *Network
	report  *Report
}

func (r *resolver) dangling(entity string, entityID int64, field string, targetID int64) {
	r.report.Dangling = append(r.report.Dangling, &DanglingReferenceError{
		Entity:   entity,
		EntityID: entityID,
		Field:    field,
		TargetID: targetID,
	})
}

func (r *resolver) resolveStopAreas() {
	for _, bereich := range r.doc.StreckennetzDaten.Haltestellenbereiche {
		r.network.StopAreas[bereich.Nummer] = &StopArea{
			ID:       bereich.Nummer,
			Name:     bereich.Kurzname,
			BookName: bereich.Fahrplanbuchname,
		}
	}
}

func pointKind(typ linienfahrplan.NetzpunktTyp) PointKind {
	switch typ {
	case linienfahrplan.NetzpunktTypHaltestelle:
		return PointKindStop
	case linienfahrplan.NetzpunktTypEinsetzpunkt:
		return PointKindEntry
	case linienfahrplan.NetzpunktTypAussetzpunkt:
		return PointKindExit
	case linienfahrplan.NetzpunktTypBetriebshof:
		return PointKindBoundary
	default:
		return PointKindGeneric
	}
}

func (r *resolver) resolvePoints() {
	for _, netzpunkt := range r.doc.StreckennetzDaten.Netzpunkte {
		point := &NetworkPoint{
			ID:                netzpunkt.Nummer,
			ShortName:         netzpunkt.Kurzname,
			LongName:          netzpunkt.Langname,
			Kind:              pointKind(netzpunkt.Netzpunkttyp),
			Easting:           float64(netzpunkt.Xkoordinate) / millimetresPerMetre,
			Northing:          float64(netzpunkt.Ykoordinate) / millimetresPerMetre,
			PassengerExchange: netzpunkt.MitFahrgastwechsel.Bool(),
		}

		if netzpunkt.Haltestellenbereich != nil {
			stopArea, found := r.network.StopAreas[netzpunkt.Haltestellenbereich.Nummer]
			if found {
				point.StopArea = stopArea
			} else {
				r.dangling("NetworkPoint", point.ID, "Haltestellenbereich", netzpunkt.Haltestellenbereich.Nummer)
			}
		}

		for _, gebiet := range netzpunkt.Gebietskoerperschaften {
			name := gebiet.Langname
			if name == "" {
				name = gebiet.Kurzname
			}
			point.AdministrativeAreas = append(point.AdministrativeAreas, name)
		}

		r.network.Points[point.ID] = point
	}
}

func (r *resolver) resolveLinks() {
	for _, strecke := range r.doc.StreckennetzDaten.Strecken {
		from, foundFrom := r.network.Points[strecke.Startpunkt]
		if !foundFrom {
			r.dangling("Link", strecke.ID, "Startpunkt", strecke.Startpunkt)
		}
		to, foundTo := r.network.Points[strecke.Endpunkt]
		if !foundTo {
			r.dangling("Link", strecke.ID, "Endpunkt", strecke.Endpunkt)
		}
		if !foundFrom || !foundTo {
			continue
		}

		link := &Link{
			ID:           strecke.ID,
			From:         from,
			To:           to,
			LengthMetres: float64(strecke.Streckenlaenge) / millimetresPerMetre,
		}

		for _, zwischenpunkt := range strecke.Zwischenpunkte {
			point, found := r.network.Points[zwischenpunkt.Netzpunkt.Nummer]
			if !found {
				r.dangling("Link", strecke.ID, "Zwischenpunkt", zwischenpunkt.Netzpunkt.Nummer)
				continue
			}
			link.Intermediate = append(link.Intermediate, &LinkPoint{
				Point:                   point,
				DistanceFromStartMetres: float64(zwischenpunkt.EntfernungVomStart) / millimetresPerMetre,
			})
		}

		r.network.Links[link.ID] = link
	}
}

func (r *resolver) resolveRoutes() {
	linie := r.doc.LinienDaten.Linie
	r.network.LineNumber = linie.Nummer
	r.network.LineName = linie.Kurzname

	for _, sourceRoute := range linie.Routen {
		route := &Route{
			Ordinal:             sourceRoute.LfdNr,
			ExternalNumber:      sourceRoute.ExterneRoutennummer,
			Direction:           sourceRoute.Richtung,
			MainRoute:           sourceRoute.Hauptroute.Bool(),
			DestinationDisplays: map[int64]string{},
			Profiles:            map[int64]*TimeProfile{},
		}

		for _, zielanzeige := range sourceRoute.Zielanzeigen {
			route.DestinationDisplays[zielanzeige.Nummer] = zielanzeige.AnzeigeText
		}

		for _, entry := range sourceRoute.Streckenfolge {
			link, found := r.network.Links[entry.StreckenID]
			if !found {
				r.dangling("Route", route.Ordinal, "StreckenID", entry.StreckenID)
				continue
			}
			route.Links = append(route.Links, link)
		}

		complete := true
		for _, punkt := range sourceRoute.Punktfolge {
			point, found := r.network.Points[punkt.Netzpunkt.Nummer]
			if !found {
				r.dangling("Route", route.Ordinal, "Netzpunkt", punkt.Netzpunkt.Nummer)
				complete = false
				continue
			}

			routePoint := &RoutePoint{
				Ordinal:           punkt.LfdNr,
				Point:             point,
				PassengerExchange: punkt.Fahrgastwechsel.Bool(),
				Published:         published(punkt.Veroeffentlicht),
			}
			if punkt.Zielanzeige != nil {
				routePoint.DestinationDisplay = route.DestinationDisplays[punkt.Zielanzeige.Nummer]
			}
			route.Points = append(route.Points, routePoint)
		}

		// A route with holes in its point sequence can no longer be
		// aligned with its time profiles, so it is dropped entirely.
		if !complete {
			continue
		}

		for _, sourceProfil := range sourceRoute.Fahrzeitprofile {
			profile := &TimeProfile{Number: sourceProfil.Nummer}
			for _, punkt := range sourceProfil.Punkte {
				entry := TimeProfileEntry{}
				if punkt.Streckenfahrzeit != nil {
					entry.RunningTime = time.Duration(*punkt.Streckenfahrzeit) * time.Second
				}
				if punkt.Wartezeit != nil {
					entry.DwellTime = time.Duration(*punkt.Wartezeit) * time.Second
				}
				profile.Entries = append(profile.Entries, entry)
			}
			route.Profiles[profile.Number] = profile
		}

		r.network.Routes[route.Ordinal] = route
	}
}

func published(flags []linienfahrplan.JNFlag) bool {
	for _, flag := range flags {
		if flag.Bool() {
			return true
		}
	}
	return false
}

func (r *resolver) resolveVariants() {
	for _, routenvariante := range r.doc.LinienDaten.Linie.Routenvarianten {
		route, found := r.network.Routes[routenvariante.LfdNrRoute]
		if !found {
			r.dangling("RouteVariant", routenvariante.LfdNr, "LfdNrRoute", routenvariante.LfdNrRoute)
			continue
		}

		r.network.Variants[routenvariante.LfdNr] = &RouteVariant{
			Ordinal: routenvariante.LfdNr,
			Route:   route,
		}
	}
}

func (r *resolver) resolveTrips() {
	for _, fahrt := range r.doc.FahrtDaten.Fahrten {
		variant, found := r.network.Variants[fahrt.LfdNrRoutenvariante]
		if !found {
			r.dangling("Trip", fahrt.ID, "LfdNrRoutenvariante", fahrt.LfdNrRoutenvariante)
			r.report.ExcludedTrips = append(r.report.ExcludedTrips, fahrt.ID)
			continue
		}

		var profileNumber int64
		if fahrt.Fahrzeitprofil != nil {
			profileNumber = fahrt.Fahrzeitprofil.Nummer
		}
		profile, found := variant.Route.Profiles[profileNumber]
		if !found {
			r.dangling("Trip", fahrt.ID, "Fahrzeitprofil", profileNumber)
			r.report.ExcludedTrips = append(r.report.ExcludedTrips, fahrt.ID)
			continue
		}

		kind := TripKindEmpty
		if fahrt.Fahrgastrelevant.Bool() {
			kind = TripKindPassenger
		}

		var lineNumber int64
		if fahrt.Linie != nil {
			lineNumber = fahrt.Linie.Nummer
		}

		trip := &Trip{
			ID:           fahrt.ID,
			LineNumber:   lineNumber,
			Variant:      variant,
			Profile:      profile,
			StartSeconds: fahrt.Startzeit,
			Kind:         kind,
			VehicleType:  fahrt.Fahrzeugtyp,
			Published:    published(fahrt.Veroeffentlicht),
			StopTimes:    buildStopTimes(variant.Route, profile),
		}

		r.network.Trips[trip.ID] = trip
	}
}

func (r *resolver) resolveRotations() error {
	for _, fahrzeugumlauf := range r.doc.FahrzeugumlaufDaten.Fahrzeugumlaeufe {
		depot, found := r.network.Points[fahrzeugumlauf.Betriebshof]
		if !found {
			r.dangling("VehicleRotation", fahrzeugumlauf.LfdNr, "Betriebshof", fahrzeugumlauf.Betriebshof)
		}

		for _, umlauf := range fahrzeugumlauf.Umlaeufe {
			operatingDay, err := util.ParseCalendarDate(umlauf.Kalenderdatum)
			if err != nil {
				return &linienfahrplan.MalformedDocumentError{
					Path:   fmt.Sprintf("Umlauf[%d].Kalenderdatum", umlauf.UmlaufID),
					Reason: err.Error(),
				}
			}

			rotation := &VehicleRotation{
				ID:           umlauf.UmlaufID,
				Label:        umlauf.Umlaufbezeichnung,
				Depot:        depot,
				VehicleType:  fahrzeugumlauf.Fahrzeugtyp,
				OperatingDay: operatingDay,
			}

			for _, kalendertag := range umlauf.Gueltigkeiten {
				day, err := util.ParseCalendarDate(kalendertag)
				if err != nil {
					return &linienfahrplan.MalformedDocumentError{
						Path:   fmt.Sprintf("Umlauf[%d].Gueltigkeiten", umlauf.UmlaufID),
						Reason: err.Error(),
					}
				}
				rotation.ValidDays = append(rotation.ValidDays, day)
			}

			for _, umlaufteilgruppe := range umlauf.Umlaufteilgruppen {
				segment := r.resolveSegment(rotation, umlaufteilgruppe)
				if segment != nil {
					rotation.Segments = append(rotation.Segments, segment)
				}
			}

			if depot == nil || len(rotation.Segments) == 0 {
				r.report.ExcludedRotations = append(r.report.ExcludedRotations, rotation.ID)
				continue
			}

			r.network.Rotations = append(r.network.Rotations, rotation)
		}
	}

	return nil
}

func (r *resolver) resolveSegment(rotation *VehicleRotation, umlaufteilgruppe *linienfahrplan.Umlaufteilgruppe) *RotationSegment {
	segment := &RotationSegment{
		Ordinal:        umlaufteilgruppe.LfdNr,
		VehicleWorking: umlaufteilgruppe.Wagenfolgenummer,
		BeginSeconds:   umlaufteilgruppe.Beginn,
		EndSeconds:     umlaufteilgruppe.Ende,
		VehicleTypes:   umlaufteilgruppe.Fahrzeugtypen,
	}

	for _, fahrt := range umlaufteilgruppe.Fahrtreihenfolge {
		trip, found := r.network.Trips[fahrt.FahrtID]
		if !found {
			r.dangling("RotationSegment", rotation.ID, "FahrtID", fahrt.FahrtID)
			continue
		}

		if len(segment.Trips) > 0 && trip.StartSeconds < segment.Trips[len(segment.Trips)-1].StartSeconds {
			r.report.OrderViolations = append(r.report.OrderViolations, &OrderViolation{
				RotationID:     rotation.ID,
				SegmentOrdinal: segment.Ordinal,
				TripID:         trip.ID,
			})
		}

		segment.Trips = append(segment.Trips, trip)
	}

	if len(segment.Trips) == 0 {
		return nil
	}

	return segment
}
