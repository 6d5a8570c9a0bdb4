package graph

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/netzplan/netzplan/pkg/dataimporter/formats/linienfahrplan"
)

func seconds(value int64) *int64 {
	return &value
}

func testDocument() *linienfahrplan.Linienfahrplan {
	return &linienfahrplan.Linienfahrplan{
		Generierung: linienfahrplan.Generierung{
			Startzeitpunkt:        "2022-11-03T10:00:00",
			Schnittstellenversion: linienfahrplan.SupportedInterfaceVersion,
			Datenversion:          "2022-2",
		},
		StreckennetzDaten: &linienfahrplan.StreckennetzDaten{
			Haltestellenbereiche: []*linienfahrplan.Haltestellenbereich{
				{Nummer: 900001, Kurzname: "ALP", Fahrplanbuchname: "S Alexanderplatz"},
			},
			Netzpunkte: []*linienfahrplan.Netzpunkt{
				{
					Nummer: 101, Kurzname: "ALP1", Langname: "S Alexanderplatz Pos. 1",
					Netzpunkttyp: linienfahrplan.NetzpunktTypHaltestelle,
					Xkoordinate:  25460000, Ykoordinate: 21530000,
					MitFahrgastwechsel:  true,
					Haltestellenbereich: &linienfahrplan.Haltestellenbereich{Nummer: 900001},
				},
				{
					Nummer: 102, Kurzname: "MEM", Langname: "Memhardstr.",
					Netzpunkttyp: linienfahrplan.NetzpunktTypHaltestelle,
					Xkoordinate:  25510000, Ykoordinate: 21610000,
					MitFahrgastwechsel: true,
				},
				{
					Nummer: 201, Kurzname: "BHI", Langname: "Betriebshof Indira-Gandhi-Str.",
					Netzpunkttyp: linienfahrplan.NetzpunktTypBetriebshof,
					Xkoordinate:  29000000, Ykoordinate: 25000000,
				},
			},
			Strecken: []*linienfahrplan.Strecke{
				{ID: 5001, Startpunkt: 101, Endpunkt: 102, Streckenlaenge: 1200000},
			},
		},
		LinienDaten: &linienfahrplan.LinienDaten{
			Linie: &linienfahrplan.Linie{
				Nummer:   100,
				Kurzname: "100",
				Routen: []*linienfahrplan.Route{
					{
						LfdNr:               1,
						ExterneRoutennummer: 1,
						Richtung:            linienfahrplan.RichtungHin,
						Hauptroute:          true,
						Zielanzeigen: []*linienfahrplan.Zielanzeige{
							{Nummer: 1, AnzeigeText: "S Alexanderplatz"},
						},
						Streckenfolge: []*linienfahrplan.Strecke{
							{LfdNr: 1, StreckenID: 5001},
						},
						Punktfolge: []*linienfahrplan.Punkt{
							{
								LfdNr:           1,
								Netzpunkt:       &linienfahrplan.Netzpunkt{Nummer: 101},
								Fahrgastwechsel: true,
								Veroeffentlicht: []linienfahrplan.JNFlag{true},
								Zielanzeige:     &linienfahrplan.Zielanzeige{Nummer: 1},
							},
							{
								LfdNr:           2,
								Netzpunkt:       &linienfahrplan.Netzpunkt{Nummer: 102},
								Fahrgastwechsel: true,
								Veroeffentlicht: []linienfahrplan.JNFlag{true},
							},
						},
						Fahrzeitprofile: []*linienfahrplan.Fahrzeitprofil{
							{
								Nummer: 1,
								Punkte: []*linienfahrplan.Punkt{
									{LfdNr: 1, Streckenfahrzeit: seconds(0), Wartezeit: seconds(0)},
									{LfdNr: 2, Streckenfahrzeit: seconds(180), Wartezeit: seconds(30)},
								},
							},
						},
					},
				},
				Routenvarianten: []*linienfahrplan.Routenvariante{
					{LfdNr: 1, LfdNrRoute: 1},
				},
			},
		},
		FahrtDaten: &linienfahrplan.FahrtDaten{
			Fahrten: []*linienfahrplan.Fahrt{
				{
					ID:                  7001,
					Linie:               &linienfahrplan.Linie{Nummer: 100},
					Fahrgastrelevant:    true,
					LfdNrRoutenvariante: 1,
					Startzeit:           91800,
					Fahrzeitprofil:      &linienfahrplan.Fahrzeitprofil{Nummer: 1},
					Fahrzeugtyp:         "EN",
					Veroeffentlicht:     []linienfahrplan.JNFlag{true},
				},
			},
		},
		FahrzeugumlaufDaten: &linienfahrplan.FahrzeugumlaufDaten{
			Fahrzeugumlaeufe: []*linienfahrplan.Fahrzeugumlauf{
				{
					LfdNr:       1,
					Betriebshof: 201,
					Fahrzeugtyp: "EN",
					Umlaeufe: []*linienfahrplan.Umlauf{
						{
							LfdNr:             1,
							UmlaufID:          40001,
							Umlaufbezeichnung: "100/1",
							Kalenderdatum:     "07.11.2022",
							Gueltigkeiten:     []string{"07.11.2022", "08.11.2022"},
							Umlaufteilgruppen: []*linienfahrplan.Umlaufteilgruppe{
								{
									LfdNr:            1,
									Wagenfolgenummer: 1,
									Linie:            &linienfahrplan.Linie{Nummer: 100},
									Beginn:           91800,
									Ende:             92010,
									Fahrzeugtypen:    []string{"EN"},
									Fahrtreihenfolge: []*linienfahrplan.Fahrt{
										{LfdNr: 1, FahrtID: 7001},
									},
								},
							},
						},
					},
				},
			},
		},
	}
}

func TestResolve(t *testing.T) {
	network, report, err := Resolve(testDocument(), Options{})
	if err != nil {
		t.Fatalf("Resolve() returned error: %v", err)
	}
	if !report.Clean() {
		t.Fatalf("report is not clean: %+v", report)
	}

	if network.LineNumber != 100 || network.LineName != "100" {
		t.Errorf("line resolved wrong: %d %q", network.LineNumber, network.LineName)
	}

	link := network.Links[5001]
	if link == nil {
		t.Fatal("link 5001 not resolved")
	}
	if link.From != network.Points[101] || link.To != network.Points[102] {
		t.Error("link endpoints are not the points from the point table")
	}
	if link.LengthMetres != 1200 {
		t.Errorf("link length is %f m, want 1200", link.LengthMetres)
	}

	if network.Points[101].StopArea != network.StopAreas[900001] {
		t.Error("point 101 is not attached to its stop area")
	}
	if network.Points[101].Easting != 25460 {
		t.Errorf("point 101 easting is %f m, want 25460", network.Points[101].Easting)
	}

	route := network.Routes[1]
	if route == nil {
		t.Fatal("route 1 not resolved")
	}
	if len(route.Links) != 1 || route.Links[0] != link {
		t.Error("route link sequence not resolved")
	}
	if route.Points[0].DestinationDisplay != "S Alexanderplatz" {
		t.Errorf("destination display is %q", route.Points[0].DestinationDisplay)
	}
	if route.LengthMetres() != 1200 {
		t.Errorf("route length is %f m, want 1200", route.LengthMetres())
	}

	trip := network.Trips[7001]
	if trip == nil {
		t.Fatal("trip 7001 not resolved")
	}
	if trip.Variant != network.Variants[1] || trip.Variant.Route != route {
		t.Error("trip variant chain not resolved")
	}
	if trip.Kind != TripKindPassenger {
		t.Errorf("trip kind is %q, want passenger", trip.Kind)
	}

	wantStopTimes := []*StopTime{
		{Point: network.Points[101]},
		{Point: network.Points[102], ArrivalOffset: 180 * time.Second, Dwell: 30 * time.Second},
	}
	if diff := cmp.Diff(wantStopTimes, trip.StopTimes); diff != "" {
		t.Errorf("stop times mismatch (-want +got):\n%s", diff)
	}
	if trip.Duration() != 210*time.Second {
		t.Errorf("trip duration is %s, want 3m30s", trip.Duration())
	}

	if len(network.Rotations) != 1 {
		t.Fatalf("resolved %d rotations, want 1", len(network.Rotations))
	}
	rotation := network.Rotations[0]
	if rotation.Depot != network.Points[201] {
		t.Error("rotation depot not resolved")
	}
	if rotation.OperatingDay != time.Date(2022, time.November, 7, 0, 0, 0, 0, time.UTC) {
		t.Errorf("operating day is %s", rotation.OperatingDay)
	}
	if len(rotation.ValidDays) != 2 {
		t.Errorf("resolved %d valid days, want 2", len(rotation.ValidDays))
	}
	if len(rotation.Segments) != 1 || rotation.Segments[0].Trips[0] != trip {
		t.Error("rotation segment trips not resolved")
	}
	if rotation.FirstPoint() != network.Points[101] || rotation.LastPoint() != network.Points[102] {
		t.Error("rotation endpoints not derived from its trips")
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	first, _, err := Resolve(testDocument(), Options{})
	if err != nil {
		t.Fatalf("first Resolve() returned error: %v", err)
	}
	second, _, err := Resolve(testDocument(), Options{})
	if err != nil {
		t.Fatalf("second Resolve() returned error: %v", err)
	}

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("resolving the same document twice differs (-first +second):\n%s", diff)
	}
}

func TestResolveStrictFailsOnDanglingReference(t *testing.T) {
	doc := testDocument()
	doc.FahrtDaten.Fahrten[0].LfdNrRoutenvariante = 99

	network, report, err := Resolve(doc, Options{})
	if err == nil {
		t.Fatal("Resolve() accepted a dangling route variant reference")
	}
	if network != nil {
		t.Error("Resolve() returned a network despite strict mode failure")
	}
	if len(report.Dangling) == 0 {
		t.Fatal("report does not record the dangling reference")
	}
	dangling := report.Dangling[0]
	if dangling.Entity != "Trip" || dangling.TargetID != 99 {
		t.Errorf("dangling reference recorded wrong: %+v", dangling)
	}
}

func TestResolveBestEffortExcludesUnresolvedTrips(t *testing.T) {
	doc := testDocument()
	doc.FahrtDaten.Fahrten[0].LfdNrRoutenvariante = 99

	network, report, err := Resolve(doc, Options{BestEffort: true})
	if err != nil {
		t.Fatalf("Resolve() returned error in best effort mode: %v", err)
	}

	if _, found := network.Trips[7001]; found {
		t.Error("unresolved trip is still in the trip table")
	}
	if len(report.ExcludedTrips) != 1 || report.ExcludedTrips[0] != 7001 {
		t.Errorf("excluded trips recorded wrong: %v", report.ExcludedTrips)
	}

	// The rotation's only segment referenced the excluded trip, so
	// the rotation is excluded as well.
	if len(network.Rotations) != 0 {
		t.Error("rotation built from an excluded trip survived")
	}
	if len(report.ExcludedRotations) != 1 || report.ExcludedRotations[0] != 40001 {
		t.Errorf("excluded rotations recorded wrong: %v", report.ExcludedRotations)
	}
}

func TestResolveRecordsSegmentOrderViolations(t *testing.T) {
	doc := testDocument()
	doc.FahrtDaten.Fahrten = append(doc.FahrtDaten.Fahrten, &linienfahrplan.Fahrt{
		ID:                  7002,
		Linie:               &linienfahrplan.Linie{Nummer: 100},
		Fahrgastrelevant:    true,
		LfdNrRoutenvariante: 1,
		Startzeit:           90000,
		Fahrzeitprofil:      &linienfahrplan.Fahrzeitprofil{Nummer: 1},
		Fahrzeugtyp:         "EN",
	})
	reihenfolge := doc.FahrzeugumlaufDaten.Fahrzeugumlaeufe[0].Umlaeufe[0].Umlaufteilgruppen[0].Fahrtreihenfolge
	doc.FahrzeugumlaufDaten.Fahrzeugumlaeufe[0].Umlaeufe[0].Umlaufteilgruppen[0].Fahrtreihenfolge = append(
		reihenfolge, &linienfahrplan.Fahrt{LfdNr: 2, FahrtID: 7002})

	_, report, err := Resolve(doc, Options{BestEffort: true})
	if err != nil {
		t.Fatalf("Resolve() returned error: %v", err)
	}
	if len(report.OrderViolations) != 1 {
		t.Fatalf("recorded %d order violations, want 1", len(report.OrderViolations))
	}
	if report.OrderViolations[0].TripID != 7002 {
		t.Errorf("order violation recorded wrong trip: %+v", report.OrderViolations[0])
	}
}
