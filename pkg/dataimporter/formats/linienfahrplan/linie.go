package linienfahrplan

import (
	"fmt"
)

const (
	RichtungHin       = 0
	RichtungRueck     = 1
	RichtungRingfahrt = 2
)

// Linie is the line the document describes. Inside a Fahrt only
// Nummer is populated and the element acts as a back reference.
type Linie struct {
	Nummer   int64  `xml:"Nummer"`
	Kurzname string `xml:"Kurzname"`

	ZugeordneteBetriebshoefe []int64 `xml:"zugeordneteBetriebshoefe>Betriebshof"`

	Routen          []*Route          `xml:"RoutenDaten>Route"`
	Routenvarianten []*Routenvariante `xml:"Routenvarianten>Routenvariante"`
}

func (linie *Linie) Validate() error {
	if linie.Nummer == 0 {
		return &MalformedDocumentError{Path: "Linie.Nummer", Reason: "must be set"}
	}
	for _, route := range linie.Routen {
		if err := route.Validate(); err != nil {
			return err
		}
	}
	for _, routenvariante := range linie.Routenvarianten {
		if routenvariante.LfdNr == 0 {
			return &MalformedDocumentError{Path: "Routenvariante.LfdNr", Reason: "must be set"}
		}
		if routenvariante.LfdNrRoute == 0 {
			return &MalformedDocumentError{
				Path:   fmt.Sprintf("Routenvariante[%d].LfdNrRoute", routenvariante.LfdNr),
				Reason: "must reference a route",
			}
		}
	}
	return nil
}

// Route is one ordered path of a line through the network, given
// twice over as a link sequence and a point sequence.
type Route struct {
	LfdNr               int64 `xml:"LfdNr"`
	ExterneRoutennummer int64 `xml:"externeRoutennummer"`

	Richtung   int    `xml:"Richtung"`
	Hauptroute JNFlag `xml:"Hauptroute"`

	Zielanzeigen []*Zielanzeige `xml:"Zielanzeigen>Zielanzeige"`

	Streckenfolge []*Strecke `xml:"Streckenfolge>Strecke"`
	Punktfolge    []*Punkt   `xml:"Punktfolge>Punkt"`

	Fahrzeitprofile []*Fahrzeitprofil `xml:"Fahrzeitprofile>Fahrzeitprofil"`
}

func (route *Route) Validate() error {
	if route.LfdNr == 0 {
		return &MalformedDocumentError{Path: "Route.LfdNr", Reason: "must be set"}
	}
	if route.Richtung != RichtungHin && route.Richtung != RichtungRueck && route.Richtung != RichtungRingfahrt {
		return &MalformedDocumentError{
			Path:   fmt.Sprintf("Route[%d].Richtung", route.LfdNr),
			Reason: fmt.Sprintf("direction must be 0, 1 or 2 but is %d", route.Richtung),
		}
	}
	if len(route.Punktfolge) < 2 {
		return &MalformedDocumentError{
			Path:   fmt.Sprintf("Route[%d].Punktfolge", route.LfdNr),
			Reason: "route needs at least two points",
		}
	}
	for _, punkt := range route.Punktfolge {
		if punkt.Netzpunkt == nil || punkt.Netzpunkt.Nummer == 0 {
			return &MalformedDocumentError{
				Path:   fmt.Sprintf("Route[%d].Punktfolge[%d]", route.LfdNr, punkt.LfdNr),
				Reason: "point without a Netzpunkt reference",
			}
		}
	}
	for _, fahrzeitprofil := range route.Fahrzeitprofile {
		if len(fahrzeitprofil.Punkte) != len(route.Punktfolge) {
			return &MalformedDocumentError{
				Path: fmt.Sprintf("Route[%d].Fahrzeitprofile[%d]", route.LfdNr, fahrzeitprofil.Nummer),
				Reason: fmt.Sprintf("profile has %d points but the route has %d",
					len(fahrzeitprofil.Punkte), len(route.Punktfolge)),
			}
		}
	}
	return nil
}

// Punkt is one entry of a point sequence. Inside Fahrzeitprofilpunkte
// only LfdNr, Streckenfahrzeit and Wartezeit are populated.
type Punkt struct {
	LfdNr     int64      `xml:"LfdNr"`
	Netzpunkt *Netzpunkt `xml:"Netzpunkt"`

	Fahrgastwechsel JNFlag   `xml:"Fahrgastwechsel"`
	Veroeffentlicht []JNFlag `xml:"Veroeffentlicht"`

	Zielanzeige *Zielanzeige `xml:"Zielanzeige"`

	// Running time from the previous point and dwell time at this
	// point, both in seconds.
	Streckenfahrzeit *int64 `xml:"Streckenfahrzeit"`
	Wartezeit        *int64 `xml:"Wartezeit"`
}

type Zielanzeige struct {
	Nummer      int64  `xml:"Nummer"`
	AnzeigeText string `xml:"AnzeigeText"`
}

// Fahrzeitprofil assigns per point running and dwell times to a
// route. Trips pick one profile by number.
type Fahrzeitprofil struct {
	Nummer int64    `xml:"FahrzeitprofilNummer"`
	Punkte []*Punkt `xml:"Fahrzeitprofilpunkte>Punkt"`
}

// Routenvariante links a trip to a route, optionally overriding the
// contracting authority or the publication flags.
type Routenvariante struct {
	LfdNr      int64 `xml:"LfdNr"`
	LfdNrRoute int64 `xml:"LfdNrRoute"`

	AbweichenderAuftraggeber     []*Strecke `xml:"abweichenderAuftraggeber>Strecke"`
	AbweichendeVeroeffentlichung []*Strecke `xml:"abweichendeVeroeffentlichung>Strecke"`
}
