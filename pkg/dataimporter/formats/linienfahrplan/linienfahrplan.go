package linienfahrplan

import (
	"fmt"

	"github.com/netzplan/netzplan/pkg/dataimporter/formats"
)

const SupportedInterfaceVersion = "2.2"

var _ formats.Format = (*Linienfahrplan)(nil)

// Linienfahrplan is a single line timetable export from an IVU planning
// system. One document carries the network geometry, one line with its
// routes, the trips running on that line and the vehicle rotations that
// string the trips together.
type Linienfahrplan struct {
	Generierung Generierung `xml:"Generierung"`

	StreckennetzDaten   *StreckennetzDaten   `xml:"StreckennetzDaten"`
	LinienDaten         *LinienDaten         `xml:"LinienDaten"`
	FahrtDaten          *FahrtDaten          `xml:"FahrtDaten"`
	FahrzeugumlaufDaten *FahrzeugumlaufDaten `xml:"FahrzeugumlaufDaten"`
}

type Generierung struct {
	Startzeitpunkt        string `xml:"Startzeitpunkt"`
	Schnittstellenversion string `xml:"Schnittstellenversion"`
	Datenversion          string `xml:"Datenversion"`

	Ergebnis Ergebnis `xml:"Ergebnis"`

	Parameter []Parameter `xml:"GenerierungsParameter>Parameter"`
}

type Ergebnis struct {
	ReturnCode int       `xml:"ReturnCode"`
	Meldungen  []Meldung `xml:"Meldungsliste>Meldung"`
}

type Meldung struct {
	Meldungskategorie int    `xml:"Meldungskategorie"`
	Meldungsnummer    int    `xml:"Meldungsnummer"`
	Meldungstext      string `xml:"Meldungstext"`
}

type Parameter struct {
	Name string `xml:"Name"`
	Wert string `xml:"Wert"`
}

type StreckennetzDaten struct {
	Haltestellenbereiche   []*Haltestellenbereich  `xml:"Haltestellenbereiche>Haltestellenbereich"`
	Netzpunkte             []*Netzpunkt            `xml:"Netzpunkte>Netzpunkt"`
	Gebietskoerperschaften []*Gebietskoerperschaft `xml:"Gebietskoerperschaften>Gebietskoerperschaft"`
	Strecken               []*Strecke              `xml:"Strecken>Strecke"`
}

type LinienDaten struct {
	Linie *Linie `xml:"Linie"`
}

type FahrtDaten struct {
	Fahrten []*Fahrt `xml:"Fahrt"`
}

type FahrzeugumlaufDaten struct {
	Fahrzeugumlaeufe []*Fahrzeugumlauf `xml:"Fahrzeugumlauf"`
}

func (doc *Linienfahrplan) Validate() error {
	if doc.Generierung.Startzeitpunkt == "" {
		return &MalformedDocumentError{Path: "Generierung.Startzeitpunkt", Reason: "must be set"}
	}
	if doc.Generierung.Schnittstellenversion == "" {
		return &MalformedDocumentError{Path: "Generierung.Schnittstellenversion", Reason: "must be set"}
	}
	if doc.Generierung.Schnittstellenversion != SupportedInterfaceVersion {
		return &MalformedDocumentError{
			Path:   "Generierung.Schnittstellenversion",
			Reason: fmt.Sprintf("must be %s but is %s", SupportedInterfaceVersion, doc.Generierung.Schnittstellenversion),
		}
	}
	if doc.Generierung.Ergebnis.ReturnCode != 0 {
		return &MalformedDocumentError{
			Path:   "Generierung.Ergebnis.ReturnCode",
			Reason: fmt.Sprintf("export reported failure code %d", doc.Generierung.Ergebnis.ReturnCode),
		}
	}

	if doc.StreckennetzDaten == nil {
		return &MalformedDocumentError{Path: "StreckennetzDaten", Reason: "section is missing"}
	}
	if doc.LinienDaten == nil || doc.LinienDaten.Linie == nil {
		return &MalformedDocumentError{Path: "LinienDaten.Linie", Reason: "section is missing"}
	}
	if doc.FahrtDaten == nil {
		return &MalformedDocumentError{Path: "FahrtDaten", Reason: "section is missing"}
	}
	if doc.FahrzeugumlaufDaten == nil {
		return &MalformedDocumentError{Path: "FahrzeugumlaufDaten", Reason: "section is missing"}
	}

	for _, netzpunkt := range doc.StreckennetzDaten.Netzpunkte {
		if err := netzpunkt.Validate(); err != nil {
			return err
		}
	}
	for _, strecke := range doc.StreckennetzDaten.Strecken {
		if err := strecke.Validate(); err != nil {
			return err
		}
	}
	if err := doc.LinienDaten.Linie.Validate(); err != nil {
		return err
	}
	for _, fahrt := range doc.FahrtDaten.Fahrten {
		if err := fahrt.Validate(); err != nil {
			return err
		}
	}
	for _, fahrzeugumlauf := range doc.FahrzeugumlaufDaten.Fahrzeugumlaeufe {
		if err := fahrzeugumlauf.Validate(); err != nil {
			return err
		}
	}

	return nil
}
