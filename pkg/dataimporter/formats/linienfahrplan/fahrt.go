package linienfahrplan

import (
	"fmt"
)

// Fahrt is a single scheduled trip. Inside a Fahrtreihenfolge only
// LfdNr and FahrtID are populated and the element acts as a reference
// into FahrtDaten.
type Fahrt struct {
	ID    int64  `xml:"ID"`
	Linie *Linie `xml:"Linie"`

	Fahrgastrelevant JNFlag `xml:"Fahrgastrelevant"`

	LfdNrRoutenvariante int64 `xml:"LfdNrRoutenvariante"`

	// Departure time in seconds since midnight of the operating
	// day. Values past 86400 roll over into the next calendar day.
	Startzeit int64 `xml:"Startzeit"`

	Fahrtart string `xml:"Fahrtart"`

	Fahrzeitprofil *Fahrzeitprofil `xml:"Fahrzeitprofil"`

	Fahrzeugtyp      string   `xml:"Fahrzeugtyp"`
	Fremdunternehmer int64    `xml:"Fremdunternehmer"`
	Auftraggeber     []int64  `xml:"Auftraggeber"`
	Veroeffentlicht  []JNFlag `xml:"Veroeffentlicht"`

	LfdNr   int64 `xml:"LfdNr"`
	FahrtID int64 `xml:"FahrtID"`
}

func (fahrt *Fahrt) Validate() error {
	if fahrt.ID == 0 {
		return &MalformedDocumentError{Path: "Fahrt.ID", Reason: "must be set"}
	}
	if fahrt.LfdNrRoutenvariante == 0 {
		return &MalformedDocumentError{
			Path:   fmt.Sprintf("Fahrt[%d].LfdNrRoutenvariante", fahrt.ID),
			Reason: "must reference a route variant",
		}
	}
	return nil
}
