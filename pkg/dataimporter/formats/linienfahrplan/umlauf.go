package linienfahrplan

import (
	"fmt"
)

// Fahrzeugumlauf groups the rotations run by one vehicle type out of
// one depot.
type Fahrzeugumlauf struct {
	LfdNr       int64  `xml:"LfdNr"`
	Betriebshof int64  `xml:"Betriebshof"`
	Fahrzeugtyp string `xml:"Fahrzeugtyp"`

	Umlaeufe []*Umlauf `xml:"Umlaeufe>Umlauf"`
}

func (fahrzeugumlauf *Fahrzeugumlauf) Validate() error {
	if fahrzeugumlauf.Betriebshof == 0 {
		return &MalformedDocumentError{
			Path:   fmt.Sprintf("Fahrzeugumlauf[%d].Betriebshof", fahrzeugumlauf.LfdNr),
			Reason: "must reference a depot",
		}
	}
	for _, umlauf := range fahrzeugumlauf.Umlaeufe {
		if err := umlauf.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Umlauf is one vehicle rotation on one operating day.
type Umlauf struct {
	LfdNr             int64  `xml:"LfdNr"`
	UmlaufID          int64  `xml:"UmlaufID"`
	Umlaufbezeichnung string `xml:"Umlaufbezeichnung"`

	// Operating day in DD.MM.YYYY form.
	Kalenderdatum string `xml:"Kalenderdatum"`

	Umlaufteilgruppen []*Umlaufteilgruppe `xml:"Umlaufteilgruppen>Umlaufteilgruppe"`

	// Calendar days on which the rotation runs, each in DD.MM.YYYY
	// form.
	Gueltigkeiten []string `xml:"Gueltigkeiten>Kalenderzeitraum>Kalendertag"`
}

func (umlauf *Umlauf) Validate() error {
	if umlauf.UmlaufID == 0 {
		return &MalformedDocumentError{Path: "Umlauf.UmlaufID", Reason: "must be set"}
	}
	if umlauf.Kalenderdatum == "" {
		return &MalformedDocumentError{
			Path:   fmt.Sprintf("Umlauf[%d].Kalenderdatum", umlauf.UmlaufID),
			Reason: "must be set",
		}
	}
	if len(umlauf.Umlaufteilgruppen) == 0 {
		return &MalformedDocumentError{
			Path:   fmt.Sprintf("Umlauf[%d].Umlaufteilgruppen", umlauf.UmlaufID),
			Reason: "rotation has no segments",
		}
	}
	for _, umlaufteilgruppe := range umlauf.Umlaufteilgruppen {
		if len(umlaufteilgruppe.Fahrtreihenfolge) == 0 {
			return &MalformedDocumentError{
				Path:   fmt.Sprintf("Umlauf[%d].Umlaufteilgruppe[%d]", umlauf.UmlaufID, umlaufteilgruppe.LfdNr),
				Reason: "segment has no trips",
			}
		}
	}
	return nil
}

// Umlaufteilgruppe is a contiguous block of trips within a rotation,
// bound to one line and one vehicle working.
type Umlaufteilgruppe struct {
	LfdNr            int64 `xml:"LfdNr"`
	Wagenfolgenummer int64 `xml:"Wagenfolgenummer"`

	Linie *Linie `xml:"Linie"`

	// Block start and end in seconds since midnight of the
	// operating day.
	Beginn int64 `xml:"Beginn"`
	Ende   int64 `xml:"Ende"`

	Fahrzeugtypen []string `xml:"Fahrzeugtyp"`

	Fahrtreihenfolge []*Fahrt `xml:"Fahrtreihenfolge>Fahrt"`
}
