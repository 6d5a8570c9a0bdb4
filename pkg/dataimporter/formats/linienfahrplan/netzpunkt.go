package linienfahrplan

import (
	"fmt"
)

// NetzpunktTyp classifies a network point. Hst is a passenger stop,
// BPunkt a depot gate, EPkt and APkt are pull-in and pull-out points
// and GPkt a plain routing node.
type NetzpunktTyp string

const (
	NetzpunktTypHaltestelle    NetzpunktTyp = "Hst"
	NetzpunktTypBetriebshof    NetzpunktTyp = "BPunkt"
	NetzpunktTypEinsetzpunkt   NetzpunktTyp = "EPkt"
	NetzpunktTypAussetzpunkt   NetzpunktTyp = "APkt"
	NetzpunktTypGeometriepunkt NetzpunktTyp = "GPkt"
)

func (typ NetzpunktTyp) IsValid() bool {
	switch typ {
	case NetzpunktTypHaltestelle, NetzpunktTypBetriebshof, NetzpunktTypEinsetzpunkt,
		NetzpunktTypAussetzpunkt, NetzpunktTypGeometriepunkt:
		return true
	}
	return false
}

// Netzpunkt is a node of the network. Inside Punktfolge and
// Zwischenpunkte only Nummer is populated and the element acts as a
// reference into StreckennetzDaten.
type Netzpunkt struct {
	Nummer   int64  `xml:"Nummer"`
	Kurzname string `xml:"Kurzname"`
	Langname string `xml:"Langname"`

	Netzpunkttyp NetzpunktTyp `xml:"Netzpunkttyp"`

	// Planar coordinates in millimetres.
	Xkoordinate int64 `xml:"Xkoordinate"`
	Ykoordinate int64 `xml:"Ykoordinate"`

	Haltestellenbereich *Haltestellenbereich `xml:"Haltestellenbereich"`

	MitFahrgastwechsel JNFlag `xml:"mitFahrgastwechsel"`

	Gebietskoerperschaften []*Gebietskoerperschaft `xml:"Gebietskoerperschaften>Gebietskoerperschaft"`
}

func (netzpunkt *Netzpunkt) Validate() error {
	if netzpunkt.Nummer == 0 {
		return &MalformedDocumentError{Path: "Netzpunkt.Nummer", Reason: "must be set"}
	}
	if !netzpunkt.Netzpunkttyp.IsValid() {
		return &MalformedDocumentError{
			Path:   fmt.Sprintf("Netzpunkt[%d].Netzpunkttyp", netzpunkt.Nummer),
			Reason: fmt.Sprintf("unknown point type %q", netzpunkt.Netzpunkttyp),
		}
	}
	return nil
}

// Haltestellenbereich groups the platforms of one physical stop.
type Haltestellenbereich struct {
	Nummer           int64  `xml:"Nummer"`
	Kurzname         string `xml:"Kurzname"`
	Fahrplanbuchname string `xml:"Fahrplanbuchname"`
}

type Gebietskoerperschaft struct {
	Kurzname string `xml:"Kurzname"`
	Langname string `xml:"Langname"`
}
