package linienfahrplan

import (
	"fmt"
)

// Strecke is a directed link between two network points. Inside a
// Streckenfolge only LfdNr and StreckenID are populated and the
// element acts as a reference into StreckennetzDaten.
type Strecke struct {
	ID         int64 `xml:"ID"`
	Startpunkt int64 `xml:"Startpunkt"`
	Endpunkt   int64 `xml:"Endpunkt"`

	// Length in millimetres.
	Streckenlaenge int64 `xml:"Streckenlaenge"`

	Zwischenpunkte []*Zwischenpunkt `xml:"Zwischenpunkte>Zwischenpunkt"`

	LfdNr      int64 `xml:"LfdNr"`
	StreckenID int64 `xml:"StreckenID"`
}

// Zwischenpunkt is a shape point along a link with its running
// distance from the link start in millimetres.
type Zwischenpunkt struct {
	Netzpunkt          *Netzpunkt `xml:"Netzpunkt"`
	EntfernungVomStart int64      `xml:"EntfernungVomStart"`
}

func (strecke *Strecke) Validate() error {
	if strecke.ID == 0 {
		return &MalformedDocumentError{Path: "Strecke.ID", Reason: "must be set"}
	}
	if strecke.Startpunkt == 0 || strecke.Endpunkt == 0 {
		return &MalformedDocumentError{
			Path:   fmt.Sprintf("Strecke[%d]", strecke.ID),
			Reason: "Startpunkt and Endpunkt must be set",
		}
	}
	for _, zwischenpunkt := range strecke.Zwischenpunkte {
		if zwischenpunkt.Netzpunkt == nil || zwischenpunkt.Netzpunkt.Nummer == 0 {
			return &MalformedDocumentError{
				Path:   fmt.Sprintf("Strecke[%d].Zwischenpunkte", strecke.ID),
				Reason: "intermediate point without a Netzpunkt reference",
			}
		}
	}
	return nil
}
