package linienfahrplan

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"
)

// sectionError keeps an element-level MalformedDocumentError intact,
// its Path points at the offending element rather than the section.
func sectionError(section string, err error) error {
	var malformed *MalformedDocumentError
	if errors.As(err, &malformed) {
		return malformed
	}
	return &MalformedDocumentError{Path: section, Reason: err.Error()}
}

func (doc *Linienfahrplan) ParseFile(reader io.Reader) error {
	d := xml.NewDecoder(reader)
	d.CharsetReader = charset.NewReaderLabel

	for {
		tok, err := d.Token()
		if tok == nil || err == io.EOF {
			// EOF means we're done.
			break
		} else if err != nil {
			return &MalformedDocumentError{Path: "Linienfahrplan", Reason: err.Error()}
		}

		switch ty := tok.(type) {
		case xml.StartElement:
			switch ty.Name.Local {
			case "Generierung":
				if err := d.DecodeElement(&doc.Generierung, &ty); err != nil {
					return sectionError("Generierung", err)
				}

				if err := doc.checkGenerationResult(); err != nil {
					return err
				}
			case "StreckennetzDaten":
				doc.StreckennetzDaten = &StreckennetzDaten{}

				if err := d.DecodeElement(doc.StreckennetzDaten, &ty); err != nil {
					return sectionError("StreckennetzDaten", err)
				}
			case "LinienDaten":
				doc.LinienDaten = &LinienDaten{}

				if err := d.DecodeElement(doc.LinienDaten, &ty); err != nil {
					return sectionError("LinienDaten", err)
				}
			case "FahrtDaten":
				doc.FahrtDaten = &FahrtDaten{}

				if err := d.DecodeElement(doc.FahrtDaten, &ty); err != nil {
					return sectionError("FahrtDaten", err)
				}
			case "FahrzeugumlaufDaten":
				doc.FahrzeugumlaufDaten = &FahrzeugumlaufDaten{}

				if err := d.DecodeElement(doc.FahrzeugumlaufDaten, &ty); err != nil {
					return sectionError("FahrzeugumlaufDaten", err)
				}
			}
		default:
		}
	}

	if err := doc.Validate(); err != nil {
		return err
	}

	log.Info().Msg("Successfully parsed document")
	log.Info().Msgf(" - Generated %s (data version %s)", doc.Generierung.Startzeitpunkt, doc.Generierung.Datenversion)
	log.Info().Msgf(" - Contains %d network points", len(doc.StreckennetzDaten.Netzpunkte))
	log.Info().Msgf(" - Contains %d links", len(doc.StreckennetzDaten.Strecken))
	log.Info().Msgf(" - Contains %d trips", len(doc.FahrtDaten.Fahrten))
	log.Info().Msgf(" - Contains %d vehicle workings", len(doc.FahrzeugumlaufDaten.Fahrzeugumlaeufe))

	return nil
}

// checkGenerationResult filters out the placeholder documents the
// planning system emits for line numbers without data. Those carry a
// status message instead of timetable sections.
func (doc *Linienfahrplan) checkGenerationResult() error {
	for _, meldung := range doc.Generierung.Ergebnis.Meldungen {
		switch meldung.Meldungstext {
		case "Keine gültige Linie.":
			return fmt.Errorf("%w: %s", ErrNoValidLine, meldung.Meldungstext)
		case "Keine Umläufe vorhanden.":
			return fmt.Errorf("%w: %s", ErrNoRotations, meldung.Meldungstext)
		}
	}

	return nil
}
