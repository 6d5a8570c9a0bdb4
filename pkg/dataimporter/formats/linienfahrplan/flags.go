package linienfahrplan

import (
	"encoding/xml"
	"fmt"
)

// JNFlag is a boolean encoded as J (ja) or N (nein). Any other value
// is rejected outright instead of defaulting to false.
type JNFlag bool

func (flag *JNFlag) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var value string
	if err := d.DecodeElement(&value, &start); err != nil {
		return err
	}

	switch value {
	case "J":
		*flag = true
	case "N":
		*flag = false
	default:
		return &MalformedDocumentError{
			Path:   start.Name.Local,
			Reason: fmt.Sprintf("flag must be J or N but is %q", value),
		}
	}

	return nil
}

func (flag JNFlag) Bool() bool {
	return bool(flag)
}
