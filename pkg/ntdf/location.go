package ntdf

// Location is a GeoJSON-style geodetic point. Elevation is nil when no
// elevation service was configured for the ingest, which is different from an
// elevation of zero metres.
type Location struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
	Elevation   *float64  `json:"elevation,omitempty" bson:"elevation,omitempty"`
}

func NewPointLocation(longitude float64, latitude float64, elevation *float64) *Location {
	return &Location{
		Type:        "Point",
		Coordinates: []float64{longitude, latitude},
		Elevation:   elevation,
	}
}
