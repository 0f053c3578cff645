// Package mapview turns sightings into a GeoJSON layer with markers coloured
// by conservation status.
package mapview

import (
	"github.com/ShruAgarwal/Zoogist-Insights/internal/dataset"
)

// Default view over the Anamalai hills.
const (
	CenterLat   = 10.2916
	CenterLon   = 77.4912
	DefaultZoom = 8
)

// StatusColors maps conservation status to marker colour.
var StatusColors = map[string]string{
	"Least Concern":   "green",
	"Near Threatened": "yellow",
	"Vulnerable":      "orange",
	"Endangered":      "red",
}

// FallbackColor is used for any other status.
const FallbackColor = "gray"

// FeatureCollection is a GeoJSON feature collection with view metadata.
type FeatureCollection struct {
	Type     string     `json:"type"`
	Center   [2]float64 `json:"center"`
	Zoom     int        `json:"zoom"`
	Features []Feature  `json:"features"`
}

// Feature is one sighting.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry is a GeoJSON point. Coordinates are [longitude, latitude].
type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// Color returns the marker colour for status.
func Color(status string) string {
	if c, ok := StatusColors[status]; ok {
		return c
	}
	return FallbackColor
}

// Build returns one point per record that has both coordinates.
func Build(store *dataset.Store) FeatureCollection {
	fc := FeatureCollection{
		Type:     "FeatureCollection",
		Center:   [2]float64{CenterLat, CenterLon},
		Zoom:     DefaultZoom,
		Features: []Feature{},
	}
	for _, r := range store.Records() {
		if r.Latitude == nil || r.Longitude == nil {
			continue
		}
		fc.Features = append(fc.Features, Feature{
			Type:     "Feature",
			Geometry: Geometry{Type: "Point", Coordinates: [2]float64{*r.Longitude, *r.Latitude}},
			Properties: map[string]any{
				"speciesName":        r.SpeciesName,
				"scientificName":     r.ScientificName,
				"place":              r.Place,
				"habitat":            r.Habitat,
				"date":               r.Date,
				"conservationStatus": r.ConservationStatus,
				"marker-color":       Color(r.ConservationStatus),
			},
		})
	}
	return fc
}

// CountByColor tallies features per marker colour.
func CountByColor(fc FeatureCollection) map[string]int {
	out := map[string]int{}
	for _, f := range fc.Features {
		if c, ok := f.Properties["marker-color"].(string); ok {
			out[c]++
		}
	}
	return out
}
