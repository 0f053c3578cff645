package mapview

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/dataset"
	"github.com/ShruAgarwal/Zoogist-Insights/internal/dataset/datasettest"
)

func TestBuildColorsByStatus(t *testing.T) {
	fc := Build(datasettest.Store())
	require.Len(t, fc.Features, 8)
	assert.Equal(t, map[string]int{"red": 4, "orange": 1, "yellow": 1, "green": 2}, CountByColor(fc))

	first := fc.Features[0]
	assert.Equal(t, [2]float64{76.951, 10.352}, first.Geometry.Coordinates)
	assert.Equal(t, "Lion-tailed Macaque", first.Properties["speciesName"])
}

func TestBuildSkipsMissingCoordinates(t *testing.T) {
	lat := 10.0
	store := dataset.NewStore([]dataset.Record{
		{InstanceID: "a", Latitude: &lat, ConservationStatus: "Endangered"},
	})
	fc := Build(store)
	assert.Empty(t, fc.Features)

	b, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"features":[]`)
	assert.Equal(t, "gray", Color("Data Deficient"))
}
