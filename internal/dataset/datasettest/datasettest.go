// Package datasettest provides a small fixed set of sightings for tests.
package datasettest

import "github.com/ShruAgarwal/Zoogist-Insights/internal/dataset"

// Records returns eight sightings from the Anamalai hills. The same rows are
// in internal/dataset/testdata/mammals.csv.
func Records() []dataset.Record {
	f := func(v float64) *float64 { return &v }
	n := func(v int64) *int64 { return &v }
	return []dataset.Record{
		{RecordedBy: "A. Kumar", Username: "akumar", Timestamp: "2021-03-15 06:42:10", Date: "15-03-2021", Time: "06:42",
			Latitude: f(10.352), Longitude: f(76.951), Place: "Valparai", Habitat: "Evergreen",
			SpeciesName: "Lion-tailed Macaque", Count: n(12), CountType: "Total", ObsType: "Direct",
			ScientificName: "Macaca silenus", InstanceID: "ZI-0001", ConservationStatus: "Endangered"},
		{RecordedBy: "A. Kumar", Username: "akumar", Timestamp: "2021-03-16 17:05:44", Date: "16-03-2021", Time: "17:05",
			Latitude: f(10.463), Longitude: f(76.819), Place: "Topslip", Habitat: "Deciduous",
			SpeciesName: "Tiger", Count: n(1), CountType: "Total", ObsType: "Camera trap",
			ScientificName: "Panthera tigris", InstanceID: "ZI-0002", ConservationStatus: "Endangered"},
		{RecordedBy: "R. Devi", Username: "rdevi", Timestamp: "2022-01-02 07:15:02", Date: "02-01-2022", Time: "07:15",
			Latitude: f(10.301), Longitude: f(77.048), Place: "Anamalai", Habitat: "Evergreen",
			SpeciesName: "Dhole", Count: n(6), CountType: "Partial", ObsType: "Direct",
			ScientificName: "Cuon alpinus", InstanceID: "ZI-0003", ConservationStatus: "Endangered"},
		{RecordedBy: "R. Devi", Username: "rdevi", Timestamp: "2022-01-05 16:20:31", Date: "05-01-2022", Time: "16:20",
			Latitude: f(10.47), Longitude: f(76.83), Place: "Topslip", Habitat: "Deciduous",
			SpeciesName: "Gaur", Count: n(9), CountType: "Total", ObsType: "Direct",
			ScientificName: "Bos gaurus", InstanceID: "ZI-0004", ConservationStatus: "Vulnerable"},
		{RecordedBy: "S. Iyer", Username: "siyer", Timestamp: "2022-07-20 08:01:55", Date: "20-07-2022", Time: "08:01",
			Latitude: f(10.34), Longitude: f(76.96), Place: "Valparai", Habitat: "Evergreen",
			SpeciesName: "Grizzled Giant Squirrel", Count: n(2), CountType: "Total", ObsType: "Direct",
			ScientificName: "Ratufa macroura", InstanceID: "ZI-0005", ConservationStatus: "Near Threatened"},
		{RecordedBy: "S. Iyer", Username: "siyer", Timestamp: "2022-07-21 06:10:12", Date: "21-07-2022", Time: "06:10",
			Latitude: f(10.2916), Longitude: f(77.4912), Place: "Anamalai", Habitat: "Grassland",
			SpeciesName: "Spotted Deer", Count: n(25), CountType: "Partial", ObsType: "Direct",
			ScientificName: "Axis axis", InstanceID: "ZI-0006", ConservationStatus: "Least Concern"},
		{RecordedBy: "A. Kumar", Username: "akumar", Timestamp: "2023-11-11 18:30:00", Date: "11-11-2023", Time: "18:30",
			Latitude: f(10.465), Longitude: f(76.825), Place: "Topslip", Habitat: "Deciduous",
			SpeciesName: "Spotted Deer", Count: n(14), CountType: "Total", ObsType: "Direct",
			ScientificName: "Axis axis", InstanceID: "ZI-0007", ConservationStatus: "Least Concern"},
		{RecordedBy: "R. Devi", Username: "rdevi", Timestamp: "2023-11-12 05:55:48", Date: "12-11-2023", Time: "05:55",
			Latitude: f(10.355), Longitude: f(76.945), Place: "Valparai", Habitat: "Evergreen",
			SpeciesName: "Dhole", Count: n(4), CountType: "Total", ObsType: "Indirect",
			ScientificName: "Cuon alpinus", InstanceID: "ZI-0008", ConservationStatus: "Endangered"},
	}
}

// Store returns a store over Records.
func Store() *dataset.Store {
	return dataset.NewStore(Records())
}
