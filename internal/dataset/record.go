package dataset

// Record is one mammal sighting. An empty text field means the cell was
// empty in the source file; numeric fields are nil in that case.
type Record struct {
	RecordedBy         string
	Username           string
	Timestamp          string
	Date               string
	Time               string
	Latitude           *float64
	Longitude          *float64
	Place              string
	Habitat            string
	SpeciesName        string
	Count              *int64
	CountType          string
	ObsType            string
	ScientificName     string
	InstanceID         string
	ConservationStatus string
}

// Values returns the record's cells in schema order. Empty cells are nil so
// the engine stores them as NULL; present numbers are float64 or int64.
func (r Record) Values() []any {
	return []any{
		textOrNil(r.RecordedBy),
		textOrNil(r.Username),
		textOrNil(r.Timestamp),
		textOrNil(r.Date),
		textOrNil(r.Time),
		floatOrNil(r.Latitude),
		floatOrNil(r.Longitude),
		textOrNil(r.Place),
		textOrNil(r.Habitat),
		textOrNil(r.SpeciesName),
		intOrNil(r.Count),
		textOrNil(r.CountType),
		textOrNil(r.ObsType),
		textOrNil(r.ScientificName),
		textOrNil(r.InstanceID),
		textOrNil(r.ConservationStatus),
	}
}

func textOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func floatOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func intOrNil(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
