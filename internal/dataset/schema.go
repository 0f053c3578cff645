// Package dataset holds the mammal observation records and the fixed,
// hand-documented schema that describes them.
package dataset

import (
	"fmt"
	"strings"
)

// SQLType is the storage class a column is exposed with in the query engine.
type SQLType string

const (
	Text    SQLType = "TEXT"
	Real    SQLType = "REAL"
	Integer SQLType = "INTEGER"
)

// Column documents one dataset column. DocType is the type shown to the
// language model, which is more specific than the engine storage class for
// dates and times.
type Column struct {
	Name        string
	Type        SQLType
	DocType     string
	Description string
}

// Column names, case-sensitive, as they appear in the dataset header.
const (
	ColRecordedBy         = "recordedBy"
	ColUsername           = "username"
	ColTimestamp          = "timestamp"
	ColDate               = "date"
	ColTime               = "time"
	ColLatitude           = "decimalLatitude"
	ColLongitude          = "decimalLongitude"
	ColPlace              = "place"
	ColHabitat            = "habitat"
	ColSpeciesName        = "speciesName"
	ColCount              = "count"
	ColCountType          = "countType"
	ColObsType            = "obsType"
	ColScientificName     = "scientificName"
	ColInstanceID         = "instanceID"
	ColConservationStatus = "conservationStatus"
)

// Schema is the authoritative column list, in header order.
var Schema = []Column{
	{ColRecordedBy, Text, "TEXT", "The person who recorded the observation."},
	{ColUsername, Text, "TEXT", "The username of person associated with the observation."},
	{ColTimestamp, Text, "DATETIME", "Automatic date and time of the observation."},
	{ColDate, Text, "DATE", "The date of the observation."},
	{ColTime, Text, "TIME", "The time of the observation."},
	{ColLatitude, Real, "FLOAT", "The latitude of the observation in decimal degrees N."},
	{ColLongitude, Real, "FLOAT", "The longitude of the observation in decimal degrees E."},
	{ColPlace, Text, "TEXT", "Name of locality."},
	{ColHabitat, Text, "TEXT", "The type of habitat where the mammal was observed."},
	{ColSpeciesName, Text, "TEXT", "The common name of the mammal species."},
	{ColCount, Integer, "INTEGER", "The number of individual mammals observed."},
	{ColCountType, Text, "TEXT", "Total (fully counted groups) or Partial (incompletely counted groups) types for the count."},
	{ColObsType, Text, "TEXT", "The type of observation method."},
	{ColScientificName, Text, "TEXT", "The scientific name of the species."},
	{ColInstanceID, Text, "TEXT", "A unique identifier for the observation."},
	{ColConservationStatus, Text, "TEXT", "The conservation status of the species."},
}

// ColumnNames returns the schema column names in order.
func ColumnNames() []string {
	out := make([]string, len(Schema))
	for i, c := range Schema {
		out[i] = c.Name
	}
	return out
}

// Lookup returns the schema entry for name.
func Lookup(name string) (Column, bool) {
	for _, c := range Schema {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Describe renders the schema as a bullet list, one column per line.
func Describe() string {
	var b strings.Builder
	for _, c := range Schema {
		fmt.Fprintf(&b, "   - `%s` (%s) - %s\n", c.Name, c.DocType, c.Description)
	}
	return b.String()
}
