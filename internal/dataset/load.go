package dataset

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/apperr"
)

// Read parses CSV records from r. The header must name every schema column
// exactly (case-sensitive); unknown extra columns are ignored. Any malformed
// row fails the whole load.
func Read(r io.Reader) (*Store, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperr.New(apperr.DatasetLoad, "dataset is empty")
		}
		return nil, apperr.Wrap(apperr.DatasetLoad, "read header", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[h] = i
	}
	var missing []string
	for _, c := range Schema {
		if _, ok := pos[c.Name]; !ok {
			missing = append(missing, c.Name)
		}
	}
	if len(missing) > 0 {
		return nil, apperr.New(apperr.DatasetLoad, "missing columns: "+strings.Join(missing, ", "))
	}

	var records []Record
	seen := map[string]int{}
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, apperr.Wrap(apperr.DatasetLoad, fmt.Sprintf("line %d", line), err)
		}
		if isBlank(row) {
			continue
		}
		cell := func(name string) string {
			i := pos[name]
			if i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		rec, err := parseRecord(cell)
		if err != nil {
			return nil, apperr.Wrap(apperr.DatasetLoad, fmt.Sprintf("line %d", line), err)
		}
		if prev, dup := seen[rec.InstanceID]; dup {
			return nil, apperr.New(apperr.DatasetLoad, fmt.Sprintf("line %d: duplicate instanceID %q (first seen on line %d)", line, rec.InstanceID, prev))
		}
		seen[rec.InstanceID] = line
		records = append(records, rec)
	}
	return NewStore(records), nil
}

// ReadFile loads a CSV dataset from a local path.
func ReadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.DatasetLoad, "open dataset", err)
	}
	defer f.Close()
	return Read(f)
}

// Open loads the dataset from a local path or an s3://bucket/key URI.
func Open(ctx context.Context, source string, s3cfg S3Config) (*Store, error) {
	if bucket, key, ok := ParseS3URI(source); ok {
		client, err := NewS3Client(ctx, s3cfg)
		if err != nil {
			return nil, apperr.Wrap(apperr.DatasetLoad, "s3 client", err)
		}
		return ReadS3(ctx, client, bucket, key)
	}
	return ReadFile(source)
}

func parseRecord(cell func(string) string) (Record, error) {
	rec := Record{
		RecordedBy:         cell(ColRecordedBy),
		Username:           cell(ColUsername),
		Timestamp:          cell(ColTimestamp),
		Date:               cell(ColDate),
		Time:               cell(ColTime),
		Place:              cell(ColPlace),
		Habitat:            cell(ColHabitat),
		SpeciesName:        cell(ColSpeciesName),
		CountType:          cell(ColCountType),
		ObsType:            cell(ColObsType),
		ScientificName:     cell(ColScientificName),
		InstanceID:         cell(ColInstanceID),
		ConservationStatus: cell(ColConservationStatus),
	}
	if rec.InstanceID == "" {
		return rec, fmt.Errorf("empty %s", ColInstanceID)
	}
	var err error
	if rec.Latitude, err = parseFloat(ColLatitude, cell(ColLatitude)); err != nil {
		return rec, err
	}
	if rec.Longitude, err = parseFloat(ColLongitude, cell(ColLongitude)); err != nil {
		return rec, err
	}
	if rec.Count, err = parseCount(cell(ColCount)); err != nil {
		return rec, err
	}
	return rec, nil
}

func parseFloat(name, s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not a number", name, s)
	}
	return &v, nil
}

// parseCount accepts integers and whole floats such as "3.0".
func parseCount(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) {
			return nil, fmt.Errorf("%s: %q is not an integer", ColCount, s)
		}
		n = int64(f)
	}
	if n < 0 {
		return nil, fmt.Errorf("%s: negative value %d", ColCount, n)
	}
	return &n, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
