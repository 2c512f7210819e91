// Package dataset reads the cleaned crime CSV into incidents.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jengzang/patroliq-backend-go/internal/models"
)

// ErrInvalidInput is returned for a table that cannot be imported
var ErrInvalidInput = errors.New("invalid dataset")

// Column names of the cleaned crimes table
const (
	ColID                  = "ID"
	ColDate                = "Date"
	ColPrimaryType         = "Primary Type"
	ColDescription         = "Description"
	ColLocationDescription = "Location Description"
	ColArrest              = "Arrest"
	ColDomestic            = "Domestic"
	ColDistrict            = "District"
	ColLatitude            = "Latitude"
	ColLongitude           = "Longitude"
	ColHour                = "Hour"
	ColDayOfWeek           = "Day_of_Week"
	ColMonth               = "Month"
	ColGeoCluster          = "geo_cluster"
	ColTempCluster         = "temp_cluster"
)

var requiredColumns = []string{ColLatitude, ColLongitude, ColPrimaryType}

// dateLayouts are tried in order when parsing the Date column
var dateLayouts = []string{
	"01/02/2006 03:04:05 PM",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ReadCSV parses the whole table. Any malformed row fails the read.
func ReadCSV(r io.Reader) ([]models.Incident, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF"))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: missing required column %q", ErrInvalidInput, name)
		}
	}

	var incidents []models.Incident
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidInput, line, err)
		}

		inc, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidInput, line, err)
		}
		incidents = append(incidents, inc)
	}

	if len(incidents) == 0 {
		return nil, fmt.Errorf("%w: no data rows", ErrInvalidInput)
	}
	return incidents, nil
}

func parseRow(row []string, cols map[string]int) (models.Incident, error) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var inc models.Incident
	var err error

	if inc.Latitude, err = parseCoordinate(get(ColLatitude), ColLatitude); err != nil {
		return inc, err
	}
	if inc.Longitude, err = parseCoordinate(get(ColLongitude), ColLongitude); err != nil {
		return inc, err
	}

	inc.CaseID = get(ColID)
	inc.PrimaryType = strings.ToUpper(get(ColPrimaryType))
	if inc.PrimaryType == "" {
		return inc, fmt.Errorf("empty %s", ColPrimaryType)
	}
	inc.Description = get(ColDescription)
	inc.LocationDescription = get(ColLocationDescription)
	inc.District = normalizeDistrict(get(ColDistrict))
	inc.Arrest = parseBool(get(ColArrest))
	inc.Domestic = parseBool(get(ColDomestic))

	if raw := get(ColDate); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return inc, err
		}
		inc.OccurredAt = t
		inc.Hour = t.Hour()
		inc.DayOfWeek = (int(t.Weekday()) + 6) % 7
		inc.Month = int(t.Month())
	}

	if raw := get(ColHour); raw != "" {
		if inc.Hour, err = parseIntInRange(raw, ColHour, 0, 23); err != nil {
			return inc, err
		}
	}
	if raw := get(ColDayOfWeek); raw != "" {
		if inc.DayOfWeek, err = parseDayOfWeek(raw); err != nil {
			return inc, err
		}
	}
	if raw := get(ColMonth); raw != "" {
		if inc.Month, err = parseIntInRange(raw, ColMonth, 1, 12); err != nil {
			return inc, err
		}
	}

	if inc.GeoCluster, err = parseLabel(get(ColGeoCluster), ColGeoCluster); err != nil {
		return inc, err
	}
	if inc.TempCluster, err = parseLabel(get(ColTempCluster), ColTempCluster); err != nil {
		return inc, err
	}

	return inc, nil
}

func parseCoordinate(raw, name string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("empty %s", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite %s %q", name, raw)
	}
	return v, nil
}

func parseIntInRange(raw, name string, min, max int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSuffix(raw, ".0"))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%s %d out of range [%d, %d]", name, v, min, max)
	}
	return v, nil
}

func parseDayOfWeek(raw string) (int, error) {
	for i, name := range models.DayNames {
		if strings.EqualFold(raw, name) {
			return i, nil
		}
	}
	return parseIntInRange(raw, ColDayOfWeek, 0, 6)
}

func parseLabel(raw, name string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(strings.TrimSuffix(raw, ".0"))
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", name, raw)
	}
	return &v, nil
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized %s %q", ColDate, raw)
}

func parseBool(raw string) bool {
	switch strings.ToLower(raw) {
	case "true", "1", "yes", "y", "t":
		return true
	}
	return false
}

// normalizeDistrict turns "011" and "11.0" into "11"
func normalizeDistrict(raw string) string {
	if raw == "" {
		return ""
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil && v == math.Trunc(v) {
		return strconv.Itoa(int(v))
	}
	return raw
}
