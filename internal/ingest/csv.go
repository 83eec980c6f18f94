package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"drawdown-service/internal/model"
)

var (
	// ErrInvalidData covers uploads that decode as CSV but carry unusable values.
	ErrInvalidData = errors.New("invalid data")
	// ErrMissingColumns is returned when the category's date or price column is absent.
	ErrMissingColumns = errors.New("missing required columns")
	ErrEncoding       = fmt.Errorf("%w: upload is not valid UTF-8", ErrInvalidData)
	ErrEmpty          = fmt.Errorf("%w: upload is empty", ErrInvalidData)
	ErrNoUsableRows   = fmt.Errorf("%w: no usable rows after cleaning", ErrInvalidData)
)

// DefaultDateLayouts are tried in order when parsing the date column.
// Slash dates are read month first.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"20060102",
}

// missingMarkers are cell values read as "no value", in addition to blanks.
var missingMarkers = map[string]struct{}{
	"NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"null": {}, "NULL": {}, "None": {}, "#N/A": {}, "#NA": {}, "<NA>": {}, "NA/NA": {},
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type Options struct {
	// DateLayouts overrides DefaultDateLayouts when non-empty.
	DateLayouts []string
}

func (o Options) layouts() []string {
	if len(o.DateLayouts) > 0 {
		return o.DateLayouts
	}
	return DefaultDateLayouts
}

// Stats describes what cleaning did to an upload.
type Stats struct {
	Rows           int
	DroppedMissing int
	DroppedPrice   int
}

// ParseCSV reads a CSV upload and returns the category's (date, price) pairs
// in file order. Rows with a missing date or price, or a price that is not a
// number, are dropped. An unparseable date fails the whole upload.
func ParseCSV(r io.Reader, cat model.Category, opts Options) (model.PriceSeries, error) {
	series, _, err := ParseCSVWithStats(r, cat, opts)
	return series, err
}

func ParseCSVWithStats(r io.Reader, cat model.Category, opts Options) (model.PriceSeries, Stats, error) {
	var stats Stats

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, stats, fmt.Errorf("read upload: %w", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(raw) {
		return nil, stats, ErrEncoding
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, stats, ErrEmpty
	}

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("%w: read header: %v", ErrInvalidData, err)
	}
	dateIdx, priceIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case cat.DateColumn:
			if dateIdx < 0 {
				dateIdx = i
			}
		case cat.PriceColumn:
			if priceIdx < 0 {
				priceIdx = i
			}
		}
	}
	var missing []string
	if dateIdx < 0 {
		missing = append(missing, cat.DateColumn)
	}
	if priceIdx < 0 {
		missing = append(missing, cat.PriceColumn)
	}
	if len(missing) > 0 {
		return nil, stats, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	layouts := opts.layouts()
	var series model.PriceSeries
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, stats, fmt.Errorf("%w: line %d: %v", ErrInvalidData, line, err)
		}
		stats.Rows++

		dateCell, okDate := cell(rec, dateIdx)
		priceCell, okPrice := cell(rec, priceIdx)
		if !okDate || !okPrice {
			stats.DroppedMissing++
			continue
		}

		price, err := strconv.ParseFloat(priceCell, 64)
		if err != nil || math.IsNaN(price) {
			stats.DroppedPrice++
			continue
		}

		date, err := ParseDate(dateCell, layouts)
		if err != nil {
			return nil, stats, fmt.Errorf("%w: line %d: %v", ErrInvalidData, line, err)
		}
		series = append(series, model.PricePoint{Date: date, Price: price})
	}

	if len(series) == 0 {
		return nil, stats, ErrNoUsableRows
	}
	return series, stats, nil
}

// cell returns the trimmed value at idx and whether it holds a value at all.
func cell(rec []string, idx int) (string, bool) {
	if idx >= len(rec) {
		return "", false
	}
	v := strings.TrimSpace(rec[idx])
	if v == "" {
		return "", false
	}
	if _, ok := missingMarkers[v]; ok {
		return "", false
	}
	return v, true
}

// ParseDate tries each layout in turn and returns the calendar date at midnight UTC.
func ParseDate(s string, layouts []string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.DateOnly(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
