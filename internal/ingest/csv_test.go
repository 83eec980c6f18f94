package ingest

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"drawdown-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	nifty      = model.Category{Name: "nifty", DateColumn: "Date", PriceColumn: "Nifty_price"}
	multiAsset = model.Category{Name: "multi_asset", DateColumn: "Date", PriceColumn: "Price"}
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseCSV(t *testing.T) {
	body := "Date,Open,Nifty_price\n" +
		"2024-01-01,1,100\n" +
		"2024-01-02,2,110.5\n" +
		"2024-01-03,3,105\n"

	series, err := ParseCSV(strings.NewReader(body), nifty, Options{})
	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, model.PricePoint{Date: date(2024, 1, 1), Price: 100}, series[0])
	assert.Equal(t, model.PricePoint{Date: date(2024, 1, 2), Price: 110.5}, series[1])
	assert.Equal(t, date(2024, 1, 3), series[2].Date)
}

func TestParseCSVCleaning(t *testing.T) {
	body := "\ufeffDate , Price\n" +
		"2024-01-01,100\n" +
		",101\n" +
		"2024-01-03,\n" +
		"2024-01-04,NA\n" +
		"2024-01-05,abc\n" +
		"2024-01-06,1,234\n" +
		"2024-01-07,NAN\n" +
		"2024-01-08\n" +
		"2024-01-09, 120 \n"

	series, stats, err := ParseCSVWithStats(strings.NewReader(body), multiAsset, Options{})
	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, date(2024, 1, 1), series[0].Date)
	assert.Equal(t, date(2024, 1, 6), series[1].Date)
	assert.Equal(t, 1.0, series[1].Price)
	assert.Equal(t, 120.0, series[2].Price)

	assert.Equal(t, 9, stats.Rows)
	assert.Equal(t, 4, stats.DroppedMissing)
	assert.Equal(t, 2, stats.DroppedPrice)
}

func TestParseCSVKeepsFileOrder(t *testing.T) {
	body := "Date,Price\n2024-03-01,3\n2024-01-01,1\n2024-01-01,2\n"
	series, err := ParseCSV(strings.NewReader(body), multiAsset, Options{})
	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, []float64{3, 1, 2}, []float64{series[0].Price, series[1].Price, series[2].Price})
}

func TestParseCSVKeepsInfinity(t *testing.T) {
	body := "Date,Price\n2024-01-01,inf\n"
	series, err := ParseCSV(strings.NewReader(body), multiAsset, Options{})
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.True(t, math.IsInf(series[0].Price, 1))
}

func TestParseCSVErrors(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		cat         model.Category
		wantErr     error
		invalidData bool
	}{
		{
			name:    "missing price column",
			body:    "Date,Price\n2024-01-01,1\n",
			cat:     nifty,
			wantErr: ErrMissingColumns,
		},
		{
			name:    "missing both columns",
			body:    "when,value\n2024-01-01,1\n",
			cat:     multiAsset,
			wantErr: ErrMissingColumns,
		},
		{
			name:        "empty upload",
			body:        "  \n",
			cat:         multiAsset,
			wantErr:     ErrEmpty,
			invalidData: true,
		},
		{
			name:        "invalid utf-8",
			body:        "Date,Price\n2024-01-01,\xff\xfe\n",
			cat:         multiAsset,
			wantErr:     ErrEncoding,
			invalidData: true,
		},
		{
			name:        "no usable rows",
			body:        "Date,Price\n2024-01-01,x\n,2\n",
			cat:         multiAsset,
			wantErr:     ErrNoUsableRows,
			invalidData: true,
		},
		{
			name:        "header only",
			body:        "Date,Price\n",
			cat:         multiAsset,
			wantErr:     ErrNoUsableRows,
			invalidData: true,
		},
		{
			name:        "bad date",
			body:        "Date,Price\n2024-01-01,1\nyesterday,2\n",
			cat:         multiAsset,
			wantErr:     ErrInvalidData,
			invalidData: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series, err := ParseCSV(strings.NewReader(tt.body), tt.cat, Options{})
			require.Error(t, err)
			assert.Nil(t, series)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Equal(t, tt.invalidData, errors.Is(err, ErrInvalidData))
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-02-29", date(2024, 2, 29)},
		{"2024-02-29 15:30:00", date(2024, 2, 29)},
		{"2024-02-29T23:30:00+05:30", date(2024, 2, 29)},
		{"2024/02/29", date(2024, 2, 29)},
		{"02/29/2024", date(2024, 2, 29)},
		{"2/9/2024", date(2024, 2, 9)},
		{"29-Feb-2024", date(2024, 2, 29)},
		{"Feb 29, 2024", date(2024, 2, 29)},
		{"20240229", date(2024, 2, 29)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in, DefaultDateLayouts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseDate("2024-13-45", DefaultDateLayouts)
	assert.Error(t, err)
}

func TestParseCSVCustomLayouts(t *testing.T) {
	body := "Date,Price\n29.02.2024,1\n"
	_, err := ParseCSV(strings.NewReader(body), multiAsset, Options{})
	require.Error(t, err)

	series, err := ParseCSV(strings.NewReader(body), multiAsset, Options{DateLayouts: []string{"02.01.2006"}})
	require.NoError(t, err)
	assert.Equal(t, date(2024, 2, 29), series[0].Date)
}
