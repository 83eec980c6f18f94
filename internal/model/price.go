package model

import "time"

// DateLayout is the wire format for calendar dates (ISO-8601, no time of day).
const DateLayout = "2006-01-02"

// PricePoint is one observation of an asset price.
// Date carries no time-of-day meaning; parsers normalise it to midnight UTC.
type PricePoint struct {
	Date  time.Time
	Price float64
}

// PriceSeries is an ordered price history, in the order the caller supplied it.
// Nothing re-sorts it and duplicate dates are allowed.
type PriceSeries []PricePoint

// DrawdownPoint pairs a date with the decline from the running peak at that date.
// Drawdown is 0 at a new high and negative below it. It may be NaN or
// infinite when the underlying returns are undefined.
type DrawdownPoint struct {
	Date     time.Time
	Drawdown float64
}

// DrawdownSeries has the same length and order as the PriceSeries it came from.
type DrawdownSeries []DrawdownPoint

// Clone returns a copy that shares no backing array with s.
func (s DrawdownSeries) Clone() DrawdownSeries {
	if s == nil {
		return nil
	}
	out := make(DrawdownSeries, len(s))
	copy(out, s)
	return out
}

// DateOnly strips the time of day and location from t.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
