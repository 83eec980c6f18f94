package analysis

import (
	"math"
	"time"

	"drawdown-service/internal/model"
)

// Summary condenses a drawdown series into the figures people usually ask for.
// Non-finite points are ignored.
type Summary struct {
	Count int

	Start time.Time
	End   time.Time

	// MaxDrawdown is the deepest (most negative) drawdown in the series.
	MaxDrawdown     float64
	MaxDrawdownDate time.Time

	// CurrentDrawdown is the drawdown at the last point.
	CurrentDrawdown float64

	// LastPeakDate is the last date the series sat at its running high.
	LastPeakDate time.Time
}

func Summarize(series model.DrawdownSeries) Summary {
	s := Summary{}
	first := true
	for _, pt := range series {
		v := pt.Drawdown
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		s.Count++
		if first {
			s.Start = pt.Date
			s.MaxDrawdown = v
			s.MaxDrawdownDate = pt.Date
			first = false
		}
		s.End = pt.Date
		s.CurrentDrawdown = v
		if v < s.MaxDrawdown {
			s.MaxDrawdown = v
			s.MaxDrawdownDate = pt.Date
		}
		if v == 0 {
			s.LastPeakDate = pt.Date
		}
	}
	return s
}

// Underwater reports whether the series ends below its running high.
func (s Summary) Underwater() bool {
	return s.Count > 0 && s.CurrentDrawdown < 0
}
