package drawdown

import (
	"math"
	"time"

	"drawdown-service/internal/model"
)

// Step is the full set of intermediate values computed for one point.
type Step struct {
	Date             time.Time
	Price            float64
	DailyReturn      float64
	CumulativeReturn float64
	Peak             float64
	Drawdown         float64
}

// Compute converts a price series into its drawdown series.
//
// The result always has the same length and order as series. Inputs are not
// validated: NaN and infinite values flow through the arithmetic and come out
// as NaN or infinite drawdowns, which callers are expected to filter.
func Compute(series model.PriceSeries) model.DrawdownSeries {
	steps := Steps(series)
	out := make(model.DrawdownSeries, len(steps))
	for i, st := range steps {
		out[i] = model.DrawdownPoint{Date: st.Date, Drawdown: st.Drawdown}
	}
	return out
}

// Steps runs the drawdown calculation and keeps every intermediate column.
//
// NaN policy: the compounding product and the running maximum both skip NaN
// inputs. A NaN input yields NaN at that position and leaves the accumulator
// as it was. A NaN produced by the accumulator itself (0 * Inf) is kept and
// carried forward. The first point has no daily return, so its cumulative
// return, peak and drawdown are all NaN, and the second point starts
// compounding from 1.0.
func Steps(series model.PriceSeries) []Step {
	out := make([]Step, len(series))
	growth := 1.0
	peak := math.Inf(-1)

	for i, pt := range series {
		ret := math.NaN()
		if i > 0 {
			prev := series[i-1].Price
			ret = (pt.Price - prev) / prev
		}

		cum := math.NaN()
		if !math.IsNaN(ret) {
			growth *= 1 + ret
			cum = growth
		}

		pk := math.NaN()
		if !math.IsNaN(cum) {
			if cum > peak {
				peak = cum
			}
			pk = peak
		}

		out[i] = Step{
			Date:             pt.Date,
			Price:            pt.Price,
			DailyReturn:      ret,
			CumulativeReturn: cum,
			Peak:             pk,
			Drawdown:         (cum - pk) / pk,
		}
	}
	return out
}
