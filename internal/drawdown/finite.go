package drawdown

import (
	"math"

	"drawdown-service/internal/model"
)

// DropNonFinite removes points whose drawdown is NaN or infinite.
// The input is left untouched; the result is always non-nil.
func DropNonFinite(series model.DrawdownSeries) model.DrawdownSeries {
	out := make(model.DrawdownSeries, 0, len(series))
	for _, pt := range series {
		if math.IsNaN(pt.Drawdown) || math.IsInf(pt.Drawdown, 0) {
			continue
		}
		out = append(out, pt)
	}
	return out
}
