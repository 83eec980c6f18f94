package drawdown

import (
	"encoding/csv"
	"math"
	"os"
	"strconv"
	"time"

	"drawdown-service/internal/model"
)

// WriteCSV writes date,drawdown rows to path.
func WriteCSV(path string, series model.DrawdownSeries) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"date", "drawdown"}); err != nil {
		return err
	}
	for _, pt := range series {
		if err := w.Write([]string{fmtDate(pt.Date), fmtFloat(pt.Drawdown)}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// WriteStepsCSV writes every intermediate column. Undefined values are left blank.
func WriteStepsCSV(path string, steps []Step) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"date",
		"price",
		"daily_return",
		"cumulative_return",
		"peak",
		"drawdown",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, st := range steps {
		row := []string{
			fmtDate(st.Date),
			fmtFloat(st.Price),
			fmtFloat(st.DailyReturn),
			fmtFloat(st.CumulativeReturn),
			fmtFloat(st.Peak),
			fmtFloat(st.Drawdown),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(model.DateLayout)
}

func fmtFloat(x float64) string {
	if math.IsNaN(x) {
		return ""
	}
	return strconv.FormatFloat(x, 'f', 6, 64)
}
