package chart

import (
	"errors"
	"fmt"

	"drawdown-service/internal/model"

	"github.com/vicanso/go-charts/v2"
)

var ErrNoData = errors.New("no data")

// RenderDrawdown draws the series as a PNG line chart in percent.
func RenderDrawdown(title string, series model.DrawdownSeries) ([]byte, error) {
	if len(series) == 0 {
		return nil, ErrNoData
	}

	labels := make([]string, len(series))
	values := make([]float64, len(series))
	yMin, yMax := 0.0, 0.0
	for i, pt := range series {
		labels[i] = pt.Date.Format(model.DateLayout)
		v := pt.Drawdown * 100
		values[i] = v
		if v < yMin {
			yMin = v
		}
	}
	if yMin == 0 {
		yMin = -1
	}

	split := len(labels) / 8
	if split < 1 {
		split = 1
	}

	painter, err := charts.LineRender([][]float64{values},
		charts.TitleTextOptionFunc(title, "drawdown %"),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: labels, BoundaryGap: charts.FalseFlag(), SplitNumber: split}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(900),
		charts.HeightOptionFunc(400),
	)
	if err != nil {
		return nil, fmt.Errorf("render drawdown chart: %w", err)
	}
	return painter.Bytes()
}
