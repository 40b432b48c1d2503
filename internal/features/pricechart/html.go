package pricechart

import (
	"io"
	"strconv"
	"time"

	"elpris/internal/clients_api/tibber"
	"elpris/internal/infra/fs"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/shopspring/decimal"
)

const hoursPerDay = 24

// writeHTML stores an interactive version of the chart next to the PNG.
func writeHTML(path string, info *tibber.PriceInfo, upper decimal.Decimal, now time.Time) error {
	return fs.WriteAtomic(path, func(w io.Writer) error {
		return renderHTML(w, info, upper, now)
	})
}

func renderHTML(w io.Writer, info *tibber.PriceInfo, upper decimal.Decimal, now time.Time) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Elpris",
			Width:     "1000px",
			Height:    "750px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    chartTitle(info.Current[0].Total),
			Subtitle: lastUpdatedText(now),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Hour"}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Kr / kWh",
			Min:  0,
			Max:  upper.InexactFloat64(),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "5%"}),
	)

	hours := make([]string, hoursPerDay)
	for h := range hours {
		hours[h] = strconv.Itoa(h)
	}
	line.SetXAxis(hours)

	line.AddSeries("today", lineData(info.Today),
		charts.WithLineStyleOpts(opts.LineStyle{Color: "black", Type: "solid"}))
	if len(info.Tomorrow) > 0 {
		line.AddSeries("tomorrow", lineData(info.Tomorrow),
			charts.WithLineStyleOpts(opts.LineStyle{Color: "black", Type: "dashed"}))
	}

	marker := lineData(nil)
	if h := info.Current[0].Hour; h >= 0 && h < hoursPerDay {
		marker[h].Symbol = "circle"
		marker[h].SymbolSize = 10
		marker[h].Value = info.Current[0].Total.InexactFloat64()
	}
	line.AddSeries("now", marker)

	return line.Render(w)
}

// lineData places each point at its hour; hours without a price stay empty.
func lineData(series tibber.PriceSeries) []opts.LineData {
	data := make([]opts.LineData, hoursPerDay)
	for i := range data {
		data[i] = opts.LineData{Value: "-"}
	}
	for _, p := range series {
		if p.Hour < 0 || p.Hour >= hoursPerDay {
			continue
		}
		data[p.Hour] = opts.LineData{Value: p.Total.InexactFloat64()}
	}
	return data
}
