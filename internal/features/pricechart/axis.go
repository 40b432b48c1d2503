package pricechart

import (
	"fmt"
	"math"

	"elpris/internal/clients_api/tibber"

	"github.com/shopspring/decimal"
)

var (
	// minCeiling is both the seed of RenderState.PreviousMaxY and the floor of the y-axis.
	minCeiling = decimal.NewFromInt(2)
	headroom   = decimal.RequireFromString("1.1")
)

// RenderState is carried by the driver from one cycle to the next.
type RenderState struct {
	PreviousMaxY decimal.Decimal
	CycleCount   int // 1 on the first cycle
}

// NewRenderState returns the state used before the first cycle.
func NewRenderState() RenderState {
	return RenderState{PreviousMaxY: minCeiling}
}

// AxisCeiling applies the y-axis policy.
//
// With tomorrow's prices the ceiling follows the max over both days. Without them,
// the first cycle uses today's max (at least 2) and later cycles reuse the previous
// ceiling, so the axis does not shrink in the morning before tomorrow is published.
// maxY is the value to remember; upper is the drawn bound, max(maxY*1.1, 2).
func AxisCeiling(today, tomorrow tibber.PriceSeries, state RenderState) (maxY, upper decimal.Decimal, err error) {
	todayMax, ok := today.Max()

	switch {
	case len(tomorrow) > 0:
		if !ok {
			return decimal.Zero, decimal.Zero, &RenderError{Op: "axis", Err: errEmptyToday}
		}
		tomorrowMax, _ := tomorrow.Max()
		maxY = decimal.Max(todayMax, tomorrowMax)
	case state.CycleCount == 1:
		if !ok {
			return decimal.Zero, decimal.Zero, &RenderError{Op: "axis", Err: errEmptyToday}
		}
		maxY = decimal.Max(todayMax, minCeiling)
	default:
		maxY = state.PreviousMaxY
	}

	upper = decimal.Max(maxY.Mul(headroom), minCeiling)
	return maxY, upper, nil
}

// tickSteps are the mantissas tried for y tick spacing.
var tickSteps = []float64{1, 2, 5}

const maxYTicks = 8

// yTicks returns evenly spaced ticks from 0 up to upper using the
// smallest 1/2/5 x 10^k step that yields at most maxYTicks intervals.
func yTicks(upper float64) []float64 {
	if upper <= 0 || math.IsNaN(upper) || math.IsInf(upper, 0) {
		return []float64{0}
	}

	magnitude := math.Pow(10, math.Floor(math.Log10(upper/maxYTicks)))
	step := magnitude * 10
	for _, m := range tickSteps {
		if upper/(m*magnitude) <= maxYTicks {
			step = m * magnitude
			break
		}
	}

	var ticks []float64
	for i := 0; ; i++ {
		v := float64(i) * step
		if v > upper*(1+1e-9) {
			break
		}
		ticks = append(ticks, v)
	}
	return ticks
}

func formatYTick(v float64) string {
	return fmt.Sprintf("%.1f", v)
}
