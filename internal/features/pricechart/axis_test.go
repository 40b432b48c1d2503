package pricechart

import (
	"errors"
	"testing"

	"elpris/internal/clients_api/tibber"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func series(values ...string) tibber.PriceSeries {
	out := make(tibber.PriceSeries, len(values))
	for i, v := range values {
		out[i] = tibber.PricePoint{Hour: i, Total: d(v)}
	}
	return out
}

func TestAxisCeiling(t *testing.T) {
	tests := []struct {
		name      string
		today     tibber.PriceSeries
		tomorrow  tibber.PriceSeries
		state     RenderState
		wantMaxY  string
		wantUpper string
	}{
		{
			name:      "tomorrow wins over previous ceiling",
			today:     series("0.5", "1.2"),
			tomorrow:  series("0.3", "3.1"),
			state:     RenderState{PreviousMaxY: d("9"), CycleCount: 7},
			wantMaxY:  "3.1",
			wantUpper: "3.41",
		},
		{
			name:      "tomorrow below floor",
			today:     series("0.2"),
			tomorrow:  series("0.4"),
			state:     RenderState{PreviousMaxY: d("2"), CycleCount: 1},
			wantMaxY:  "0.4",
			wantUpper: "2",
		},
		{
			name:      "first cycle uses today",
			today:     series("0.1", "2.5"),
			state:     RenderState{PreviousMaxY: d("2"), CycleCount: 1},
			wantMaxY:  "2.5",
			wantUpper: "2.75",
		},
		{
			name:      "first cycle floors at two",
			today:     series("0.5"),
			state:     RenderState{PreviousMaxY: d("2"), CycleCount: 1},
			wantMaxY:  "2",
			wantUpper: "2.2",
		},
		{
			name:      "later cycle reuses previous",
			today:     series("0.1", "4.0"),
			state:     RenderState{PreviousMaxY: d("3.1"), CycleCount: 2},
			wantMaxY:  "3.1",
			wantUpper: "3.41",
		},
		{
			name:      "small previous ceiling",
			today:     series("0.1"),
			state:     RenderState{PreviousMaxY: d("0.5"), CycleCount: 5},
			wantMaxY:  "0.5",
			wantUpper: "2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			maxY, upper, err := AxisCeiling(tt.today, tt.tomorrow, tt.state)
			require.NoError(t, err)
			assert.True(t, maxY.Equal(d(tt.wantMaxY)), "maxY = %s", maxY)
			assert.True(t, upper.Equal(d(tt.wantUpper)), "upper = %s", upper)
		})
	}
}

func TestAxisCeiling_UpperAlwaysAtLeastTwo(t *testing.T) {
	for _, prev := range []string{"0", "0.01", "1.8", "1.81", "2", "10"} {
		_, upper, err := AxisCeiling(series("0.3"), nil, RenderState{PreviousMaxY: d(prev), CycleCount: 3})
		require.NoError(t, err)
		assert.True(t, upper.GreaterThanOrEqual(d("2")), "prev %s gave %s", prev, upper)
	}
}

func TestAxisCeiling_EmptyToday(t *testing.T) {
	_, _, err := AxisCeiling(nil, nil, RenderState{PreviousMaxY: d("2"), CycleCount: 1})

	var re *RenderError
	require.True(t, errors.As(err, &re))
	require.ErrorIs(t, err, errEmptyToday)

	// Later cycles without tomorrow never look at today.
	maxY, _, err := AxisCeiling(nil, nil, RenderState{PreviousMaxY: d("2.4"), CycleCount: 2})
	require.NoError(t, err)
	require.Equal(t, "2.4", maxY.String())
}

func TestNewRenderState(t *testing.T) {
	s := NewRenderState()
	require.Equal(t, 0, s.CycleCount)
	require.True(t, s.PreviousMaxY.Equal(d("2")))
}

func TestYTicks(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1, 1.5, 2, 2.5}, yTicks(2.75))
	assert.Equal(t, []float64{0, 0.5, 1, 1.5, 2}, yTicks(2))
	assert.Equal(t, []float64{0, 0.5, 1, 1.5, 2}, yTicks(2.2))
	assert.Equal(t, []float64{0}, yTicks(0))

	ticks := yTicks(12.3)
	assert.LessOrEqual(t, len(ticks)-1, maxYTicks)
	assert.Equal(t, 0.0, ticks[0])
	assert.LessOrEqual(t, ticks[len(ticks)-1], 12.3)
}

func TestFormatYTick(t *testing.T) {
	assert.Equal(t, "0.0", formatYTick(0))
	assert.Equal(t, "2.5", formatYTick(2.5))
	assert.Equal(t, "10.0", formatYTick(10))
}
