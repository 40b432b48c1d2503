package monitor

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute, second int) time.Time {
	return time.Date(2024, 3, 1, hour, minute, second, 0, time.UTC)
}

func TestNextWake(t *testing.T) {
	tests := []struct {
		now  time.Time
		want time.Time
	}{
		{now: at(13, 7, 12), want: at(13, 15, 0)},
		{now: at(9, 42, 0), want: at(10, 0, 0)},
		{now: at(13, 59, 59), want: at(14, 0, 0)},
		{now: at(13, 0, 0), want: at(13, 15, 0)},
		{now: at(13, 14, 59), want: at(13, 15, 0)},
		{now: at(13, 15, 0), want: at(14, 0, 0)},
		{now: at(12, 0, 0), want: at(13, 0, 0)},
		{now: at(23, 30, 0), want: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.now.Format("15:04:05"), func(t *testing.T) {
			assert.Equal(t, tt.want, NextWake(tt.now))
		})
	}
}

func TestCadence(t *testing.T) {
	assert.Equal(t, 15, Cadence(at(13, 7, 0)))
	assert.Equal(t, 60, Cadence(at(9, 42, 0)))
	assert.Equal(t, 60, Cadence(at(13, 15, 0)))
	assert.Equal(t, 60, Cadence(at(1, 5, 0)))
}

func TestNextWake_KeepsLocation(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Stockholm")
	require.NoError(t, err)

	now := time.Date(2024, 7, 10, 13, 3, 0, 0, loc)
	next := NextWake(now)
	assert.Equal(t, time.Date(2024, 7, 10, 13, 15, 0, 0, loc), next)
	assert.Equal(t, loc, next.Location())
}

func TestRefreshSchedule_IsCronSchedule(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Stockholm")
	require.NoError(t, err)

	var s cron.Schedule = RefreshSchedule{Location: loc}

	// 12:07 UTC is 13:07 in Stockholm in winter.
	next := s.Next(time.Date(2024, 1, 15, 12, 7, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 1, 15, 13, 15, 0, 0, loc), next)
}
