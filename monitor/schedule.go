package monitor

import (
	"time"
)

// Refresh cadence in minutes. Tomorrow's prices are usually published
// shortly after 13:00, so that quarter hour is checked more often.
const (
	peakCadence   = 15
	normalCadence = 60

	peakHour          = 13
	peakWindowMinutes = 15
)

// Cadence returns the refresh interval in minutes for the local time t.
func Cadence(t time.Time) int {
	if t.Hour() == peakHour && t.Minute() < peakWindowMinutes {
		return peakCadence
	}
	return normalCadence
}

// NextWake returns the next cadence boundary strictly after the current
// minute, with seconds set to zero. Minute 60 rolls over into the next hour.
func NextWake(now time.Time) time.Time {
	cadence := Cadence(now)
	minute := now.Minute() + cadence - now.Minute()%cadence

	hourStart := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
	return hourStart.Add(time.Duration(minute) * time.Minute)
}

// RefreshSchedule is the built-in cadence as a cron.Schedule.
type RefreshSchedule struct {
	Location *time.Location
}

func (s RefreshSchedule) Next(t time.Time) time.Time {
	if s.Location != nil {
		t = t.In(s.Location)
	}
	return NextWake(t)
}
