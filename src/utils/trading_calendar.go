package utils

import (
	"time"

	"github.com/scmhub/calendar"

	"mt5-gateway/src/logger"
)

// TradingCalendar decides whether a date is a trading day, backed by
// scmhub/calendar with a Mon-Fri fallback when the MIC is unknown.
type TradingCalendar struct {
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// NewTradingCalendar loads the calendar for the given MIC code (ISO 10383,
// e.g. "xnys").
func NewTradingCalendar(mic string, log *logger.Logger) *TradingCalendar {
	cal := calendar.GetCalendar(mic)
	if cal == nil {
		cal = calendar.GetCalendar("xnys")
	}

	if cal == nil {
		log.Warning("Failed to load calendar for MIC '%s', using Mon-Fri fallback", mic)
		loc, _ := time.LoadLocation("America/New_York")
		if loc == nil {
			loc = time.UTC
		}
		return &TradingCalendar{Fallback: true, Timezone: loc}
	}

	return &TradingCalendar{Calendar: cal, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}
