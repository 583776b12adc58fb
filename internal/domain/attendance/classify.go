package attendance

import (
	"math"
	"time"
)

// DayContext is the calendar context a day is classified in.
type DayContext struct {
	Date      time.Time
	IsWeekend bool
	IsHoliday bool
}

type Classification struct {
	Status     DayStatus `json:"status"`
	LateHours  float64   `json:"late_hours"`
	EarlyHours float64   `json:"early_hours"`
}

// Classify maps a day and its record (nil when none exists) to a status. It is
// the single source of day status for live views, reconciliation and reports,
// and depends only on its arguments.
func (p ShiftPolicy) Classify(day DayContext, rec *Record) Classification {
	if day.IsHoliday {
		return Classification{Status: StatusHoliday}
	}

	if rec != nil && rec.CheckIn != nil && rec.CheckOut != nil {
		late := math.Max(0, rec.CheckIn.Hours()-p.GraceBoundary.Hours())
		early := math.Max(0, p.ShiftEnd.Hours()-rec.CheckOut.Hours())
		tolerance := p.Tolerance.Hours()

		status := StatusPresent
		if late > tolerance || early > tolerance {
			status = StatusHalfDay
		}
		return Classification{Status: status, LateHours: late, EarlyHours: early}
	}

	if day.IsWeekend && rec == nil {
		return Classification{Status: StatusWeekendOff}
	}

	return Classification{Status: StatusAbsent}
}

// Classify classifies with DefaultShiftPolicy.
func Classify(day DayContext, rec *Record) Classification {
	return DefaultShiftPolicy.Classify(day, rec)
}
