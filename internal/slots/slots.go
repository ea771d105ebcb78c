// Package slots computes bookable appointment slots from calendar busy intervals.
//
// The calculator is a pure function: no I/O, fully unit-testable in isolation.
package slots

import (
	"sort"
	"time"

	"github.com/amaan34/tailortalk/internal/models"
)

// Compute returns the ordered set of fixed-duration bookable slots inside
// [dayStart, dayEnd) that do not overlap any busy interval.
//
// Busy intervals are sorted by start and merged with a running cursor, so
// overlapping intervals are tolerated and no negative-length gap is ever
// produced. Each free gap is sliced into consecutive slots of slotDuration;
// a trailing remainder shorter than slotDuration is discarded.
//
// Returns an empty sequence, never an error, when the day is fully booked
// or the window is degenerate (dayStart >= dayEnd).
func Compute(dayStart, dayEnd time.Time, busy []models.BusyInterval, slotDuration time.Duration) []models.AppointmentSlot {
	if !dayStart.Before(dayEnd) || slotDuration <= 0 {
		return nil
	}

	sorted := make([]models.BusyInterval, len(busy))
	copy(sorted, busy)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var result []models.AppointmentSlot
	cursor := dayStart
	for _, b := range sorted {
		if b.End.Before(dayStart) || !b.Start.Before(dayEnd) {
			continue
		}
		if cursor.Before(b.Start) {
			result = append(result, slice(cursor, minTime(b.Start, dayEnd), slotDuration)...)
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if cursor.Before(dayEnd) {
		result = append(result, slice(cursor, dayEnd, slotDuration)...)
	}
	return result
}

// slice cuts the free gap [from, to) into consecutive fixed-duration slots.
func slice(from, to time.Time, d time.Duration) []models.AppointmentSlot {
	var out []models.AppointmentSlot
	for cur := from; !cur.Add(d).After(to); cur = cur.Add(d) {
		out = append(out, models.AppointmentSlot{Start: cur, End: cur.Add(d)})
	}
	return out
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// BusinessWindow returns the business-hours window (09:00-17:00 local) for
// the calendar day containing t, in t's location.
func BusinessWindow(t time.Time) (time.Time, time.Time) {
	loc := t.Location()
	start := time.Date(t.Year(), t.Month(), t.Day(), models.BusinessDayStartHour, 0, 0, 0, loc)
	end := time.Date(t.Year(), t.Month(), t.Day(), models.BusinessDayEndHour, 0, 0, 0, loc)
	return start, end
}
