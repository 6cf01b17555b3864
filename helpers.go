package cnholiday

import (
	"sort"
	"time"
)

// NextHoliday returns the first holiday day strictly after d.
// Returns false if no later holiday exists in the year.
func (h *Holiday) NextHoliday(d Date) (Day, bool) {
	i := sort.Search(len(h.sorted), func(i int) bool { return h.sorted[i].After(d) })
	if i == len(h.sorted) {
		return Day{}, false
	}
	next := h.sorted[i]
	return Day{Date: next, Name: h.names[next]}, true
}

// PreviousHoliday returns the last holiday day strictly before d.
// Returns false if no earlier holiday exists in the year.
func (h *Holiday) PreviousHoliday(d Date) (Day, bool) {
	i := sort.Search(len(h.sorted), func(i int) bool { return !h.sorted[i].Before(d) })
	if i == 0 {
		return Day{}, false
	}
	prev := h.sorted[i-1]
	return Day{Date: prev, Name: h.names[prev]}, true
}

// NextWorkingDay returns the first working day on or after d.
// The search stops at December 31 of the year; false means none was found.
func (h *Holiday) NextWorkingDay(d Date) (Date, bool) {
	last := Date{Year: h.year, Month: time.December, Day: 31}
	for cur := d; !cur.After(last); cur = cur.AddDays(1) {
		if h.isWorkingDate(cur) {
			return cur, true
		}
	}
	return Date{}, false
}

// PreviousWorkingDay returns the last working day on or before d.
// The search stops at January 1 of the year; false means none was found.
func (h *Holiday) PreviousWorkingDay(d Date) (Date, bool) {
	first := Date{Year: h.year, Month: time.January, Day: 1}
	for cur := d; !cur.Before(first); cur = cur.AddDays(-1) {
		if h.isWorkingDate(cur) {
			return cur, true
		}
	}
	return Date{}, false
}

// WorkingDaysBetween returns the count of working days in [from, to]
// inclusive, using this year's holidays and makeup days. If from is after
// to, returns 0.
func (h *Holiday) WorkingDaysBetween(from, to Date) int {
	count := 0
	for cur := from; !cur.After(to); cur = cur.AddDays(1) {
		if h.isWorkingDate(cur) {
			count++
		}
	}
	return count
}

// HolidaysInMonth returns the holiday days of month in this year, in date
// order.
func (h *Holiday) HolidaysInMonth(month time.Month) []Day {
	first := Date{Year: h.year, Month: month, Day: 1}
	return h.HolidaysBetween(first, Date{Year: h.year, Month: month + 1, Day: 1}.AddDays(-1))
}

// HolidaysBetween returns the holiday days in [from, to] inclusive, in date
// order.
func (h *Holiday) HolidaysBetween(from, to Date) []Day {
	lo := sort.Search(len(h.sorted), func(i int) bool { return !h.sorted[i].Before(from) })
	var out []Day
	for _, d := range h.sorted[lo:] {
		if d.After(to) {
			break
		}
		out = append(out, Day{Date: d, Name: h.names[d]})
	}
	return out
}
