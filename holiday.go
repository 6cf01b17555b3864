// Package cnholiday extracts official holiday arrangements from Chinese
// government holiday notices and answers holiday and working-day queries.
//
// A notice paragraph such as
//
//	四、劳动节：4月29日至5月3日放假调休，共5天。4月23日（星期日）、5月6日（星期六）上班。
//
// is parsed into a [Record]: a name, a start date, a day count and the makeup
// days on which work resumes despite being a weekend. Holidays written across
// the new year with explicit years on both ends are split into one record per
// calendar year.
//
// A [Holiday] answers queries for one year over the records of a
// [RecordStore]:
//
//	h, err := cnholiday.New(2023, cnholiday.Builtin())
//	if err != nil {
//		return err
//	}
//	h.IsHoliday(time.Date(2023, time.October, 6, 0, 0, 0, 0, time.UTC))  // true
//	h.IsWorkday(time.Date(2023, time.October, 7, 0, 0, 0, 0, time.UTC))  // true, a makeup day
//
// Dates are zone-less: a time.Time is read in its own location.
package cnholiday

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Day is a holiday date with the name of its holiday.
type Day struct {
	Date Date
	Name string
}

// Holiday holds the holiday and makeup days of one calendar year.
// It is immutable once created and safe for concurrent use.
//
// Queries about dates outside the year are answered from this year's data
// only: such a date is never a holiday and never a makeup day.
type Holiday struct {
	year     int
	records  []Record
	names    map[Date]string
	sorted   []Date
	makeup   []Date
	isMakeup map[Date]bool
}

// New loads the records of year from store and builds the year's holiday and
// makeup sets. Records of other years returned by the store are ignored.
func New(year int, store RecordStore) (*Holiday, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: nil store", ErrMissingRecordSource)
	}
	records, err := store.Records(year)
	if err != nil {
		if errors.Is(err, ErrMissingRecordSource) {
			return nil, fmt.Errorf("year %d: %w", year, err)
		}
		return nil, fmt.Errorf("%w: year %d: %w", ErrMissingRecordSource, year, err)
	}

	h := &Holiday{
		year:     year,
		names:    make(map[Date]string),
		isMakeup: make(map[Date]bool),
	}
	for _, r := range records {
		if r.Year != year {
			continue
		}
		if r.Days < 1 {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRecord, r)
		}
		h.records = append(h.records, cloneRecord(r))
		for _, d := range r.Dates() {
			if _, ok := h.names[d]; !ok {
				h.names[d] = r.Name
				h.sorted = append(h.sorted, d)
			}
		}
	}
	for _, r := range h.records {
		for _, m := range r.MakeupDays {
			if name, ok := h.names[m]; ok {
				return nil, fmt.Errorf("%w: %s makeup day %s is a %s holiday", ErrConflictingRecords, r.Name, m, name)
			}
			if !h.isMakeup[m] {
				h.isMakeup[m] = true
				h.makeup = append(h.makeup, m)
			}
		}
	}
	sort.Slice(h.sorted, func(i, j int) bool { return h.sorted[i].Before(h.sorted[j]) })
	return h, nil
}

// Year returns the year h answers for.
func (h *Holiday) Year() int { return h.year }

// Records returns copies of the records h was built from.
func (h *Holiday) Records() []Record {
	out := make([]Record, len(h.records))
	for i, r := range h.records {
		out[i] = cloneRecord(r)
	}
	return out
}

// HolidayDates returns every holiday date of the year in ascending order.
func (h *Holiday) HolidayDates() []Date {
	return append([]Date(nil), h.sorted...)
}

// MakeupDays returns the year's makeup days in the order the notices list
// them.
func (h *Holiday) MakeupDays() []Date {
	return append([]Date(nil), h.makeup...)
}

// Contains reports whether v is a holiday. v may be a canonical YYYY-MM-DD
// or RFC 3339 string, a time.Time or a Date; any other value fails with
// ErrInvalidQueryInput.
func (h *Holiday) Contains(v any) (bool, error) {
	d, err := toDate(v)
	if err != nil {
		return false, err
	}
	return h.containsDate(d), nil
}

// IsWorkingDay reports whether v is a working day: not a holiday, and either
// a Monday to Friday or a makeup day. v is interpreted as in Contains.
func (h *Holiday) IsWorkingDay(v any) (bool, error) {
	d, err := toDate(v)
	if err != nil {
		return false, err
	}
	return h.isWorkingDate(d), nil
}

// IsHoliday reports whether the calendar date of t is a holiday.
func (h *Holiday) IsHoliday(t time.Time) bool {
	return h.containsDate(DateOf(t))
}

// IsWorkday reports whether the calendar date of t is a working day.
func (h *Holiday) IsWorkday(t time.Time) bool {
	return h.isWorkingDate(DateOf(t))
}

// IsMakeupDay reports whether the calendar date of t is a makeup day.
func (h *Holiday) IsMakeupDay(t time.Time) bool {
	return h.isMakeup[DateOf(t)]
}

// HolidayName returns the holiday name for the date of t, or "".
func (h *Holiday) HolidayName(t time.Time) string {
	return h.names[DateOf(t)]
}

func (h *Holiday) containsDate(d Date) bool {
	_, ok := h.names[d]
	return ok
}

func (h *Holiday) isWorkingDate(d Date) bool {
	if h.containsDate(d) {
		return false
	}
	if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
		return true
	}
	return h.isMakeup[d]
}

// toDate interprets a query value as a calendar date.
func toDate(v any) (Date, error) {
	switch x := v.(type) {
	case Date:
		if _, err := NewDate(x.Year, x.Month, x.Day); err != nil {
			return Date{}, fmt.Errorf("%w: %w", ErrInvalidQueryInput, err)
		}
		return x, nil
	case *Date:
		if x == nil {
			return Date{}, fmt.Errorf("%w: nil *Date", ErrInvalidQueryInput)
		}
		return toDate(*x)
	case time.Time:
		return DateOf(x), nil
	case *time.Time:
		if x == nil {
			return Date{}, fmt.Errorf("%w: nil *time.Time", ErrInvalidQueryInput)
		}
		return DateOf(*x), nil
	case string:
		if d, err := ParseDate(x); err == nil {
			return d, nil
		}
		if t, err := time.Parse(time.RFC3339, x); err == nil {
			return DateOf(t), nil
		}
		return Date{}, fmt.Errorf("%w: %q is not a date", ErrInvalidQueryInput, x)
	default:
		return Date{}, fmt.Errorf("%w: cannot convert %T to a date", ErrInvalidQueryInput, v)
	}
}
