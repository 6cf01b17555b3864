package cnholiday

import (
	"fmt"
	"strings"
)

// Record is one contiguous holiday span of a single calendar year, as
// announced by a notice. Records are values; treat a constructed Record as
// read-only.
type Record struct {
	Year      int    `json:"year"`       // year the holiday days belong to
	Name      string `json:"name"`       // e.g. "元旦"
	StartDate Date   `json:"start_date"` // first holiday day
	Days      int    `json:"days"`       // consecutive days from StartDate

	// MakeupDays lists the weekend days turned into working days to offset
	// this holiday. Nil means absent (the halves of a cross-year split);
	// an empty non-nil slice means the notice named none.
	MakeupDays []Date `json:"makeup_days"`
}

// NewRecord builds a Record, validating each field. The holiday days must
// all fall inside year, and no makeup day may be one of them.
func NewRecord(year int, name string, start Date, days int, makeupDays []Date) (Record, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Record{}, fmt.Errorf("%w: empty name", ErrInvalidRecord)
	}
	if year < 1 {
		return Record{}, fmt.Errorf("%w: %s: year %d", ErrInvalidRecord, name, year)
	}
	if _, err := NewDate(start.Year, start.Month, start.Day); err != nil {
		return Record{}, fmt.Errorf("%w: %s: start date: %v", ErrInvalidRecord, name, err)
	}
	if start.Year != year {
		return Record{}, fmt.Errorf("%w: %s: start date %s outside year %d", ErrInvalidRecord, name, start, year)
	}
	if days < 1 {
		return Record{}, fmt.Errorf("%w: %s: day count %d", ErrInvalidRecord, name, days)
	}
	if last := start.AddDays(days - 1); last.Year != year {
		return Record{}, fmt.Errorf("%w: %s: span %s..%s leaves year %d", ErrInvalidRecord, name, start, last, year)
	}

	r := Record{Year: year, Name: name, StartDate: start, Days: days}
	if makeupDays != nil {
		r.MakeupDays = make([]Date, 0, len(makeupDays))
		for _, m := range makeupDays {
			if _, err := NewDate(m.Year, m.Month, m.Day); err != nil {
				return Record{}, fmt.Errorf("%w: %s: makeup day: %v", ErrInvalidRecord, name, err)
			}
			if r.Covers(m) {
				return Record{}, fmt.Errorf("%w: %s: makeup day %s is a holiday", ErrInvalidRecord, name, m)
			}
			r.MakeupDays = append(r.MakeupDays, m)
		}
	}
	return r, nil
}

// Dates returns every holiday day of r in order: StartDate, StartDate+1, ...
func (r Record) Dates() []Date {
	if r.Days < 1 {
		return nil
	}
	dates := make([]Date, r.Days)
	for i := 0; i < r.Days; i++ {
		dates[i] = r.StartDate.AddDays(i)
	}
	return dates
}

// EndDate returns the last holiday day of r.
func (r Record) EndDate() Date {
	return r.StartDate.AddDays(r.Days - 1)
}

// Covers reports whether d is one of r's holiday days.
func (r Record) Covers(d Date) bool {
	return r.Days > 0 && d.inRange(r.StartDate, r.EndDate())
}

// HasMakeupDays reports whether the makeup-day list is present (possibly
// empty) rather than absent.
func (r Record) HasMakeupDays() bool {
	return r.MakeupDays != nil
}

// Equal reports whether r and other carry identical fields, including the
// absent/empty distinction of MakeupDays.
func (r Record) Equal(other Record) bool {
	if r.Year != other.Year || r.Name != other.Name || r.StartDate != other.StartDate || r.Days != other.Days {
		return false
	}
	if (r.MakeupDays == nil) != (other.MakeupDays == nil) || len(r.MakeupDays) != len(other.MakeupDays) {
		return false
	}
	for i := range r.MakeupDays {
		if r.MakeupDays[i] != other.MakeupDays[i] {
			return false
		}
	}
	return true
}

func (r Record) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %s %s +%d", r.Year, r.Name, r.StartDate, r.Days)
	if r.MakeupDays != nil {
		b.WriteString(" makeup[")
		for i, m := range r.MakeupDays {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(m.String())
		}
		b.WriteString("]")
	}
	return b.String()
}
