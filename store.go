package cnholiday

import (
	"fmt"
	"sort"
)

// RecordStore supplies the holiday records of a year. Implementations must
// return an error wrapping ErrMissingRecordSource when they hold no data for
// the year, rather than an empty list.
type RecordStore interface {
	Records(year int) ([]Record, error)
}

// StoreFunc adapts an ordinary function to the RecordStore interface.
type StoreFunc func(year int) ([]Record, error)

// Records calls f(year).
func (f StoreFunc) Records(year int) ([]Record, error) { return f(year) }

// MemoryStore is an immutable in-memory RecordStore.
type MemoryStore struct {
	byYear map[int][]Record
}

// NewMemoryStore returns a store holding copies of records, grouped by year.
func NewMemoryStore(records []Record) *MemoryStore {
	s := &MemoryStore{byYear: make(map[int][]Record)}
	for _, r := range records {
		s.byYear[r.Year] = append(s.byYear[r.Year], cloneRecord(r))
	}
	for _, rs := range s.byYear {
		sortRecords(rs)
	}
	return s
}

// Records returns the records of year sorted by start date.
func (s *MemoryStore) Records(year int) ([]Record, error) {
	rs, ok := s.byYear[year]
	if !ok {
		return nil, fmt.Errorf("%w: no records for %d", ErrMissingRecordSource, year)
	}
	out := make([]Record, len(rs))
	for i, r := range rs {
		out[i] = cloneRecord(r)
	}
	return out, nil
}

// Years returns the years present in the store, ascending.
func (s *MemoryStore) Years() []int {
	years := make([]int, 0, len(s.byYear))
	for y := range s.byYear {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// All returns every record, ordered by year and start date.
func (s *MemoryStore) All() []Record {
	var out []Record
	for _, y := range s.Years() {
		rs, _ := s.Records(y)
		out = append(out, rs...)
	}
	return out
}

// Builtin returns a store over the records compiled into this package.
func Builtin() *MemoryStore {
	return NewMemoryStore(builtinRecords)
}

func cloneRecord(r Record) Record {
	if r.MakeupDays != nil {
		r.MakeupDays = append([]Date{}, r.MakeupDays...)
	}
	return r
}

func sortRecords(rs []Record) {
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].StartDate.Before(rs[j].StartDate)
	})
}
