package recordfile

import (
	"slices"
	"sort"

	cnholiday "github.com/rabitt1ove/cn-holidays"
)

// Merge combines a stored record set with freshly parsed records. A fresh
// record replaces every existing record of the same year and name whose
// dates overlap it; identical fresh records are kept once. The result is
// ordered by year, then start date.
func Merge(existing, fresh []cnholiday.Record) []cnholiday.Record {
	out := make([]cnholiday.Record, 0, len(existing)+len(fresh))
	for _, old := range existing {
		if !slices.ContainsFunc(fresh, func(f cnholiday.Record) bool { return supersedes(f, old) }) {
			out = append(out, clone(old))
		}
	}
	for _, f := range fresh {
		if !slices.ContainsFunc(out, f.Equal) {
			out = append(out, clone(f))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out
}

func supersedes(fresh, old cnholiday.Record) bool {
	return fresh.Year == old.Year &&
		fresh.Name == old.Name &&
		!fresh.StartDate.After(old.EndDate()) &&
		!old.StartDate.After(fresh.EndDate())
}

func clone(r cnholiday.Record) cnholiday.Record {
	r.MakeupDays = slices.Clone(r.MakeupDays)
	return r
}
