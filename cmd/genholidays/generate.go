package main

import (
	"fmt"
	"go/format"
	"sort"
	"strings"
	"time"

	cnholiday "github.com/rabitt1ove/cn-holidays"
)

const minExpectedRecords = 1

// monthConstName returns the time.Month constant name (e.g., "time.January").
func monthConstName(m time.Month) string {
	return "time." + m.String()
}

func dateLiteral(d cnholiday.Date) string {
	return fmt.Sprintf("{%d, %s, %d}", d.Year, monthConstName(d.Month), d.Day)
}

// generate produces a formatted Go source file declaring the built-in
// records of package cnholiday.
func generate(records []cnholiday.Record) ([]byte, error) {
	if len(records) < minExpectedRecords {
		return nil, fmt.Errorf("validation failed: expected at least %d records, got %d", minExpectedRecords, len(records))
	}
	records = append([]cnholiday.Record(nil), records...)
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Year != records[j].Year {
			return records[i].Year < records[j].Year
		}
		return records[i].StartDate.Before(records[j].StartDate)
	})

	var b strings.Builder
	b.WriteString("// Code generated by cmd/genholidays; DO NOT EDIT.\n\n")
	b.WriteString("package cnholiday\n\n")
	b.WriteString("import \"time\"\n\n")
	b.WriteString("var builtinRecords = []Record{\n")

	currentYear := 0
	for _, r := range records {
		if r.Year != currentYear {
			if currentYear != 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "\t// %d\n", r.Year)
			currentYear = r.Year
		}
		fmt.Fprintf(&b, "\t{Year: %d, Name: %q, StartDate: Date%s, Days: %d", r.Year, r.Name, dateLiteral(r.StartDate), r.Days)
		if r.MakeupDays != nil {
			dates := make([]string, len(r.MakeupDays))
			for i, m := range r.MakeupDays {
				dates[i] = dateLiteral(m)
			}
			fmt.Fprintf(&b, ", MakeupDays: []Date{%s}", strings.Join(dates, ", "))
		}
		b.WriteString("},\n")
	}

	b.WriteString("}\n")

	return format.Source([]byte(b.String()))
}
