package recordfile

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	cnholiday "github.com/rabitt1ove/cn-holidays"
)

const makeupSep = ";"

// csvRecord is one CSV row. MakeupDays holds the dates joined by ";";
// HasMakeupDays tells an absent list from an empty one.
type csvRecord struct {
	Year          int    `csv:"year"`
	Name          string `csv:"name"`
	StartDate     string `csv:"start_date"`
	Days          int    `csv:"days"`
	HasMakeupDays bool   `csv:"has_makeup_days"`
	MakeupDays    string `csv:"makeup_days"`
}

func encodeCSV(w io.Writer, records []cnholiday.Record) error {
	rows := make([]*csvRecord, len(records))
	for i, r := range records {
		dates := make([]string, len(r.MakeupDays))
		for j, m := range r.MakeupDays {
			dates[j] = m.String()
		}
		rows[i] = &csvRecord{
			Year:          r.Year,
			Name:          r.Name,
			StartDate:     r.StartDate.String(),
			Days:          r.Days,
			HasMakeupDays: r.MakeupDays != nil,
			MakeupDays:    strings.Join(dates, makeupSep),
		}
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("recordfile: encode csv: %w", err)
	}
	return nil
}

func decodeCSV(r io.Reader) ([]cnholiday.Record, error) {
	var rows []*csvRecord
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("recordfile: decode csv: %w", err)
	}

	out := make([]cnholiday.Record, 0, len(rows))
	for i, row := range rows {
		start, err := cnholiday.ParseDate(row.StartDate)
		if err != nil {
			return nil, fmt.Errorf("recordfile: record %d: %w", i, err)
		}
		var makeup []cnholiday.Date
		if row.HasMakeupDays {
			makeup = []cnholiday.Date{}
			for _, s := range strings.Split(row.MakeupDays, makeupSep) {
				if s = strings.TrimSpace(s); s == "" {
					continue
				}
				m, err := cnholiday.ParseDate(s)
				if err != nil {
					return nil, fmt.Errorf("recordfile: record %d: makeup day: %w", i, err)
				}
				makeup = append(makeup, m)
			}
		}
		v, err := validate(i, cnholiday.Record{Year: row.Year, Name: row.Name, StartDate: start, Days: row.Days, MakeupDays: makeup})
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
