package recordfile

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/snappy"
	"github.com/vmihailenco/msgpack"

	cnholiday "github.com/rabitt1ove/cn-holidays"
)

const snapshotVersion = 1

type snapshotFile struct {
	Version int              `msgpack:"v"`
	Records []snapshotRecord `msgpack:"records"`
}

// snapshotRecord carries dates as YYYY-MM-DD strings. NoMakeup marks an
// absent makeup list, since msgpack writes nil and empty slices alike.
type snapshotRecord struct {
	Year     int      `msgpack:"year"`
	Name     string   `msgpack:"name"`
	Start    string   `msgpack:"start"`
	Days     int      `msgpack:"days"`
	NoMakeup bool     `msgpack:"no_makeup"`
	Makeup   []string `msgpack:"makeup"`
}

func encodeSnapshot(w io.Writer, records []cnholiday.Record) error {
	file := snapshotFile{Version: snapshotVersion, Records: make([]snapshotRecord, len(records))}
	for i, r := range records {
		sr := snapshotRecord{
			Year:     r.Year,
			Name:     r.Name,
			Start:    r.StartDate.String(),
			Days:     r.Days,
			NoMakeup: r.MakeupDays == nil,
			Makeup:   make([]string, len(r.MakeupDays)),
		}
		for j, m := range r.MakeupDays {
			sr.Makeup[j] = m.String()
		}
		file.Records[i] = sr
	}

	buf, err := msgpack.Marshal(file)
	if err != nil {
		return fmt.Errorf("recordfile: encode snapshot: %w", err)
	}
	_, err = w.Write(snappy.Encode(nil, buf))
	return err
}

func decodeSnapshot(r io.Reader) ([]cnholiday.Record, error) {
	compressed, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	buf, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("recordfile: decompress snapshot: %w", err)
	}
	var file snapshotFile
	if err := msgpack.Unmarshal(buf, &file); err != nil {
		return nil, fmt.Errorf("recordfile: decode snapshot: %w", err)
	}
	if file.Version != snapshotVersion {
		return nil, fmt.Errorf("recordfile: unsupported snapshot version %d", file.Version)
	}

	out := make([]cnholiday.Record, 0, len(file.Records))
	for i, sr := range file.Records {
		start, err := cnholiday.ParseDate(sr.Start)
		if err != nil {
			return nil, fmt.Errorf("recordfile: record %d: %w", i, err)
		}
		var makeup []cnholiday.Date
		if !sr.NoMakeup {
			makeup = make([]cnholiday.Date, 0, len(sr.Makeup))
			for _, s := range sr.Makeup {
				m, err := cnholiday.ParseDate(s)
				if err != nil {
					return nil, fmt.Errorf("recordfile: record %d: makeup day: %w", i, err)
				}
				makeup = append(makeup, m)
			}
		}
		v, err := validate(i, cnholiday.Record{Year: sr.Year, Name: sr.Name, StartDate: start, Days: sr.Days, MakeupDays: makeup})
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
