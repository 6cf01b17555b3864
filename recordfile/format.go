// Package recordfile reads and writes holiday record sets.
//
// Records can be stored as JSON, as a compressed binary snapshot or as CSV,
// and exported as an iCalendar feed. Every readable format keeps the
// difference between a record whose makeup-day list is absent and one whose
// list is empty.
package recordfile

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	cnholiday "github.com/rabitt1ove/cn-holidays"
)

// Format names an on-disk encoding of a record set.
type Format string

const (
	JSON     Format = "json"
	Snapshot Format = "snapshot"
	CSV      Format = "csv"
	ICS      Format = "ics"
)

var (
	// ErrUnknownFormat is returned for format names and file extensions that
	// do not map to a Format.
	ErrUnknownFormat = errors.New("recordfile: unknown format")

	// ErrWriteOnly is returned when decoding a format that can only be
	// exported.
	ErrWriteOnly = errors.New("recordfile: format is write-only")
)

var extensions = map[string]Format{
	".json":    JSON,
	".snap":    Snapshot,
	".msgpack": Snapshot,
	".csv":     CSV,
	".ics":     ICS,
}

// ParseFormat maps a format name, as accepted on the command line, to a
// Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case JSON, Snapshot, CSV, ICS:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath infers the format of path from its extension.
func FormatFromPath(path string) (Format, error) {
	if f, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: cannot infer format of %q", ErrUnknownFormat, path)
}

// Encode writes records to w in format f.
func Encode(w io.Writer, f Format, records []cnholiday.Record) error {
	switch f {
	case JSON:
		return encodeJSON(w, records)
	case Snapshot:
		return encodeSnapshot(w, records)
	case CSV:
		return encodeCSV(w, records)
	case ICS:
		return WriteICS(w, records, ICSOptions{})
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Decode reads a record set in format f from r. Every record is validated
// with cnholiday.NewRecord.
func Decode(r io.Reader, f Format) ([]cnholiday.Record, error) {
	switch f {
	case JSON:
		return decodeJSON(r)
	case Snapshot:
		return decodeSnapshot(r)
	case CSV:
		return decodeCSV(r)
	case ICS:
		return nil, fmt.Errorf("%w: %s", ErrWriteOnly, f)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// validate rebuilds r through cnholiday.NewRecord.
func validate(i int, r cnholiday.Record) (cnholiday.Record, error) {
	v, err := cnholiday.NewRecord(r.Year, r.Name, r.StartDate, r.Days, r.MakeupDays)
	if err != nil {
		return cnholiday.Record{}, fmt.Errorf("recordfile: record %d: %w", i, err)
	}
	return v, nil
}
