package recordfile

import (
	"encoding/json"
	"fmt"
	"io"

	cnholiday "github.com/rabitt1ove/cn-holidays"
)

func encodeJSON(w io.Writer, records []cnholiday.Record) error {
	if records == nil {
		records = []cnholiday.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(records)
}

func decodeJSON(r io.Reader) ([]cnholiday.Record, error) {
	var raw []cnholiday.Record
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("recordfile: decode json: %w", err)
	}
	out := make([]cnholiday.Record, 0, len(raw))
	for i, rec := range raw {
		v, err := validate(i, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
