package recordfile

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	cnholiday "github.com/rabitt1ove/cn-holidays"
)

const (
	tmpSuffix       = ".tmp"
	filePermissions = 0o644
	dirPermissions  = 0o755
)

// Save writes records to path in format f, or in the format implied by the
// extension when f is empty. The data goes to a temporary file first and
// replaces path by rename, so readers never see a partial file.
func Save(path string, f Format, records []cnholiday.Record) error {
	f, err := resolveFormat(path, f)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, f, records); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return fmt.Errorf("recordfile: %w", err)
		}
	}
	tmp := path + tmpSuffix
	if err := os.WriteFile(tmp, buf.Bytes(), filePermissions); err != nil {
		return fmt.Errorf("recordfile: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("recordfile: %w", err)
	}
	return nil
}

// ReadFile decodes the records stored at path. A missing file yields an
// error wrapping cnholiday.ErrMissingRecordSource.
func ReadFile(path string, f Format) ([]cnholiday.Record, error) {
	f, err := resolveFormat(path, f)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", cnholiday.ErrMissingRecordSource, err)
		}
		return nil, fmt.Errorf("recordfile: %w", err)
	}
	defer file.Close()

	records, err := Decode(file, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Load reads path into a store ready for cnholiday.New.
func Load(path string, f Format) (*cnholiday.MemoryStore, error) {
	records, err := ReadFile(path, f)
	if err != nil {
		return nil, err
	}
	return cnholiday.NewMemoryStore(records), nil
}

func resolveFormat(path string, f Format) (Format, error) {
	if f != "" {
		return ParseFormat(string(f))
	}
	return FormatFromPath(path)
}
