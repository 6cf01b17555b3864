package cnholiday

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDate is returned for date tokens or strings that do not name a
	// real calendar day.
	ErrInvalidDate = errors.New("cnholiday: invalid date")

	// ErrMalformedNotice is returned when a paragraph has the shape of a
	// holiday notice but its values are inconsistent.
	ErrMalformedNotice = errors.New("cnholiday: malformed notice")

	// ErrInvalidRecord is returned when a Record fails validation.
	ErrInvalidRecord = errors.New("cnholiday: invalid record")

	// ErrInvalidQueryInput is returned when a query value cannot be
	// interpreted as a calendar date.
	ErrInvalidQueryInput = errors.New("cnholiday: invalid query input")

	// ErrMissingRecordSource is returned when the records of a year cannot be
	// located or loaded.
	ErrMissingRecordSource = errors.New("cnholiday: missing record source")

	// ErrConflictingRecords is returned when a year's records declare a
	// makeup day that is also a holiday.
	ErrConflictingRecords = errors.New("cnholiday: conflicting records")
)

// NoticeError reports a paragraph that failed to parse in a batch.
type NoticeError struct {
	Index int    // position of the paragraph in the batch
	Text  string // the paragraph text
	Err   error
}

func (e *NoticeError) Error() string {
	return fmt.Sprintf("paragraph %d %q: %v", e.Index, e.Text, e.Err)
}

func (e *NoticeError) Unwrap() error { return e.Err }
