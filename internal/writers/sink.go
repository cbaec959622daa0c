package writers

import (
	"errors"
	"io"
	"syscall"
	"time"

	"cellscope/internal/report"
	"cellscope/pkg/api"
)

// Sink is the log boundary of the pipeline.
type Sink interface {
	Append(report.Record) error
	Close() error
}

// TimestampLayout renders UTC instants with fixed width so rows sort
// lexically.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// FormatTimestamp renders t in UTC with TimestampLayout.
func FormatTimestamp(t time.Time) string { return t.UTC().Format(TimestampLayout) }

// ToAPI converts a record to the v1 wire schema.
func ToAPI(sessionID string, r report.Record) api.ReportV1 {
	return api.ReportV1{
		SessionID:         sessionID,
		Frame:             r.Frame,
		Timestamp:         FormatTimestamp(r.Timestamp),
		CellsDetected:     r.Cells,
		Microbe:           r.Microbe,
		Disease:           r.Disease,
		Symptoms:          r.Symptoms,
		Risk:              string(r.Risk),
		DNASequence:       r.Sequence,
		ReverseComplement: r.RevComp,
	}
}

// IsBrokenPipe reports whether err is a broken or closed pipe, as happens
// when a downstream reader such as `head` exits early.
func IsBrokenPipe(err error) bool {
	return err != nil && (errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe))
}

// Multi fans every record out to all sinks in order and stops at the first
// failure.
type Multi []Sink

func (m Multi) Append(r report.Record) error {
	for _, s := range m {
		if err := s.Append(r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and joins their errors.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
