package writers

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"cellscope/internal/report"
)

// CSVHeader is written once at the top of every CSV log.
var CSVHeader = []string{
	"timestamp", "cells_detected", "microbe", "disease", "symptoms", "risk",
	"dna_sequence", "reverse_complement",
}

// CSVSink writes one row per record and flushes after each row.
type CSVSink struct {
	w      *csv.Writer
	closer io.Closer
}

// NewCSV writes the header to w and returns a sink appending to it.
func NewCSV(w io.Writer) (*CSVSink, error) {
	s := &CSVSink{w: csv.NewWriter(w)}
	if err := s.write(CSVHeader); err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	return s, nil
}

// CreateCSV truncates (or creates) path and writes the header.
func CreateCSV(path string) (*CSVSink, error) {
	fh, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	s, err := NewCSV(fh)
	if err != nil {
		_ = fh.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.closer = fh
	return s, nil
}

func (s *CSVSink) Append(r report.Record) error {
	return s.write([]string{
		FormatTimestamp(r.Timestamp),
		strconv.Itoa(r.Cells),
		r.Microbe,
		r.Disease,
		r.Symptoms,
		string(r.Risk),
		r.Sequence,
		r.RevComp,
	})
}

func (s *CSVSink) write(row []string) error {
	if err := s.w.Write(row); err != nil {
		return err
	}
	s.w.Flush()
	return s.w.Error()
}

func (s *CSVSink) Close() error {
	s.w.Flush()
	err := s.w.Error()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
		s.closer = nil
	}
	return err
}
