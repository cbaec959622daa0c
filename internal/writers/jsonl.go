// internal/writers/jsonl.go
package writers

import (
	"io"
	"os"

	"cellscope/internal/jsonlutil"
	"cellscope/internal/report"
	"cellscope/pkg/api"
)

// JSONLSink writes each record as one api.ReportV1 line.
type JSONLSink struct {
	sessionID string
	w         *jsonlutil.Writer[api.ReportV1]
	closer    io.Closer
}

func NewJSONL(w io.Writer, sessionID string) *JSONLSink {
	return &JSONLSink{sessionID: sessionID, w: jsonlutil.NewWriter[api.ReportV1](w)}
}

// CreateJSONL truncates (or creates) path. "-" writes to stdout.
func CreateJSONL(path, sessionID string) (*JSONLSink, error) {
	if path == "-" {
		return NewJSONL(os.Stdout, sessionID), nil
	}
	fh, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	s := NewJSONL(fh, sessionID)
	s.closer = fh
	return s, nil
}

func (s *JSONLSink) Append(r report.Record) error {
	err := s.w.Write(ToAPI(s.sessionID, r))
	if IsBrokenPipe(err) {
		return nil
	}
	return err
}

func (s *JSONLSink) Close() error {
	err := s.w.Close()
	if IsBrokenPipe(err) {
		err = nil
	}
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
		s.closer = nil
	}
	return err
}
