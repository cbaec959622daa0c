// Package fasta reads FASTA records. Only whole records are produced; the
// header ID is the first whitespace-delimited token, or the whole header when
// quoted names with spaces are needed (see Options.FullHeader).
package fasta

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// Record is one parsed FASTA entry.
type Record struct {
	ID  string
	Seq []byte
}

// Options tune header parsing.
type Options struct {
	// FullHeader keeps the entire trimmed header line as the ID, so names
	// like "H. pylori" survive.
	FullHeader bool
}

// Read scans r and calls emit once per record. Sequence lines are trimmed and
// upper-cased; blank lines are skipped. Sequence data before the first header
// is an error.
func Read(r io.Reader, opt Options, emit func(Record) error) error {
	sc := bufio.NewScanner(r)
	const maxLine = 16 * 1024 * 1024
	sc.Buffer(make([]byte, 64*1024), maxLine)

	var (
		id     string
		seq    []byte
		inRec  bool
		lineNo int
	)
	flush := func() error {
		if !inRec {
			return nil
		}
		return emit(Record{ID: id, Seq: append([]byte(nil), seq...)})
	}

	for sc.Scan() {
		lineNo++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if err := flush(); err != nil {
				return err
			}
			id = parseHeaderID(line[1:], opt.FullHeader)
			seq = seq[:0]
			inRec = true
			continue
		}
		if !inRec {
			return fmt.Errorf("fasta: line %d: sequence data before first header", lineNo)
		}
		seq = append(seq, bytes.ToUpper(line)...)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("fasta scan: %w", err)
	}
	return flush()
}

// ReadFile opens path (gzip and "-" aware) and collects all records.
func ReadFile(path string, opt Options) ([]Record, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	var out []Record
	err = Read(rc, opt, func(r Record) error {
		out = append(out, r)
		return nil
	})
	return out, err
}

func parseHeaderID(hdr []byte, full bool) string {
	hdr = bytes.TrimSpace(hdr)
	if full {
		return string(hdr)
	}
	if i := bytes.IndexAny(hdr, " \t"); i >= 0 {
		return string(hdr[:i])
	}
	return string(hdr)
}
