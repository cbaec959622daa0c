// core/dna/rc.go
package dna

import (
	"errors"
	"fmt"
)

// ErrInvalidSequence is matched (errors.Is) by every base validation failure.
var ErrInvalidSequence = errors.New("invalid sequence")

// InvalidBaseError reports the first non-ACGT base of a sequence.
type InvalidBaseError struct {
	Pos  int // 1-based
	Base byte
}

func (e *InvalidBaseError) Error() string {
	return fmt.Sprintf("invalid sequence: base %q at %d; allowed: A C G T", e.Base, e.Pos)
}

func (e *InvalidBaseError) Is(target error) bool { return target == ErrInvalidSequence }

// Only the four canonical bases are registrable; a zero entry means invalid.
var complement [256]byte

func init() {
	complement['A'] = 'T'
	complement['C'] = 'G'
	complement['G'] = 'C'
	complement['T'] = 'A'
}

// Validate returns an *InvalidBaseError for the first base outside {A,C,G,T}.
// The empty sequence is valid.
func Validate(seq string) error {
	for i := 0; i < len(seq); i++ {
		if complement[seq[i]] == 0 {
			return &InvalidBaseError{Pos: i + 1, Base: seq[i]}
		}
	}
	return nil
}

// RevComp reverses seq and complements every base (A<->T, C<->G).
func RevComp(seq string) (string, error) {
	n := len(seq)
	if n == 0 {
		return "", nil
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		b := seq[n-1-i]
		c := complement[b]
		if c == 0 {
			return "", &InvalidBaseError{Pos: n - i, Base: b}
		}
		out[i] = c
	}
	return string(out), nil
}

// MustRevComp panics on invalid input. Only for sequences already validated.
func MustRevComp(seq string) string {
	rc, err := RevComp(seq)
	if err != nil {
		panic(err)
	}
	return rc
}
