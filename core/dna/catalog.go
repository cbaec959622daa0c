// Package dna holds the sequence catalog (microbe name -> nucleotide sequence)
// and the Watson-Crick reverse complement.
package dna

import (
	"fmt"
	"sort"
	"strings"
)

// Catalog is an immutable name -> sequence table. Every stored sequence has
// been validated, so Derive on a registered name cannot fail.
type Catalog struct {
	seqs map[string]string
}

// NewCatalog validates and copies seqs. Sequences are upper-cased and
// stripped of surrounding whitespace first.
func NewCatalog(seqs map[string]string) (*Catalog, error) {
	c := &Catalog{seqs: make(map[string]string, len(seqs))}
	for name, s := range seqs {
		s = strings.ToUpper(strings.TrimSpace(s))
		if err := Validate(s); err != nil {
			return nil, fmt.Errorf("sequence %q: %w", name, err)
		}
		c.seqs[name] = s
	}
	return c, nil
}

// Sequence returns the forward sequence of name, or "" when unregistered.
func (c *Catalog) Sequence(name string) string {
	return c.seqs[name]
}

// Derive returns (forward, reverse complement). Unregistered names yield
// ("", "").
func (c *Catalog) Derive(name string) (forward, revcomp string, err error) {
	forward = c.seqs[name]
	revcomp, err = RevComp(forward)
	if err != nil {
		return "", "", fmt.Errorf("sequence %q: %w", name, err)
	}
	return forward, revcomp, nil
}

// Names returns the registered names, sorted.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.seqs))
	for n := range c.seqs {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) Len() int { return len(c.seqs) }

var builtin = map[string]string{
	"Streptococcus": "ATGCCATTAGTGCTAGCTGCTGCTGA",
	"Candida":       "ATGCGTACCGATCGTAGCTAGCTAGT",
	"H. pylori":     "ATGGCCATTGTAATGGGCCGCTGAAA",
	"E. coli":       "ATGCCTGCGTACGGCTAGTCAGAGCT",
	"Normal Flora":  "ATGCCTGCGTACGGCTAGTCAGAGCT",
}

// DefaultCatalog returns the built-in catalog matching microbe.Default.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(builtin)
	if err != nil {
		panic("dna: builtin catalog: " + err.Error())
	}
	return c
}
