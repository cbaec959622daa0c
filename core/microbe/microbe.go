// Package microbe holds the static knowledge base that maps a microbe name to
// the disease it causes, its symptoms and a risk level.
//
// A KnowledgeBase is built once and never mutated; lookups are total and
// resolve unknown names to the Unknown sentinel.
package microbe

import (
	"errors"
	"fmt"
)

// Risk is the severity attached to a disease.
type Risk string

const (
	RiskLow      Risk = "Low"
	RiskModerate Risk = "Moderate"
	RiskHigh     Risk = "High"

	// RiskUnknown is only produced by lookups of unregistered names.
	RiskUnknown Risk = "Unknown risk"
)

var (
	ErrInvalidRisk = errors.New("invalid risk level")
	ErrDuplicate   = errors.New("duplicate microbe")
	ErrEmptyName   = errors.New("empty microbe name")
)

// ParseRisk accepts the three registrable levels (case-sensitive).
func ParseRisk(s string) (Risk, error) {
	switch r := Risk(s); r {
	case RiskLow, RiskModerate, RiskHigh:
		return r, nil
	}
	return "", fmt.Errorf("%w %q (want Low | Moderate | High)", ErrInvalidRisk, s)
}

// Record is one knowledge-base entry.
type Record struct {
	Name     string
	Disease  string
	Symptoms string
	Risk     Risk
}

// Unknown is returned for names that are not registered.
var Unknown = Record{
	Disease:  "Unknown",
	Symptoms: "Unknown symptoms",
	Risk:     RiskUnknown,
}

// KnowledgeBase is an immutable, ordered name -> Record table.
type KnowledgeBase struct {
	names  []string
	byName map[string]Record
}

// New builds a KnowledgeBase preserving the order of recs.
func New(recs ...Record) (*KnowledgeBase, error) {
	kb := &KnowledgeBase{
		names:  make([]string, 0, len(recs)),
		byName: make(map[string]Record, len(recs)),
	}
	for i, r := range recs {
		if r.Name == "" {
			return nil, fmt.Errorf("entry %d: %w", i+1, ErrEmptyName)
		}
		if _, dup := kb.byName[r.Name]; dup {
			return nil, fmt.Errorf("%w %q", ErrDuplicate, r.Name)
		}
		if _, err := ParseRisk(string(r.Risk)); err != nil {
			return nil, fmt.Errorf("microbe %q: %w", r.Name, err)
		}
		kb.names = append(kb.names, r.Name)
		kb.byName[r.Name] = r
	}
	return kb, nil
}

// Identify returns the stored triple for name or the Unknown triple.
func (kb *KnowledgeBase) Identify(name string) (disease, symptoms string, risk Risk) {
	r := kb.Lookup(name)
	return r.Disease, r.Symptoms, r.Risk
}

// Lookup is Identify returning the whole record. Unknown names get the
// Unknown sentinel with Name set to the requested name.
func (kb *KnowledgeBase) Lookup(name string) Record {
	if r, ok := kb.byName[name]; ok {
		return r
	}
	u := Unknown
	u.Name = name
	return u
}

// Has reports whether name is registered.
func (kb *KnowledgeBase) Has(name string) bool {
	_, ok := kb.byName[name]
	return ok
}

// Names returns the registered names in definition order. The slice is a copy.
func (kb *KnowledgeBase) Names() []string {
	return append([]string(nil), kb.names...)
}

func (kb *KnowledgeBase) Len() int { return len(kb.names) }

// Records returns all entries in definition order.
func (kb *KnowledgeBase) Records() []Record {
	out := make([]Record, 0, len(kb.names))
	for _, n := range kb.names {
		out = append(out, kb.byName[n])
	}
	return out
}
