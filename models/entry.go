package models

import (
	"fmt"
	"strings"
)

// EntryKind tells how a vocabulary entry is matched.
type EntryKind string

const (
	KindLiteral   EntryKind = "literal"
	KindPattern   EntryKind = "pattern"
	KindWhitelist EntryKind = "whitelist"
)

// Valid reports whether k is a known kind.
func (k EntryKind) Valid() bool {
	return k == KindLiteral || k == KindPattern || k == KindWhitelist
}

// LiteralEntry is a term matched verbatim against normalized text.
type LiteralEntry struct {
	Category Category `json:"category" yaml:"category"`
	Term     string   `json:"term" yaml:"term"`
}

// PatternEntry is a regular expression matched against normalized text.
type PatternEntry struct {
	Category Category `json:"category" yaml:"category"`
	Expr     string   `json:"expr" yaml:"expr"`
}

// Entry is the flat, storable form of one vocabulary line.
// Category is ignored for whitelist entries.
type Entry struct {
	Kind     EntryKind `json:"kind"`
	Category Category  `json:"category,omitempty"`
	Value    string    `json:"value"`
}

// Validate checks that e can be added to Entries.
func (e Entry) Validate() error {
	if !e.Kind.Valid() {
		return fmt.Errorf("models: invalid entry kind %q", e.Kind)
	}
	if strings.TrimSpace(e.Value) == "" {
		return fmt.Errorf("models: empty %s entry", e.Kind)
	}
	if e.Kind != KindWhitelist && !e.Category.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownCategory, int(e.Category))
	}
	return nil
}

// Entries is the raw input of a vocabulary build.
type Entries struct {
	Literals  []LiteralEntry
	Patterns  []PatternEntry
	Whitelist []string
}

// Add appends one flat entry. Invalid entries are returned as errors.
func (e *Entries) Add(entry Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	switch entry.Kind {
	case KindLiteral:
		e.Literals = append(e.Literals, LiteralEntry{Category: entry.Category, Term: entry.Value})
	case KindPattern:
		e.Patterns = append(e.Patterns, PatternEntry{Category: entry.Category, Expr: entry.Value})
	case KindWhitelist:
		e.Whitelist = append(e.Whitelist, entry.Value)
	}
	return nil
}

// Flatten returns e as a list of flat entries.
func (e Entries) Flatten() []Entry {
	out := make([]Entry, 0, e.Len())
	for _, l := range e.Literals {
		out = append(out, Entry{Kind: KindLiteral, Category: l.Category, Value: l.Term})
	}
	for _, p := range e.Patterns {
		out = append(out, Entry{Kind: KindPattern, Category: p.Category, Value: p.Expr})
	}
	for _, w := range e.Whitelist {
		out = append(out, Entry{Kind: KindWhitelist, Value: w})
	}
	return out
}

// Len returns the total number of entries.
func (e Entries) Len() int {
	return len(e.Literals) + len(e.Patterns) + len(e.Whitelist)
}
