// Package vocabulary builds immutable, versioned snapshots of categorized
// literal terms, patterns and whitelist exceptions.
package vocabulary

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/elum-utils/chatfilter/interfaces"
	"github.com/elum-utils/chatfilter/models"
	"github.com/elum-utils/chatfilter/normalize"
)

var versions atomic.Uint64

// Options configure a vocabulary build.
type Options struct {
	Logger interfaces.Logger
	// WhitelistPatterns applies whitelist suppression to pattern matches
	// as well as literal ones.
	WhitelistPatterns bool
}

// Literal is a compiled literal entry.
type Literal struct {
	Category models.Category
	// Term is the normalized form that is searched for.
	Term string
	// Raw is the entry as configured.
	Raw string
}

// Pattern is a compiled pattern entry. Patterns run against normalized text.
type Pattern struct {
	Category models.Category
	Expr     string
	re       *regexp.Regexp
}

// FindAll returns the byte index pairs of all non-overlapping matches in s.
func (p Pattern) FindAll(s string) [][]int {
	return p.re.FindAllStringIndex(s, -1)
}

// Skipped is an entry dropped during the build.
type Skipped struct {
	Entry models.Entry
	Err   error
}

var (
	errEmptyTerm   = errors.New("vocabulary: term is empty after normalization")
	errBadCategory = errors.New("vocabulary: invalid category")
)

// Vocabulary is an immutable snapshot. The zero value and nil are empty
// vocabularies that match nothing.
type Vocabulary struct {
	version           uint64
	builtAt           time.Time
	literals          []Literal
	patterns          []Pattern
	automaton         *automaton
	whitelist         map[string]struct{}
	whitelistPatterns bool
	skipped           []Skipped
}

// FromEntries is Load over a models.Entries value.
func FromEntries(entries models.Entries, opt Options) *Vocabulary {
	return Load(entries.Literals, entries.Patterns, entries.Whitelist, opt)
}

// Load compiles a new snapshot. Bad entries are skipped individually and
// reported through opt.Logger and Skipped; they never fail the build.
func Load(literals []models.LiteralEntry, patterns []models.PatternEntry, whitelist []string, opt Options) *Vocabulary {
	v := &Vocabulary{
		version:           versions.Add(1),
		builtAt:           time.Now(),
		automaton:         newAutomaton(),
		whitelist:         make(map[string]struct{}, len(whitelist)),
		whitelistPatterns: opt.WhitelistPatterns,
	}

	byTerm := make(map[string]int, len(literals))
	for _, entry := range literals {
		raw := models.Entry{Kind: models.KindLiteral, Category: entry.Category, Value: entry.Term}
		if !entry.Category.Valid() {
			v.skip(opt.Logger, raw, errBadCategory)
			continue
		}
		term := normalize.Token(entry.Term)
		if term == "" {
			v.skip(opt.Logger, raw, errEmptyTerm)
			continue
		}
		if idx, exists := byTerm[term]; exists {
			if entry.Category.Severity() > v.literals[idx].Category.Severity() {
				v.literals[idx].Category = entry.Category
				v.literals[idx].Raw = entry.Term
			}
			continue
		}
		byTerm[term] = len(v.literals)
		v.literals = append(v.literals, Literal{Category: entry.Category, Term: term, Raw: entry.Term})
	}
	for i, lit := range v.literals {
		v.automaton.insert([]rune(lit.Term), i)
	}
	v.automaton.build()

	for _, entry := range patterns {
		raw := models.Entry{Kind: models.KindPattern, Category: entry.Category, Value: entry.Expr}
		if !entry.Category.Valid() {
			v.skip(opt.Logger, raw, errBadCategory)
			continue
		}
		expr := strings.TrimSpace(entry.Expr)
		if expr == "" {
			v.skip(opt.Logger, raw, errors.New("vocabulary: pattern is empty"))
			continue
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			v.skip(opt.Logger, raw, fmt.Errorf("vocabulary: compile pattern: %w", err))
			continue
		}
		v.patterns = append(v.patterns, Pattern{Category: entry.Category, Expr: expr, re: re})
	}

	for _, w := range whitelist {
		token := normalize.Token(w)
		if token == "" {
			v.skip(opt.Logger, models.Entry{Kind: models.KindWhitelist, Value: w}, errEmptyTerm)
			continue
		}
		v.whitelist[token] = struct{}{}
	}

	if opt.Logger != nil {
		opt.Logger.Debug("vocabulary built", map[string]any{
			"version":   v.version,
			"literals":  len(v.literals),
			"patterns":  len(v.patterns),
			"whitelist": len(v.whitelist),
			"skipped":   len(v.skipped),
		})
	}
	return v
}

func (v *Vocabulary) skip(logger interfaces.Logger, entry models.Entry, err error) {
	v.skipped = append(v.skipped, Skipped{Entry: entry, Err: err})
	if logger != nil {
		logger.Warn("vocabulary entry skipped", map[string]any{
			"kind":     string(entry.Kind),
			"category": entry.Category.String(),
			"value":    entry.Value,
			"error":    err.Error(),
		})
	}
}

// Version is unique per build and increases with every Load in the process.
func (v *Vocabulary) Version() uint64 {
	if v == nil {
		return 0
	}
	return v.version
}

// BuiltAt returns when the snapshot was compiled.
func (v *Vocabulary) BuiltAt() time.Time {
	if v == nil {
		return time.Time{}
	}
	return v.builtAt
}

// LiteralCount returns the number of distinct normalized literal terms.
func (v *Vocabulary) LiteralCount() int {
	if v == nil {
		return 0
	}
	return len(v.literals)
}

// PatternCount returns the number of compiled patterns.
func (v *Vocabulary) PatternCount() int {
	if v == nil {
		return 0
	}
	return len(v.patterns)
}

// WhitelistCount returns the number of distinct normalized whitelist entries.
func (v *Vocabulary) WhitelistCount() int {
	if v == nil {
		return 0
	}
	return len(v.whitelist)
}

// Empty reports whether the snapshot can produce any match.
func (v *Vocabulary) Empty() bool {
	return v.LiteralCount() == 0 && v.PatternCount() == 0
}

// Skipped returns the entries dropped during the build.
func (v *Vocabulary) Skipped() []Skipped {
	if v == nil {
		return nil
	}
	return append([]Skipped(nil), v.skipped...)
}

// Literal returns literal i as indexed by ScanLiterals, or the zero Literal
// when i is out of range.
func (v *Vocabulary) Literal(i int) Literal {
	if v == nil || i < 0 || i >= len(v.literals) {
		return Literal{}
	}
	return v.literals[i]
}

// Patterns returns the compiled pattern entries.
func (v *Vocabulary) Patterns() []Pattern {
	if v == nil {
		return nil
	}
	return v.patterns
}

// ScanLiterals reports every literal occurrence in text in one pass.
func (v *Vocabulary) ScanLiterals(text []rune, fn func(start, end, literal int)) {
	if v == nil || v.automaton == nil {
		return
	}
	v.automaton.scan(text, fn)
}

// Whitelisted reports whether a normalized token is a whitelist entry.
func (v *Vocabulary) Whitelisted(token string) bool {
	if v == nil || len(v.whitelist) == 0 {
		return false
	}
	_, ok := v.whitelist[token]
	return ok
}

// HasWhitelist reports whether any whitelist entry is loaded.
func (v *Vocabulary) HasWhitelist() bool {
	return v.WhitelistCount() > 0
}

// WhitelistPatterns reports whether pattern matches are whitelist-suppressed.
func (v *Vocabulary) WhitelistPatterns() bool {
	return v != nil && v.whitelistPatterns
}
