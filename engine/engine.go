package engine

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/elum-utils/chatfilter/models"
	"github.com/elum-utils/chatfilter/normalize"
	"github.com/elum-utils/chatfilter/vocabulary"
)

// Stats contains runtime in-memory engine metrics.
type Stats struct {
	Version          uint64
	LiteralCount     int64
	PatternCount     int64
	WhitelistCount   int64
	LastLookupNanos  int64
	TotalLookups     int64
	TotalMatches     int64
	TotalSuppressed  int64
	LastReloadNanos  int64
	TotalReloadCount int64
}

// Engine publishes vocabulary snapshots and runs lookups against the
// current one. Lookups never lock; a reload swaps the snapshot pointer.
type Engine struct {
	vocab atomic.Pointer[vocabulary.Vocabulary]

	lastLookupNanos atomic.Int64
	totalLookups    atomic.Int64
	totalMatches    atomic.Int64
	totalSuppressed atomic.Int64
	lastReloadNanos atomic.Int64
	totalReloads    atomic.Int64
}

// New creates an engine with no vocabulary; lookups find nothing until the
// first ReplaceAll or Publish.
func New() *Engine {
	return &Engine{}
}

// ReplaceAll builds a snapshot from entries and publishes it atomically.
func (e *Engine) ReplaceAll(entries models.Entries, opt vocabulary.Options) *vocabulary.Vocabulary {
	start := time.Now()
	next := vocabulary.FromEntries(entries, opt)
	e.vocab.Store(next)

	e.lastReloadNanos.Store(time.Since(start).Nanoseconds())
	e.totalReloads.Add(1)
	return next
}

// Publish installs an already built snapshot.
func (e *Engine) Publish(v *vocabulary.Vocabulary) {
	e.vocab.Store(v)
	e.totalReloads.Add(1)
}

// Clear drops the current snapshot.
func (e *Engine) Clear() {
	e.vocab.Store(nil)
}

// Snapshot returns the current vocabulary, possibly nil.
func (e *Engine) Snapshot() *vocabulary.Vocabulary {
	return e.vocab.Load()
}

// Count returns the number of literal and pattern entries in the snapshot.
func (e *Engine) Count() int {
	v := e.vocab.Load()
	return v.LiteralCount() + v.PatternCount()
}

// Find matches text against the current snapshot.
func (e *Engine) Find(text normalize.Text) []models.Match {
	start := time.Now()
	matches, suppressed := find(text, e.vocab.Load())

	e.totalMatches.Add(int64(len(matches)))
	e.totalSuppressed.Add(int64(suppressed))
	e.lastLookupNanos.Store(time.Since(start).Nanoseconds())
	e.totalLookups.Add(1)
	return matches
}

// Find returns every literal and pattern match of v in text, minus the
// whitelist-suppressed ones, ordered by start then end.
func Find(text normalize.Text, v *vocabulary.Vocabulary) []models.Match {
	matches, _ := find(text, v)
	return matches
}

func find(text normalize.Text, v *vocabulary.Vocabulary) ([]models.Match, int) {
	if v.Empty() || text.Len() == 0 {
		return nil, 0
	}

	var starts, ends []int
	if v.HasWhitelist() {
		starts, ends = text.TokenBounds()
	}
	// The enclosing token runs from the token holding the first matched
	// rune to the end of the token holding the last one.
	whitelisted := func(s, e int) bool {
		if starts == nil {
			return false
		}
		return v.Whitelisted(string(text.Runes[starts[s]:ends[e-1]]))
	}

	var out []models.Match
	suppressed := 0
	v.ScanLiterals(text.Runes, func(s, e, idx int) {
		if whitelisted(s, e) {
			suppressed++
			return
		}
		lit := v.Literal(idx)
		out = append(out, models.Match{
			Start:    s,
			End:      e,
			Category: lit.Category,
			Text:     lit.Term,
			Entry:    lit.Raw,
		})
	})

	if patterns := v.Patterns(); len(patterns) > 0 {
		str := text.String()
		runeAt := runeIndex(str)
		for _, p := range patterns {
			for _, loc := range p.FindAll(str) {
				if loc[0] == loc[1] {
					continue
				}
				s, e := runeAt[loc[0]], runeAt[loc[1]]
				if v.WhitelistPatterns() && whitelisted(s, e) {
					suppressed++
					continue
				}
				out = append(out, models.Match{
					Start:    s,
					End:      e,
					Category: p.Category,
					Text:     str[loc[0]:loc[1]],
					Entry:    p.Expr,
					Pattern:  true,
				})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].End < out[j].End
	})
	return out, suppressed
}

// runeIndex maps every byte offset of s that starts a rune, and len(s), to
// a rune index.
func runeIndex(s string) []int {
	idx := make([]int, len(s)+1)
	n := -1
	for i := 0; i < len(s); i++ {
		if isRuneStart(s[i]) {
			n++
		}
		idx[i] = n
	}
	idx[len(s)] = n + 1
	return idx
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// Stats returns current metrics.
func (e *Engine) Stats() Stats {
	v := e.vocab.Load()
	return Stats{
		Version:          v.Version(),
		LiteralCount:     int64(v.LiteralCount()),
		PatternCount:     int64(v.PatternCount()),
		WhitelistCount:   int64(v.WhitelistCount()),
		LastLookupNanos:  e.lastLookupNanos.Load(),
		TotalLookups:     e.totalLookups.Load(),
		TotalMatches:     e.totalMatches.Load(),
		TotalSuppressed:  e.totalSuppressed.Load(),
		LastReloadNanos:  e.lastReloadNanos.Load(),
		TotalReloadCount: e.totalReloads.Load(),
	}
}
