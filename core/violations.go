package core

import (
	"sort"
	"strings"
	"unicode"

	"github.com/elum-utils/chatfilter/models"
	"github.com/elum-utils/chatfilter/normalize"
)

// violations keeps the matches enforced under tier, maps them to original
// offsets and merges the ones whose original spans overlap.
func (c *Core) violations(text string, nt normalize.Text, matches []models.Match, tier models.Tier) []models.Violation {
	if len(matches) == 0 {
		return nil
	}
	out := make([]models.Violation, 0, len(matches))
	for _, m := range matches {
		if !tier.Blocks(m.Category) {
			continue
		}
		span, ok := nt.Span(m.Start, m.End)
		if !ok || span.End > len(text) {
			return c.degrade(text, nt, matches, tier)
		}
		out = append(out, models.Violation{Match: m, OriginalStart: span.Start, OriginalEnd: span.End})
	}
	if len(out) == 0 {
		return nil
	}
	return mergeOverlapping(out, nt)
}

// degrade reports the whole message as one violation. It only runs when the
// origin map of nt is broken.
func (c *Core) degrade(text string, nt normalize.Text, matches []models.Match, tier models.Tier) []models.Violation {
	var worst models.Match
	found := false
	for _, m := range matches {
		if tier.Blocks(m.Category) && (!found || outranks(m, worst)) {
			worst, found = m, true
		}
	}
	if !found {
		return nil
	}
	c.degraded.Add(1)
	c.logWarn("origin map out of order, masking whole message", map[string]any{
		"length":   len(text),
		"category": worst.Category.String(),
	})
	worst.Start, worst.End = 0, nt.Len()
	worst.Text = nt.String()
	return []models.Violation{{Match: worst, OriginalStart: 0, OriginalEnd: len(text)}}
}

// mergeOverlapping folds violations with overlapping original spans into
// one covering their union. The most severe member names the merged
// violation; ties go to the longer match, then to the earlier one.
func mergeOverlapping(vs []models.Violation, nt normalize.Text) []models.Violation {
	sort.SliceStable(vs, func(i, j int) bool {
		if vs[i].OriginalStart != vs[j].OriginalStart {
			return vs[i].OriginalStart < vs[j].OriginalStart
		}
		return vs[i].OriginalEnd < vs[j].OriginalEnd
	})

	merged := make([]models.Violation, 0, len(vs))
	winners := make([]models.Match, 0, len(vs))
	for _, v := range vs {
		last := len(merged) - 1
		if last < 0 || v.OriginalStart >= merged[last].OriginalEnd {
			merged = append(merged, v)
			winners = append(winners, v.Match)
			continue
		}
		cur := &merged[last]
		if outranks(v.Match, winners[last]) {
			winners[last] = v.Match
		}
		start, end := min(cur.Start, v.Start), max(cur.End, v.End)
		cur.Match = winners[last]
		cur.Start, cur.End = start, end
		cur.Text = string(nt.Runes[start:end])
		cur.OriginalEnd = max(cur.OriginalEnd, v.OriginalEnd)
	}
	return merged
}

func outranks(a, b models.Match) bool {
	if a.Category.Severity() != b.Category.Severity() {
		return a.Category.Severity() > b.Category.Severity()
	}
	if a.Len() != b.Len() {
		return a.Len() > b.Len()
	}
	return a.Start < b.Start
}

// redact replaces every non-space code point inside a violation with the
// mask rune. Whitespace folded into a span by separator stripping is kept.
func (c *Core) redact(text string, violations []models.Violation) string {
	if len(violations) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	prev := 0
	for _, v := range violations {
		if v.OriginalStart < prev || v.OriginalEnd > len(text) || v.OriginalStart > v.OriginalEnd {
			continue
		}
		b.WriteString(text[prev:v.OriginalStart])
		for _, r := range text[v.OriginalStart:v.OriginalEnd] {
			if unicode.IsSpace(r) {
				b.WriteRune(r)
			} else {
				b.WriteRune(c.mask)
			}
		}
		prev = v.OriginalEnd
	}
	b.WriteString(text[prev:])
	return b.String()
}
