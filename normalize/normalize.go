// Package normalize canonicalizes chat text for matching while keeping, for
// every output rune, the byte range of the original text it came from.
//
// The pipeline never reorders characters, so a contiguous range of
// normalized runes always maps back to a contiguous range of the input.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Span is a half-open byte range [Start, End) of the original text.
type Span struct {
	Start int
	End   int
}

// Text is normalized text with provenance.
type Text struct {
	Runes []rune
	// Origin holds one original span per rune. Starts never decrease.
	Origin []Span
	// Breaks[i] is true when a visible separator was removed right before
	// rune i. Marks and format characters do not break.
	Breaks []bool
}

// Len returns the number of normalized runes.
func (t Text) Len() int {
	return len(t.Runes)
}

func (t Text) String() string {
	return string(t.Runes)
}

// Span maps the normalized rune range [start, end) to original coordinates.
// It returns false when the range is empty or out of bounds, or when the
// origin ordering does not hold for it.
func (t Text) Span(start, end int) (Span, bool) {
	if start < 0 || end > len(t.Origin) || start >= end {
		return Span{}, false
	}
	first, last := t.Origin[start], t.Origin[end-1]
	if first.Start > last.Start || first.Start > last.End || first.Start < 0 {
		return Span{}, false
	}
	return Span{Start: first.Start, End: last.End}, true
}

// Ordered reports whether origin starts are monotonically non-decreasing and
// every span is well formed.
func (t Text) Ordered() bool {
	if len(t.Origin) != len(t.Runes) {
		return false
	}
	prev := 0
	for _, s := range t.Origin {
		if s.Start < prev || s.End < s.Start {
			return false
		}
		prev = s.Start
	}
	return true
}

// TokenBounds returns, for every rune, the start and end (exclusive) of the
// alphanumeric run that contains it.
func (t Text) TokenBounds() (starts, ends []int) {
	n := len(t.Runes)
	starts = make([]int, n)
	ends = make([]int, n)
	cur := 0
	for i := 0; i < n; i++ {
		if i > 0 && t.Breaks[i] {
			cur = i
		}
		starts[i] = cur
	}
	cur = n
	for i := n - 1; i >= 0; i-- {
		ends[i] = cur
		if t.Breaks[i] {
			cur = i
		}
	}
	return starts, ends
}

// Normalize runs the full matching pipeline:
//
//  1. case folding
//  2. diacritic stripping (NFKD, combining marks dropped)
//  3. homoglyph folding, checked before and after each of the above
//  4. leet-speak substitution
//  5. runs of 3+ identical runes collapse to 2
//  6. separators are removed and their offsets folded into a neighbour
//
// Removing separators can join runs ("aa.a"), so collapsing runs once more
// at the end. Normalize is idempotent.
func Normalize(s string) Text {
	if s == "" {
		return Text{}
	}
	t := canonicalize(s)
	t = mapRunes(t, foldLeet)
	t = collapseRuns(t)
	t = stripSeparators(t)
	return collapseRuns(t)
}

// String is shorthand for Normalize(s).String().
func String(s string) string {
	return Normalize(s).String()
}

// ForDisplay applies stages 1-4 one code point at a time, so the result has
// exactly as many code points as s.
func ForDisplay(s string) string {
	if s == "" {
		return ""
	}
	t := foldCase(s)
	t = stripMarks(t)
	t = mapRunes(t, foldHomoglyph)
	t = mapRunes(t, foldLeet)
	return t.String()
}

type builder struct {
	runes  []rune
	origin []Span
	breaks []bool
}

func newBuilder(capacity int) *builder {
	return &builder{
		runes:  make([]rune, 0, capacity),
		origin: make([]Span, 0, capacity),
		breaks: make([]bool, 0, capacity),
	}
}

func (b *builder) push(r rune, origin Span, brk bool) {
	b.runes = append(b.runes, r)
	b.origin = append(b.origin, origin)
	b.breaks = append(b.breaks, brk)
}

func (b *builder) text() Text {
	return Text{Runes: b.runes, Origin: b.origin, Breaks: b.breaks}
}

// maxFoldDepth bounds how many fold and decompose rounds one rune goes
// through.
const maxFoldDepth = 4

// canonicalize runs stages 1-3 rune by rune. Every rune produced from one
// input rune shares its span.
func canonicalize(s string) Text {
	b := newBuilder(len(s))
	caser := cases.Fold()
	var buf []rune
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		span := Span{Start: i, End: i + size}
		i += size

		buf = canonicalRune(buf[:0], r, caser, 0)
		if len(buf) == 0 {
			// Marks only; the separator stage removes it.
			buf = append(buf, r)
		}
		for _, cr := range buf {
			b.push(cr, span, false)
		}
	}
	return b.text()
}

// canonicalRune appends the canonical form of r to dst. A homoglyph maps
// straight to its Latin letter. Anything else is case folded, then NFKD
// decomposed with nonspacing marks dropped, and every rune either step
// produces is canonicalized again, so the result is a fixed point.
func canonicalRune(dst []rune, r rune, caser cases.Caser, depth int) []rune {
	if r < utf8.RuneSelf {
		if 'A' <= r && r <= 'Z' {
			r += 'a' - 'A'
		}
		return append(dst, r)
	}
	if h := foldHomoglyph(r); h != r {
		return append(dst, h)
	}
	if r == utf8.RuneError || depth == maxFoldDepth {
		return append(dst, r)
	}
	src := string(r)
	if folded := caser.String(src); folded != src {
		for _, f := range folded {
			dst = canonicalRune(dst, f, caser, depth+1)
		}
		return dst
	}
	decomposed := norm.NFKD.String(src)
	if decomposed == src {
		return append(dst, r)
	}
	for _, d := range decomposed {
		if unicode.Is(unicode.Mn, d) {
			continue
		}
		dst = canonicalRune(dst, d, caser, depth+1)
	}
	return dst
}

// foldCase decodes s and lowercases it one rune to one rune.
func foldCase(s string) Text {
	b := newBuilder(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		span := Span{Start: i, End: i + size}
		i += size
		b.push(unicode.ToLower(r), span, false)
	}
	return b.text()
}

// stripMarks replaces each rune with the first non-mark rune of its
// canonical decomposition. A rune that decomposes to marks only is kept.
func stripMarks(in Text) Text {
	for i, r := range in.Runes {
		if r < utf8.RuneSelf {
			continue
		}
		for _, d := range norm.NFD.String(string(r)) {
			if !unicode.Is(unicode.Mn, d) {
				in.Runes[i] = unicode.ToLower(d)
				break
			}
		}
	}
	return in
}

func mapRunes(in Text, fn func(rune) rune) Text {
	for i, r := range in.Runes {
		in.Runes[i] = fn(r)
	}
	return in
}

// collapseRuns shortens runs of three or more identical runes to two. Both
// survivors carry the span of the whole run.
func collapseRuns(in Text) Text {
	n := len(in.Runes)
	b := newBuilder(n)
	for i := 0; i < n; {
		j := i + 1
		for j < n && in.Runes[j] == in.Runes[i] {
			j++
		}
		if j-i >= 3 {
			span := Span{Start: in.Origin[i].Start, End: in.Origin[j-1].End}
			b.push(in.Runes[i], span, in.Breaks[i])
			b.push(in.Runes[i], span, false)
		} else {
			for k := i; k < j; k++ {
				b.push(in.Runes[k], in.Origin[k], in.Breaks[k])
			}
		}
		i = j
	}
	return b.text()
}

// stripSeparators removes every rune that is neither a letter nor a number.
// Removed offsets extend the span of the next kept rune, or of the last kept
// rune when nothing follows.
func stripSeparators(in Text) Text {
	b := newBuilder(len(in.Runes))
	pending := false
	pendingStart, pendingEnd := 0, 0
	pendingBreak := false
	for i, r := range in.Runes {
		if IsSeparator(r) {
			if !pending {
				pending = true
				pendingStart = in.Origin[i].Start
			}
			if in.Origin[i].End > pendingEnd {
				pendingEnd = in.Origin[i].End
			}
			if in.Breaks[i] || !unicode.In(r, unicode.M, unicode.Cf) {
				pendingBreak = true
			}
			continue
		}
		span := in.Origin[i]
		brk := in.Breaks[i]
		if pending {
			span.Start = pendingStart
			brk = brk || pendingBreak
			pending, pendingBreak, pendingEnd = false, false, 0
		}
		b.push(r, span, brk)
	}
	if pending && len(b.origin) > 0 {
		last := &b.origin[len(b.origin)-1]
		if pendingEnd > last.End {
			last.End = pendingEnd
		}
	}
	return b.text()
}

// IsSeparator reports whether r is dropped by the matching pipeline.
func IsSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsNumber(r)
}

// Token returns the normalized form of a vocabulary term or whitelist entry.
func Token(s string) string {
	return String(strings.TrimSpace(s))
}
