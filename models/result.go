package models

// Match is a raw vocabulary hit in normalized coordinates.
// Start and End are rune indices into the normalized text, End exclusive.
type Match struct {
	Start    int      `json:"start"`
	End      int      `json:"end"`
	Category Category `json:"category"`
	// Text is the normalized text covered by the match.
	Text string `json:"text"`
	// Entry is the literal term or pattern expression that fired.
	Entry   string `json:"entry"`
	Pattern bool   `json:"pattern,omitempty"`
}

// Len returns the match length in normalized runes.
func (m Match) Len() int {
	return m.End - m.Start
}

// Violation is an enforced match mapped back to the original text.
// OriginalStart and OriginalEnd are byte offsets, End exclusive.
type Violation struct {
	Match
	OriginalStart int `json:"original_start"`
	OriginalEnd   int `json:"original_end"`
}

// Original returns the slice of text covered by the violation.
func (v Violation) Original(text string) string {
	if v.OriginalStart < 0 || v.OriginalEnd > len(text) || v.OriginalStart > v.OriginalEnd {
		return ""
	}
	return text[v.OriginalStart:v.OriginalEnd]
}

// FilterResult is the outcome of analysing one message under one tier.
type FilterResult struct {
	Tier Tier `json:"tier"`
	// Violations are ordered by OriginalStart and never overlap.
	Violations []Violation `json:"violations"`
}

// IsBlocked is true when at least one violation is enforced.
func (r FilterResult) IsBlocked() bool {
	return len(r.Violations) > 0
}

// Categories returns the set of categories among the violations.
func (r FilterResult) Categories() CategorySet {
	var s CategorySet
	for _, v := range r.Violations {
		s = s.With(v.Category)
	}
	return s
}

// Has reports whether any violation is of category c.
func (r FilterResult) Has(c Category) bool {
	return r.Categories().Has(c)
}

// MostSevere returns the most severe violation category, or 0 when clean.
func (r FilterResult) MostSevere() Category {
	var worst Category
	for _, v := range r.Violations {
		if v.Category.Severity() > worst.Severity() {
			worst = v.Category
		}
	}
	return worst
}
