package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCategory is returned when a category name cannot be parsed.
var ErrUnknownCategory = errors.New("models: unknown category")

// Category is a violation category. Higher values are more severe.
type Category int

const (
	CategoryLow Category = 1 + iota
	CategoryModerate
	CategoryHigh
	CategorySevere
)

// Categories lists every valid category from least to most severe.
var Categories = []Category{CategoryLow, CategoryModerate, CategoryHigh, CategorySevere}

// Valid returns true when category is in range [Low..Severe].
func (c Category) Valid() bool {
	return c >= CategoryLow && c <= CategorySevere
}

// AlwaysBlocked reports whether the category is enforced regardless of tier.
func (c Category) AlwaysBlocked() bool {
	return c == CategorySevere
}

// Severity is the ordering key used when matches compete for a span.
func (c Category) Severity() int {
	if !c.Valid() {
		return 0
	}
	return int(c)
}

func (c Category) String() string {
	switch c {
	case CategoryLow:
		return "low"
	case CategoryModerate:
		return "moderate"
	case CategoryHigh:
		return "high"
	case CategorySevere:
		return "severe"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// ParseCategory parses a category name. "mild" and "slur" are accepted as
// aliases of low and severe.
func ParseCategory(name string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "low", "mild":
		return CategoryLow, nil
	case "moderate", "medium":
		return CategoryModerate, nil
	case "high":
		return CategoryHigh, nil
	case "severe", "slur", "slurs":
		return CategorySevere, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(data []byte) error {
	parsed, err := ParseCategory(string(data))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// CategorySet is a small bit set of categories.
type CategorySet uint8

// NewCategorySet builds a set from the given categories. Invalid values are ignored.
func NewCategorySet(categories ...Category) CategorySet {
	var s CategorySet
	for _, c := range categories {
		s = s.With(c)
	}
	return s
}

// With returns a copy of s that also contains c.
func (s CategorySet) With(c Category) CategorySet {
	if !c.Valid() {
		return s
	}
	return s | 1<<uint(c)
}

// Has reports whether c is in s.
func (s CategorySet) Has(c Category) bool {
	return c.Valid() && s&(1<<uint(c)) != 0
}

// Contains reports whether s is a superset of other.
func (s CategorySet) Contains(other CategorySet) bool {
	return s&other == other
}

// Len returns the number of categories in s.
func (s CategorySet) Len() int {
	n := 0
	for _, c := range Categories {
		if s.Has(c) {
			n++
		}
	}
	return n
}

// Slice returns the categories in s from least to most severe.
func (s CategorySet) Slice() []Category {
	out := make([]Category, 0, len(Categories))
	for _, c := range Categories {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

func (s CategorySet) String() string {
	parts := make([]string, 0, len(Categories))
	for _, c := range s.Slice() {
		parts = append(parts, c.String())
	}
	return "{" + strings.Join(parts, ",") + "}"
}
