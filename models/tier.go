package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTier is returned when a tier name is not registered.
var ErrUnknownTier = errors.New("models: unknown tier")

// Tier is a named sensitivity policy.
type Tier struct {
	Name    string
	Blocked CategorySet
}

// Blocks reports whether matches of category c are enforced under the tier.
// Always-blocked categories are enforced for every tier, including the zero Tier.
func (t Tier) Blocks(c Category) bool {
	return c.AlwaysBlocked() || t.Blocked.Has(c)
}

func (t Tier) String() string {
	return t.Name + t.Blocked.String()
}

var (
	TierMinimal  = Tier{Name: "minimal"}
	TierModerate = Tier{Name: "moderate", Blocked: NewCategorySet(CategoryHigh)}
	TierStrict   = Tier{Name: "strict", Blocked: NewCategorySet(CategoryHigh, CategoryModerate, CategoryLow)}
)

// BuiltinTiers returns the built-in tiers from most permissive to strictest.
func BuiltinTiers() []Tier {
	return []Tier{TierMinimal, TierModerate, TierStrict}
}

// LookupTier finds a tier by case-insensitive name.
func LookupTier(tiers []Tier, name string) (Tier, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, t := range tiers {
		if strings.ToLower(t.Name) == key {
			return t, nil
		}
	}
	return Tier{}, fmt.Errorf("%w: %q", ErrUnknownTier, name)
}

// ParseTier looks a name up among the built-in tiers.
func ParseTier(name string) (Tier, error) {
	return LookupTier(BuiltinTiers(), name)
}

// ValidateTierOrder checks that tiers, listed from most permissive to
// strictest, block supersets of the categories blocked by earlier tiers.
func ValidateTierOrder(tiers []Tier) error {
	seen := make(map[string]struct{}, len(tiers))
	for i, t := range tiers {
		key := strings.ToLower(strings.TrimSpace(t.Name))
		if key == "" {
			return fmt.Errorf("models: tier at index %d has no name", i)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("models: duplicate tier %q", t.Name)
		}
		seen[key] = struct{}{}
		if i == 0 {
			continue
		}
		prev := tiers[i-1]
		if !t.Blocked.Contains(prev.Blocked) {
			return fmt.Errorf("models: tier %q blocks %s which is not a superset of %q %s",
				t.Name, t.Blocked, prev.Name, prev.Blocked)
		}
	}
	return nil
}
