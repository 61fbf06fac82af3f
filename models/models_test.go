package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseCategory(t *testing.T) {
	cases := map[string]Category{
		"low":      CategoryLow,
		"Mild":     CategoryLow,
		"moderate": CategoryModerate,
		" high ":   CategoryHigh,
		"SEVERE":   CategorySevere,
		"slur":     CategorySevere,
	}
	for in, want := range cases {
		got, err := ParseCategory(in)
		if err != nil || got != want {
			t.Fatalf("ParseCategory(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseCategory("spicy"); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestCategoryText(t *testing.T) {
	data, err := json.Marshal(map[string]Category{"c": CategoryHigh})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"c":"high"}` {
		t.Fatalf("unexpected json %s", data)
	}
	var back map[string]Category
	if err := json.Unmarshal(data, &back); err != nil || back["c"] != CategoryHigh {
		t.Fatalf("unmarshal = %v, %v", back, err)
	}
	if _, err := Category(9).MarshalText(); err == nil {
		t.Fatal("expected error for invalid category")
	}
}

func TestCategorySeverity(t *testing.T) {
	if !CategorySevere.AlwaysBlocked() || CategoryHigh.AlwaysBlocked() {
		t.Fatal("only severe is always blocked")
	}
	if Category(0).Severity() != 0 || CategoryLow.Severity() >= CategoryHigh.Severity() {
		t.Fatal("unexpected severity order")
	}
}

func TestCategorySet(t *testing.T) {
	s := NewCategorySet(CategoryLow, CategoryHigh, Category(0), Category(42))
	if s.Len() != 2 || !s.Has(CategoryLow) || s.Has(CategoryModerate) {
		t.Fatalf("unexpected set %s", s)
	}
	if s.String() != "{low,high}" {
		t.Fatalf("String() = %s", s)
	}
	if !s.Contains(NewCategorySet(CategoryHigh)) || s.Contains(NewCategorySet(CategorySevere)) {
		t.Fatal("Contains is wrong")
	}
}

func TestTierBlocks(t *testing.T) {
	var zero Tier
	if !zero.Blocks(CategorySevere) || zero.Blocks(CategoryHigh) {
		t.Fatal("zero tier must enforce only always-blocked categories")
	}
	if TierMinimal.Blocks(CategoryHigh) || !TierModerate.Blocks(CategoryHigh) || TierModerate.Blocks(CategoryLow) {
		t.Fatal("moderate tier policy is wrong")
	}
	for _, c := range Categories {
		if !TierStrict.Blocks(c) {
			t.Fatalf("strict must block %s", c)
		}
	}
}

func TestLookupTier(t *testing.T) {
	tier, err := ParseTier("Moderate")
	if err != nil || tier.Name != "moderate" {
		t.Fatalf("ParseTier = %v, %v", tier, err)
	}
	if _, err := ParseTier("lenient"); !errors.Is(err, ErrUnknownTier) {
		t.Fatalf("expected ErrUnknownTier, got %v", err)
	}
}

func TestValidateTierOrder(t *testing.T) {
	if err := ValidateTierOrder(BuiltinTiers()); err != nil {
		t.Fatalf("builtin tiers: %v", err)
	}
	bad := [][]Tier{
		{TierStrict, TierModerate},
		{TierMinimal, {Name: "MINIMAL"}},
		{{Name: " "}},
	}
	for i, tiers := range bad {
		if err := ValidateTierOrder(tiers); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestEntriesAddAndFlatten(t *testing.T) {
	var e Entries
	ok := []Entry{
		{Kind: KindLiteral, Category: CategoryLow, Value: "heck"},
		{Kind: KindPattern, Category: CategoryHigh, Value: "fr+e+"},
		{Kind: KindWhitelist, Value: "classic"},
	}
	for _, entry := range ok {
		if err := e.Add(entry); err != nil {
			t.Fatalf("Add(%+v): %v", entry, err)
		}
	}
	bad := []Entry{
		{Kind: "regex", Category: CategoryLow, Value: "x"},
		{Kind: KindLiteral, Category: CategoryLow, Value: "  "},
		{Kind: KindPattern, Value: "x"},
	}
	for _, entry := range bad {
		if err := e.Add(entry); err == nil {
			t.Fatalf("Add(%+v) should fail", entry)
		}
	}
	if e.Len() != 3 {
		t.Fatalf("Len() = %d", e.Len())
	}
	flat := e.Flatten()
	for i := range ok {
		if flat[i] != ok[i] {
			t.Fatalf("Flatten()[%d] = %+v, want %+v", i, flat[i], ok[i])
		}
	}
}

func TestFilterResult(t *testing.T) {
	text := "you heck"
	res := FilterResult{
		Tier: TierStrict,
		Violations: []Violation{
			{Match: Match{Category: CategoryLow}, OriginalStart: 3, OriginalEnd: 8},
			{Match: Match{Category: CategoryHigh}, OriginalStart: 0, OriginalEnd: 3},
		},
	}
	if !res.IsBlocked() || res.MostSevere() != CategoryHigh || !res.Has(CategoryLow) || res.Has(CategorySevere) {
		t.Fatalf("unexpected result summary %+v", res)
	}
	if got := res.Violations[0].Original(text); got != " heck" {
		t.Fatalf("Original = %q", got)
	}
	if got := (Violation{OriginalStart: 4, OriginalEnd: 99}).Original(text); got != "" {
		t.Fatalf("out of range Original = %q", got)
	}
	if (FilterResult{}).MostSevere() != 0 {
		t.Fatal("clean result has no category")
	}
}
