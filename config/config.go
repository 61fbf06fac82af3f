// Package config reads vocabulary documents.
//
// A document looks like:
//
//	literals:
//	  severe: [badword]
//	  low: [heck, darn]
//	patterns:
//	  high: ['f+r+e+e+m+o+n+e+y+']
//	whitelist: [classic, scunthorpe]
//	tiers:
//	  - name: minimal
//	  - name: strict
//	    blocked: [high, moderate, low]
//	options:
//	  sync_interval: 5m
//	  mask: "#"
//
// JSON documents with the same keys are accepted too.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/elum-utils/chatfilter/core"
	"github.com/elum-utils/chatfilter/models"
)

const categoryNames = "low mild moderate medium high severe slur slurs"

// TierSpec declares one tier.
type TierSpec struct {
	Name    string   `yaml:"name" json:"name" validate:"required"`
	Blocked []string `yaml:"blocked" json:"blocked" validate:"dive,oneof=low mild moderate medium high severe slur slurs"`
}

// Settings are the filter options a document may set.
type Settings struct {
	MaxMessageSize    int    `yaml:"max_message_size" json:"max_message_size" validate:"gte=0"`
	SyncInterval      string `yaml:"sync_interval" json:"sync_interval"`
	Mask              string `yaml:"mask" json:"mask"`
	WhitelistPatterns bool   `yaml:"whitelist_patterns" json:"whitelist_patterns"`
}

// Document is a vocabulary file.
type Document struct {
	Literals  map[string][]string `yaml:"literals" json:"literals" validate:"dive,keys,oneof=low mild moderate medium high severe slur slurs,endkeys,dive,required"`
	Patterns  map[string][]string `yaml:"patterns" json:"patterns" validate:"dive,keys,oneof=low mild moderate medium high severe slur slurs,endkeys,dive,required"`
	Whitelist []string            `yaml:"whitelist" json:"whitelist" validate:"dive,required"`
	Tiers     []TierSpec          `yaml:"tiers" json:"tiers" validate:"dive"`
	Options   Settings            `yaml:"options" json:"options"`
}

var validate = validator.New()

// Load reads and validates a document from path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML or JSON document.
func Parse(data []byte) (*Document, error) {
	doc := &Document{}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Validate checks field constraints, tier ordering and option values.
func (d *Document) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := d.TierList(); err != nil {
		return err
	}
	if _, err := d.Options.interval(); err != nil {
		return err
	}
	if _, err := d.Options.maskRune(); err != nil {
		return err
	}
	return nil
}

// Entries flattens the document. Categories are emitted in severity order so
// builds are deterministic.
func (d *Document) Entries() models.Entries {
	var out models.Entries
	for _, name := range sortedKeys(d.Literals) {
		cat, err := models.ParseCategory(name)
		if err != nil {
			continue
		}
		for _, term := range d.Literals[name] {
			out.Literals = append(out.Literals, models.LiteralEntry{Category: cat, Term: term})
		}
	}
	for _, name := range sortedKeys(d.Patterns) {
		cat, err := models.ParseCategory(name)
		if err != nil {
			continue
		}
		for _, expr := range d.Patterns[name] {
			out.Patterns = append(out.Patterns, models.PatternEntry{Category: cat, Expr: expr})
		}
	}
	out.Whitelist = append(out.Whitelist, d.Whitelist...)
	return out
}

// TierList returns the declared tiers, or the built-in ones when none are
// declared.
func (d *Document) TierList() ([]models.Tier, error) {
	if len(d.Tiers) == 0 {
		return models.BuiltinTiers(), nil
	}
	tiers := make([]models.Tier, 0, len(d.Tiers))
	for _, spec := range d.Tiers {
		t := models.Tier{Name: spec.Name}
		for _, name := range spec.Blocked {
			cat, err := models.ParseCategory(name)
			if err != nil {
				return nil, fmt.Errorf("config: tier %q: %w", spec.Name, err)
			}
			t.Blocked = t.Blocked.With(cat)
		}
		tiers = append(tiers, t)
	}
	if err := models.ValidateTierOrder(tiers); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return tiers, nil
}

// CoreOptions maps the document settings onto core options. Source and
// Logger are left for the caller.
func (d *Document) CoreOptions() (core.Options, error) {
	tiers, err := d.TierList()
	if err != nil {
		return core.Options{}, err
	}
	interval, err := d.Options.interval()
	if err != nil {
		return core.Options{}, err
	}
	mask, err := d.Options.maskRune()
	if err != nil {
		return core.Options{}, err
	}
	return core.Options{
		Tiers:             tiers,
		SyncInterval:      interval,
		MaxMessageSize:    d.Options.MaxMessageSize,
		Mask:              mask,
		WhitelistPatterns: d.Options.WhitelistPatterns,
	}, nil
}

func (s Settings) interval() (time.Duration, error) {
	if s.SyncInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.SyncInterval)
	if err != nil {
		return 0, fmt.Errorf("config: sync_interval: %w", err)
	}
	if d < 0 {
		return 0, errors.New("config: sync_interval must not be negative")
	}
	return d, nil
}

func (s Settings) maskRune() (rune, error) {
	if s.Mask == "" {
		return 0, nil
	}
	if utf8.RuneCountInString(s.Mask) != 1 {
		return 0, fmt.Errorf("config: mask must be a single character, got %q", s.Mask)
	}
	r, _ := utf8.DecodeRuneInString(s.Mask)
	return r, nil
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, _ := models.ParseCategory(keys[i])
		cj, _ := models.ParseCategory(keys[j])
		if ci != cj {
			return ci > cj
		}
		return keys[i] < keys[j]
	})
	return keys
}
