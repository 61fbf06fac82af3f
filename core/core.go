package core

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/elum-utils/chatfilter/engine"
	"github.com/elum-utils/chatfilter/interfaces"
	"github.com/elum-utils/chatfilter/models"
	"github.com/elum-utils/chatfilter/normalize"
	"github.com/elum-utils/chatfilter/vocabulary"
)

const (
	defaultSyncInterval = 5 * time.Minute
	defaultMask         = '*'
)

// Options configure the filter.
type Options struct {
	// Source feeds SyncOnce and Run. It is not needed when vocabularies are
	// pushed with Reload.
	Source interfaces.Source
	Logger interfaces.Logger

	// Tiers are listed from most permissive to strictest. Defaults to
	// models.BuiltinTiers.
	Tiers []models.Tier

	SyncInterval time.Duration
	// MaxMessageSize, when positive, caps the prefix of a message that tier
	// analysis reads, in bytes. Zero analyses the whole message. ContainsSlurs
	// always reads the whole message.
	MaxMessageSize int
	Mask           rune
	// WhitelistPatterns applies whitelist suppression to pattern entries.
	WhitelistPatterns bool
}

// Core classifies and redacts chat messages against the current vocabulary.
// All analysis methods are safe for concurrent use and never block.
type Core struct {
	source interfaces.Source
	logger interfaces.Logger
	engine *engine.Engine

	tiers             []models.Tier
	syncInterval      time.Duration
	maxMessageSize    int
	mask              rune
	whitelistPatterns bool

	analyzed   atomic.Int64
	blocked    atomic.Int64
	degraded   atomic.Int64
	byCategory [5]atomic.Int64
}

// Stats combines engine metrics with analysis counters.
type Stats struct {
	engine.Stats
	Analyzed   int64
	Blocked    int64
	Degraded   int64
	ByCategory map[models.Category]int64
}

// TierReport is the analysis of one text under one tier.
type TierReport struct {
	Tier     models.Tier
	Result   models.FilterResult
	Filtered string
}

// New creates a filter with an empty vocabulary. Configuration errors are
// returned by Run and SyncOnce.
func New(opt Options) *Core {
	c := &Core{
		source:            opt.Source,
		logger:            opt.Logger,
		engine:            engine.New(),
		tiers:             models.BuiltinTiers(),
		syncInterval:      defaultSyncInterval,
		mask:              defaultMask,
		whitelistPatterns: opt.WhitelistPatterns,
	}
	if len(opt.Tiers) > 0 {
		c.tiers = append([]models.Tier(nil), opt.Tiers...)
	}
	if opt.SyncInterval > 0 {
		c.syncInterval = opt.SyncInterval
	}
	if opt.MaxMessageSize > 0 {
		c.maxMessageSize = opt.MaxMessageSize
	}
	if opt.Mask != 0 && opt.Mask != utf8.RuneError {
		c.mask = opt.Mask
	}
	return c
}

// Run loads the vocabulary and re-syncs it every SyncInterval until ctx ends.
func (c *Core) Run(ctx context.Context) error {
	if err := c.validate(); err != nil {
		return err
	}
	if err := c.SyncOnce(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(c.syncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.SyncOnce(ctx); err != nil {
				c.logWarn("sync failed", map[string]any{"error": err.Error()})
			}
		}
	}
}

// SyncOnce rebuilds the vocabulary from the configured source. On error the
// previous snapshot stays published.
func (c *Core) SyncOnce(ctx context.Context) error {
	if c.source == nil {
		return errors.New("core: source is nil")
	}
	entries, err := c.source.Entries(ctx)
	if err != nil {
		return fmt.Errorf("core: load entries: %w", err)
	}
	c.Reload(entries)
	return nil
}

// Reload builds a snapshot from entries and publishes it. Analyses already
// running keep the snapshot they started with.
func (c *Core) Reload(entries models.Entries) *vocabulary.Vocabulary {
	v := c.engine.ReplaceAll(entries, vocabulary.Options{
		Logger:            c.logger,
		WhitelistPatterns: c.whitelistPatterns,
	})
	c.logInfo("vocabulary reloaded", map[string]any{
		"version":   v.Version(),
		"literals":  v.LiteralCount(),
		"patterns":  v.PatternCount(),
		"whitelist": v.WhitelistCount(),
		"skipped":   len(v.Skipped()),
	})
	return v
}

// Publish installs a snapshot built elsewhere.
func (c *Core) Publish(v *vocabulary.Vocabulary) {
	c.engine.Publish(v)
}

// Vocabulary returns the current snapshot, possibly nil.
func (c *Core) Vocabulary() *vocabulary.Vocabulary {
	return c.engine.Snapshot()
}

// Tiers returns the registered tiers from most permissive to strictest.
func (c *Core) Tiers() []models.Tier {
	return append([]models.Tier(nil), c.tiers...)
}

// Tier looks up a registered tier by name.
func (c *Core) Tier(name string) (models.Tier, error) {
	return models.LookupTier(c.tiers, name)
}

// AnalyzeMessage reports the violations of text enforced under tier.
func (c *Core) AnalyzeMessage(text string, tier models.Tier) models.FilterResult {
	res, _ := c.analyze(text, tier)
	return res
}

// FilterMessage returns text with every violation under tier masked. The
// result has as many code points as text.
func (c *Core) FilterMessage(text string, tier models.Tier) string {
	res, scoped := c.analyze(text, tier)
	return c.redact(scoped, res.Violations) + text[len(scoped):]
}

// ContainsSlurs reports whether text contains an always-blocked category.
// No tier setting or size limit can weaken it.
func (c *Core) ContainsSlurs(text string) bool {
	res := c.analyzeAll(text, models.Tier{Name: "always-blocked"})
	return res.IsBlocked()
}

// Redact masks the violations of a result previously produced for text.
func (c *Core) Redact(text string, res models.FilterResult) string {
	return c.redact(text, res.Violations)
}

// Diagnose analyses text under every registered tier.
func (c *Core) Diagnose(text string) []TierReport {
	out := make([]TierReport, 0, len(c.tiers))
	for _, tier := range c.tiers {
		res, scoped := c.analyze(text, tier)
		out = append(out, TierReport{
			Tier:     tier,
			Result:   res,
			Filtered: c.redact(scoped, res.Violations) + text[len(scoped):],
		})
	}
	return out
}

// NormalizeForDisplay returns the case, homoglyph and leet canonical form of
// text with its shape preserved.
func (c *Core) NormalizeForDisplay(text string) string {
	return normalize.ForDisplay(text)
}

// Stats returns current metrics.
func (c *Core) Stats() Stats {
	st := Stats{
		Stats:      c.engine.Stats(),
		Analyzed:   c.analyzed.Load(),
		Blocked:    c.blocked.Load(),
		Degraded:   c.degraded.Load(),
		ByCategory: make(map[models.Category]int64, len(models.Categories)),
	}
	for _, cat := range models.Categories {
		st.ByCategory[cat] = c.byCategory[cat].Load()
	}
	return st
}

func (c *Core) analyze(text string, tier models.Tier) (models.FilterResult, string) {
	scoped := c.clip(text)
	return c.analyzeAll(scoped, tier), scoped
}

func (c *Core) analyzeAll(text string, tier models.Tier) models.FilterResult {
	res := models.FilterResult{Tier: tier}
	if text == "" {
		return res
	}
	nt := normalize.Normalize(text)
	res.Violations = c.violations(text, nt, c.engine.Find(nt), tier)
	c.record(res)
	return res
}

// clip cuts text to at most maxMessageSize bytes on a rune boundary. A zero
// limit keeps the whole text.
func (c *Core) clip(text string) string {
	if c.maxMessageSize <= 0 || len(text) <= c.maxMessageSize {
		return text
	}
	end := c.maxMessageSize
	for end > 0 && !utf8.RuneStart(text[end]) {
		end--
	}
	return text[:end]
}

func (c *Core) record(res models.FilterResult) {
	c.analyzed.Add(1)
	if !res.IsBlocked() {
		return
	}
	c.blocked.Add(1)
	for _, v := range res.Violations {
		if v.Category.Valid() {
			c.byCategory[v.Category].Add(1)
		}
	}
}

func (c *Core) validate() error {
	if c.source == nil {
		return errors.New("core: source is nil")
	}
	if c.syncInterval <= 0 {
		return fmt.Errorf("core: invalid sync interval: %s", c.syncInterval)
	}
	if err := models.ValidateTierOrder(c.tiers); err != nil {
		return fmt.Errorf("core: %w", err)
	}
	return nil
}

func (c *Core) logInfo(msg string, fields map[string]any) {
	if c.logger != nil {
		c.logger.Info(msg, fields)
	}
}

func (c *Core) logWarn(msg string, fields map[string]any) {
	if c.logger != nil {
		c.logger.Warn(msg, fields)
	}
}
