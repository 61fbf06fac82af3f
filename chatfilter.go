package chatfilter

import (
	"github.com/elum-utils/chatfilter/core"
	"github.com/elum-utils/chatfilter/models"
)

// Re-export core API at module root for convenient imports.
type (
	Core         = core.Core
	Options      = core.Options
	Stats        = core.Stats
	TierReport   = core.TierReport
	Category     = models.Category
	Tier         = models.Tier
	Entries      = models.Entries
	FilterResult = models.FilterResult
	Violation    = models.Violation
)

const (
	CategoryLow      = models.CategoryLow
	CategoryModerate = models.CategoryModerate
	CategoryHigh     = models.CategoryHigh
	CategorySevere   = models.CategorySevere
)

var (
	TierMinimal  = models.TierMinimal
	TierModerate = models.TierModerate
	TierStrict   = models.TierStrict
)

// New creates a new chat filter.
func New(opt Options) *Core {
	return core.New(opt)
}
