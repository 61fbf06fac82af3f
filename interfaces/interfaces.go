package interfaces

import (
	"context"

	"github.com/elum-utils/chatfilter/models"
)

// Source supplies vocabulary entries for a snapshot build.
type Source interface {
	Entries(ctx context.Context) (models.Entries, error)
}

// EntryStore is a Source whose entries can be edited one at a time.
type EntryStore interface {
	Source
	AddEntry(ctx context.Context, entry models.Entry) error
	RemoveEntry(ctx context.Context, entry models.Entry) error
	EntryExists(ctx context.Context, entry models.Entry) (bool, error)
}

// Logger is an optional structured logger.
type Logger interface {
	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}
