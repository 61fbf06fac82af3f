package file

import (
	"context"
	"errors"
	"strings"

	"github.com/elum-utils/chatfilter/config"
	"github.com/elum-utils/chatfilter/models"
)

// YAMLSource reads vocabulary entries from a config document on disk.
// The file is read again on every call, so a Run loop picks up edits.
type YAMLSource struct {
	path string
}

// NewYAMLSource creates a file source.
func NewYAMLSource(path string) (*YAMLSource, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("file: path is empty")
	}
	return &YAMLSource{path: path}, nil
}

func (s *YAMLSource) Path() string { return s.path }

// Document reads and validates the file.
func (s *YAMLSource) Document(ctx context.Context) (*config.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return config.Load(s.path)
}

func (s *YAMLSource) Entries(ctx context.Context) (models.Entries, error) {
	doc, err := s.Document(ctx)
	if err != nil {
		return models.Entries{}, err
	}
	return doc.Entries(), nil
}
