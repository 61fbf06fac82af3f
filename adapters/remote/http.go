package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/elum-utils/chatfilter/config"
	"github.com/elum-utils/chatfilter/models"
)

// HTTPSource fetches a YAML or JSON vocabulary document over HTTP.
type HTTPSource struct {
	url    string
	client *resty.Client
}

// HTTPOptions configures the source.
type HTTPOptions struct {
	URL string
	// AuthToken is sent as a bearer token when set.
	AuthToken string
	Timeout   time.Duration
	Headers   map[string]string
}

// NewHTTPSource creates a source instance.
func NewHTTPSource(opt HTTPOptions) (*HTTPSource, error) {
	if strings.TrimSpace(opt.URL) == "" {
		return nil, errors.New("remote: URL is required")
	}
	if opt.Timeout <= 0 {
		opt.Timeout = 10 * time.Second
	}
	client := resty.New().
		SetTimeout(opt.Timeout).
		SetHeader("Accept", "application/yaml, application/json;q=0.9, text/plain;q=0.5")
	if strings.TrimSpace(opt.AuthToken) != "" {
		client.SetAuthToken(opt.AuthToken)
	}
	for k, v := range opt.Headers {
		client.SetHeader(k, v)
	}
	return &HTTPSource{url: opt.URL, client: client}, nil
}

func (s *HTTPSource) Name() string { return "http" }

// Document downloads and validates the remote document.
func (s *HTTPSource) Document(ctx context.Context) (*config.Document, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("remote: fetch: %w", err)
	}
	if resp.StatusCode() >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("remote: status %d: %s", resp.StatusCode(), truncate(resp.String(), 256))
	}
	doc, err := config.Parse(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("remote: %w", err)
	}
	return doc, nil
}

func (s *HTTPSource) Entries(ctx context.Context) (models.Entries, error) {
	doc, err := s.Document(ctx)
	if err != nil {
		return models.Entries{}, err
	}
	return doc.Entries(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
