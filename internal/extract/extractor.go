// Package extract implements the market data fetcher: an HTTP GET against
// the configured endpoint, wrapped with extraction metadata and persisted as
// a local JSON file for the object-store upload step.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/datalith/predictit-etl/internal/model"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "predictit-etl/1.0"
)

// Extractor fetches market data and persists extraction envelopes.
type Extractor struct {
	client   *http.Client
	baseURL  string
	token    string
	logger   *slog.Logger
	filename string
	now      func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(e *Extractor) { e.client = c }
}

// WithToken sets a bearer token for authenticated endpoints.
func WithToken(token string) Option {
	return func(e *Extractor) { e.token = token }
}

// WithClock overrides the timestamp source (useful for testing).
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// New creates an Extractor for the given base URL.
func New(baseURL string, logger *slog.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		client:   &http.Client{Timeout: defaultTimeout},
		baseURL:  baseURL,
		logger:   logger,
		filename: "predictit_markets",
		now:      time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Fetch issues a GET against the endpoint and decodes the market list. The
// raw body is returned alongside so callers can persist the payload exactly
// as received.
func (e *Extractor) Fetch(ctx context.Context, params url.Values) (*model.MarketList, []byte, error) {
	u := e.baseURL
	if len(params) > 0 {
		u = u + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, &TransportError{URL: u, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, nil, &TransportError{URL: u, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &TransportError{URL: u, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, &HTTPStatusError{URL: u, StatusCode: resp.StatusCode}
	}

	var list model.MarketList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, nil, &DecodeError{URL: u, Err: err}
	}

	e.logger.Info("fetched market data", "url", u, "bytes", len(body), "markets", len(list.Markets))
	return &list, body, nil
}

// ExtractAndPersist fetches the market list, wraps it in an extraction
// envelope, and writes it to a timestamped JSON file under outputDir. The
// file is verified non-empty and parseable before the path is returned.
func (e *Extractor) ExtractAndPersist(ctx context.Context, outputDir string) (string, error) {
	list, body, err := e.Fetch(ctx, nil)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", &PersistenceError{Path: outputDir, Err: err}
	}

	now := e.now().UTC()
	env := model.Envelope{
		ExtractedAt: now,
		Source:      e.baseURL,
		Data:        body,
	}

	name := fmt.Sprintf("%s_%s.json", e.filename, now.Format("20060102_150405"))
	path := filepath.Join(outputDir, name)

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return "", &PersistenceError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &PersistenceError{Path: path, Err: err}
	}

	if err := verifyJSONFile(path); err != nil {
		return "", err
	}

	e.logger.Info("extraction persisted", "path", path, "markets", len(list.Markets))
	return path, nil
}

// verifyJSONFile confirms the written file exists, is non-empty, and holds
// valid JSON.
func verifyJSONFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	if info.Size() == 0 {
		return &PersistenceError{Path: path, Err: fmt.Errorf("file is empty")}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	if !json.Valid(data) {
		return &PersistenceError{Path: path, Err: fmt.Errorf("file is not valid JSON")}
	}
	return nil
}
