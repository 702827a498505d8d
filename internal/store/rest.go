package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"photobooth-admin/internal/model"
)

// maxErrorBody caps how much of an error response is kept for diagnostics.
const maxErrorBody = 4 << 10

// RESTConfig holds the connection parameters of a PostgREST endpoint, such
// as a Supabase project.
type RESTConfig struct {
	URL     string
	Key     string
	Table   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// restStore talks to the photos table through the PostgREST HTTP API.
type restStore struct {
	cfg    RESTConfig
	client *http.Client
}

// restPhoto is the wire shape of a photo row.
type restPhoto struct {
	ID        string `json:"id"`
	ImageData string `json:"image_data"`
	CreatedAt string `json:"created_at"`
	Printed   bool   `json:"printed"`
}

// restError is the PostgREST error body.
type restError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// NewRESTStore creates a Store backed by a PostgREST endpoint. Missing or
// invalid connection parameters are reported as a StoreError on first use.
func NewRESTStore(cfg RESTConfig, client *http.Client) Store {
	if cfg.Table == "" {
		cfg.Table = model.Photo{}.TableName()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &restStore{cfg: cfg, client: client}
}

func (s *restStore) List(ctx context.Context) ([]model.Photo, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "created_at.desc")

	body, err := s.do(ctx, http.MethodGet, q, nil)
	if err != nil {
		return nil, wrap(OpList, "", err)
	}

	var rows []restPhoto
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, wrap(OpList, "", fmt.Errorf("failed to unmarshal photos: %w", err))
	}

	// A row with an unreadable created_at is kept with a zero time so one
	// bad row cannot hide the rest.
	photos := make([]model.Photo, 0, len(rows))
	for _, row := range rows {
		createdAt, err := parseTimestamp(row.CreatedAt)
		if err != nil {
			s.cfg.Logger.Warn("photo has an unreadable created_at",
				zap.String("photo_id", row.ID), zap.String("created_at", row.CreatedAt), zap.Error(err))
			createdAt = time.Time{}
		}
		photos = append(photos, model.Photo{
			ID:        row.ID,
			ImageData: row.ImageData,
			CreatedAt: createdAt,
			Printed:   row.Printed,
		})
	}
	return photos, nil
}

func (s *restStore) MarkPrinted(ctx context.Context, id string) error {
	payload, err := json.Marshal(map[string]bool{"printed": true})
	if err != nil {
		return wrap(OpMarkPrinted, id, err)
	}
	_, err = s.do(ctx, http.MethodPatch, idFilter(id), payload)
	return wrap(OpMarkPrinted, id, err)
}

func (s *restStore) Delete(ctx context.Context, id string) error {
	_, err := s.do(ctx, http.MethodDelete, idFilter(id), nil)
	return wrap(OpDelete, id, err)
}

func idFilter(id string) url.Values {
	q := url.Values{}
	q.Set("id", "eq."+id)
	return q
}

// endpoint resolves the table URL. Both a bare project URL and one already
// ending in /rest/v1 are accepted.
func (s *restStore) endpoint() (*url.URL, error) {
	if s.cfg.URL == "" || s.cfg.Key == "" {
		return nil, ErrNotConfigured
	}
	base, err := url.Parse(s.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConfigured, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrNotConfigured, base.Scheme)
	}
	if strings.HasSuffix(strings.TrimRight(base.Path, "/"), "/rest/v1") {
		return base.JoinPath(s.cfg.Table), nil
	}
	return base.JoinPath("rest", "v1", s.cfg.Table), nil
}

func (s *restStore) do(ctx context.Context, method string, query url.Values, payload []byte) ([]byte, error) {
	u, err := s.endpoint()
	if err != nil {
		return nil, err
	}
	u.RawQuery = query.Encode()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", s.cfg.Key)
	req.Header.Set("Authorization", "Bearer "+s.cfg.Key)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=minimal")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, statusError(resp.StatusCode, raw)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

func statusError(status int, raw []byte) error {
	var perr restError
	if err := json.Unmarshal(raw, &perr); err == nil && perr.Message != "" {
		if perr.Code != "" {
			return fmt.Errorf("received status %d: %s (%s)", status, perr.Message, perr.Code)
		}
		return fmt.Errorf("received status %d: %s", status, perr.Message)
	}
	if msg := strings.TrimSpace(string(raw)); msg != "" {
		return fmt.Errorf("received status %d: %s", status, msg)
	}
	return fmt.Errorf("received status %d", status)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
}

// parseTimestamp accepts the timestamp renderings Postgres produces for
// timestamptz and timestamp columns. Values without a zone are UTC.
func parseTimestamp(ts string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse timestamp %q", ts)
}
