package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/pixelsheets/gridsync/grid"
)

// RESTConfig tunes the REST store's HTTP behavior.
type RESTConfig struct {
	BaseURL      string
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

func DefaultRESTConfig(baseURL string) RESTConfig {
	return RESTConfig{
		BaseURL:      baseURL,
		MaxRetries:   3,
		RetryWaitMin: 200 * time.Millisecond,
		RetryWaitMax: 2 * time.Second,
	}
}

type RESTOpt func(*RESTStore)

func WithLogger(logger *zap.Logger) RESTOpt {
	return func(s *RESTStore) {
		s.logger = logger
		s.client.Logger = retryableLogger{inner: logger}
	}
}

// WithAuthToken sends a bearer token on every request.
func WithAuthToken(token string) RESTOpt {
	return func(s *RESTStore) {
		s.token = token
	}
}

var _ Store = (*RESTStore)(nil)

// RESTStore talks to the upstream sheet API:
//
//	PUT /api/sheets/{sheetID}/cells/{row}/{col}
//	GET /api/sheets/{sheetID}/cells
type RESTStore struct {
	baseURL *url.URL
	client  *retryablehttp.Client
	logger  *zap.Logger
	token   string
}

// retryableLogger adapts zap to the retryablehttp.LeveledLogger interface.
type retryableLogger struct {
	inner *zap.Logger
}

func (r retryableLogger) Error(format string, args ...any) { r.inner.Sugar().Errorw(format, args...) }
func (r retryableLogger) Info(format string, args ...any)  { r.inner.Sugar().Infow(format, args...) }
func (r retryableLogger) Warn(format string, args ...any)  { r.inner.Sugar().Warnw(format, args...) }
func (r retryableLogger) Debug(format string, args ...any) { r.inner.Sugar().Debugw(format, args...) }

func NewREST(cfg RESTConfig, opts ...RESTOpt) (*RESTStore, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if base.Scheme == "" {
		base.Scheme = "http"
	}

	client := &retryablehttp.Client{
		HTTPClient:   &http.Client{Timeout: 10 * time.Second},
		RetryMax:     cfg.MaxRetries,
		RetryWaitMin: cfg.RetryWaitMin,
		RetryWaitMax: cfg.RetryWaitMax,
		Backoff:      retryablehttp.LinearJitterBackoff,
		CheckRetry:   retryablehttp.DefaultRetryPolicy,
	}
	client.Logger = nil

	s := &RESTStore{
		baseURL: base,
		client:  client,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// restCell mirrors the upstream cell record. Formula is nullable there.
type restCell struct {
	ID       int               `json:"id"`
	SheetID  int               `json:"sheet_id"`
	Row      int               `json:"row"`
	Column   int               `json:"column"`
	Value    string            `json:"value"`
	Formula  *string           `json:"formula"`
	DataType grid.DataType     `json:"data_type"`
	Format   map[string]string `json:"formatting"`
}

func (rc restCell) toGrid() grid.Cell {
	formula := ""
	if rc.Formula != nil {
		formula = *rc.Formula
	}
	return grid.Cell{
		Row:        rc.Row,
		Column:     rc.Column,
		Value:      rc.Value,
		Formula:    formula,
		DataType:   rc.DataType,
		Formatting: rc.Format,
	}
}

func (s *RESTStore) WriteCell(ctx context.Context, sheetID, row, col int, data CellData) (grid.Cell, error) {
	path := fmt.Sprintf("/api/sheets/%d/cells/%d/%d", sheetID, row, col)
	var out restCell
	if err := s.req(ctx, http.MethodPut, path, data, &out); err != nil {
		return grid.Cell{}, fmt.Errorf("writing cell (%d,%d): %w", row, col, err)
	}
	return out.toGrid(), nil
}

func (s *RESTStore) ReadCells(ctx context.Context, sheetID int) ([]grid.Cell, error) {
	path := fmt.Sprintf("/api/sheets/%d/cells", sheetID)
	var raw []restCell
	if err := s.req(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, fmt.Errorf("reading cells of sheet %d: %w", sheetID, err)
	}
	cells := make([]grid.Cell, 0, len(raw))
	for _, rc := range raw {
		cells = append(cells, rc.toGrid())
	}
	return cells, nil
}

func (s *RESTStore) req(ctx context.Context, method, path string, reqBody, resBody any) error {
	var body []byte
	if reqBody != nil {
		var err error
		if body, err = json.Marshal(reqBody); err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, s.baseURL.JoinPath(path).String(), body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	res, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("doing request: %w", err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrPermissionDenied, res.Status)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, res.Status)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, res.Status)
	default:
		s.logger.Debug("cell api request failed",
			zap.String("status", res.Status),
			zap.String("body", string(data)),
		)
		return fmt.Errorf("unexpected status %s: %s", res.Status, string(data))
	}

	if resBody != nil {
		if err := json.Unmarshal(data, resBody); err != nil {
			return fmt.Errorf("decoding response body: %w", err)
		}
	}
	return nil
}
