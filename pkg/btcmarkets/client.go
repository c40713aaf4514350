package btcmarkets

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/apd/v3"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"bmkt/internal/transport"
	"bmkt/pkg/core"
	"bmkt/pkg/table"
)

// Client is an authenticated BTC Markets REST client. Every call is signed,
// including public market data, so one credential pair serves the whole
// surface.
type Client struct {
	cfg        *core.Config
	creds      *core.Credentials
	http       *transport.Client
	logger     zerolog.Logger
	normalizer *Normalizer
	validate   *validator.Validate
}

// Option configures a Client.
type Option func(*Client)

// WithLogger replaces the default logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client from the given configuration. The private key is
// decoded here; a malformed key fails construction rather than the first
// signed call.
func New(cfg *core.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = core.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	creds, err := cfg.Credentials()
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	c := &Client{
		cfg:        cfg,
		creds:      creds,
		logger:     defaultLogger(cfg.LogLevel),
		normalizer: NewNormalizer(),
		validate:   newValidator(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.http = transport.NewClient(&transport.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	}, c.logger)

	return c, nil
}

// Close releases the underlying HTTP resources.
func (c *Client) Close() error {
	return c.http.Close()
}

func defaultLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().
		Timestamp().
		Str("component", "btcmarkets").
		Logger()
}

func newValidator() *validator.Validate {
	v := validator.New()
	// "decimal" accepts positive decimal strings like "0.0025" or "42".
	_ = v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return false
		}
		d, _, err := apd.NewFromString(s)
		if err != nil {
			return false
		}
		return d.Sign() > 0
	})
	return v
}

// do signs and executes one request. The body, when present, is marshaled
// once and those exact bytes are both signed and transmitted.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = sonic.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
	}

	req := core.NewRequest(method, path)
	req.Headers = BuildAuthHeaders(c.creds, method, path, payload)
	if query != nil {
		req.SetQueryValues(query)
	}
	if payload != nil {
		req.SetBody(payload)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		apiErr := core.NewAPIError(core.ErrorTypeNetwork, 0, err.Error())
		apiErr.Path = path
		return nil, apiErr
	}

	if resp.StatusCode() >= 400 {
		return nil, c.apiError(path, resp.StatusCode(), resp.Bytes())
	}

	return resp.Bytes(), nil
}

// apiError merges the HTTP status code with the server error envelope.
func (c *Client) apiError(path string, statusCode int, body []byte) *core.APIError {
	var envelope struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	apiErr := core.NewAPIError(core.MapStatusCode(statusCode), statusCode, "")
	apiErr.Path = path
	if err := sonic.Unmarshal(body, &envelope); err == nil && (envelope.Code != "" || envelope.Message != "") {
		apiErr.Code = envelope.Code
		apiErr.Message = envelope.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("HTTP %d", statusCode)
	}

	c.logger.Warn().
		Str("path", path).
		Int("status", statusCode).
		Str("code", apiErr.Code).
		Msg("api error")

	return apiErr
}

// getTable fetches a list endpoint and coerces it per the field spec.
func (c *Client) getTable(ctx context.Context, path string, query url.Values, spec FieldSpec) (table.Table, error) {
	data, err := c.do(ctx, "GET", path, query, nil)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := sonic.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return c.normalizer.Table(rows, spec)
}

// getRecord fetches a single-object endpoint and coerces it.
func (c *Client) getRecord(ctx context.Context, path string, query url.Values, spec FieldSpec) (table.Record, error) {
	data, err := c.do(ctx, "GET", path, query, nil)
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := sonic.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return c.normalizer.Record(obj, spec)
}

// postRecord sends a JSON body and coerces the single-object response.
func (c *Client) postRecord(ctx context.Context, path string, body any, spec FieldSpec) (table.Record, error) {
	data, err := c.do(ctx, "POST", path, nil, body)
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := sonic.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return c.normalizer.Record(obj, spec)
}

// putRecord sends a JSON body via PUT and coerces the single-object response.
func (c *Client) putRecord(ctx context.Context, path string, body any, spec FieldSpec) (table.Record, error) {
	data, err := c.do(ctx, "PUT", path, nil, body)
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := sonic.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return c.normalizer.Record(obj, spec)
}

// deleteRecord issues a DELETE and coerces the single-object response.
func (c *Client) deleteRecord(ctx context.Context, path string, spec FieldSpec) (table.Record, error) {
	data, err := c.do(ctx, "DELETE", path, nil, nil)
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := sonic.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return c.normalizer.Record(obj, spec)
}

// validationError converts a validator error into the structured form.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	return core.NewValidationError(err.Error())
}

// timeParam renders a time filter as the API's RFC 3339 form.
func timeParam(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
