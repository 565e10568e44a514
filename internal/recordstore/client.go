package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/userdash/internal/domain/user"
	"github.com/geocoder89/userdash/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/geocoder89/userdash/internal/recordstore"

// Client talks to a remote user collection. Every call is one round trip, no retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
	prom       *observability.Prom
	tracer     trace.Tracer
}

type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithTimeout sets an overall request timeout. Zero keeps the transport defaults.
// The client is copied first so a shared *http.Client passed to WithHTTPClient is left alone.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.httpClient
			hc.Timeout = d
			c.httpClient = &hc
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

func WithMetrics(p *observability.Prom) Option {
	return func(c *Client) {
		c.prom = p
	}
}

// New points a client at the collection URL, e.g. https://jsonplaceholder.typicode.com/users.
func New(base string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		return nil, errors.New("empty record store url")
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "http://" + trimmed
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("invalid record store url: %w", err)
	}

	c := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{},
		log:        slog.Default(),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Client) List(ctx context.Context, page, pageSize int) ([]user.Record, error) {
	q := url.Values{}
	q.Set("_page", strconv.Itoa(page))
	q.Set("_limit", strconv.Itoa(pageSize))

	var out []user.Record
	if err := c.do(ctx, "list", http.MethodGet, "?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}

	if out == nil {
		out = []user.Record{}
	}
	return out, nil
}

// Create posts the pending record; the store's id replaces the temp id.
func (c *Client) Create(ctx context.Context, p user.PendingRecord) (user.Record, error) {
	var out user.Record
	if err := c.do(ctx, "create", http.MethodPost, "", p.Body(), &out); err != nil {
		return user.Record{}, err
	}

	return p.Confirm(out), nil
}

// Update is a full replacement of the record at id.
func (c *Client) Update(ctx context.Context, id user.ID, f user.Fields) (user.Record, error) {
	var out user.Record
	if err := c.do(ctx, "update", http.MethodPut, "/"+url.PathEscape(id.String()), f.WithID(id), &out); err != nil {
		return user.Record{}, err
	}

	if out.ID.IsZero() {
		out.ID = id
	}
	return out, nil
}

func (c *Client) Delete(ctx context.Context, id user.ID) error {
	return c.do(ctx, "delete", http.MethodDelete, "/"+url.PathEscape(id.String()), nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, suffix string, body, v any) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := c.tracer.Start(ctx, "recordstore."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	endpoint := c.baseURL + suffix
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.full", endpoint),
	)

	start := time.Now()
	status := 0

	err := c.prom.ObserveStore(op, func() error {
		var reader io.Reader
		if body != nil {
			payload, err := json.Marshal(body)
			if err != nil {
				return &NetworkError{Op: op, Err: fmt.Errorf("encode request body: %w", err)}
			}
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return &NetworkError{Op: op, Err: fmt.Errorf("create request: %w", err)}
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &NetworkError{Op: op, Err: fmt.Errorf("perform request: %w", err)}
		}
		defer resp.Body.Close()

		status = resp.StatusCode

		if resp.StatusCode >= http.StatusBadRequest {
			msg := extractError(resp.Body)
			var cause error
			if msg != "" {
				cause = errors.New(msg)
			}
			return &NetworkError{Op: op, Status: resp.StatusCode, Err: cause}
		}

		if v == nil {
			// drain so the connection can be reused
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}

		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return &NetworkError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
		}
		return nil
	})

	span.SetAttributes(attribute.Int("http.response.status_code", status))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "record store call failed")
		c.log.WarnContext(ctx, "record store call failed", "op", op, "method", method, "status", status, "err", err)
		return err
	}

	c.log.DebugContext(ctx, "record store call", "op", op, "method", method, "status", status, "latency_ms", time.Since(start).Milliseconds())
	return nil
}

func extractError(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4<<10))
	if err != nil || len(data) == 0 {
		return ""
	}

	var payload struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || len(payload.Error) == 0 {
		return strings.TrimSpace(string(data))
	}

	// either a plain string or the {"code","message"} envelope
	var s string
	if err := json.Unmarshal(payload.Error, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload.Error, &env); err == nil && env.Message != "" {
		return env.Message
	}

	return strings.TrimSpace(string(payload.Error))
}
