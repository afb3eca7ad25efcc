package odoo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erp/erpsync/internal/domain/integration"
	"github.com/erp/erpsync/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const defaultMaxResponseSize = 64 << 20

var _ integration.RemoteClient = (*Client)(nil)

// Client is a JSON-RPC session against one Odoo database. It logs in once on
// first use and reuses the uid for every later call.
type Client struct {
	params          Params
	endpoint        string
	httpClient      *http.Client
	maxResponseSize int64
	logger          *zap.Logger

	mu     sync.Mutex
	uid    int64
	nextID atomic.Int64
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithTimeout sets the per-call timeout
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.httpClient.Timeout = d
		}
	}
}

// WithMaxResponseSize bounds the size of a decoded response body
func WithMaxResponseSize(n int64) Option {
	return func(cl *Client) {
		if n > 0 {
			cl.maxResponseSize = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// NewClient creates an unauthenticated client for params
func NewClient(params Params, opts ...Option) *Client {
	c := &Client{
		params:          params,
		endpoint:        params.BaseURL() + "/jsonrpc",
		httpClient:      &http.Client{Timeout: 60 * time.Second},
		maxResponseSize: defaultMaxResponseSize,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect logs in unless a session already exists. A rejected login is an
// authentication error and is not memoized, so a later call tries again.
func (c *Client) Connect(ctx context.Context) error {
	_, err := c.session(ctx)
	return err
}

func (c *Client) session(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.uid != 0 {
		return c.uid, nil
	}

	var result any
	if err := c.call(ctx, "common", "login", []any{c.params.Database, c.params.User, c.params.Password}, &result); err != nil {
		return 0, err
	}
	uid, ok := result.(float64)
	if !ok || uid <= 0 {
		return 0, fmt.Errorf("%w: login rejected for %s", integration.ErrAuthentication, c.params)
	}
	c.uid = int64(uid)
	c.logger.Debug("Remote session opened",
		zap.String("server", c.params.BaseURL()),
		zap.String("database", c.params.Database),
		zap.Int64("uid", c.uid),
	)
	return c.uid, nil
}

// Execute calls method on model through object.execute_kw and decodes the
// result into out.
func (c *Client) Execute(ctx context.Context, model, method string, args []any, kwargs map[string]any, out any) error {
	uid, err := c.session(ctx)
	if err != nil {
		return err
	}
	if args == nil {
		args = []any{}
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "odoo", method,
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute(telemetry.SpanAttrRemoteModel, model),
	)
	defer span.End()

	err = c.call(ctx, "object", "execute_kw",
		[]any{c.params.Database, uid, c.params.Password, model, method, args, kwargs}, out)
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("%s.%s: %w", model, method, err)
	}
	return nil
}

// Search implements integration.RemoteClient
func (c *Client) Search(ctx context.Context, model string, domain []any) ([]int64, error) {
	if domain == nil {
		domain = []any{}
	}
	var ids []int64
	if err := c.Execute(ctx, model, "search", []any{domain}, nil, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Read implements integration.RemoteClient
func (c *Client) Read(ctx context.Context, model string, ids []int64, fields []string) ([]integration.RemoteRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var records []integration.RemoteRecord
	if err := c.Execute(ctx, model, "read", []any{ids}, map[string]any{"fields": fields}, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Create implements integration.RemoteClient
func (c *Client) Create(ctx context.Context, model string, values map[string]any) (int64, error) {
	var id int64
	if err := c.Execute(ctx, model, "create", []any{values}, nil, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// Write implements integration.RemoteClient
func (c *Client) Write(ctx context.Context, model string, id int64, values map[string]any) error {
	var ok bool
	return c.Execute(ctx, model, "write", []any{[]int64{id}, values}, nil, &ok)
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      int64     `json:"id"`
}

type rpcParams struct {
	Service string `json:"service"`
	Method  string `json:"method"`
	Args    []any  `json:"args"`
}

type rpcResponse struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *Fault          `json:"error"`
}

// Fault is an error reported by the server
type Fault struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"data"`
}

func (f *Fault) Error() string {
	if f.Data.Message != "" {
		return fmt.Sprintf("%s: %s", f.Data.Name, f.Data.Message)
	}
	return fmt.Sprintf("fault %d: %s", f.Code, f.Message)
}

// call performs one JSON-RPC round trip. Transport failures and server faults
// are connection errors.
func (c *Client) call(ctx context.Context, service, method string, args []any, out any) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params:  rpcParams{Service: service, Method: method, Args: args},
		ID:      c.nextID.Add(1),
	})
	if err != nil {
		return fmt.Errorf("odoo: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("odoo: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", integration.ErrConnection, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", integration.ErrConnection, err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: HTTP %d", integration.ErrConnection, resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return fmt.Errorf("%w: invalid response: %v", integration.ErrConnection, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("%w: %w", integration.ErrConnection, rpcResp.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("%w: unexpected result: %v", integration.ErrConnection, err)
	}
	return nil
}
