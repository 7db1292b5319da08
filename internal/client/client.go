// Package client exercises a running receiver by calling every webhook
// endpoint in turn and printing each response.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mattjoyce/sapwebhooks/internal/auth"
)

const (
	// DefaultHost and DefaultPort match a locally started receiver.
	DefaultHost = "127.0.0.1"
	DefaultPort = 9001
	// DefaultWebhookID is the id used for the item endpoints.
	DefaultWebhookID = "webhook123"

	basePath = "/api/webhooks/"
	rule     = "=================================================="
)

// Step is one request in an exercise run.
type Step struct {
	Method string
	Path   string
	Body   any
}

// Result is the outcome of one step.
type Result struct {
	Step      Step
	RequestID string
	Status    int
	Header    http.Header
	Body      []byte
}

// OK reports whether the step got a 2xx response.
func (r Result) OK() bool { return r.Status >= 200 && r.Status < 300 }

// Config configures a Client.
type Config struct {
	BaseURL string // e.g. http://127.0.0.1:9001
	APIKey  string
	Signer  *auth.Signer // signs write bodies when enabled; may be nil
	HTTP    *http.Client
	Out     io.Writer
}

// Client sends exercise requests and prints the responses.
type Client struct {
	baseURL string
	apiKey  string
	signer  *auth.Signer
	http    *http.Client
	out     io.Writer
	theme   Theme
}

// New creates a Client. A nil HTTP client gets a 10s timeout; a nil Out
// discards output.
func New(cfg Config) *Client {
	hc := cfg.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	out := cfg.Out
	if out == nil {
		out = io.Discard
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		signer:  cfg.Signer,
		http:    hc,
		out:     out,
		theme:   NewTheme(out),
	}
}

// DefaultSteps returns the full create, read, update, delete sequence for id.
func DefaultSteps(id string) []Step {
	item := basePath + id
	return []Step{
		{Method: http.MethodGet, Path: basePath},
		{Method: http.MethodPost, Path: basePath, Body: map[string]any{
			"event_type": "order.created",
			"entity_id":  "order-123456",
			"data": map[string]any{
				"order_id":    "ORD-123456",
				"customer_id": "CUST-789",
				"items": []any{
					map[string]any{"product_id": "PROD-001", "quantity": 2, "price": 19.99},
					map[string]any{"product_id": "PROD-002", "quantity": 1, "price": 29.99},
				},
				"total": 69.97,
			},
		}},
		{Method: http.MethodGet, Path: item},
		{Method: http.MethodPut, Path: item, Body: map[string]any{
			"event_type": "order.updated",
			"entity_id":  "order-123456",
			"data": map[string]any{
				"order_id":   "ORD-123456",
				"status":     "processed",
				"updated_at": "2023-09-15T14:30:00Z",
				"updated_by": "system",
			},
		}},
		{Method: http.MethodPatch, Path: item, Body: map[string]any{
			"event_type": "order.processed",
			"data": map[string]any{
				"status":          "shipped",
				"tracking_number": "TRK123456789",
			},
		}},
		{Method: http.MethodDelete, Path: item},
	}
}

// Run executes steps in order, printing each response. It stops at the first
// transport error; HTTP error statuses are recorded, not returned.
func (c *Client) Run(ctx context.Context, steps []Step) ([]Result, error) {
	c.printHeader(fmt.Sprintf("SAP Webhooks API Exercise - %s", c.baseURL))

	results := make([]Result, 0, len(steps))
	for _, step := range steps {
		fmt.Fprintf(c.out, "\n%s\n", c.theme.Request.Render(step.Method+" "+step.Path))
		res, err := c.Do(ctx, step)
		if err != nil {
			return results, err
		}
		c.printResult(res)
		results = append(results, res)
	}

	c.printHeader("Exercise Completed")
	return results, nil
}

// Do sends a single step.
func (c *Client) Do(ctx context.Context, step Step) (Result, error) {
	var payload []byte
	if step.Body != nil {
		var err error
		payload, err = json.Marshal(step.Body)
		if err != nil {
			return Result{}, fmt.Errorf("encode %s %s body: %w", step.Method, step.Path, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, step.Method, c.baseURL+step.Path, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("build %s %s: %w", step.Method, step.Path, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set(auth.HeaderAPIKey, c.apiKey)
	}
	if payload != nil && c.signer.Enabled() {
		req.Header.Set(c.signer.Header(), c.signer.Sign(payload))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%s %s: %w", step.Method, step.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read %s %s response: %w", step.Method, step.Path, err)
	}

	return Result{
		Step:      step,
		RequestID: requestID,
		Status:    resp.StatusCode,
		Header:    resp.Header,
		Body:      body,
	}, nil
}

func (c *Client) printHeader(text string) {
	fmt.Fprintf(c.out, "\n%s\n%s\n%s\n",
		c.theme.Header.Render(rule),
		c.theme.Header.Render("  "+text),
		c.theme.Header.Render(rule))
}

func (c *Client) printResult(res Result) {
	status := c.theme.StatusOK
	if !res.OK() {
		status = c.theme.StatusKO
	}
	fmt.Fprintf(c.out, "Status: %s\n", status.Render(fmt.Sprintf("%d", res.Status)))

	fmt.Fprintln(c.out, "Headers:")
	keys := make([]string, 0, len(res.Header))
	for k := range res.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(c.out, "  %s\n", c.theme.Dim.Render(k+": "+strings.Join(res.Header[k], ", ")))
	}

	fmt.Fprintln(c.out, "Response:")
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, res.Body, "", "  "); err == nil {
		fmt.Fprintln(c.out, pretty.String())
	} else {
		fmt.Fprintln(c.out, string(res.Body))
	}
}
