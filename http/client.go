package http

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/wesleyorama2/fluent/internal/guard"
	"github.com/wesleyorama2/fluent/internal/output"
	"github.com/wesleyorama2/fluent/internal/ratelimit"
	"github.com/wesleyorama2/fluent/metrics"
)

// Client is the transport collaborator request builders send through. It
// wraps an *http.Client, owns the base address and default headers, and
// adds timing, logging, tracing, latency recording and debug dumps around
// each call.
//
// Client is safe for concurrent use by multiple goroutines.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    http.Header
	logger     *slog.Logger
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
	recorder   *metrics.Recorder
	clock      clock.Clock

	rateLimit float64
	rateBurst int
	limiter   *ratelimit.Limiter

	debugMu   sync.Mutex
	debug     io.Writer
	formatter *output.Formatter
}

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// NewClient creates a new HTTP client with the given options.
//
// Example:
//
//	client := http.NewClient(
//	    http.WithBaseURL("https://api.example.com"),
//	    http.WithTimeout(10*time.Second),
//	)
func NewClient(options ...ClientOption) *Client {
	client := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers: make(http.Header),
		logger:  slog.New(slog.DiscardHandler),
		clock:   clock.New(),
	}

	for _, option := range options {
		option(client)
	}

	if client.tracer != nil && client.propagator == nil {
		client.propagator = otel.GetTextMapPropagator()
	}
	if client.rateLimit > 0 {
		client.limiter = ratelimit.New(client.rateLimit, client.rateBurst, client.clock)
	}

	return client
}

// WithBaseURL sets the address relative routes resolve against. It must be
// absolute and carry no query string or fragment; request builders reject it
// otherwise.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the overall timeout of the underlying *http.Client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHeader adds a default header sent with every request that does not
// set it itself.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers.Add(key, value)
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTransport sets the RoundTripper of the underlying *http.Client.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.httpClient.Transport = rt
	}
}

// WithLogger logs every request: Debug for status < 400, Warn for errors
// and status >= 400.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracer wraps each request in a client span and injects the trace
// context into the request headers.
func WithTracer(tracer trace.Tracer) ClientOption {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// WithPropagator overrides the global propagator used with WithTracer.
func WithPropagator(p propagation.TextMapPropagator) ClientOption {
	return func(c *Client) {
		c.propagator = p
	}
}

// WithLatencyRecorder records the latency of every request in rec.
func WithLatencyRecorder(rec *metrics.Recorder) ClientOption {
	return func(c *Client) {
		c.recorder = rec
	}
}

// WithDebugOutput writes a dump of every request and response to w,
// colored when w is a terminal. Credential headers are redacted.
func WithDebugOutput(w io.Writer, verbose bool) ClientOption {
	return func(c *Client) {
		if w == nil {
			c.debug, c.formatter = nil, nil
			return
		}
		c.debug = w
		c.formatter = output.NewFormatterFor(w, verbose)
	}
}

// WithClock sets the clock used for timing.
func WithClock(clk clock.Clock) ClientOption {
	return func(c *Client) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithRateLimit paces requests to rps per second, allowing up to burst to
// start back to back. Send waits for a slot and fails with the context error
// when the request context ends first.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		c.rateLimit = rps
		c.rateBurst = burst
	}
}

// SetRateLimit changes the pace of a client created with WithRateLimit.
// Requests already waiting keep their slots; later ones are spaced at the new
// rate. A non-positive rps is treated as 1.
func (c *Client) SetRateLimit(rps float64) error {
	if c.limiter == nil {
		return guard.Configuration("client was created without a rate limit")
	}
	c.limiter.SetRate(rps)
	return nil
}

// BaseAddress parses the configured base URL. It returns nil when none is
// set.
func (c *Client) BaseAddress() (*url.URL, error) {
	if c.baseURL == "" {
		return nil, nil
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() {
		return nil, guard.Configuration("base address %q must be absolute", c.baseURL)
	}
	return u, nil
}

// Request starts a request to route.
func (c *Client) Request(route string) (*RequestBuilder, error) {
	return NewRequestBuilder(c, route)
}

// RequestURL starts a request to an already parsed route.
func (c *Client) RequestURL(route *url.URL) (*RequestBuilder, error) {
	return NewRequestBuilderURL(c, route)
}

// NewRequest starts a request to the base address itself.
func (c *Client) NewRequest() (*RequestBuilder, error) {
	return NewRequestBuilder(c, "")
}

// Send dispatches req through the underlying *http.Client. Default headers
// are added where req does not set them, except Expect on multipart
// requests. With CompletionContentRead the body
// is read into memory before Send returns. Transport errors are returned as
// produced by net/http.
func (c *Client) Send(req *http.Request, completion CompletionOption) (*Response, error) {
	if err := guard.NotNil("request", req == nil); err != nil {
		return nil, err
	}

	skipExpect := expectDisabled(req.Context())
	for key, values := range c.headers {
		if skipExpect && key == "Expect" {
			continue
		}
		if _, ok := req.Header[key]; !ok {
			req.Header[key] = append([]string(nil), values...)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}

	ctx := req.Context()
	var span trace.Span
	if c.tracer != nil {
		ctx, span = c.tracer.Start(ctx, "HTTP "+req.Method,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("http.request.method", req.Method),
				attribute.String("url.full", sanitizeURL(req.URL)),
			),
		)
		c.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))
	}

	var reqBody []byte
	if c.debug != nil && req.GetBody != nil {
		if body, err := req.GetBody(); err == nil {
			reqBody, _ = io.ReadAll(body)
			body.Close()
		}
	}

	resp := &Response{}
	timing := newTimingTrace(c.clock, &resp.Timing)
	req = req.WithContext(httptrace.WithClientTrace(ctx, timing.clientTrace()))

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		resp.Timing.TotalTime = c.clock.Since(resp.Timing.StartTime)
		c.observe(req, reqBody, nil, resp, span, err)
		return nil, err
	}
	resp.Response = httpResp

	if completion == CompletionContentRead {
		transferStart := c.clock.Now()
		body, err := io.ReadAll(httpResp.Body)
		httpResp.Body.Close()
		resp.Timing.ContentTransferTime = c.clock.Since(transferStart)
		if err != nil {
			resp.Timing.TotalTime = c.clock.Since(resp.Timing.StartTime)
			c.observe(req, reqBody, nil, resp, span, err)
			return nil, err
		}
		httpResp.Body = io.NopCloser(bytes.NewReader(body))
		resp.rawBody = body
		resp.parsed = true
	}
	resp.Timing.TotalTime = c.clock.Since(resp.Timing.StartTime)

	c.observe(req, reqBody, resp.rawBody, resp, span, nil)
	return resp, nil
}

// observe logs, records, ends the span and dumps one finished call.
func (c *Client) observe(req *http.Request, reqBody, respBody []byte, resp *Response, span trace.Span, err error) {
	elapsed := resp.Timing.TotalTime
	logURL := sanitizeURL(req.URL)

	status := 0
	if resp.Response != nil {
		status = resp.StatusCode
	}

	if err != nil {
		c.logger.Warn("http request failed",
			"method", req.Method,
			"url", logURL,
			"duration_ms", elapsed.Milliseconds(),
			"error", err.Error(),
		)
	} else {
		level := slog.LevelDebug
		if status >= 400 {
			level = slog.LevelWarn
		}
		c.logger.Log(req.Context(), level, "http request",
			"method", req.Method,
			"url", logURL,
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
		)
	}

	if c.recorder != nil {
		c.recorder.Record(req.Method+" "+req.URL.Path, elapsed, err != nil || status >= 400, int64(len(respBody)))
	}

	if span != nil {
		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case status >= 400:
			span.SetAttributes(attribute.Int("http.response.status_code", status))
			span.SetStatus(codes.Error, http.StatusText(status))
		default:
			span.SetAttributes(attribute.Int("http.response.status_code", status))
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}

	if c.debug != nil {
		c.debugMu.Lock()
		defer c.debugMu.Unlock()

		io.WriteString(c.debug, c.formatter.FormatRequest(req, logURL, reqBody))
		if err != nil {
			io.WriteString(c.debug, c.formatter.FormatError(err, elapsed))
			return
		}
		io.WriteString(c.debug, c.formatter.FormatResponse(resp.Response, respBody, elapsed))
	}
}
