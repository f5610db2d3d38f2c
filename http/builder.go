package http

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wesleyorama2/fluent/internal/guard"
	"github.com/wesleyorama2/fluent/internal/uri"
)

// CompletionOption says when Sender.Send returns.
type CompletionOption int

const (
	// CompletionContentRead returns after the whole response body has been
	// read into memory. This is the default.
	CompletionContentRead CompletionOption = iota
	// CompletionHeadersRead returns as soon as the headers arrive; the body is
	// streamed and must be closed by the caller.
	CompletionHeadersRead
)

// Sender is the transport collaborator a RequestBuilder dispatches through.
// *Client is the standard implementation.
type Sender interface {
	// BaseAddress returns the address relative routes resolve against, or nil.
	BaseAddress() (*url.URL, error)
	// Send dispatches req. Errors are returned as produced by the transport.
	Send(req *http.Request, completion CompletionOption) (*Response, error)
}

// RequestBuilder accumulates the configuration of one outbound request and
// materializes it on BuildRequest or Send.
//
// Header, option and deferred configurators run in the order they were added,
// so a later configurator overwrites what an earlier one set. A
// RequestBuilder is not safe for concurrent use and is meant for a single
// request.
type RequestBuilder struct {
	sender      Sender
	baseAddress *url.URL
	route       *url.URL

	content       *Content
	query         *QueryParameters
	cookies       map[string]string
	version       Version
	versionPolicy VersionPolicy
	bufferContent bool
	timeout       time.Duration

	headerConfigurators   []func(http.Header)
	optionConfigurators   []func(context.Context) context.Context
	deferredConfigurators []func(*RequestBuilder)

	errs []error
}

// NewRequestBuilder returns a builder for route on sender. An empty route
// means the request targets the base address itself; a non-empty route that
// trims to nothing, or that carries '?' or '#', is rejected with
// ErrInvalidConfiguration.
func NewRequestBuilder(sender Sender, route string) (*RequestBuilder, error) {
	rb, err := newRequestBuilder(sender)
	if err != nil {
		return nil, err
	}
	if route == "" {
		return rb, nil
	}

	trimmed := strings.TrimSpace(route)
	if trimmed == "" {
		return nil, guard.Configuration("route cannot be whitespace")
	}
	if strings.ContainsAny(trimmed, "?#") {
		return nil, guard.Configuration("route %q cannot contain a query string or fragment; use query parameters instead", trimmed)
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, guard.Configuration("invalid route %q: %v", trimmed, err)
	}

	rb.route = u
	return rb, nil
}

// NewRequestBuilderURL is like NewRequestBuilder for an already parsed route.
func NewRequestBuilderURL(sender Sender, route *url.URL) (*RequestBuilder, error) {
	if err := guard.NotNil("route", route == nil); err != nil {
		return nil, err
	}
	if hasQueryOrFragment(route) {
		return nil, guard.Configuration("route %q cannot contain a query string or fragment; use query parameters instead", route.String())
	}
	return NewRequestBuilder(sender, route.String())
}

func newRequestBuilder(sender Sender) (*RequestBuilder, error) {
	if err := guard.NotNil("sender", sender == nil); err != nil {
		return nil, err
	}

	base, err := sender.BaseAddress()
	if err != nil {
		return nil, guard.Configuration("invalid base address: %v", err)
	}
	if base != nil && hasQueryOrFragment(base) {
		return nil, guard.Configuration("base address %q cannot contain a query string or fragment", base.String())
	}

	return &RequestBuilder{
		sender:        sender,
		baseAddress:   base,
		query:         NewQueryParameters(),
		cookies:       make(map[string]string),
		version:       HTTP11,
		versionPolicy: VersionOrLower,
	}, nil
}

func hasQueryOrFragment(u *url.URL) bool {
	return u.RawQuery != "" || u.ForceQuery || u.Fragment != "" || u.RawFragment != ""
}

// Route returns the route, or nil when the request targets the base address.
func (rb *RequestBuilder) Route() *url.URL {
	return rb.route
}

// QueryParameters returns the collection rendered into the request URI.
func (rb *RequestBuilder) QueryParameters() *QueryParameters {
	return rb.query
}

// Content returns the request body, or nil.
func (rb *RequestBuilder) Content() *Content {
	return rb.content
}

// Cookies returns a copy of the configured cookies.
func (rb *RequestBuilder) Cookies() map[string]string {
	out := make(map[string]string, len(rb.cookies))
	for k, v := range rb.cookies {
		out[k] = v
	}
	return out
}

// addError records a failure surfaced by the next BuildRequest.
func (rb *RequestBuilder) addError(err error) {
	if err != nil {
		rb.errs = append(rb.errs, err)
	}
}

// Errors returns the failures recorded by chained calls so far.
func (rb *RequestBuilder) Errors() []error {
	return rb.errs
}

// WithQueryParameter appends value for key.
func (rb *RequestBuilder) WithQueryParameter(key, value string) *RequestBuilder {
	rb.addError(rb.query.Add(key, value))
	return rb
}

// WithQueryNull appends a null value for key, rendered as a bare flag.
func (rb *RequestBuilder) WithQueryNull(key string) *RequestBuilder {
	rb.addError(rb.query.AddNull(key))
	return rb
}

// WithQueryParameterValues appends every item of values for key.
func (rb *RequestBuilder) WithQueryParameterValues(key string, values []string) *RequestBuilder {
	rb.addError(rb.query.AddRange(key, values))
	return rb
}

// SetQueryParameter replaces every value of key with value.
func (rb *RequestBuilder) SetQueryParameter(key, value string) *RequestBuilder {
	rb.addError(rb.query.Set(key, value))
	return rb
}

// ConfigureQuery runs fn against the query collection immediately.
func (rb *RequestBuilder) ConfigureQuery(fn func(*QueryParameters) error) *RequestBuilder {
	if err := guard.NotNil("query configurator", fn == nil); err != nil {
		rb.addError(err)
		return rb
	}
	rb.addError(fn(rb.query))
	return rb
}

// ConfigureHeaders appends a header configurator.
func (rb *RequestBuilder) ConfigureHeaders(fn func(http.Header)) *RequestBuilder {
	if err := guard.NotNil("header configurator", fn == nil); err != nil {
		rb.addError(err)
		return rb
	}
	rb.headerConfigurators = append(rb.headerConfigurators, fn)
	return rb
}

// WithHeader sets name to value, replacing earlier values.
func (rb *RequestBuilder) WithHeader(name, value string) *RequestBuilder {
	if err := guard.NotBlank("header name", name); err != nil {
		rb.addError(err)
		return rb
	}
	return rb.ConfigureHeaders(func(h http.Header) {
		h.Set(name, value)
	})
}

// AddHeader appends value to name.
func (rb *RequestBuilder) AddHeader(name, value string) *RequestBuilder {
	if err := guard.NotBlank("header name", name); err != nil {
		rb.addError(err)
		return rb
	}
	return rb.ConfigureHeaders(func(h http.Header) {
		h.Add(name, value)
	})
}

// WithAccept sets the Accept header.
func (rb *RequestBuilder) WithAccept(mediaType string) *RequestBuilder {
	return rb.WithHeader("Accept", mediaType)
}

// WithUserAgent sets the User-Agent header.
func (rb *RequestBuilder) WithUserAgent(userAgent string) *RequestBuilder {
	return rb.WithHeader("User-Agent", strings.TrimSpace(userAgent))
}

// WithBasicAuth sets a Basic Authorization header.
func (rb *RequestBuilder) WithBasicAuth(username, password string) *RequestBuilder {
	if err := guard.NotBlank("username", username); err != nil {
		rb.addError(err)
		return rb
	}
	token := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return rb.WithHeader("Authorization", "Basic "+token)
}

// WithBearerToken sets a Bearer Authorization header.
func (rb *RequestBuilder) WithBearerToken(token string) *RequestBuilder {
	if err := guard.NotBlank("bearer token", token); err != nil {
		rb.addError(err)
		return rb
	}
	return rb.WithHeader("Authorization", "Bearer "+token)
}

// WithCorrelationID sets X-Correlation-ID. An empty id generates a random
// UUID.
func (rb *RequestBuilder) WithCorrelationID(id string) *RequestBuilder {
	if id == "" {
		id = uuid.NewString()
	}
	return rb.WithHeader(CorrelationIDHeader, id)
}

// CorrelationIDHeader is the header WithCorrelationID sets.
const CorrelationIDHeader = "X-Correlation-ID"

// WithCookie sets a cookie sent in the Cookie header. Values are sent as
// given; they are not escaped.
func (rb *RequestBuilder) WithCookie(name, value string) *RequestBuilder {
	if err := guard.NotBlank("cookie name", name); err != nil {
		rb.addError(err)
		return rb
	}
	rb.cookies[name] = value
	return rb
}

// WithCookies sets every cookie in cookies.
func (rb *RequestBuilder) WithCookies(cookies map[string]string) *RequestBuilder {
	for name, value := range cookies {
		rb.WithCookie(name, value)
	}
	return rb
}

// WithOption appends an option configurator. Options derive the request
// context, so they are the place for per-request values read by
// RoundTrippers and middleware.
func (rb *RequestBuilder) WithOption(fn func(context.Context) context.Context) *RequestBuilder {
	if err := guard.NotNil("option configurator", fn == nil); err != nil {
		rb.addError(err)
		return rb
	}
	rb.optionConfigurators = append(rb.optionConfigurators, fn)
	return rb
}

// Defer appends a configurator that runs against the builder at build time,
// before anything else is resolved.
func (rb *RequestBuilder) Defer(fn func(*RequestBuilder)) *RequestBuilder {
	if err := guard.NotNil("deferred configurator", fn == nil); err != nil {
		rb.addError(err)
		return rb
	}
	rb.deferredConfigurators = append(rb.deferredConfigurators, fn)
	return rb
}

// WithContent sets the request body.
func (rb *RequestBuilder) WithContent(content *Content) *RequestBuilder {
	rb.content = content
	return rb
}

// WithStringContent sets a text/plain utf-8 body.
func (rb *RequestBuilder) WithStringContent(s string) *RequestBuilder {
	return rb.WithTextContent(s, "", "")
}

// WithTextContent sets a body encoded with charset and declared as mediaType.
func (rb *RequestBuilder) WithTextContent(s, mediaType, charset string) *RequestBuilder {
	content, err := NewStringContent(s, mediaType, charset)
	if err != nil {
		rb.addError(err)
		return rb
	}
	return rb.WithContent(content)
}

// WithBytesContent sets an application/octet-stream body.
func (rb *RequestBuilder) WithBytesContent(data []byte) *RequestBuilder {
	return rb.WithContent(NewBytesContent(data))
}

// WithStreamContent sets a body streamed from r.
func (rb *RequestBuilder) WithStreamContent(r io.Reader, length int64) *RequestBuilder {
	if err := guard.NotNil("content stream", r == nil); err != nil {
		rb.addError(err)
		return rb
	}
	return rb.WithContent(NewStreamContent(r, length))
}

// WithFormContent sets a URL-encoded form body.
func (rb *RequestBuilder) WithFormContent(values url.Values) *RequestBuilder {
	return rb.WithContent(NewFormContent(values))
}

// WithMultipartContent finishes m and sets it as the body.
func (rb *RequestBuilder) WithMultipartContent(m *MultipartContent) *RequestBuilder {
	if err := guard.NotNil("multipart content", m == nil); err != nil {
		rb.addError(err)
		return rb
	}
	content, err := m.Content()
	if err != nil {
		rb.addError(err)
		return rb
	}
	return rb.WithContent(content)
}

// WithJSONContent serializes v as the body. Without opts,
// DefaultJSONOptions is used.
func (rb *RequestBuilder) WithJSONContent(v interface{}, opts ...JSONOptions) *RequestBuilder {
	o := DefaultJSONOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	content, err := NewJSONContent(v, o)
	if err != nil {
		rb.addError(err)
		return rb
	}
	return rb.WithContent(content)
}

// WithXMLContent serializes v as the body. Without opts, DefaultXMLOptions
// is used.
func (rb *RequestBuilder) WithXMLContent(v interface{}, opts ...XMLOptions) *RequestBuilder {
	o := DefaultXMLOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	content, err := NewXMLContent(v, o)
	if err != nil {
		rb.addError(err)
		return rb
	}
	return rb.WithContent(content)
}

// WithYAMLContent serializes v as an application/yaml body.
func (rb *RequestBuilder) WithYAMLContent(v interface{}) *RequestBuilder {
	content, err := NewYAMLContent(v)
	if err != nil {
		rb.addError(err)
		return rb
	}
	return rb.WithContent(content)
}

// WithVersion sets the requested protocol version.
func (rb *RequestBuilder) WithVersion(v Version) *RequestBuilder {
	rb.version = v
	return rb
}

// WithVersionPolicy sets how strictly the version is honored.
func (rb *RequestBuilder) WithVersionPolicy(p VersionPolicy) *RequestBuilder {
	rb.versionPolicy = p
	return rb
}

// WithBufferedContent reads stream content fully before sending so the
// request carries a Content-Length instead of chunked encoding. Some
// server and proxy combinations mishandle chunked request bodies.
func (rb *RequestBuilder) WithBufferedContent(buffer bool) *RequestBuilder {
	rb.bufferContent = buffer
	return rb
}

// WithTimeout bounds Send with d. Zero means no per-request timeout.
func (rb *RequestBuilder) WithTimeout(d time.Duration) *RequestBuilder {
	rb.timeout = d
	return rb
}

// BuildRequest materializes the accumulated configuration into a request
// bound to ctx. Building again after stream content has been sent reuses the
// consumed stream.
func (rb *RequestBuilder) BuildRequest(ctx context.Context, method string) (*http.Request, error) {
	if err := guard.NotNil("context", ctx == nil); err != nil {
		return nil, err
	}
	if err := guard.NotBlank("method", method); err != nil {
		return nil, err
	}

	for _, configure := range rb.deferredConfigurators {
		configure(rb)
	}

	if len(rb.errs) > 0 {
		return nil, errors.Join(rb.errs...)
	}

	if rb.bufferContent && rb.content != nil {
		if err := rb.content.Buffer(); err != nil {
			return nil, err
		}
	}

	target, err := rb.buildURI()
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if rb.content != nil {
		body = rb.content.reader()
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(strings.TrimSpace(method)), target.String(), body)
	if err != nil {
		return nil, guard.Configuration("failed to create request: %v", err)
	}
	req.Proto = rb.version.String()
	req.ProtoMajor = rb.version.Major
	req.ProtoMinor = rb.version.Minor

	if rb.content != nil {
		if rb.content.length >= 0 {
			req.ContentLength = rb.content.length
		}
		for name, values := range rb.content.Header {
			req.Header[name] = append([]string(nil), values...)
		}
	}

	rb.applyConfiguration(req)

	reqCtx := context.WithValue(req.Context(), versionPolicyKey{}, rb.versionPolicy)
	if rb.disablesExpect() {
		reqCtx = context.WithValue(reqCtx, expectDisabledKey{}, true)
	}
	for _, configure := range rb.optionConfigurators {
		reqCtx = configure(reqCtx)
	}
	return req.WithContext(reqCtx), nil
}

// buildURI composes the request URI from the base address, the route and
// the query collection.
func (rb *RequestBuilder) buildURI() (*url.URL, error) {
	if rb.baseAddress == nil && rb.route == nil {
		return nil, guard.Configuration("either a base address or a route must be set")
	}

	query := rb.query.ToQueryString()

	var raw string
	switch {
	case rb.route == nil:
		raw = query
	case rb.route.IsAbs():
		abs := url.URL{
			Scheme:  rb.route.Scheme,
			Opaque:  rb.route.Opaque,
			User:    rb.route.User,
			Host:    rb.route.Host,
			Path:    rb.route.Path,
			RawPath: repairRawPath(rb.route.RawPath),
		}
		raw = abs.String() + query
	default:
		rel := *rb.route
		rel.RawPath = repairRawPath(rel.RawPath)
		raw = strings.TrimSpace(rel.String()) + query
	}

	target, err := url.Parse(raw)
	if err != nil {
		return nil, guard.Configuration("invalid request URI %q: %v", raw, err)
	}
	if !target.IsAbs() && rb.baseAddress != nil {
		target = rb.baseAddress.ResolveReference(target)
	}
	return target, nil
}

// expectDisabledKey marks requests whose Expect header must not be filled in
// from client defaults.
type expectDisabledKey struct{}

// disablesExpect reports whether the content is multipart, which is sent
// without Expect: 100-continue.
func (rb *RequestBuilder) disablesExpect() bool {
	return rb.content != nil && (rb.content.multipart || isMultipartType(rb.content.ContentType()))
}

// expectDisabled reports whether the request was built with Expect removed.
func expectDisabled(ctx context.Context) bool {
	disabled, _ := ctx.Value(expectDisabledKey{}).(bool)
	return disabled
}

// repairRawPath escapes bytes such as spaces that url.URL would otherwise
// use as a reason to drop RawPath, losing escapes like %2F.
func repairRawPath(raw string) string {
	if raw == "" {
		return ""
	}
	return uri.EscapePath(raw)
}

func (rb *RequestBuilder) applyConfiguration(req *http.Request) {
	if rb.disablesExpect() {
		req.Header.Del("Expect")
	}

	for _, configure := range rb.headerConfigurators {
		configure(req.Header)
	}

	if len(rb.cookies) > 0 {
		names := make([]string, 0, len(rb.cookies))
		for name := range rb.cookies {
			names = append(names, name)
		}
		sort.Strings(names)

		pairs := make([]string, len(names))
		for i, name := range names {
			pairs[i] = name + "=" + rb.cookies[name]
		}
		req.Header.Set("Cookie", strings.Join(pairs, "; "))
	}
}

// Send builds the request and dispatches it through the sender. An already
// canceled ctx fails before any configurator runs. The per-request timeout,
// when set, stays armed until the response body is closed for
// CompletionHeadersRead, or until Send returns otherwise.
func (rb *RequestBuilder) Send(ctx context.Context, method string, completion ...CompletionOption) (*Response, error) {
	if err := guard.NotNil("context", ctx == nil); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := CompletionContentRead
	if len(completion) > 0 {
		mode = completion[0]
	}

	cancel := context.CancelFunc(func() {})
	if rb.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, rb.timeout)
	}

	req, err := rb.BuildRequest(ctx, method)
	if err != nil {
		cancel()
		return nil, err
	}
	defer closeRequestBody(req)

	resp, err := rb.sender.Send(req, mode)
	if err != nil {
		cancel()
		return nil, err
	}

	if mode == CompletionHeadersRead && resp.Response != nil && resp.Body != nil {
		resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	} else {
		cancel()
	}
	return resp, nil
}

// Get sends a GET request.
func (rb *RequestBuilder) Get(ctx context.Context) (*Response, error) {
	return rb.Send(ctx, http.MethodGet)
}

// Post sends a POST request.
func (rb *RequestBuilder) Post(ctx context.Context) (*Response, error) {
	return rb.Send(ctx, http.MethodPost)
}

// Put sends a PUT request.
func (rb *RequestBuilder) Put(ctx context.Context) (*Response, error) {
	return rb.Send(ctx, http.MethodPut)
}

// Patch sends a PATCH request.
func (rb *RequestBuilder) Patch(ctx context.Context) (*Response, error) {
	return rb.Send(ctx, http.MethodPatch)
}

// Delete sends a DELETE request.
func (rb *RequestBuilder) Delete(ctx context.Context) (*Response, error) {
	return rb.Send(ctx, http.MethodDelete)
}

// Head sends a HEAD request.
func (rb *RequestBuilder) Head(ctx context.Context) (*Response, error) {
	return rb.Send(ctx, http.MethodHead)
}

// Options sends an OPTIONS request.
func (rb *RequestBuilder) Options(ctx context.Context) (*Response, error) {
	return rb.Send(ctx, http.MethodOptions)
}

func closeRequestBody(req *http.Request) {
	if req.Body != nil {
		req.Body.Close()
	}
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
