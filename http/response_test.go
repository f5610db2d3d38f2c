package http

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/fluent/pkg/jsonschema"
)

// countingBody counts how often the body is read to the end and closed.
type countingBody struct {
	io.Reader
	closes int
}

func (b *countingBody) Close() error {
	b.closes++
	return nil
}

func newTestResponse(status int, contentType, body string) *Response {
	header := make(http.Header)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return NewResponse(&http.Response{
		StatusCode: status,
		Status:     strings.TrimSpace(http.StatusText(status)),
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	})
}

func TestResponse_GetBodyIsCached(t *testing.T) {
	body := &countingBody{Reader: strings.NewReader(`{"id":1}`)}
	resp := NewResponse(&http.Response{StatusCode: http.StatusOK, Header: make(http.Header), Body: body})

	first, err := resp.GetBody()
	require.NoError(t, err)
	second, err := resp.GetBody()
	require.NoError(t, err)

	assert.Equal(t, `{"id":1}`, string(first))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, body.closes)

	stream := resp.GetBodyAsStream()
	data, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, string(data))
	assert.NoError(t, resp.Close())
	assert.Equal(t, 1, body.closes)
}

func TestResponse_NoContent(t *testing.T) {
	tests := []struct {
		name string
		resp *Response
	}{
		{name: "nil response", resp: NewResponse(nil)},
		{name: "nil body", resp: NewResponse(&http.Response{StatusCode: http.StatusNoContent})},
		{name: "no body", resp: NewResponse(&http.Response{StatusCode: http.StatusNoContent, Body: http.NoBody})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := tt.resp.GetBody()
			require.NoError(t, err)
			assert.Empty(t, body)

			text, err := tt.resp.GetBodyAsString()
			require.NoError(t, err)
			assert.Equal(t, "", text)

			assert.Equal(t, "", tt.resp.GetHeader("Content-Type"))
			assert.NoError(t, tt.resp.Close())
		})
	}
}

func TestResponse_GetBodyAsStreamUnread(t *testing.T) {
	body := &countingBody{Reader: strings.NewReader("chunk")}
	resp := NewResponse(&http.Response{StatusCode: http.StatusOK, Body: body})

	stream := resp.GetBodyAsStream()
	data, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, "chunk", string(data))

	require.NoError(t, resp.Close())
	assert.Equal(t, 1, body.closes)
}

func TestResponse_GetBodyAsString(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		expected    string
	}{
		{name: "no content type", body: "plain", expected: "plain"},
		{name: "utf-8", contentType: "text/plain; charset=utf-8", body: "café", expected: "café"},
		{name: "latin-1", contentType: "text/plain; charset=ISO-8859-1", body: "caf\xe9", expected: "café"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := newTestResponse(http.StatusOK, tt.contentType, tt.body).GetBodyAsString()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, text)
		})
	}
}

func TestResponse_GetBodyAsString_UnknownCharset(t *testing.T) {
	_, err := newTestResponse(http.StatusOK, "text/plain; charset=klingon", "x").GetBodyAsString()
	assert.Error(t, err)
}

func TestResponse_Decoders(t *testing.T) {
	var fromJSON widget
	require.NoError(t, newTestResponse(http.StatusOK, MediaTypeJSON, `{"name":"j","tags":["a"]}`).GetBodyAsJSON(&fromJSON))
	assert.Equal(t, widget{Name: "j", Tags: []string{"a"}}, fromJSON)

	strict := DefaultJSONOptions()
	strict.DisallowUnknownFields = true
	assert.Error(t, newTestResponse(http.StatusOK, MediaTypeJSON, `{"nope":1}`).GetBodyAsJSON(&fromJSON, strict))

	var fromXML widget
	require.NoError(t, newTestResponse(http.StatusOK, MediaTypeXML, `<widget><name>x</name></widget>`).GetBodyAsXML(&fromXML))
	assert.Equal(t, "x", fromXML.Name)

	var fromYAML widget
	require.NoError(t, newTestResponse(http.StatusOK, MediaTypeYAML, "name: y\ntags: [b, c]\n").GetBodyAsYAML(&fromYAML))
	assert.Equal(t, widget{Name: "y", Tags: []string{"b", "c"}}, fromYAML)
}

func TestResponse_Extract(t *testing.T) {
	resp := newTestResponse(http.StatusOK, MediaTypeJSON, `{"items":[{"id":7,"name":"first"}],"next":null}`)

	id, err := resp.Extract("$.items[0].id")
	require.NoError(t, err)
	assert.Equal(t, "7", id)

	next, err := resp.Extract("$.next")
	require.NoError(t, err)
	assert.Equal(t, "null", next)

	_, err = resp.Extract("$.missing")
	assert.Error(t, err)
}

func TestResponse_ValidateSchema(t *testing.T) {
	schema := `{
		"type": "object",
		"required": ["id"],
		"properties": {"id": {"type": "integer"}}
	}`

	assert.NoError(t, newTestResponse(http.StatusOK, MediaTypeJSON, `{"id":1}`).ValidateSchema(schema))

	err := newTestResponse(http.StatusOK, MediaTypeJSON, `{"id":"one"}`).ValidateSchema(schema)
	require.Error(t, err)
	var verrs jsonschema.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 1)
	assert.Contains(t, verrs[0].Error(), "/id")
}

func TestResponse_StatusClasses(t *testing.T) {
	tests := []struct {
		status                                      int
		success, redirect, clientError, serverError bool
	}{
		{status: http.StatusOK, success: true},
		{status: http.StatusNoContent, success: true},
		{status: http.StatusMovedPermanently, redirect: true},
		{status: http.StatusNotFound, clientError: true},
		{status: http.StatusServiceUnavailable, serverError: true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			resp := newTestResponse(tt.status, "", "")
			assert.Equal(t, tt.success, resp.IsSuccess())
			assert.Equal(t, tt.redirect, resp.IsRedirect())
			assert.Equal(t, tt.clientError, resp.IsClientError())
			assert.Equal(t, tt.serverError, resp.IsServerError())
		})
	}
}

func TestResponse_EnsureSuccess(t *testing.T) {
	assert.NoError(t, newTestResponse(http.StatusCreated, "", "").EnsureSuccess())

	resp := NewResponse(&http.Response{StatusCode: http.StatusBadGateway, Status: "502 Bad Gateway"})
	err := resp.EnsureSuccess()

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, "response status code does not indicate success: 502 Bad Gateway", err.Error())
}

func TestResponse_Callbacks(t *testing.T) {
	var calls []string

	ok := newTestResponse(http.StatusOK, "", "")
	got := ok.
		OnSuccess(func(*Response) { calls = append(calls, "success") }).
		OnFailure(func(*Response) { calls = append(calls, "failure") })
	assert.Same(t, ok, got)

	failed := newTestResponse(http.StatusInternalServerError, "", "")
	failed.
		OnSuccess(func(*Response) { calls = append(calls, "success") }).
		OnFailure(func(*Response) { calls = append(calls, "failure") }).
		OnFailure(nil)

	assert.Equal(t, []string{"success", "failure"}, calls)
}

func TestResponse_GetResponseTimeMillis(t *testing.T) {
	resp := NewResponse(nil)
	resp.Timing.TotalTime = 1500 * time.Millisecond
	assert.Equal(t, int64(1500), resp.GetResponseTimeMillis())
}
