// Package http provides a fluent request builder on top of net/http.
//
// A RequestBuilder accumulates a route, query parameters, headers, cookies,
// content, protocol version, buffering and a timeout. Nothing is resolved
// until the request is built: deferred configurators run first, then the
// URI is composed from the client's base address, the route and the query
// parameters, and finally header, cookie and option configurators are
// applied in the order they were added.
//
// This package is designed for programmatic use and provides:
//   - An ordered query parameter collection with RFC 3986 escaping
//   - A fluent request builder with deferred configuration
//   - Content helpers for text, bytes, streams, forms, multipart, JSON, XML and YAML
//   - A configurable client with timing, logging, tracing and latency recording
//   - Optional client-side pacing with WithRateLimit
//   - Response helpers for reading, decoding, JSONPath extraction and schema validation
//
// Basic Usage:
//
//	client := http.NewClient(
//	    http.WithBaseURL("https://api.example.com"),
//	    http.WithTimeout(30*time.Second),
//	)
//
//	rb, err := client.Request("/items")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := rb.
//	    WithQueryParameter("page", "2").
//	    WithBearerToken(token).
//	    Get(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp.OnFailure(func(r *http.Response) {
//	    log.Printf("request failed: %s", r.Status)
//	})
//
//	var items []Item
//	if err := resp.GetBodyAsJSON(&items); err != nil {
//	    log.Fatal(err)
//	}
//
// Errors:
//
// Configuration and argument errors are returned before any I/O and match
// ErrInvalidConfiguration or ErrInvalidArgument with errors.Is. Transport
// and serializer errors are returned as produced; cancellation matches
// context.Canceled or context.DeadlineExceeded.
//
// Thread Safety:
//
// Client is safe for concurrent use. RequestBuilder and QueryParameters are
// meant for a single goroutine and a single request.
package http
