// Package output renders sent requests and received responses for humans.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Redacted replaces the value of credential headers in dumps.
const Redacted = "[REDACTED]"

var sensitiveHeaders = map[string]bool{
	"Authorization":       true,
	"Proxy-Authorization": true,
	"Cookie":              true,
	"Set-Cookie":          true,
}

// Formatter is responsible for formatting HTTP requests and responses in text format
type Formatter struct {
	Verbose bool
	colors  *ColorScheme
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, noColor bool) *Formatter {
	colors := DefaultColorScheme()
	if noColor {
		colors = NoColorScheme()
	}
	return &Formatter{Verbose: verbose, colors: colors}
}

// NewFormatterFor returns a formatter that colors output only when w is a
// terminal.
func NewFormatterFor(w io.Writer, verbose bool) *Formatter {
	return NewFormatter(verbose, !IsTerminal(w))
}

// FormatRequest formats req. target is the URL to print, with credentials
// already removed. body is the buffered request body, or nil.
func (f *Formatter) FormatRequest(req *http.Request, target string, body []byte) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "▶ REQUEST: %s %s %s\n",
		f.colors.Method.Sprint(req.Method),
		f.colors.URL.Sprint(target),
		f.colors.Muted.Sprint(req.Proto))

	if f.Verbose || len(req.Header) > 0 {
		f.writeHeaders(&buf, req.Header)
	}
	if len(body) > 0 {
		buf.WriteString("  Body:\n")
		buf.WriteString(formatBody(body, req.Header.Get("Content-Type")))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatResponse formats resp. body is the buffered response body, or nil
// when the body was streamed to the caller.
func (f *Formatter) FormatResponse(resp *http.Response, body []byte, elapsed time.Duration) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "◀ RESPONSE: %s (%dms)\n",
		f.colors.Status(resp.StatusCode).Sprint(resp.Status),
		elapsed.Milliseconds())

	if f.Verbose {
		f.writeHeaders(&buf, resp.Header)
	}
	if len(body) > 0 {
		buf.WriteString("  Body:\n")
		buf.WriteString(formatBody(body, resp.Header.Get("Content-Type")))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatError formats a transport failure.
func (f *Formatter) FormatError(err error, elapsed time.Duration) string {
	return fmt.Sprintf("✗ ERROR: %s (%dms)\n", f.colors.StatusError.Sprint(err.Error()), elapsed.Milliseconds())
}

func (f *Formatter) writeHeaders(buf *strings.Builder, header http.Header) {
	buf.WriteString("  Headers:\n")
	keys := make([]string, 0, len(header))
	for key := range header {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		for _, value := range header[key] {
			if sensitiveHeaders[http.CanonicalHeaderKey(key)] {
				value = Redacted
			}
			fmt.Fprintf(buf, "    %s: %s\n", f.colors.HeaderKey.Sprint(key), f.colors.HeaderValue.Sprint(value))
		}
	}
}

// formatBody pretty-prints JSON bodies and returns anything else as text.
func formatBody(body []byte, contentType string) string {
	if strings.Contains(contentType, "json") || json.Valid(body) {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, body, "  ", "  "); err == nil {
			return "  " + pretty.String()
		}
	}
	return "  " + string(body)
}
