package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/fluent/pkg/jsonpath"
	"github.com/wesleyorama2/fluent/pkg/jsonschema"
)

// Response wraps the *http.Response returned by the transport with body
// helpers and the timing captured while sending.
type Response struct {
	*http.Response

	Timing TimingInfo

	rawBody []byte
	parsed  bool
}

// NewResponse wraps resp. A nil resp yields a Response with no content.
func NewResponse(resp *http.Response) *Response {
	return &Response{Response: resp}
}

func (r *Response) hasContent() bool {
	return r.Response != nil && r.Body != nil && r.Body != http.NoBody
}

// GetBody returns the response body. The body is read from the network once
// and kept; a response without content yields an empty slice.
func (r *Response) GetBody() ([]byte, error) {
	if r.parsed {
		return r.rawBody, nil
	}
	if !r.hasContent() {
		r.rawBody = []byte{}
		r.parsed = true
		return r.rawBody, nil
	}

	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	r.rawBody = body
	r.parsed = true
	return body, nil
}

// GetBodyAsString returns the body decoded from the charset declared in
// Content-Type, UTF-8 when none is declared.
func (r *Response) GetBodyAsString() (string, error) {
	body, err := r.GetBody()
	if err != nil {
		return "", err
	}
	return decodeText(body, charsetOf(r.GetHeader("Content-Type")))
}

// GetBodyAsStream returns a reader over the body. If the body has already
// been read it reads from the kept copy; otherwise the caller owns the
// returned stream and must close it.
func (r *Response) GetBodyAsStream() io.ReadCloser {
	if r.parsed {
		return io.NopCloser(bytes.NewReader(r.rawBody))
	}
	if !r.hasContent() {
		return http.NoBody
	}
	return r.Body
}

// GetBodyAsJSON decodes the body into v. Without opts, DefaultJSONOptions
// is used. Decoder errors are returned as is.
func (r *Response) GetBodyAsJSON(v interface{}, opts ...JSONOptions) error {
	body, err := r.GetBody()
	if err != nil {
		return err
	}
	o := DefaultJSONOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	return decodeJSON(body, v, o)
}

// GetBodyAsXML decodes the body into v.
func (r *Response) GetBodyAsXML(v interface{}) error {
	body, err := r.GetBody()
	if err != nil {
		return err
	}
	return decodeXML(body, v)
}

// GetBodyAsYAML decodes the body into v.
func (r *Response) GetBodyAsYAML(v interface{}) error {
	body, err := r.GetBody()
	if err != nil {
		return err
	}
	return yaml.Unmarshal(body, v)
}

// Extract returns the value at a JSONPath expression such as $.items[0].id.
func (r *Response) Extract(path string) (string, error) {
	body, err := r.GetBodyAsString()
	if err != nil {
		return "", err
	}
	return jsonpath.Extract(body, path)
}

// ValidateSchema validates the JSON body against a JSON Schema document. A
// body that does not satisfy the schema yields a jsonschema.ValidationErrors.
func (r *Response) ValidateSchema(schema string) error {
	body, err := r.GetBodyAsString()
	if err != nil {
		return err
	}
	valid, errs := jsonschema.ValidateWithErrors(body, schema)
	if !valid {
		return errs
	}
	return nil
}

// GetHeader returns the first value of the named header.
func (r *Response) GetHeader(key string) string {
	if r.Response == nil {
		return ""
	}
	return r.Header.Get(key)
}

func (r *Response) statusCode() int {
	if r.Response == nil {
		return 0
	}
	return r.StatusCode
}

// IsSuccess returns true if the response status code is in the 2xx range
func (r *Response) IsSuccess() bool {
	return r.statusCode() >= 200 && r.statusCode() < 300
}

// IsRedirect returns true if the response status code is in the 3xx range
func (r *Response) IsRedirect() bool {
	return r.statusCode() >= 300 && r.statusCode() < 400
}

// IsClientError returns true if the response status code is in the 4xx range
func (r *Response) IsClientError() bool {
	return r.statusCode() >= 400 && r.statusCode() < 500
}

// IsServerError returns true if the response status code is in the 5xx range
func (r *Response) IsServerError() bool {
	return r.statusCode() >= 500 && r.statusCode() < 600
}

// StatusError is returned by EnsureSuccess for a non-2xx response.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("response status code does not indicate success: %s", e.Status)
}

// EnsureSuccess returns a *StatusError unless the status is 2xx.
func (r *Response) EnsureSuccess() error {
	if r.IsSuccess() {
		return nil
	}
	status := ""
	if r.Response != nil {
		status = r.Status
	}
	return &StatusError{StatusCode: r.statusCode(), Status: status}
}

// OnSuccess runs fn when the status is 2xx and returns r unchanged.
func (r *Response) OnSuccess(fn func(*Response)) *Response {
	if fn != nil && r.IsSuccess() {
		fn(r)
	}
	return r
}

// OnFailure runs fn when the status is not 2xx and returns r unchanged.
func (r *Response) OnFailure(fn func(*Response)) *Response {
	if fn != nil && !r.IsSuccess() {
		fn(r)
	}
	return r
}

// GetResponseTimeMillis returns the total time in milliseconds.
func (r *Response) GetResponseTimeMillis() int64 {
	return r.Timing.TotalTime.Milliseconds()
}

// Close releases the body if it has not been read.
func (r *Response) Close() error {
	if r.parsed || !r.hasContent() {
		return nil
	}
	return r.Body.Close()
}
