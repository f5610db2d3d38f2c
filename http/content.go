package http

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
)

// Media types used when a content constructor is not given one.
const (
	MediaTypeText      = "text/plain"
	MediaTypeJSON      = "application/json"
	MediaTypeXML       = "application/xml"
	MediaTypeYAML      = "application/yaml"
	MediaTypeForm      = "application/x-www-form-urlencoded"
	MediaTypeOctets    = "application/octet-stream"
	MediaTypeMultipart = "multipart/form-data"

	// DefaultCharset is used when a text content constructor is not given one.
	DefaultCharset = "utf-8"
)

// Content is a request body together with its content headers.
//
// Content built from a string, bytes or a serializer can be sent any number
// of times. Stream content is read once; a second send after the first has
// consumed it sends whatever is left in the stream.
type Content struct {
	// Header holds content headers such as Content-Type. They are copied onto
	// the request when it is built.
	Header http.Header

	body      io.Reader
	data      []byte
	buffered  bool
	length    int64
	multipart bool
}

func newBufferedContent(data []byte, contentType string) *Content {
	c := &Content{
		Header:   make(http.Header),
		data:     data,
		buffered: true,
		length:   int64(len(data)),
	}
	if contentType != "" {
		c.Header.Set("Content-Type", contentType)
	}
	return c
}

// NewBytesContent returns content holding data as application/octet-stream.
func NewBytesContent(data []byte) *Content {
	return newBufferedContent(data, MediaTypeOctets)
}

// NewStringContent encodes s with charset and declares it as mediaType.
// Empty arguments default to text/plain and utf-8.
func NewStringContent(s, mediaType, charset string) (*Content, error) {
	if mediaType == "" {
		mediaType = MediaTypeText
	}
	if charset == "" {
		charset = DefaultCharset
	}

	data, err := encodeText(s, charset)
	if err != nil {
		return nil, err
	}
	return newBufferedContent(data, contentTypeWithCharset(mediaType, charset)), nil
}

// NewStreamContent returns content that streams r. length may be -1 when
// unknown, in which case the transport uses chunked encoding unless the
// content is buffered first.
func NewStreamContent(r io.Reader, length int64) *Content {
	c := &Content{
		Header: make(http.Header),
		body:   r,
		length: length,
	}
	c.Header.Set("Content-Type", MediaTypeOctets)
	return c
}

// NewFormContent returns values URL-encoded as a form body.
func NewFormContent(values url.Values) *Content {
	return newBufferedContent([]byte(values.Encode()), MediaTypeForm)
}

// ContentType returns the declared Content-Type.
func (c *Content) ContentType() string {
	return c.Header.Get("Content-Type")
}

// ContentLength returns the body length, or -1 when unknown.
func (c *Content) ContentLength() int64 {
	return c.length
}

// IsMultipart reports whether the content is a multipart body.
func (c *Content) IsMultipart() bool {
	return c.multipart
}

// IsBuffered reports whether the whole body is held in memory.
func (c *Content) IsBuffered() bool {
	return c.buffered
}

// Buffer reads a streamed body fully into memory so its length is known
// before sending. It is a no-op for content that is already buffered.
func (c *Content) Buffer() error {
	if c.buffered {
		return nil
	}

	var data []byte
	if c.body != nil {
		var err error
		data, err = io.ReadAll(c.body)
		if closer, ok := c.body.(io.Closer); ok {
			closer.Close()
		}
		if err != nil {
			return fmt.Errorf("failed to buffer content: %w", err)
		}
	}

	c.data = data
	c.body = nil
	c.buffered = true
	c.length = int64(len(data))
	return nil
}

// Bytes returns the buffered body, or nil for unbuffered stream content.
func (c *Content) Bytes() []byte {
	if !c.buffered {
		return nil
	}
	return c.data
}

// reader returns a fresh reader over the body for one request.
func (c *Content) reader() io.Reader {
	if c.buffered {
		return bytes.NewReader(c.data)
	}
	return c.body
}

// MultipartContent accumulates the parts of a multipart/form-data body.
type MultipartContent struct {
	buf    bytes.Buffer
	writer *multipart.Writer
	err    error
}

// NewMultipartContent returns an empty multipart body.
func NewMultipartContent() *MultipartContent {
	m := &MultipartContent{}
	m.writer = multipart.NewWriter(&m.buf)
	return m
}

// Boundary returns the multipart boundary.
func (m *MultipartContent) Boundary() string {
	return m.writer.Boundary()
}

// AddField adds a form field part.
func (m *MultipartContent) AddField(name, value string) *MultipartContent {
	if m.err != nil {
		return m
	}
	m.err = m.writer.WriteField(name, value)
	return m
}

// AddFile adds a file part read from r.
func (m *MultipartContent) AddFile(field, filename string, r io.Reader) *MultipartContent {
	if m.err != nil {
		return m
	}
	part, err := m.writer.CreateFormFile(field, filename)
	if err != nil {
		m.err = err
		return m
	}
	_, m.err = io.Copy(part, r)
	return m
}

// AddPart adds a part with explicit headers.
func (m *MultipartContent) AddPart(header textproto.MIMEHeader, body []byte) *MultipartContent {
	if m.err != nil {
		return m
	}
	part, err := m.writer.CreatePart(header)
	if err != nil {
		m.err = err
		return m
	}
	_, m.err = part.Write(body)
	return m
}

// Content closes the multipart writer and returns the finished body. The
// first error from adding parts is returned here.
func (m *MultipartContent) Content() (*Content, error) {
	if m.err != nil {
		return nil, fmt.Errorf("failed to build multipart content: %w", m.err)
	}
	if err := m.writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart content: %w", err)
	}

	c := newBufferedContent(m.buf.Bytes(), m.writer.FormDataContentType())
	c.multipart = true
	return c, nil
}

// isMultipartType reports whether a Content-Type names a multipart body.
func isMultipartType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "multipart/")
}
