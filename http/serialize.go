package http

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"mime"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"gopkg.in/yaml.v3"
)

// JSONOptions controls JSON encoding of request content and decoding of
// response bodies. Start from DefaultJSONOptions and override fields; the
// zero value escapes nothing and declares no media type.
type JSONOptions struct {
	MediaType string
	Charset   string

	// Indent, when set, pretty-prints with this per-level indent.
	Indent     string
	EscapeHTML bool

	DisallowUnknownFields bool
	UseNumber             bool
}

// DefaultJSONOptions returns application/json, utf-8 and HTML escaping on.
func DefaultJSONOptions() JSONOptions {
	return JSONOptions{
		MediaType:  MediaTypeJSON,
		Charset:    DefaultCharset,
		EscapeHTML: true,
	}
}

// XMLOptions controls XML encoding of request content.
type XMLOptions struct {
	MediaType string
	Charset   string
	Indent    string

	// OmitDeclaration drops the leading <?xml ...?> line.
	OmitDeclaration bool
}

// DefaultXMLOptions returns application/xml and utf-8 with a declaration.
func DefaultXMLOptions() XMLOptions {
	return XMLOptions{
		MediaType: MediaTypeXML,
		Charset:   DefaultCharset,
	}
}

// NewJSONContent serializes v with encoding/json. Encoder errors such as
// *json.UnsupportedTypeError are returned as is.
func NewJSONContent(v interface{}, opts JSONOptions) (*Content, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(opts.EscapeHTML)
	if opts.Indent != "" {
		enc.SetIndent("", opts.Indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	mediaType := orDefault(opts.MediaType, MediaTypeJSON)
	charset := orDefault(opts.Charset, DefaultCharset)
	data, err := encodeText(strings.TrimSuffix(buf.String(), "\n"), charset)
	if err != nil {
		return nil, err
	}
	return newBufferedContent(data, contentTypeWithCharset(mediaType, charset)), nil
}

// NewXMLContent serializes v with encoding/xml.
func NewXMLContent(v interface{}, opts XMLOptions) (*Content, error) {
	mediaType := orDefault(opts.MediaType, MediaTypeXML)
	charset := orDefault(opts.Charset, DefaultCharset)

	var buf bytes.Buffer
	if !opts.OmitDeclaration {
		fmt.Fprintf(&buf, "<?xml version=\"1.0\" encoding=\"%s\"?>\n", strings.ToUpper(charset))
	}
	enc := xml.NewEncoder(&buf)
	if opts.Indent != "" {
		enc.Indent("", opts.Indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	data, err := encodeText(buf.String(), charset)
	if err != nil {
		return nil, err
	}
	return newBufferedContent(data, contentTypeWithCharset(mediaType, charset)), nil
}

// NewYAMLContent serializes v with gopkg.in/yaml.v3 as utf-8 application/yaml.
func NewYAMLContent(v interface{}) (*Content, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, err
	}
	return newBufferedContent(data, contentTypeWithCharset(MediaTypeYAML, DefaultCharset)), nil
}

func decodeJSON(data []byte, v interface{}, opts JSONOptions) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if opts.DisallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	if opts.UseNumber {
		dec.UseNumber()
	}
	return dec.Decode(v)
}

func decodeXML(data []byte, v interface{}) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(label)
		if err != nil {
			return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
		}
		return enc.NewDecoder().Reader(input), nil
	}
	return dec.Decode(v)
}

func isUTF8(charset string) bool {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}

// encodeText converts s from UTF-8 into charset.
func encodeText(s, charset string) ([]byte, error) {
	if isUTF8(charset) {
		return []byte(s), nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	out, err := enc.NewEncoder().String(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode content as %s: %w", charset, err)
	}
	return []byte(out), nil
}

// decodeText converts data from charset into UTF-8.
func decodeText(data []byte, charset string) (string, error) {
	if isUTF8(charset) {
		return string(data), nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return "", fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode content from %s: %w", charset, err)
	}
	return string(out), nil
}

func contentTypeWithCharset(mediaType, charset string) string {
	if charset == "" {
		return mediaType
	}
	return mime.FormatMediaType(mediaType, map[string]string{"charset": charset})
}

// charsetOf returns the charset parameter of a Content-Type header value.
func charsetOf(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
