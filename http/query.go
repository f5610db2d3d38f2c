package http

import (
	"strings"

	"github.com/wesleyorama2/fluent/internal/guard"
	"github.com/wesleyorama2/fluent/internal/uri"
)

// Value is a single query parameter value. The zero Value is null and
// renders as a bare key (?key); a valid empty Value renders as ?key=.
type Value struct {
	String string
	Valid  bool
}

// StringValue returns a valid Value holding s.
func StringValue(s string) Value {
	return Value{String: s, Valid: true}
}

// QueryParameters is an ordered multi-map of query string keys to values.
// Keys are case-sensitive and keep the order in which they were first
// introduced; values keep their insertion order within a key.
//
// The zero value is ready to use. QueryParameters is not safe for concurrent
// use.
type QueryParameters struct {
	keys   []string
	values map[string][]Value
}

// NewQueryParameters returns an empty collection.
func NewQueryParameters() *QueryParameters {
	return &QueryParameters{values: make(map[string][]Value)}
}

func (q *QueryParameters) init() {
	if q.values == nil {
		q.values = make(map[string][]Value)
	}
}

func (q *QueryParameters) appendValues(key string, values ...Value) {
	q.init()
	existing, ok := q.values[key]
	if !ok {
		q.keys = append(q.keys, key)
		existing = make([]Value, 0, len(values))
	}
	q.values[key] = append(existing, values...)
}

func (q *QueryParameters) replaceValues(key string, values []Value) {
	q.init()
	if _, ok := q.values[key]; !ok {
		q.keys = append(q.keys, key)
	}
	q.values[key] = values
}

// Add appends value to the list for key.
func (q *QueryParameters) Add(key, value string) error {
	if err := guard.NotBlank("query parameter key", key); err != nil {
		return err
	}
	q.appendValues(key, StringValue(value))
	return nil
}

// AddNull appends a null value for key, rendered as a bare flag.
func (q *QueryParameters) AddNull(key string) error {
	if err := guard.NotBlank("query parameter key", key); err != nil {
		return err
	}
	q.appendValues(key, Value{})
	return nil
}

// AddRange appends every item of values for key. A nil slice is rejected; an
// empty slice only introduces the key.
func (q *QueryParameters) AddRange(key string, values []string) error {
	if err := guard.NotBlank("query parameter key", key); err != nil {
		return err
	}
	if err := guard.NotNil("query parameter values", values == nil); err != nil {
		return err
	}
	q.appendValues(key, toValues(values)...)
	return nil
}

// Set replaces any values for key with value.
func (q *QueryParameters) Set(key, value string) error {
	if err := guard.NotBlank("query parameter key", key); err != nil {
		return err
	}
	q.replaceValues(key, []Value{StringValue(value)})
	return nil
}

// SetNull replaces any values for key with a single null value.
func (q *QueryParameters) SetNull(key string) error {
	if err := guard.NotBlank("query parameter key", key); err != nil {
		return err
	}
	q.replaceValues(key, []Value{{}})
	return nil
}

// SetRange replaces any values for key with values. An empty slice leaves
// the key present with no values, which renders as a bare flag.
func (q *QueryParameters) SetRange(key string, values []string) error {
	if err := guard.NotBlank("query parameter key", key); err != nil {
		return err
	}
	if err := guard.NotNil("query parameter values", values == nil); err != nil {
		return err
	}
	q.replaceValues(key, toValues(values))
	return nil
}

// Remove deletes key and reports whether it was present.
func (q *QueryParameters) Remove(key string) bool {
	if _, ok := q.values[key]; !ok {
		return false
	}
	delete(q.values, key)
	for i, k := range q.keys {
		if k == key {
			q.keys = append(q.keys[:i], q.keys[i+1:]...)
			break
		}
	}
	return true
}

// Clear removes every key.
func (q *QueryParameters) Clear() {
	q.keys = nil
	q.values = make(map[string][]Value)
}

// ContainsKey reports whether key is present.
func (q *QueryParameters) ContainsKey(key string) bool {
	_, ok := q.values[key]
	return ok
}

// TryGetValues returns a copy of the values for key.
func (q *QueryParameters) TryGetValues(key string) ([]Value, bool) {
	values, ok := q.values[key]
	if !ok {
		return nil, false
	}
	out := make([]Value, len(values))
	copy(out, values)
	return out, true
}

// Get is like TryGetValues but returns ErrKeyNotFound for an absent key.
func (q *QueryParameters) Get(key string) ([]Value, error) {
	values, ok := q.TryGetValues(key)
	if !ok {
		return nil, guard.NotFound(key)
	}
	return values, nil
}

// Keys returns the keys in first-insertion order.
func (q *QueryParameters) Keys() []string {
	out := make([]string, len(q.keys))
	copy(out, q.keys)
	return out
}

// Len returns the number of keys.
func (q *QueryParameters) Len() int {
	return len(q.keys)
}

// ToQueryString renders the collection as "?k=v&k2", or "" when empty.
func (q *QueryParameters) ToQueryString() string {
	if len(q.keys) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteByte('?')
	first := true
	writeToken := func(key string, v Value) {
		if !first {
			sb.WriteByte('&')
		}
		first = false
		sb.WriteString(uri.EscapeDataString(key))
		if v.Valid {
			sb.WriteByte('=')
			sb.WriteString(uri.EscapeDataString(v.String))
		}
	}

	for _, key := range q.keys {
		values := q.values[key]
		if len(values) == 0 {
			writeToken(key, Value{})
			continue
		}
		for _, v := range values {
			writeToken(key, v)
		}
	}

	return sb.String()
}

// String implements fmt.Stringer.
func (q *QueryParameters) String() string {
	return q.ToQueryString()
}

func toValues(values []string) []Value {
	out := make([]Value, len(values))
	for i, v := range values {
		out[i] = StringValue(v)
	}
	return out
}
