package http

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryParameters_ToQueryString(t *testing.T) {
	tests := []struct {
		name     string
		build    func(q *QueryParameters)
		expected string
	}{
		{
			name:     "empty collection",
			build:    func(q *QueryParameters) {},
			expected: "",
		},
		{
			name: "single value",
			build: func(q *QueryParameters) {
				q.Add("page", "2")
			},
			expected: "?page=2",
		},
		{
			name: "repeated key keeps value order",
			build: func(q *QueryParameters) {
				q.Add("tag", "a")
				q.Add("tag", "b")
			},
			expected: "?tag=a&tag=b",
		},
		{
			name: "space is percent encoded",
			build: func(q *QueryParameters) {
				q.Add("q", "a b")
			},
			expected: "?q=a%20b",
		},
		{
			name: "reserved characters in keys and values",
			build: func(q *QueryParameters) {
				q.Add("a&b", "c=d+e")
			},
			expected: "?a%26b=c%3Dd%2Be",
		},
		{
			name: "null value renders bare flag",
			build: func(q *QueryParameters) {
				q.AddNull("debug")
			},
			expected: "?debug",
		},
		{
			name: "empty string value keeps equals sign",
			build: func(q *QueryParameters) {
				q.Add("filter", "")
			},
			expected: "?filter=",
		},
		{
			name: "empty range renders bare flag",
			build: func(q *QueryParameters) {
				q.SetRange("verbose", []string{})
			},
			expected: "?verbose",
		},
		{
			name: "keys keep first insertion order",
			build: func(q *QueryParameters) {
				q.Add("b", "1")
				q.Add("a", "2")
				q.Add("b", "3")
			},
			expected: "?b=1&b=3&a=2",
		},
		{
			name: "set after add leaves one occurrence in place",
			build: func(q *QueryParameters) {
				q.Add("x", "1")
				q.Add("page", "1")
				q.Add("page", "2")
				q.Add("y", "1")
				q.Set("page", "9")
			},
			expected: "?x=1&page=9&y=1",
		},
		{
			name: "null mixed with values",
			build: func(q *QueryParameters) {
				q.Add("k", "v")
				q.AddNull("k")
			},
			expected: "?k=v&k",
		},
		{
			name: "add range appends",
			build: func(q *QueryParameters) {
				q.Add("id", "1")
				q.AddRange("id", []string{"2", "3"})
			},
			expected: "?id=1&id=2&id=3",
		},
		{
			name: "keys are case sensitive",
			build: func(q *QueryParameters) {
				q.Add("Key", "1")
				q.Add("key", "2")
			},
			expected: "?Key=1&key=2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueryParameters()
			tt.build(q)
			assert.Equal(t, tt.expected, q.ToQueryString())
			assert.Equal(t, tt.expected, q.String())
		})
	}
}

func TestQueryParameters_InvalidKeys(t *testing.T) {
	q := NewQueryParameters()

	for _, key := range []string{"", " ", "\t"} {
		assert.ErrorIs(t, q.Add(key, "v"), ErrInvalidArgument)
		assert.ErrorIs(t, q.AddNull(key), ErrInvalidArgument)
		assert.ErrorIs(t, q.AddRange(key, []string{"v"}), ErrInvalidArgument)
		assert.ErrorIs(t, q.Set(key, "v"), ErrInvalidArgument)
		assert.ErrorIs(t, q.SetNull(key), ErrInvalidArgument)
		assert.ErrorIs(t, q.SetRange(key, []string{"v"}), ErrInvalidArgument)
	}

	assert.ErrorIs(t, q.AddRange("k", nil), ErrInvalidArgument)
	assert.ErrorIs(t, q.SetRange("k", nil), ErrInvalidArgument)
	assert.Zero(t, q.Len())
	assert.Equal(t, "", q.ToQueryString())
}

func TestQueryParameters_Accessors(t *testing.T) {
	q := NewQueryParameters()
	require.NoError(t, q.Add("page", "2"))
	require.NoError(t, q.AddNull("flag"))

	assert.True(t, q.ContainsKey("page"))
	assert.False(t, q.ContainsKey("Page"))
	assert.Equal(t, []string{"page", "flag"}, q.Keys())
	assert.Equal(t, 2, q.Len())

	values, ok := q.TryGetValues("page")
	require.True(t, ok)
	assert.Equal(t, []Value{StringValue("2")}, values)

	values, err := q.Get("flag")
	require.NoError(t, err)
	assert.Equal(t, []Value{{}}, values)
	assert.False(t, values[0].Valid)

	_, ok = q.TryGetValues("missing")
	assert.False(t, ok)

	_, err = q.Get("missing")
	assert.True(t, errors.Is(err, ErrKeyNotFound))
}

func TestQueryParameters_TryGetValuesReturnsCopy(t *testing.T) {
	q := NewQueryParameters()
	require.NoError(t, q.Add("a", "1"))

	values, _ := q.TryGetValues("a")
	values[0] = StringValue("changed")

	assert.Equal(t, "?a=1", q.ToQueryString())
}

func TestQueryParameters_RemoveAndClear(t *testing.T) {
	q := NewQueryParameters()
	require.NoError(t, q.Add("a", "1"))
	require.NoError(t, q.Add("b", "2"))
	require.NoError(t, q.Add("c", "3"))

	assert.True(t, q.Remove("b"))
	assert.False(t, q.Remove("b"))
	assert.Equal(t, "?a=1&c=3", q.ToQueryString())

	// A removed key that comes back goes to the end.
	require.NoError(t, q.Add("b", "4"))
	assert.Equal(t, "?a=1&c=3&b=4", q.ToQueryString())

	q.Clear()
	assert.Zero(t, q.Len())
	assert.Equal(t, "", q.ToQueryString())
	require.NoError(t, q.Add("z", "1"))
	assert.Equal(t, "?z=1", q.ToQueryString())
}

func TestQueryParameters_ZeroValue(t *testing.T) {
	var q QueryParameters
	assert.False(t, q.Remove("a"))
	require.NoError(t, q.Set("a", "1"))
	assert.Equal(t, "?a=1", q.ToQueryString())
}

func TestQueryParameters_SetVariants(t *testing.T) {
	q := NewQueryParameters()
	require.NoError(t, q.AddRange("k", []string{"1", "2"}))

	require.NoError(t, q.SetNull("k"))
	assert.Equal(t, "?k", q.ToQueryString())

	require.NoError(t, q.SetRange("k", []string{"x", "y"}))
	assert.Equal(t, "?k=x&k=y", q.ToQueryString())
}
