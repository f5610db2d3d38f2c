package jsonpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const document = `{
	"items": [
		{"id": 1, "name": "widget", "tags": ["a", "b"]},
		{"id": 2, "name": "gadget", "tags": []}
	],
	"page": {"number": 2, "size": 50},
	"next": null,
	"dotted.key": "yes"
}`

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{name: "nested member", path: "$.page.number", expected: "2"},
		{name: "array index", path: "$.items[1].name", expected: "gadget"},
		{name: "nested array index", path: "$.items[0].tags[1]", expected: "b"},
		{name: "quoted member", path: "$['page']['size']", expected: "50"},
		{name: "double quoted member with dot", path: `$["dotted.key"]`, expected: "yes"},
		{name: "null value", path: "$.next", expected: "null"},
		{name: "array as raw JSON", path: "$.items[1].tags", expected: "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(document, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
		path string
	}{
		{name: "empty document", json: "", path: "$.a"},
		{name: "invalid document", json: "{", path: "$.a"},
		{name: "missing path", json: document, path: "$.missing"},
		{name: "empty path", json: document, path: ""},
		{name: "no root", json: document, path: "items"},
		{name: "unterminated bracket", json: document, path: "$.items[0"},
		{name: "filter selector", json: document, path: "$.items[?(@.id==1)]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.json, tt.path)
			assert.Error(t, err)
		})
	}
}

func TestToGjsonPath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{path: "$", expected: "@this"},
		{path: "$.a.b", expected: "a.b"},
		{path: "$[0]", expected: "0"},
		{path: "$.a[2].b", expected: "a.2.b"},
		{path: "$['a.b']", expected: `a\.b`},
	}

	for _, tt := range tests {
		got, err := ToGjsonPath(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.expected, got, tt.path)
	}
}

func TestQueryRoot(t *testing.T) {
	result, err := Query(`[1,2,3]`, "$")
	require.NoError(t, err)
	assert.True(t, result.IsArray())
	assert.Len(t, result.Array(), 3)
}
