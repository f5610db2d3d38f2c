package uri

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHex(t *testing.T) {
	assert.Equal(t, [2]byte{'F', 'F'}, hex(0xFF))
	assert.Equal(t, [2]byte{'2', '0'}, hex(' '))
}

func TestIsUnreserved(t *testing.T) {
	for _, c := range []byte("azAZ09-._~") {
		assert.True(t, isUnreserved(c), "%q", c)
	}
	for _, c := range []byte(" +&=?#/%:@!*") {
		assert.False(t, isUnreserved(c), "%q", c)
	}
}

func TestEscapeDataString(t *testing.T) {
	testcases := []struct {
		input    string
		expected string
	}{
		{input: "", expected: ""},
		{input: "plain-value_1.0~", expected: "plain-value_1.0~"},
		{input: "a b", expected: "a%20b"},
		{input: "a+b", expected: "a%2Bb"},
		{input: "a&b=c", expected: "a%26b%3Dc"},
		{input: "/path?x#y", expected: "%2Fpath%3Fx%23y"},
		{input: "100%", expected: "100%25"},
		{input: "é", expected: "%C3%A9"},
	}

	for _, tc := range testcases {
		assert.Equal(t, tc.expected, EscapeDataString(tc.input), "input %q", tc.input)
	}
}

func TestEscapePath(t *testing.T) {
	testcases := []struct {
		input    string
		expected string
	}{
		{input: "", expected: ""},
		{input: "/v1/items", expected: "/v1/items"},
		{input: "/a%2Fb/c d", expected: "/a%2Fb/c%20d"},
		{input: "/a%2fb", expected: "/a%2fb"},
		{input: "/users/@me;v=1", expected: "/users/@me;v=1"},
		{input: "/100%", expected: "/100%25"},
		{input: "/%zz", expected: "/%25zz"},
		{input: "/é", expected: "/%C3%A9"},
	}

	for _, tc := range testcases {
		assert.Equal(t, tc.expected, EscapePath(tc.input), "input %q", tc.input)
	}
}
