// Package jsonpath extracts values from JSON documents with a JSONPath
// subset ($, .name, ['name'], ["name"], [index]) evaluated by gjson.
package jsonpath

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Query returns the gjson result at path.
func Query(json, path string) (gjson.Result, error) {
	if json == "" {
		return gjson.Result{}, fmt.Errorf("empty JSON string")
	}
	if !gjson.Valid(json) {
		return gjson.Result{}, fmt.Errorf("invalid JSON")
	}

	gpath, err := ToGjsonPath(path)
	if err != nil {
		return gjson.Result{}, err
	}

	result := gjson.Get(json, gpath)
	if !result.Exists() {
		return gjson.Result{}, fmt.Errorf("path not found: %s", path)
	}
	return result, nil
}

// Extract returns the value at path as a string. JSON null yields "null";
// objects and arrays yield their raw JSON.
func Extract(json, path string) (string, error) {
	result, err := Query(json, path)
	if err != nil {
		return "", err
	}
	if result.Type == gjson.Null {
		return "null", nil
	}
	return result.String(), nil
}

// ToGjsonPath converts a JSONPath expression to gjson path syntax, escaping
// gjson's special characters inside member names.
func ToGjsonPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty JSONPath expression")
	}
	if !strings.HasPrefix(path, "$") {
		return "", fmt.Errorf("JSONPath expression must start with $: %s", path)
	}

	var segments []string
	rest := path[1:]
	for rest != "" {
		switch rest[0] {
		case '.':
			rest = rest[1:]
			end := strings.IndexAny(rest, ".[")
			if end < 0 {
				end = len(rest)
			}
			if end == 0 {
				return "", fmt.Errorf("empty member name in %s", path)
			}
			segments = append(segments, escapeMember(rest[:end]))
			rest = rest[end:]
		case '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return "", fmt.Errorf("unterminated bracket in %s", path)
			}
			inner := strings.TrimSpace(rest[1:end])
			rest = rest[end+1:]
			if n := len(inner); n >= 2 && (inner[0] == '\'' || inner[0] == '"') && inner[n-1] == inner[0] {
				segments = append(segments, escapeMember(inner[1:n-1]))
				continue
			}
			if _, err := strconv.Atoi(inner); err != nil {
				return "", fmt.Errorf("unsupported selector [%s] in %s", inner, path)
			}
			segments = append(segments, inner)
		default:
			return "", fmt.Errorf("unexpected %q in %s", rest[0], path)
		}
	}

	if len(segments) == 0 {
		return "@this", nil
	}
	return strings.Join(segments, "."), nil
}

func escapeMember(name string) string {
	var sb strings.Builder
	for i := 0; i < len(name); i++ {
		switch c := name[i]; c {
		case '.', '*', '?', '|', '#', '@', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
