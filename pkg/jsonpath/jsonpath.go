// Package jsonpath extracts values from JSON documents using a small
// JSONPath subset ($.a.b[0]['c']) translated to gjson paths.
package jsonpath

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Extract extracts a value from a JSON document using a JSONPath expression.
// Strings are returned unquoted, objects and arrays as raw JSON.
func Extract(json []byte, path string) (string, error) {
	if len(json) == 0 {
		return "", fmt.Errorf("empty JSON document")
	}
	if path == "" {
		return "", fmt.Errorf("empty JSONPath expression")
	}
	if !gjson.ValidBytes(json) {
		return "", fmt.Errorf("invalid JSON document")
	}

	result := gjson.GetBytes(json, ToGjson(path))
	if !result.Exists() {
		return "", fmt.Errorf("path not found: %s", path)
	}
	if result.Type == gjson.Null {
		return "null", nil
	}
	return result.String(), nil
}

// ExtractAll evaluates each path in order. Every failing path is reported.
func ExtractAll(json []byte, paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no JSONPath expressions provided")
	}

	values := make([]string, 0, len(paths))
	var errs []string
	for _, path := range paths {
		value, err := Extract(json, path)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		values = append(values, value)
	}
	if len(errs) > 0 {
		return values, fmt.Errorf("extraction errors: %s", strings.Join(errs, "; "))
	}
	return values, nil
}

// ToGjson converts a JSONPath expression to gjson path syntax.
func ToGjson(path string) string {
	path = strings.TrimSpace(path)
	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return "@this"
	}

	var b strings.Builder
	for i := 0; i < len(path); i++ {
		switch c := path[i]; c {
		case '[':
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				b.WriteString(path[i:])
				return b.String()
			}
			key := strings.Trim(path[i+1:i+end], `'"`)
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(escape(key))
			i += end
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// escape protects gjson metacharacters inside a bracketed key.
func escape(key string) string {
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		switch key[i] {
		case '.', '*', '?', '|', '#', '@':
			b.WriteByte('\\')
		}
		b.WriteByte(key[i])
	}
	return b.String()
}
