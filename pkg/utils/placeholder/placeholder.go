// Package placeholder substitutes {dotted.path} tokens inside arbitrary JSON
// values with values looked up from a context object.
package placeholder

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\{([^}]+)\}`)

// Resolve walks v and returns a copy where every string has its tokens
// replaced. Maps and slices are rebuilt, so v is never mutated. Values of
// any other type are returned unchanged.
func Resolve(v any, ctx map[string]any) any {
	switch x := v.(type) {
	case string:
		return ReplaceString(x, ctx)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = Resolve(item, ctx)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = Resolve(item, ctx)
		}
		return out
	default:
		return v
	}
}

// ReplaceString replaces each {path} token in s. Tokens whose path is absent
// from ctx are kept verbatim.
func ReplaceString(s string, ctx map[string]any) string {
	if !strings.Contains(s, "{") {
		return s
	}
	return tokenPattern.ReplaceAllStringFunc(s, func(token string) string {
		path := token[1 : len(token)-1]
		value, ok := Lookup(ctx, path)
		if !ok {
			return token
		}
		return Stringify(value)
	})
}

// Lookup traverses ctx along a dot separated path. Segments index map keys,
// or slice elements when the current value is a slice and the segment is a
// decimal index.
func Lookup(ctx map[string]any, path string) (any, bool) {
	var cur any = ctx
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Stringify renders a looked up value the way it appears inside report text
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return formatNumberLiteral(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return formatFloat(float64(x))
	case float64:
		return formatFloat(x)
	default:
		raw, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}

func formatNumberLiteral(n json.Number) string {
	if _, err := n.Int64(); err == nil {
		return n.String()
	}
	f, err := n.Float64()
	if err != nil {
		return n.String()
	}
	return formatFloat(f)
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if f == 0 {
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	// Exponent without zero padding: 5e-7, 1.5e+21
	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + exp[:1] + digits
}
