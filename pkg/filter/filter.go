// Package filter holds the persistent filter state of a pager and its
// query-string encoding with bracket-notation flattening of nested keys.
package filter

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	// PageKey is the reserved filter key carrying the current page number.
	PageKey = "page"

	// DefaultPage is the page value seeded into every new filter state.
	DefaultPage = 1
)

// Values is a mapping from filter name to value. A value may itself be a
// nested mapping (Values or map[string]any) of unbounded depth. Arrays are
// treated as opaque flat values and stringified as a single parameter.
type Values map[string]any

// New returns a fresh filter state seeded from initial. The reserved page
// key defaults to 1 when initial does not set it. The input is deep-copied
// so later mutation of initial does not leak into the state.
func New(initial Values) Values {
	v := initial.Clone()
	if v == nil {
		v = Values{}
	}
	if _, ok := v[PageKey]; !ok {
		v[PageKey] = DefaultPage
	}
	return v
}

// Clone returns a deep copy of the filter state. Nested mappings are
// copied recursively; all other values are copied by assignment.
func (v Values) Clone() Values {
	if v == nil {
		return nil
	}
	out := make(Values, len(v))
	for key, val := range v {
		if nested, ok := asNested(val); ok {
			out[key] = nested.Clone()
		} else {
			out[key] = val
		}
	}
	return out
}

// Merge applies delta on top of the current state. Merging is one level
// deep: a nested mapping in delta replaces the previous nested mapping
// wholesale. Explicit nil values are stored and later skipped by Encode.
func (v Values) Merge(delta Values) {
	for key, val := range delta {
		if nested, ok := asNested(val); ok {
			v[key] = nested.Clone()
			continue
		}
		v[key] = val
	}
}

// Page returns the current page number, coercing numeric and string
// representations. Falls back to DefaultPage when the value is absent or
// not interpretable as a page number.
func (v Values) Page() int {
	raw, ok := v[PageKey]
	if !ok {
		return DefaultPage
	}
	switch p := raw.(type) {
	case int:
		return p
	case int8:
		return int(p)
	case int16:
		return int(p)
	case int32:
		return int(p)
	case int64:
		return int(p)
	case uint:
		return int(p)
	case uint8:
		return int(p)
	case uint16:
		return int(p)
	case uint32:
		return int(p)
	case uint64:
		return int(p)
	case float32:
		return int(p)
	case float64:
		return int(p)
	case string:
		if n, err := strconv.Atoi(p); err == nil {
			return n
		}
	}
	return DefaultPage
}

// Encode serializes the filter state into a query string.
//
// Traversal is depth-first with keys sorted at each level: Go maps carry
// no insertion order, so sorted iteration is the determinism policy.
// Nested mappings produce bracket-concatenated keys (parent[child][leaf]).
// Keys with nil values are skipped at any depth. Flat falsy values (empty
// string, numeric zero, false) are skipped, except the reserved page key,
// which is always encoded when set - including the default first page -
// so every produced URL is a complete address of the state.
func (v Values) Encode() string {
	var pairs []string
	appendPairs(&pairs, "", v)
	return strings.Join(pairs, "&")
}

// BuildURL appends the encoded filter state to the endpoint, honoring an
// existing query string in the endpoint.
func (v Values) BuildURL(endpoint string) string {
	query := v.Encode()
	if query == "" {
		return endpoint
	}
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return endpoint + sep + query
}

// appendPairs walks one level of the filter mapping, recursing into
// nested mappings with an accumulated bracketed key prefix.
func appendPairs(pairs *[]string, prefix string, v Values) {
	keys := make([]string, 0, len(v))
	for key := range v {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		val := v[key]
		if val == nil {
			continue
		}

		name := key
		if prefix != "" {
			name = prefix + "[" + key + "]"
		}

		if nested, ok := asNested(val); ok {
			appendPairs(pairs, name, nested)
			continue
		}

		// The page exception only applies at the top level; a nested
		// "page" is an ordinary filter value.
		if isFalsy(val) && !(prefix == "" && key == PageKey) {
			continue
		}

		*pairs = append(*pairs, url.QueryEscape(name)+"="+url.QueryEscape(stringify(val)))
	}
}

// asNested reports whether val is a nested filter mapping.
func asNested(val any) (Values, bool) {
	switch m := val.(type) {
	case Values:
		return m, true
	case map[string]any:
		return Values(m), true
	default:
		return nil, false
	}
}

// isFalsy reports whether a flat value is skipped by the encoder.
func isFalsy(val any) bool {
	switch t := val.(type) {
	case string:
		return t == ""
	case bool:
		return !t
	case int:
		return t == 0
	case int8:
		return t == 0
	case int16:
		return t == 0
	case int32:
		return t == 0
	case int64:
		return t == 0
	case uint:
		return t == 0
	case uint8:
		return t == 0
	case uint16:
		return t == 0
	case uint32:
		return t == 0
	case uint64:
		return t == 0
	case float32:
		return t == 0
	case float64:
		return t == 0
	default:
		return false
	}
}

// stringify renders a flat filter value as its parameter literal.
func stringify(val any) string {
	switch t := val.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}
