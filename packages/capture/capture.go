package capture

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	ErrEmptyBody   = errors.New("response body is empty")
	ErrInvalidJSON = errors.New("response body is not valid JSON")
	ErrNotObject   = errors.New("response body is not a JSON object")
)

var emptyObject = gjson.Parse("{}")

// ParseResult is the outcome of ParseJSON. When Err is set the body could
// not be used and Body is the empty mapping, so field lookups report every
// field as absent.
type ParseResult struct {
	Body Body
	Err  error
}

func (p ParseResult) Failed() bool {
	return p.Err != nil
}

// ParseJSON decodes a response body as a JSON object.
func ParseJSON(raw []byte) ParseResult {
	if len(bytes.TrimSpace(raw)) == 0 {
		return ParseResult{Body: Empty(), Err: ErrEmptyBody}
	}
	if !gjson.ValidBytes(raw) {
		return ParseResult{Body: Empty(), Err: ErrInvalidJSON}
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return ParseResult{Body: Empty(), Err: ErrNotObject}
	}
	return ParseResult{Body: Body{doc: doc}}
}

// Body is a parsed JSON object. Every accessor reports presence explicitly
// instead of failing on a missing field.
type Body struct {
	doc gjson.Result
}

// Empty returns the empty mapping.
func Empty() Body {
	return Body{doc: emptyObject}
}

func (b Body) root() gjson.Result {
	if !b.doc.Exists() {
		return emptyObject
	}
	return b.doc
}

// lookup finds name in the body. A top-level key spelled exactly like
// name wins, so keys containing dots or wildcards are reachable; when
// the key occurs more than once the last occurrence is used. Otherwise
// name is read as a gjson path such as payment_method_data.card.
func (b Body) lookup(name string) gjson.Result {
	var found gjson.Result
	b.root().ForEach(func(key, value gjson.Result) bool {
		if key.Str == name {
			found = value
		}
		return true
	})
	if found.Exists() {
		return found
	}
	return b.root().Get(name)
}

// Has reports whether name is present. A field holding JSON null is present.
func (b Body) Has(name string) bool {
	return b.lookup(name).Exists()
}

// Get returns the value of name. It reports false when the field is
// absent or null.
func (b Body) Get(name string) (Value, bool) {
	r := b.lookup(name)
	if !r.Exists() || r.Type == gjson.Null {
		return Value{}, false
	}
	return Value{r: r}, true
}

// Len returns the number of top-level fields.
func (b Body) Len() int {
	n := 0
	b.root().ForEach(func(_, _ gjson.Result) bool {
		n++
		return true
	})
	return n
}

// Map returns the body decoded into Go values.
func (b Body) Map() map[string]any {
	m, ok := b.root().Value().(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return m
}

// Value is a single JSON value taken from a Body.
type Value struct {
	r gjson.Result
}

// String returns strings verbatim and any other value as compact JSON.
func (v Value) String() string {
	switch v.r.Type {
	case gjson.String:
		return v.r.Str
	case gjson.Number:
		return formatNumber(v.r)
	case gjson.JSON:
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(v.r.Raw)); err != nil {
			return v.r.Raw
		}
		return buf.String()
	default:
		return v.r.Raw
	}
}

// Interface returns the value decoded into Go types: float64, string,
// bool, []any or map[string]any.
func (v Value) Interface() any {
	return v.r.Value()
}

// Kind names the JSON type of the value.
func (v Value) Kind() string {
	switch v.r.Type {
	case gjson.String:
		return "string"
	case gjson.Number:
		return "number"
	case gjson.True, gjson.False:
		return "boolean"
	case gjson.JSON:
		if v.r.IsArray() {
			return "array"
		}
		return "object"
	default:
		return "null"
	}
}

// formatNumber keeps integer literals as written, so ids beyond 2^53 stay
// exact, and prints any other number in its shortest decimal form:
// 6.54e3 becomes 6540 and 1.50 becomes 1.5.
func formatNumber(r gjson.Result) string {
	if !strings.ContainsAny(r.Raw, ".eE") {
		return r.Raw
	}
	return strconv.FormatFloat(r.Num, 'f', -1, 64)
}
