package assertions

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// normalize round-trips v through encoding/json so that values coming
// from YAML (int, map[string]any) and from response bodies (float64)
// share one representation.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// jsonEqual reports deep equality of two JSON values. Numbers compare by
// value, and a string never equals a number.
func jsonEqual(actual, expected any) (bool, string) {
	a, err := normalize(actual)
	if err != nil {
		return false, fmt.Sprintf("cannot compare actual value: %v", err)
	}
	e, err := normalize(expected)
	if err != nil {
		return false, fmt.Sprintf("cannot compare expected value: %v", err)
	}
	if reflect.DeepEqual(a, e) {
		return true, ""
	}
	return false, fmt.Sprintf("expected %s, got %s", formatJSON(expected), formatJSON(actual))
}

func formatJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
