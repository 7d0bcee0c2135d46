package env

import "strings"

// MergeVariables merges sources left to right; later sources win.
func MergeVariables(sources ...map[string]string) map[string]string {
	result := make(map[string]string)
	for _, src := range sources {
		for k, v := range src {
			result[k] = v
		}
	}
	return result
}

// ParseAssignments turns "key=value" pairs, as given on the command line,
// into a map. Entries without "=" are ignored.
func ParseAssignments(pairs []string) map[string]string {
	result := make(map[string]string, len(pairs))
	for _, p := range pairs {
		key, value, found := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			continue
		}
		result[key] = value
	}
	return result
}
