package env

import (
	"fmt"
	"maps"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/abdul-hamid-achik/paychain/packages/builtin"
)

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// WarnFunc is a function type for handling warnings
type WarnFunc func(format string, args ...any)

// Store is the scenario-scoped variable store. Values set by one step are
// visible to every later step of the same scenario. Entries are upserted
// and never removed.
//
// A Store belongs to a single scenario run and is only touched by the
// step currently executing, so it is not safe for concurrent use.
type Store struct {
	vars     map[string]string
	funcs    *builtin.Registry
	warnFunc WarnFunc
}

func NewStore() *Store {
	return &Store{
		vars:  make(map[string]string),
		funcs: builtin.NewRegistry(),
	}
}

// SetWarnFunc sets a function to be called when a placeholder cannot be resolved.
func (s *Store) SetWarnFunc(fn WarnFunc) {
	s.warnFunc = fn
}

func (s *Store) warn(format string, args ...any) {
	if s.warnFunc != nil {
		s.warnFunc(format, args...)
	}
}

// Set upserts name.
func (s *Store) Set(name, value string) {
	s.vars[name] = value
}

func (s *Store) SetAll(vars map[string]string) {
	for k, v := range vars {
		s.vars[k] = v
	}
}

func (s *Store) Get(name string) (string, bool) {
	v, ok := s.vars[name]
	return v, ok
}

func (s *Store) Has(name string) bool {
	_, ok := s.vars[name]
	return ok
}

func (s *Store) Len() int {
	return len(s.vars)
}

// Names returns the variable names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.vars))
	for k := range s.vars {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Snapshot returns a copy of the current variables.
func (s *Store) Snapshot() map[string]string {
	return maps.Clone(s.vars)
}

// Resolve replaces {{name}} placeholders with store values, {{$NAME}} with
// process environment values and {{fn(args)}} with built-in function
// results. Placeholders that cannot be resolved are left untouched.
func (s *Store) Resolve(input string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		expr := strings.TrimSpace(match[2 : len(match)-2])

		if strings.HasPrefix(expr, "$") {
			envVar := expr[1:]
			if val := os.Getenv(envVar); val != "" {
				return val
			}
			s.warn("unresolved environment variable: $%s", envVar)
			return match
		}

		if strings.Contains(expr, "(") {
			result, ok, err := s.funcs.Call(expr)
			if err != nil {
				s.warn("%v", err)
			}
			if ok {
				return fmt.Sprintf("%v", result)
			}
			s.warn("unresolved function call: %s", expr)
			return match
		}

		if val, ok := s.vars[expr]; ok {
			return val
		}

		s.warn("unresolved variable: %s", expr)
		return match
	})
}

func (s *Store) ResolveAll(values map[string]string) map[string]string {
	result := make(map[string]string, len(values))
	for k, v := range values {
		result[s.Resolve(k)] = s.Resolve(v)
	}
	return result
}

// Unresolved returns the placeholder names in input that the store cannot
// currently satisfy. Environment and function placeholders are ignored.
func (s *Store) Unresolved(input string) []string {
	var missing []string
	for _, m := range variablePattern.FindAllStringSubmatch(input, -1) {
		expr := strings.TrimSpace(m[1])
		if strings.HasPrefix(expr, "$") || strings.Contains(expr, "(") {
			continue
		}
		if !s.Has(expr) && !slices.Contains(missing, expr) {
			missing = append(missing, expr)
		}
	}
	return missing
}
