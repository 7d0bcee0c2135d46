package scenario

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is an ordered sequence of dependent API calls that share
// propagated variables.
type Scenario struct {
	Name           string            `yaml:"name"`
	Description    string            `yaml:"description,omitempty"`
	Track          []string          `yaml:"track,omitempty"`
	Variables      map[string]string `yaml:"variables,omitempty"`
	StandardChecks *bool             `yaml:"standard_checks,omitempty"`
	Steps          []*Step           `yaml:"steps"`

	// Path is the file the scenario was loaded from, if any.
	Path string `yaml:"-"`
}

type Step struct {
	Name           string            `yaml:"name"`
	Method         string            `yaml:"method"`
	Path           string            `yaml:"path"`
	Headers        map[string]string `yaml:"headers,omitempty"`
	Body           string            `yaml:"body,omitempty"`
	Track          []string          `yaml:"track,omitempty"`
	Skip           string            `yaml:"skip,omitempty"`
	StandardChecks *bool             `yaml:"standard_checks,omitempty"`
	Expect         []*Check          `yaml:"expect,omitempty"`
	Response       *Recorded         `yaml:"response,omitempty"`
}

// Recorded is a response captured ahead of time and replayed in place of
// a live exchange.
type Recorded struct {
	Status  int               `yaml:"status"`
	Headers map[string]string `yaml:"headers,omitempty"`
	// Body is encoded as JSON unless it is a plain string, which is sent as-is.
	Body any `yaml:"body,omitempty"`
	// Raw takes precedence over Body and is sent byte for byte.
	Raw *string `yaml:"raw,omitempty"`
}

// Bytes returns the recorded body.
func (r *Recorded) Bytes() ([]byte, error) {
	if r.Raw != nil {
		return []byte(*r.Raw), nil
	}
	switch b := r.Body.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(b), nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encoding recorded body: %w", err)
		}
		return data, nil
	}
}

// Fields returns the fields to propagate after this step: the scenario's
// tracked fields followed by the step's own, without duplicates.
func (s *Step) Fields(scenarioFields []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range append(append([]string{}, scenarioFields...), s.Track...) {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

var (
	hostPrefix  = regexp.MustCompile(`^(https?://[^/]+|\{\{[^}]+\}\})`)
	placeholder = regexp.MustCompile(`\{\{\s*([^}\s]+)\s*\}\}`)
)

// Endpoint is the step's path with the host dropped and placeholders shown
// as :name, e.g. /payments/:payment_id/confirm.
func (s *Step) Endpoint() string {
	p := s.Path
	if loc := hostPrefix.FindStringIndex(p); loc != nil && strings.HasPrefix(p[loc[1]:], "/") {
		p = p[loc[1]:]
	}
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	return placeholder.ReplaceAllString(p, ":$1")
}

func (s *Step) label() string {
	return fmt.Sprintf("[%s]::%s", strings.ToUpper(s.Method), s.Endpoint())
}

// Checks returns the step's checks, led by the standard 2xx, JSON
// content-type and JSON body checks unless they are turned off. Every
// returned check carries a name.
func (s *Step) Checks(standard bool) []*Check {
	if s.StandardChecks != nil {
		standard = *s.StandardChecks
	}

	var checks []*Check
	if standard {
		checks = append(checks,
			&Check{Status: StatusSuccess},
			&Check{Header: "Content-Type", Contains: "application/json"},
			&Check{JSONBody: true},
		)
	}
	checks = append(checks, s.Expect...)

	out := make([]*Check, len(checks))
	for i, c := range checks {
		named := *c
		if named.Name == "" {
			named.Name = s.label() + " - " + c.describe()
		}
		out[i] = &named
	}
	return out
}

// Expected holds a check's expected value and whether one was given, so
// that `equals: 0` differs from no `equals` at all.
type Expected struct {
	Value any
	Set   bool
}

func (e *Expected) UnmarshalYAML(node *yaml.Node) error {
	if err := node.Decode(&e.Value); err != nil {
		return err
	}
	e.Set = true
	return nil
}

func (e Expected) MarshalYAML() (any, error) {
	return e.Value, nil
}

func (e Expected) IsZero() bool {
	return !e.Set
}
