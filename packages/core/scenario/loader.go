package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrNoName  = errors.New("scenario has no name")
	ErrNoSteps = errors.New("scenario has no steps")
)

// Extensions lists the file extensions treated as scenario files.
var Extensions = []string{".yaml", ".yml"}

// IsScenarioFile reports whether path has a scenario file extension.
func IsScenarioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// LoadFile reads and validates the scenario at path.
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes a scenario document. Unknown keys are rejected so that a
// misspelt check does not silently disappear.
func Parse(data []byte, path string) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: %w", path, ErrNoSteps)
		}
		return nil, fmt.Errorf("%s: decoding scenario: %w", path, err)
	}
	s.Path = path

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &s, nil
}

// Validate checks the scenario's structure and fills in default step names.
func (s *Scenario) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrNoName
	}
	if len(s.Steps) == 0 {
		return ErrNoSteps
	}

	for i, step := range s.Steps {
		if step == nil {
			return fmt.Errorf("step %d is empty", i+1)
		}
		if step.Name == "" {
			step.Name = fmt.Sprintf("Step %d", i+1)
		}
		if step.Method == "" {
			return fmt.Errorf("step %q: method is required", step.Name)
		}
		if step.Path == "" {
			return fmt.Errorf("step %q: path is required", step.Name)
		}
		for j, c := range step.Expect {
			if c == nil {
				return fmt.Errorf("step %q: check %d is empty", step.Name, j+1)
			}
			if err := c.Validate(); err != nil {
				return fmt.Errorf("step %q: check %d: %w", step.Name, j+1, err)
			}
		}
	}
	return nil
}

// Dir returns the directory of the scenario file, used to resolve schema paths.
func (s *Scenario) Dir() string {
	if s.Path == "" {
		return ""
	}
	return filepath.Dir(s.Path)
}
