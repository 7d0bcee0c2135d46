package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/paychain/packages/assertions"
	"github.com/abdul-hamid-achik/paychain/packages/core/runner"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	Summary   JSONSummary    `json:"summary"`
	Scenarios []JSONScenario `json:"scenarios"`
	Duration  float64        `json:"duration"`
	Time      string         `json:"time"`
}

// JSONSummary counts steps across every scenario in the run.
type JSONSummary struct {
	Scenarios int `json:"scenarios"`
	Total     int `json:"total"`
	Passed    int `json:"passed"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

type JSONScenario struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	File      string            `json:"file,omitempty"`
	Passed    bool              `json:"passed"`
	Duration  float64           `json:"duration"`
	Steps     []JSONStep        `json:"steps"`
	Variables map[string]string `json:"variables,omitempty"`
}

// JSONStep represents a single step result
type JSONStep struct {
	Name       string            `json:"name"`
	Passed     bool              `json:"passed"`
	Skipped    bool              `json:"skipped,omitempty"`
	SkipReason string            `json:"skipReason,omitempty"`
	Duration   float64           `json:"duration"`
	Error      string            `json:"error,omitempty"`
	ParseError string            `json:"parseError,omitempty"`
	Request    *JSONRequest      `json:"request,omitempty"`
	Response   *JSONResponse     `json:"response,omitempty"`
	Assertions []JSONAssertion   `json:"assertions,omitempty"`
	Propagated map[string]string `json:"propagated,omitempty"`
}

// JSONRequest represents request details
type JSONRequest struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

// JSONResponse represents response details
type JSONResponse struct {
	StatusCode int               `json:"statusCode"`
	Status     string            `json:"status"`
	Headers    map[string]string `json:"headers,omitempty"`
	Duration   float64           `json:"duration"`
}

// JSONAssertion represents an assertion result
type JSONAssertion struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Skipped  bool   `json:"skipped,omitempty"`
	Expected any    `json:"expected,omitempty"`
	Actual   any    `json:"actual,omitempty"`
	Message  string `json:"message,omitempty"`
}

// JSONFormatter formats scenario results as JSON
type JSONFormatter struct {
	writer    io.Writer
	scenarios []JSONScenario
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer:    os.Stdout,
		scenarios: make([]JSONScenario, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		if w != nil {
			f.writer = w
		}
	}
}

func (f *JSONFormatter) FormatResult(result *runner.RunResult) {
	sc := JSONScenario{
		ID:        result.ID,
		Name:      result.Scenario,
		File:      result.File,
		Passed:    result.Failed == 0,
		Duration:  float64(result.Duration.Milliseconds()),
		Steps:     make([]JSONStep, 0, len(result.Steps)),
		Variables: result.Variables,
	}

	for _, s := range result.Steps {
		step := JSONStep{
			Name:       s.Name,
			Passed:     s.Passed,
			Skipped:    s.Skipped,
			SkipReason: s.SkipReason,
			Duration:   float64(s.Duration.Milliseconds()),
		}

		if s.Error != nil {
			step.Error = s.Error.Error()
		}
		if s.ParseError != nil {
			step.ParseError = s.ParseError.Error()
		}

		if s.Request != nil {
			step.Request = &JSONRequest{
				Method:  s.Request.Method,
				URL:     s.Request.URL,
				Headers: s.Request.Headers,
			}
		}

		if s.Response != nil {
			step.Response = &JSONResponse{
				StatusCode: s.Response.StatusCode,
				Status:     s.Response.Status,
				Headers:    s.Response.Headers,
				Duration:   float64(s.Response.Duration.Milliseconds()),
			}
		}

		if len(s.Assertions) > 0 {
			step.Assertions = make([]JSONAssertion, len(s.Assertions))
			for i, a := range s.Assertions {
				step.Assertions[i] = jsonAssertion(a)
			}
		}

		if len(s.Propagated) > 0 {
			step.Propagated = s.Propagated
		}

		sc.Steps = append(sc.Steps, step)
	}

	f.scenarios = append(f.scenarios, sc)
}

func jsonAssertion(a *assertions.Result) JSONAssertion {
	return JSONAssertion{
		Name:     a.Name,
		Passed:   a.Passed,
		Skipped:  a.Skipped,
		Expected: a.Expected,
		Actual:   a.Actual,
		Message:  a.Message,
	}
}

func (f *JSONFormatter) FormatError(err error) {
	// Errors are included in individual step results
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	summary := JSONSummary{Scenarios: len(f.scenarios)}
	for _, sc := range f.scenarios {
		for _, s := range sc.Steps {
			summary.Total++
			switch {
			case s.Skipped:
				summary.Skipped++
			case s.Passed:
				summary.Passed++
			default:
				summary.Failed++
			}
		}
	}

	output := JSONOutput{
		Summary:   summary,
		Scenarios: f.scenarios,
		Duration:  float64(totalDuration.Milliseconds()),
		Time:      time.Now().Format(time.RFC3339),
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
