package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/paychain/packages/assertions"
	"github.com/abdul-hamid-achik/paychain/packages/capture"
	"github.com/abdul-hamid-achik/paychain/packages/core/env"
	"github.com/abdul-hamid-achik/paychain/packages/core/scenario"
	"github.com/abdul-hamid-achik/paychain/packages/http"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Runner struct {
	exchanger Exchanger
	config    *Config
	log       *zap.Logger
}

type Config struct {
	// Track is used when a scenario does not list its own tracked fields.
	Track []string
	// StandardChecks is the default for scenarios that do not set it.
	StandardChecks *bool
	// Overrides are applied to the store after the scenario's variables.
	Overrides map[string]string
}

func NewRunner(exchanger Exchanger, cfg *Config, log *zap.Logger) *Runner {
	if cfg == nil {
		cfg = &Config{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if exchanger == nil {
		exchanger = ReplayExchanger{}
	}
	return &Runner{
		exchanger: exchanger,
		config:    cfg,
		log:       log,
	}
}

type RunResult struct {
	ID        string
	Scenario  string
	File      string
	Steps     []*StepResult
	Report    *assertions.Report
	Duration  time.Duration
	Passed    int
	Failed    int
	Skipped   int
	Variables map[string]string
}

type StepResult struct {
	Name       string
	Passed     bool
	Skipped    bool
	SkipReason string
	Duration   time.Duration
	Request    *http.Request
	Response   *http.Response
	ParseError error
	Assertions []*assertions.Result
	Propagated map[string]string
	Error      error
}

// Run executes the scenario's steps strictly in order against store. The
// scenario's variables and the configured overrides are written to the
// store first. A failed exchange or assertion never stops the run; only
// a cancelled context does, in which case the remaining steps are
// reported as skipped and the context error is returned.
func (r *Runner) Run(ctx context.Context, sc *scenario.Scenario, store *env.Store) (*RunResult, error) {
	if store == nil {
		store = env.NewStore()
	}
	store.SetAll(sc.Variables)
	store.SetAll(r.config.Overrides)

	log := r.log.With(zap.String("scenario", sc.Name))
	store.SetWarnFunc(func(format string, args ...any) {
		log.Sugar().Warnf(format, args...)
	})

	start := time.Now()
	result := &RunResult{
		ID:       uuid.NewString(),
		Scenario: sc.Name,
		File:     sc.Path,
		Report:   &assertions.Report{},
	}

	tracked := r.config.TrackedFields(sc)
	standard := r.config.UseStandardChecks(sc)

	var runErr error
	for _, step := range sc.Steps {
		if runErr == nil {
			runErr = ctx.Err()
		}
		if runErr != nil {
			result.add(&StepResult{Name: step.Name, Skipped: true, SkipReason: "cancelled"})
			continue
		}
		if step.Skip != "" {
			result.add(&StepResult{Name: step.Name, Skipped: true, SkipReason: step.Skip})
			continue
		}

		stepResult := r.runStep(ctx, sc, step, store, tracked, standard)
		result.add(stepResult)
	}

	result.Duration = time.Since(start)
	result.Variables = store.Snapshot()
	return result, runErr
}

func (res *RunResult) add(step *StepResult) {
	res.Steps = append(res.Steps, step)
	res.Report.Add(step.Assertions...)
	switch {
	case step.Skipped:
		res.Skipped++
	case step.Passed:
		res.Passed++
	default:
		res.Failed++
	}
}

// TrackedFields returns the fields propagated after each step of sc: the
// scenario's own list, else the configured one, else capture.DefaultFields.
func (c *Config) TrackedFields(sc *scenario.Scenario) []string {
	if len(sc.Track) > 0 {
		return sc.Track
	}
	if c != nil && len(c.Track) > 0 {
		return c.Track
	}
	return capture.DefaultFields
}

// UseStandardChecks reports whether steps of sc get the standard checks:
// the scenario's setting, else the configured one, else true.
func (c *Config) UseStandardChecks(sc *scenario.Scenario) bool {
	if sc.StandardChecks != nil {
		return *sc.StandardChecks
	}
	if c != nil && c.StandardChecks != nil {
		return *c.StandardChecks
	}
	return true
}

func (r *Runner) runStep(ctx context.Context, sc *scenario.Scenario, step *scenario.Step, store *env.Store, tracked []string, standard bool) *StepResult {
	log := r.log.With(zap.String("scenario", sc.Name), zap.String("step", step.Name))
	result := &StepResult{Name: step.Name}

	start := time.Now()
	req := BuildRequest(step, store)
	result.Request = req

	resp, err := r.exchanger.Exchange(ctx, step, req)
	result.Duration = time.Since(start)
	if err == nil && resp == nil {
		err = fmt.Errorf("step %q: %w", step.Name, ErrNoResponse)
	}
	if err != nil {
		log.Warn("exchange failed", zap.String("request", req.Line()), zap.Error(err))
		result.Error = err
		return result
	}
	result.Response = resp

	parsed := capture.ParseJSON(resp.Body)
	if parsed.Failed() {
		log.Debug("response body treated as empty", zap.Error(parsed.Err))
		result.ParseError = parsed.Err
	}

	checks := step.Checks(standard)
	result.Assertions = make([]*assertions.Result, 0, len(checks))
	for _, c := range checks {
		result.Assertions = append(result.Assertions, Evaluate(c, resp, parsed, sc.Dir()))
	}

	result.Propagated = capture.PropagateAll(parsed.Body, step.Fields(tracked), store, log.Named("propagate"))

	result.Passed = true
	for _, a := range result.Assertions {
		if a.Failed() {
			result.Passed = false
			break
		}
	}
	return result
}

// BuildRequest resolves the step's templates against the store.
func BuildRequest(step *scenario.Step, store *env.Store) *http.Request {
	req := http.NewRequest(step.Method, store.Resolve(step.Path))
	req.Step = step.Name
	for k, v := range store.ResolveAll(step.Headers) {
		req.SetHeader(k, v)
	}
	req.SetBody(store.Resolve(step.Body))
	return req
}

// Evaluate runs a single check against a captured response.
func Evaluate(c *scenario.Check, resp *http.Response, parsed capture.ParseResult, baseDir string) *assertions.Result {
	switch c.Kind() {
	case scenario.KindStatus:
		return assertions.StatusSuccess(c.Name, resp)
	case scenario.KindHeader:
		return assertions.HeaderContains(c.Name, resp, c.Header, c.Contains)
	case scenario.KindJSONBody:
		return assertions.JSONBody(c.Name, parsed)
	case scenario.KindFieldEquals:
		return assertions.FieldEquals(c.Name, parsed.Body, c.Field, c.Equals.Value, c.When)
	case scenario.KindFieldExists:
		return assertions.FieldExists(c.Name, parsed.Body, c.Field)
	case scenario.KindSchema:
		return assertions.Schema(c.Name, parsed, c.Schema, baseDir)
	default:
		return &assertions.Result{Name: c.Name, Message: "invalid check"}
	}
}
