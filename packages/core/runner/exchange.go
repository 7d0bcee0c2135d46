package runner

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"

	"github.com/abdul-hamid-achik/paychain/packages/core/scenario"
	"github.com/abdul-hamid-achik/paychain/packages/http"
)

var (
	ErrNoRecordedResponse = errors.New("no recorded response")
	ErrNoResponse         = errors.New("exchanger returned no response")
)

// Exchanger performs a step's request and returns the captured response.
// The runner waits for each exchange before starting the next step.
type Exchanger interface {
	Exchange(ctx context.Context, step *scenario.Step, req *http.Request) (*http.Response, error)
}

// ExchangerFunc adapts a function to the Exchanger interface.
type ExchangerFunc func(ctx context.Context, step *scenario.Step, req *http.Request) (*http.Response, error)

func (f ExchangerFunc) Exchange(ctx context.Context, step *scenario.Step, req *http.Request) (*http.Response, error) {
	return f(ctx, step, req)
}

// ReplayExchanger answers every step with the response recorded in the
// scenario file.
type ReplayExchanger struct{}

func (ReplayExchanger) Exchange(ctx context.Context, step *scenario.Step, req *http.Request) (*http.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec := step.Response
	if rec == nil {
		return nil, fmt.Errorf("step %q: %w", step.Name, ErrNoRecordedResponse)
	}

	body, err := rec.Bytes()
	if err != nil {
		return nil, fmt.Errorf("step %q: %w", step.Name, err)
	}

	headers := make(map[string]string, len(rec.Headers))
	for k, v := range rec.Headers {
		headers[k] = v
	}

	return &http.Response{
		StatusCode: rec.Status,
		Status:     fmt.Sprintf("%d %s", rec.Status, nethttp.StatusText(rec.Status)),
		Headers:    headers,
		Body:       body,
	}, nil
}
