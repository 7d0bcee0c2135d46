package runner

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/abdul-hamid-achik/paychain/packages/capture"
	"github.com/abdul-hamid-achik/paychain/packages/core/env"
	"github.com/abdul-hamid-achik/paychain/packages/core/scenario"
	"github.com/abdul-hamid-achik/paychain/packages/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       []byte(body),
	}
}

func parseScenario(t *testing.T, doc string) *scenario.Scenario {
	t.Helper()
	sc, err := scenario.Parse([]byte(doc), "inline.yaml")
	require.NoError(t, err)
	return sc
}

const chainDoc = `
name: create and confirm
variables:
  baseUrl: http://api.test
steps:
  - name: Payments - Create
    method: POST
    path: "{{baseUrl}}/payments"
    body: '{"amount": 6540, "confirm": false}'
  - name: Payments - Confirm
    method: POST
    path: "{{baseUrl}}/payments/{{payment_id}}/confirm"
    body: '{"client_secret": "{{client_secret}}"}'
    expect:
      - field: amount
        equals: 6540
      - field: amount_capturable
        equals: 0
        when: amount
      - field: status
        equals: succeeded
      - field: connector_transaction_id
        exists: true
`

func TestRunner_PropagatesBetweenSteps(t *testing.T) {
	sc := parseScenario(t, chainDoc)

	var requests []*http.Request
	exchanger := ExchangerFunc(func(ctx context.Context, step *scenario.Step, req *http.Request) (*http.Response, error) {
		requests = append(requests, req)
		switch step.Name {
		case "Payments - Create":
			return jsonResponse(200, `{"payment_id":"pay_123","client_secret":"pay_123_secret","status":"requires_confirmation"}`), nil
		default:
			return jsonResponse(200, `{"payment_id":"pay_123","amount":6540,"amount_capturable":0,"status":"succeeded","connector_transaction_id":"txn_1"}`), nil
		}
	})

	core, logs := observer.New(zapcore.InfoLevel)
	r := NewRunner(exchanger, nil, zap.New(core))
	store := env.NewStore()

	result, err := r.Run(context.Background(), sc, store)
	require.NoError(t, err)

	require.Len(t, requests, 2)
	assert.Equal(t, "POST http://api.test/payments", requests[0].Line())
	assert.Equal(t, "POST http://api.test/payments/pay_123/confirm", requests[1].Line())
	assert.Equal(t, `{"client_secret": "pay_123_secret"}`, requests[1].Body)

	assert.Equal(t, 2, result.Passed)
	assert.Equal(t, 0, result.Failed)
	assert.True(t, result.Report.OK())
	assert.Equal(t, 10, result.Report.Passed(), "3 standard checks on create, 3 standard + 4 field checks on confirm")
	assert.NotEmpty(t, result.ID)

	assert.Equal(t, map[string]string{"payment_id": "pay_123", "client_secret": "pay_123_secret"}, result.Steps[0].Propagated)
	assert.Equal(t, "pay_123", result.Variables["payment_id"])
	assert.NotContains(t, result.Variables, "mandate_id")

	propagation := logs.Filter(func(e observer.LoggedEntry) bool { return e.LoggerName == "propagate" })
	assert.Equal(t, 6, propagation.Len(), "three tracked fields logged per step")
}

func TestRunner_FailedPaymentKeepsGoing(t *testing.T) {
	sc := parseScenario(t, chainDoc)

	exchanger := ExchangerFunc(func(ctx context.Context, step *scenario.Step, req *http.Request) (*http.Response, error) {
		if step.Name == "Payments - Create" {
			return jsonResponse(200, `{"payment_id":"pay_9"}`), nil
		}
		return jsonResponse(200, `{"amount":6540,"status":"failed"}`), nil
	})

	result, err := NewRunner(exchanger, nil, nil).Run(context.Background(), sc, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Failed)

	confirm := result.Steps[1]
	byName := make(map[string]bool)
	skipped := make(map[string]bool)
	for _, a := range confirm.Assertions {
		byName[a.Name] = a.Passed
		skipped[a.Name] = a.Skipped
	}
	prefix := "[POST]::/payments/:payment_id/confirm - "
	assert.True(t, byName[prefix+"Status code is 2xx"])
	assert.True(t, byName[prefix+"Content check if value for 'amount' matches '6540'"])
	assert.False(t, byName[prefix+"Content check if value for 'status' matches 'succeeded'"])
	assert.False(t, byName[prefix+"Content check if 'connector_transaction_id' exists"])
	assert.False(t, byName[prefix+"Content check if value for 'amount_capturable' matches '0'"])
	assert.False(t, skipped[prefix+"Content check if value for 'amount_capturable' matches '0'"],
		"amount is present, so the amount_capturable check runs and fails")
	assert.Equal(t, 3, result.Report.Failed())
}

func TestRunner_MalformedBody(t *testing.T) {
	sc := parseScenario(t, `
name: malformed
steps:
  - name: broken
    method: GET
    path: /payments/{{payment_id}}
    expect:
      - field: status
        equals: succeeded
`)
	exchanger := ExchangerFunc(func(ctx context.Context, step *scenario.Step, req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"payment_id": "pay_`), nil
	})

	store := env.NewStore()
	store.Set("payment_id", "pay_prev")

	result, err := NewRunner(exchanger, nil, nil).Run(context.Background(), sc, store)
	require.NoError(t, err)

	step := result.Steps[0]
	assert.Error(t, step.ParseError)
	assert.False(t, step.Passed, "the JSON body check fails")
	assert.Empty(t, step.Propagated)

	v, _ := store.Get("payment_id")
	assert.Equal(t, "pay_prev", v)

	last := step.Assertions[len(step.Assertions)-1]
	assert.True(t, last.Skipped, "field checks are skipped on an empty body")
}

func TestRunner_ExchangeErrorIsRecorded(t *testing.T) {
	sc := parseScenario(t, chainDoc)
	calls := 0
	exchanger := ExchangerFunc(func(ctx context.Context, step *scenario.Step, req *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("connection refused")
		}
		return jsonResponse(200, `{"amount":6540,"amount_capturable":0,"status":"succeeded","connector_transaction_id":"t"}`), nil
	})

	result, err := NewRunner(exchanger, nil, nil).Run(context.Background(), sc, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.EqualError(t, result.Steps[0].Error, "connection refused")
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, "POST http://api.test/payments/{{payment_id}}/confirm", result.Steps[1].Request.Line())
}

func TestRunner_NilResponseIsRecorded(t *testing.T) {
	sc := parseScenario(t, chainDoc)
	exchanger := ExchangerFunc(func(ctx context.Context, step *scenario.Step, req *http.Request) (*http.Response, error) {
		return nil, nil
	})

	store := env.NewStore()
	result, err := NewRunner(exchanger, nil, nil).Run(context.Background(), sc, store)
	require.NoError(t, err)

	require.Len(t, result.Steps, 2)
	for _, step := range result.Steps {
		assert.ErrorIs(t, step.Error, ErrNoResponse)
		assert.Nil(t, step.Response)
		assert.False(t, step.Passed)
	}
	assert.Equal(t, 2, result.Failed)
	assert.False(t, store.Has("payment_id"))
}

func TestRunner_Cancelled(t *testing.T) {
	sc := parseScenario(t, chainDoc)
	ctx, cancel := context.WithCancel(context.Background())

	exchanger := ExchangerFunc(func(ctx context.Context, step *scenario.Step, req *http.Request) (*http.Response, error) {
		cancel()
		return jsonResponse(200, `{"payment_id":"pay_1"}`), nil
	})

	result, err := NewRunner(exchanger, nil, nil).Run(ctx, sc, nil)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, result.Steps, 2)
	assert.True(t, result.Steps[1].Skipped)
	assert.Equal(t, "cancelled", result.Steps[1].SkipReason)
}

func TestRunner_SkipAndOverrides(t *testing.T) {
	sc := parseScenario(t, `
name: skip
standard_checks: false
track: [mandate_id]
variables:
  customer: cus_scenario
steps:
  - name: skipped
    method: GET
    path: /x
    skip: connector does not support mandates
  - name: customer
    method: GET
    path: /customers/{{customer}}
`)
	var seen string
	exchanger := ExchangerFunc(func(ctx context.Context, step *scenario.Step, req *http.Request) (*http.Response, error) {
		seen = req.URL
		return jsonResponse(200, `{"mandate_id":"man_1","payment_id":"pay_1"}`), nil
	})

	r := NewRunner(exchanger, &Config{Overrides: map[string]string{"customer": "cus_flag"}}, nil)
	result, err := r.Run(context.Background(), sc, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, "connector does not support mandates", result.Steps[0].SkipReason)
	assert.Equal(t, "/customers/cus_flag", seen)
	assert.Equal(t, map[string]string{"mandate_id": "man_1"}, result.Steps[1].Propagated)
	assert.Empty(t, result.Steps[1].Assertions)
	assert.True(t, result.Steps[1].Passed)
}

func TestRunner_ReplayTestdata(t *testing.T) {
	sc, err := scenario.LoadFile(filepath.Join("..", "scenario", "testdata", "confirm_false.yaml"))
	require.NoError(t, err)

	result, err := NewRunner(ReplayExchanger{}, nil, nil).Run(context.Background(), sc, nil)
	require.NoError(t, err)

	for _, step := range result.Steps {
		for _, a := range step.Assertions {
			assert.True(t, a.Passed, "%s: %s", a.Name, a.Message)
		}
	}
	assert.Equal(t, 3, result.Passed)
	assert.Equal(t, "https://sandbox.example.com/payments/pay_123", result.Steps[2].Request.URL)
	assert.Equal(t, "snd_test_key", result.Steps[0].Request.Headers["api-key"])
}

func TestReplayExchanger_NoRecordedResponse(t *testing.T) {
	_, err := ReplayExchanger{}.Exchange(context.Background(), &scenario.Step{Name: "s"}, http.NewRequest("GET", "/"))
	assert.ErrorIs(t, err, ErrNoRecordedResponse)
}

func TestReplayExchanger_Raw(t *testing.T) {
	raw := "<html>bad gateway</html>"
	step := &scenario.Step{Name: "s", Response: &scenario.Recorded{Status: 502, Raw: &raw}}

	resp, err := ReplayExchanger{}.Exchange(context.Background(), step, http.NewRequest("GET", "/"))
	require.NoError(t, err)
	assert.Equal(t, 502, resp.StatusCode)
	assert.Equal(t, "502 Bad Gateway", resp.Status)
	assert.Equal(t, raw, resp.BodyString())
}

func TestConfig_Precedence(t *testing.T) {
	sc := &scenario.Scenario{}

	var nilConfig *Config
	assert.Equal(t, capture.DefaultFields, nilConfig.TrackedFields(sc))
	assert.True(t, nilConfig.UseStandardChecks(sc))

	cfg := &Config{Track: []string{"refund_id"}, StandardChecks: boolPtr(false)}
	assert.Equal(t, []string{"refund_id"}, cfg.TrackedFields(sc))
	assert.False(t, cfg.UseStandardChecks(sc))

	sc.Track = []string{"mandate_id"}
	sc.StandardChecks = boolPtr(true)
	assert.Equal(t, []string{"mandate_id"}, cfg.TrackedFields(sc))
	assert.True(t, cfg.UseStandardChecks(sc))
}

func boolPtr(b bool) *bool {
	return &b
}
