package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/abdul-hamid-achik/paychain/packages/core/config"
	"github.com/abdul-hamid-achik/paychain/packages/core/logging"
	"github.com/abdul-hamid-achik/paychain/packages/core/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const brokenScenario = `name: broken
steps: []
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, exitCode(nil))
	assert.Equal(t, ExitParseError, exitCode(withExitCode(ExitParseError, errors.New("bad"))))
	assert.Equal(t, ExitConfigError, exitCode(fmt.Errorf("wrapped: %w", withExitCode(ExitConfigError, errors.New("bad")))))
	assert.Equal(t, ExitUsageError, exitCode(errors.New("accepts 1 arg(s), received 0")))
	assert.Nil(t, withExitCode(ExitTestFailure, nil))
}

func TestRunSummaryExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, runSummary{Passed: 3}.exitCode())
	assert.Equal(t, ExitTestFailure, runSummary{Passed: 2, Failed: 1}.exitCode())
	assert.Equal(t, ExitParseError, runSummary{Failed: 1, ParseErrors: 1}.exitCode())
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.yaml", exampleScenario)
	b := writeFile(t, dir, "nested/b.yml", exampleScenario)
	writeFile(t, dir, "schemas/payment.json", "{}")
	explicit := writeFile(t, t.TempDir(), "scenario.txt", exampleScenario)

	files, err := collectFiles([]string{dir, explicit})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b, explicit}, files)

	_, err = collectFiles([]string{t.TempDir()})
	assert.ErrorIs(t, err, errNoScenarioFiles)

	_, err = collectFiles([]string{filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)
}

func TestWatchDirs(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.yaml", exampleScenario)
	writeFile(t, dir, "nested/b.yaml", exampleScenario)

	dirs := watchDirs([]string{a}, []string{dir})
	assert.Equal(t, []string{dir, filepath.Join(dir, "nested")}, dirs)
}

func TestLogLevel(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.Equal(t, "warn", logLevel(cfg, false))

	cfg.Verbose = config.BoolPtr(true)
	assert.Equal(t, "info", logLevel(cfg, false))

	cfg.LogLevel = "error"
	assert.Equal(t, "error", logLevel(cfg, true))
}

func newTestSession(t *testing.T, cfg *config.Config, files ...string) *session {
	t.Helper()
	return &session{
		cfg:       cfg,
		files:     files,
		variables: map[string]string{"api_key": "snd_test_key"},
		runner:    runner.NewRunner(runner.ReplayExchanger{}, &runner.Config{}, zap.NewNop()),
	}
}

func TestSessionRunOnce(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", exampleScenario)

	cfg := config.DefaultConfig()
	cfg.NoColor = config.BoolPtr(true)

	var out bytes.Buffer
	summary, err := newTestSession(t, cfg, good).runOnce(context.Background(), &out)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Scenarios)
	assert.Equal(t, 2, summary.Passed)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, ExitSuccess, summary.exitCode())
	assert.Contains(t, out.String(), "Scenario: Create and confirm a payment")
}

func TestSessionRunOnce_ParseError(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", exampleScenario)
	broken := writeFile(t, dir, "broken.yaml", brokenScenario)

	cfg := config.DefaultConfig()
	cfg.NoColor = config.BoolPtr(true)

	core, logs := observer.New(zapcore.ErrorLevel)
	ctx := logging.ContextWithLogger(context.Background(), zap.New(core))

	var out bytes.Buffer
	summary, err := newTestSession(t, cfg, broken, good).runOnce(ctx, &out)
	require.NoError(t, err)

	entries := logs.FilterMessage("loading scenario").All()
	require.Len(t, entries, 1)
	assert.Equal(t, broken, entries[0].ContextMap()["file"])

	assert.Equal(t, 1, summary.ParseErrors)
	assert.Equal(t, 1, summary.Scenarios)
	assert.Equal(t, ExitParseError, summary.exitCode())
	assert.Contains(t, out.String(), "Error:")
}

func TestSessionRunOnce_JSONToFile(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", exampleScenario)

	cfg := config.DefaultConfig()
	cfg.Output = "json"
	cfg.OutputFile = filepath.Join(dir, "report.json")

	var out bytes.Buffer
	_, err := newTestSession(t, cfg, good).runOnce(context.Background(), &out)
	require.NoError(t, err)
	assert.Empty(t, out.String())

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"payment_id": "pay_example_123"`)
}

func TestSessionRunOnce_UnknownFormat(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Output = "tap"

	_, err := newTestSession(t, cfg).runOnce(context.Background(), &bytes.Buffer{})
	assert.Equal(t, ExitConfigError, exitCode(err))
}

func TestSeedVariables(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "api_key=from_dotenv\nmerchant_id=merchant_1\n")
	t.Setenv("api_key", "")
	t.Setenv("merchant_id", "")

	cfg := config.DefaultConfig()
	cfg.Variables = map[string]string{"api_key": "from_config", "profile_id": "pro_1"}
	cfg.EnvFile = envFile

	vars, err := seedVariables(cfg)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"api_key":     "from_dotenv",
		"merchant_id": "merchant_1",
		"profile_id":  "pro_1",
	}, vars)

	assert.Equal(t, "merchant_1", os.Getenv("merchant_id"))

	cfg.EnvFile = filepath.Join(dir, "missing.env")
	_, err = seedVariables(cfg)
	assert.Error(t, err)
}

func TestListCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.yaml", exampleScenario)

	var out bytes.Buffer
	listCmd.SetOut(&out)
	listChecksFlag = true
	t.Cleanup(func() { listChecksFlag = false })

	require.NoError(t, listCommand(listCmd, []string{dir}))

	got := out.String()
	assert.Contains(t, got, "Create and confirm a payment")
	assert.Contains(t, got, "  - Payments - Confirm (/payments/:payment_id/confirm)")
	assert.Contains(t, got, "    uses: api_key, client_secret, payment_id")
	assert.Contains(t, got, "[POST]::/payments/:payment_id/confirm - Status code is 2xx")
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.yaml", exampleScenario)
	writeFile(t, dir, "broken.yaml", brokenScenario)

	var out, errOut bytes.Buffer
	validateCmd.SetOut(&out)
	validateCmd.SetErr(&errOut)

	err := validateCommand(validateCmd, []string{dir})
	assert.Equal(t, ExitParseError, exitCode(err))
	assert.Contains(t, out.String(), "good.yaml (2 steps)")
	assert.Contains(t, errOut.String(), "broken.yaml")
}

func TestListCommand_FollowsStandardChecksSetting(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.yaml", exampleScenario)
	cfgPath := writeFile(t, t.TempDir(), "paychain.json", `{"standard_checks": false, "track": ["payment_id"]}`)

	listChecksFlag = true
	listConfigFlag = cfgPath
	t.Cleanup(func() {
		listChecksFlag = false
		listConfigFlag = ""
	})

	var out bytes.Buffer
	listCmd.SetOut(&out)
	require.NoError(t, listCommand(listCmd, []string{dir}))

	got := out.String()
	assert.NotContains(t, got, "Status code is 2xx")
	assert.Contains(t, got, "Content check if value for 'status' matches 'succeeded'")
	assert.Contains(t, got, "    track: payment_id\n")
}
