package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/paychain/packages/core/config"
	"github.com/abdul-hamid-achik/paychain/packages/core/env"
	"github.com/abdul-hamid-achik/paychain/packages/core/logging"
	"github.com/abdul-hamid-achik/paychain/packages/core/runner"
	"github.com/abdul-hamid-achik/paychain/packages/core/scenario"
	"github.com/abdul-hamid-achik/paychain/packages/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run <file|directory>...",
	Short: "Run payment API scenarios",
	Long: `Run the scenarios defined in .yaml or .yml files. Each step is answered
with the response recorded in the scenario file.

Examples:
  paychain run scenarios/confirm_false.yaml
  paychain run ./scenarios/ --env-file .env
  paychain run ./scenarios/ --var api_key=snd_test --output junit --output-file report.xml
  paychain run ./scenarios/ --watch -v`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	configFlag       string
	envFileFlag      string
	varFlags         []string
	trackFlag        []string
	outputFlag       string
	outputFileFlag   string
	logLevelFlag     string
	verboseFlag      bool
	noColorFlag      bool
	noStandardChecks bool
	watchFlag        bool
)

func init() {
	runCmd.Flags().StringVar(&configFlag, "config", "", "Path to config file (default: .paychain.json in the current directory)")
	runCmd.Flags().StringVar(&envFileFlag, "env-file", "", "Path to .env file for variable interpolation")
	runCmd.Flags().StringArrayVar(&varFlags, "var", nil, "Set a variable (key=value), overrides scenario variables")
	runCmd.Flags().StringSliceVar(&trackFlag, "track", nil, "Fields to propagate when a scenario does not list its own")

	runCmd.Flags().StringVarP(&outputFlag, "output", "o", "console", "Output format: console, json, junit")
	runCmd.Flags().StringVar(&outputFileFlag, "output-file", "", "Write output to file (default: stdout)")
	runCmd.Flags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	runCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Verbose output, including propagated variables")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")

	runCmd.Flags().BoolVar(&noStandardChecks, "no-standard-checks", false, "Do not add the status, content type and JSON body checks to every step")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch files for changes and re-run scenarios")
}

// flagConfig collects the flags the user actually set, so that Merge only
// overrides the file config where a flag was given.
func flagConfig(cmd *cobra.Command) *config.Config {
	flags := cmd.Flags()
	cfg := &config.Config{}
	if flags.Changed("output") {
		cfg.Output = outputFlag
	}
	if flags.Changed("output-file") {
		cfg.OutputFile = outputFileFlag
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevelFlag
	}
	if flags.Changed("env-file") {
		cfg.EnvFile = envFileFlag
	}
	if flags.Changed("track") {
		cfg.Track = trackFlag
	}
	if flags.Changed("verbose") {
		cfg.Verbose = config.BoolPtr(verboseFlag)
	}
	if flags.Changed("no-color") {
		cfg.NoColor = config.BoolPtr(noColorFlag)
	}
	if flags.Changed("no-standard-checks") {
		cfg.StandardChecks = config.BoolPtr(!noStandardChecks)
	}
	return cfg
}

// logLevel picks the configured level, raised to info in verbose mode
// unless a level was set explicitly.
func logLevel(cfg *config.Config, explicit bool) string {
	if !explicit && cfg.GetVerbose() && cfg.LogLevel == config.DefaultConfig().LogLevel {
		return "info"
	}
	return cfg.LogLevel
}

// session holds everything a run needs that does not change between
// re-runs in watch mode.
type session struct {
	cfg       *config.Config
	files     []string
	variables map[string]string
	runner    *runner.Runner
}

// runSummary counts steps across every scenario of one pass.
type runSummary struct {
	Scenarios   int
	Passed      int
	Failed      int
	Skipped     int
	ParseErrors int
	Duration    time.Duration
}

func (s runSummary) exitCode() int {
	switch {
	case s.ParseErrors > 0:
		return ExitParseError
	case s.Failed > 0:
		return ExitTestFailure
	default:
		return ExitSuccess
	}
}

func runCommand(cmd *cobra.Command, args []string) error {
	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}
	cfg := fileConfig.Merge(flagConfig(cmd))

	log, err := logging.New(logging.Options{
		Level:   logLevel(cfg, cmd.Flags().Changed("log-level")),
		NoColor: cfg.GetNoColor(),
		Writer:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}
	defer func() { _ = log.Sync() }()

	files, err := collectFiles(args)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	variables, err := seedVariables(cfg)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	s := &session{
		cfg:       cfg,
		files:     files,
		variables: variables,
		runner: runner.NewRunner(runner.ReplayExchanger{}, &runner.Config{
			Track:          cfg.Track,
			StandardChecks: cfg.StandardChecks,
			Overrides:      env.ParseAssignments(varFlags),
		}, log),
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.ContextWithLogger(ctx, log)

	summary, err := s.runOnce(ctx, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	if watchFlag {
		return s.watch(ctx, cmd.OutOrStdout(), args)
	}

	if code := summary.exitCode(); code != ExitSuccess {
		return withExitCode(code, fmt.Errorf("%d step(s) failed, %d scenario file(s) could not be loaded",
			summary.Failed, summary.ParseErrors))
	}
	return nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// seedVariables merges config variables with the .env file, if any. The
// .env values are also exported for {{$NAME}} placeholders.
func seedVariables(cfg *config.Config) (map[string]string, error) {
	if cfg.EnvFile == "" {
		return env.MergeVariables(cfg.Variables), nil
	}
	dotenv, err := env.LoadAndExportDotEnv(cfg.EnvFile)
	if err != nil {
		return nil, err
	}
	return env.MergeVariables(cfg.Variables, dotenv), nil
}

// runOnce runs every file with a fresh formatter and a fresh store per
// scenario. The returned error is only set when output could not be
// produced at all.
func (s *session) runOnce(ctx context.Context, stdout io.Writer) (runSummary, error) {
	var summary runSummary
	log := logging.FromContext(ctx)

	w := stdout
	if s.cfg.OutputFile != "" {
		f, err := os.Create(s.cfg.OutputFile)
		if err != nil {
			return summary, withExitCode(ExitConfigError, fmt.Errorf("cannot create output file: %w", err))
		}
		defer f.Close()
		w = f
	}

	formatter, err := output.New(s.cfg.Output, w, s.cfg.GetVerbose(), s.cfg.GetNoColor())
	if err != nil {
		return summary, withExitCode(ExitConfigError, err)
	}
	formatter.FormatHeader(version)

	start := time.Now()
	for _, file := range s.files {
		if ctx.Err() != nil {
			break
		}

		sc, err := scenario.LoadFile(file)
		if err != nil {
			summary.ParseErrors++
			formatter.FormatError(err)
			log.Error("loading scenario", zap.String("file", file), zap.Error(err))
			continue
		}

		store := env.NewStore()
		store.SetAll(s.variables)

		result, err := s.runner.Run(ctx, sc, store)
		if result != nil {
			summary.Scenarios++
			summary.Passed += result.Passed
			summary.Failed += result.Failed
			summary.Skipped += result.Skipped
			formatter.FormatResult(result)
		}
		if err != nil {
			formatter.FormatError(err)
			break
		}
	}
	summary.Duration = time.Since(start)

	if flushable, ok := formatter.(output.Flushable); ok {
		if err := flushable.Flush(summary.Duration); err != nil {
			return summary, withExitCode(ExitTestFailure, fmt.Errorf("error writing output: %w", err))
		}
	}

	return summary, nil
}
