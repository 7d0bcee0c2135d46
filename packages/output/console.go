package output

import (
	"fmt"
	"io"
	"os"

	"github.com/abdul-hamid-achik/paychain/packages/core/runner"
	"github.com/fatih/color"
)

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		if w != nil {
			f.writer = w
		}
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatResult(result *runner.RunResult) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "\n%s\n", bold("Scenario: "+result.Scenario))
	if result.File != "" {
		fmt.Fprintf(f.writer, "%s\n", cyan(result.File))
	}
	fmt.Fprintf(f.writer, "\n")

	for _, s := range result.Steps {
		if s.Skipped {
			fmt.Fprintf(f.writer, "  %s %s", yellow("-"), s.Name)
			if s.SkipReason != "" {
				fmt.Fprintf(f.writer, " (%s)", s.SkipReason)
			}
			fmt.Fprintf(f.writer, "\n")
			continue
		}

		if s.Error != nil {
			fmt.Fprintf(f.writer, "  %s %s %s\n", red("x"), s.Name, red(fmt.Sprintf("(%v)", s.Error)))
			continue
		}

		symbol := green("✓")
		if !s.Passed {
			symbol = red("✗")
		}
		fmt.Fprintf(f.writer, "  %s %s %s\n", symbol, s.Name, cyan(fmt.Sprintf("(%dms)", s.Duration.Milliseconds())))

		if f.verbose && s.Request != nil {
			fmt.Fprintf(f.writer, "    %s\n", s.Request.Line())
		}
		if f.verbose && s.Response != nil {
			fmt.Fprintf(f.writer, "    Status: %d", s.Response.StatusCode)
			if ct := s.Response.ContentType(); ct != "" {
				fmt.Fprintf(f.writer, " (%s)", ct)
			}
			fmt.Fprintf(f.writer, "\n")
		}

		for _, a := range s.Assertions {
			switch {
			case a.Skipped:
				if f.verbose {
					fmt.Fprintf(f.writer, "    %s %s\n", yellow("-"), a.Name)
				}
			case a.Passed:
				if f.verbose {
					fmt.Fprintf(f.writer, "    %s %s\n", green("✓"), a.Name)
				}
			default:
				fmt.Fprintf(f.writer, "    %s %s\n", red("→"), a.Name)
				if a.Expected != nil || a.Actual != nil {
					fmt.Fprintf(f.writer, "      Expected: %s\n", formatValue(a.Expected, 100))
					fmt.Fprintf(f.writer, "      Actual:   %s\n", formatValue(a.Actual, 100))
				}
				if a.Message != "" {
					fmt.Fprintf(f.writer, "      %s\n", a.Message)
				}
			}
		}

		if f.verbose && len(s.Propagated) > 0 {
			fmt.Fprintf(f.writer, "    Variables:\n")
			for _, name := range sortedKeys(s.Propagated) {
				fmt.Fprintf(f.writer, "      {{%s}} = %s\n", name, s.Propagated[name])
			}
		}
	}

	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Steps:      ")
	if result.Passed > 0 {
		fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d passed", result.Passed)))
	}
	if result.Failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d failed", result.Failed)))
	}
	if result.Skipped > 0 {
		fmt.Fprintf(f.writer, "%s, ", yellow(fmt.Sprintf("%d skipped", result.Skipped)))
	}
	fmt.Fprintf(f.writer, "%d total\n", len(result.Steps))

	if report := result.Report; report != nil {
		fmt.Fprintf(f.writer, "Assertions: %d passed, %d failed, %d skipped\n",
			report.Passed(), report.Failed(), report.Skipped())
	}
	fmt.Fprintf(f.writer, "Time:       %dms\n", result.Duration.Milliseconds())
	fmt.Fprintf(f.writer, "\n")
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("paychain"), version)
}
