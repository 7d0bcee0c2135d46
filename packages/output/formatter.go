package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/paychain/packages/core/runner"
)

// Formatter interface for all output formatters
type Formatter interface {
	FormatResult(result *runner.RunResult)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable is implemented by formatters that accumulate results and
// write them in one go.
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// Formats lists the names accepted by New.
var Formats = []string{"console", "json", "junit"}

// New returns the formatter registered under name.
func New(name string, w io.Writer, verbose, noColor bool) (Formatter, error) {
	switch strings.ToLower(name) {
	case "", "console":
		return NewConsoleFormatter(
			WithWriter(w),
			WithVerbose(verbose),
			WithNoColor(noColor),
		), nil
	case "json":
		return NewJSONFormatter(JSONWithWriter(w)), nil
	case "junit":
		return NewJUnitFormatter(JUnitWithWriter(w)), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want one of %s)", name, strings.Join(Formats, ", "))
	}
}

// formatValue formats a value for display, truncating or summarizing large values
func formatValue(v any, maxLen int) string {
	switch val := v.(type) {
	case nil:
		return "undefined"
	case []any:
		return fmt.Sprintf("[array with %d items]", len(val))
	case map[string]any:
		return fmt.Sprintf("{object with %d keys}", len(val))
	case string:
		v = fmt.Sprintf("%q", val)
	}
	str := fmt.Sprintf("%v", v)
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}
