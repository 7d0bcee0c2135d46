package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/abdul-hamid-achik/paychain/packages/core/config"
	"github.com/abdul-hamid-achik/paychain/packages/core/env"
	"github.com/abdul-hamid-achik/paychain/packages/core/runner"
	"github.com/abdul-hamid-achik/paychain/packages/core/scenario"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <file|directory>...",
	Short: "List the steps of each scenario",
	Long: `List every scenario and its steps, with the checks each step runs.

Examples:
  paychain list scenarios/confirm_false.yaml
  paychain list ./scenarios/ --checks`,
	Args: cobra.MinimumNArgs(1),
	RunE: listCommand,
}

var (
	listChecksFlag           bool
	listConfigFlag           string
	listNoStandardChecksFlag bool
)

func init() {
	listCmd.Flags().BoolVar(&listChecksFlag, "checks", false, "Also list the checks of every step")
	listCmd.Flags().StringVar(&listConfigFlag, "config", "", "Path to config file (default: .paychain.json in the current directory)")
	listCmd.Flags().BoolVar(&listNoStandardChecksFlag, "no-standard-checks", false, "List checks as run with --no-standard-checks")
}

// listRunnerConfig resolves tracked fields and standard checks the same
// way run does: config file and environment, then flags.
func listRunnerConfig(cmd *cobra.Command) (*runner.Config, error) {
	cfg, err := config.LoadConfig(listConfigFlag)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("no-standard-checks") {
		cfg.StandardChecks = config.BoolPtr(!listNoStandardChecksFlag)
	}
	return &runner.Config{Track: cfg.Track, StandardChecks: cfg.StandardChecks}, nil
}

func listCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	rc, err := listRunnerConfig(cmd)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	out := cmd.OutOrStdout()
	for _, file := range files {
		sc, err := scenario.LoadFile(file)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error parsing %s: %v\n", file, err)
			continue
		}

		fmt.Fprintf(out, "\n%s: %s\n", file, sc.Name)

		store := env.NewStore()
		store.SetAll(sc.Variables)
		for _, step := range sc.Steps {
			fmt.Fprintf(out, "  - %s (%s)\n", step.Name, step.Endpoint())
			if needs := stepInputs(store, step); len(needs) > 0 {
				fmt.Fprintf(out, "    uses: %s\n", strings.Join(needs, ", "))
			}
			if step.Skip != "" {
				fmt.Fprintf(out, "    skip: %s\n", step.Skip)
			}
			if fields := step.Fields(rc.TrackedFields(sc)); len(fields) > 0 {
				fmt.Fprintf(out, "    track: %s\n", strings.Join(fields, ", "))
			}
			if listChecksFlag {
				for _, c := range step.Checks(rc.UseStandardChecks(sc)) {
					fmt.Fprintf(out, "      %s\n", c.Name)
				}
			}
		}
	}

	return nil
}

// stepInputs lists the variables a step reads that the scenario does not
// define itself: values propagated by earlier steps or supplied by config.
func stepInputs(store *env.Store, step *scenario.Step) []string {
	var b strings.Builder
	b.WriteString(step.Path)
	b.WriteString(step.Body)
	for k, v := range step.Headers {
		b.WriteString(k)
		b.WriteString(v)
	}
	needs := store.Unresolved(b.String())
	slices.Sort(needs)
	return needs
}
