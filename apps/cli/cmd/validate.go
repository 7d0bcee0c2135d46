package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/paychain/packages/core/scenario"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file|directory>...",
	Short: "Validate scenario files without running them",
	Long: `Validate scenario files for syntax and structure errors without
running them. Every step needs a method and a path, and every check
must name exactly one kind.

Examples:
  paychain validate scenarios/confirm_false.yaml
  paychain validate ./scenarios/`,
	Args: cobra.MinimumNArgs(1),
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	hasErrors := false
	for _, file := range files {
		sc, err := scenario.LoadFile(file)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error in %s: %v\n", file, err)
			hasErrors = true
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s (%d steps)\n", file, len(sc.Steps))
	}

	if hasErrors {
		return withExitCode(ExitParseError, fmt.Errorf("validation failed"))
	}

	return nil
}
