// Package cmd implements the paychain CLI commands using Cobra.
//
// Available commands:
//   - run: Replay scenarios, checking every response and propagating ids
//   - validate: Check scenario files without running them
//   - list: Display the steps of each scenario
//   - init: Create a config file and an example scenario
//   - version: Show paychain version information
//   - completion: Generate shell completion scripts
//
// Exit codes are listed in exitcodes.go.
package cmd
