package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/paychain/packages/core/config"
	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new paychain project",
	Long: `Initialize a new paychain project in the current directory.

This creates:
  - .paychain.json                    - Configuration file
  - scenarios/create_and_confirm.yaml - Example scenario with recorded responses

Examples:
  paychain init
  paychain init --force`,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

const exampleScenario = `name: Create and confirm a payment
description: Creates a payment with confirm false, then confirms it.
variables:
  baseUrl: https://sandbox.example.com
steps:
  - name: Payments - Create
    method: POST
    path: "{{baseUrl}}/payments"
    headers:
      Content-Type: application/json
      api-key: "{{api_key}}"
      Idempotency-Key: "{{uuid()}}"
    body: '{"amount": 6540, "currency": "USD", "confirm": false, "customer_id": "cus_{{randomString(8)}}"}'
    expect:
      - field: status
        equals: requires_payment_method
    response:
      status: 200
      headers:
        Content-Type: application/json
      body:
        payment_id: pay_example_123
        client_secret: pay_example_123_secret_abc
        status: requires_payment_method
        amount: 6540

  - name: Payments - Confirm
    method: POST
    path: "{{baseUrl}}/payments/{{payment_id}}/confirm"
    headers:
      Content-Type: application/json
      api-key: "{{api_key}}"
    body: '{"client_secret": "{{client_secret}}"}'
    expect:
      - field: status
        equals: succeeded
      - field: amount
        equals: 6540
      - field: amount_capturable
        equals: 0
        when: amount
      - field: connector_transaction_id
        exists: true
    response:
      status: 200
      headers:
        Content-Type: application/json
      body:
        payment_id: pay_example_123
        status: succeeded
        amount: 6540
        amount_capturable: 0
        connector_transaction_id: txn_example_1
`

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, config.ConfigFilenames[0])
	exampleFile := filepath.Join(cwd, "scenarios", "create_and_confirm.yaml")

	if !forceInit {
		for _, f := range []string{configFile, exampleFile} {
			if _, err := os.Stat(f); err == nil {
				return withExitCode(ExitUsageError, fmt.Errorf("file already exists: %s (use --force to overwrite)", f))
			}
		}
	}

	defaults := config.DefaultConfig()
	configContent := map[string]any{
		"output":          defaults.Output,
		"log_level":       defaults.LogLevel,
		"track":           defaults.Track,
		"standard_checks": defaults.GetStandardChecks(),
		"variables": map[string]string{
			"api_key": "snd_test_key",
		},
	}

	configJSON, err := json.MarshalIndent(configContent, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(configFile, append(configJSON, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	if err := os.MkdirAll(filepath.Dir(exampleFile), 0755); err != nil {
		return fmt.Errorf("failed to create scenarios directory: %w", err)
	}
	if err := os.WriteFile(exampleFile, []byte(exampleScenario), 0644); err != nil {
		return fmt.Errorf("failed to create example file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", exampleFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\npaychain project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'paychain run scenarios/' to replay the example scenario.\n")

	return nil
}
