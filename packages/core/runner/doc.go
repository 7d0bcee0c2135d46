// Package runner executes scenarios step by step.
//
// For every step the runner:
//   - Resolves {{variable}} placeholders from the scenario's store
//   - Hands the request to an Exchanger and waits for the response
//   - Parses the body, treating anything but a JSON object as empty
//   - Runs the step's checks, each independent of the others
//   - Propagates tracked fields into the store for later steps
//
// Steps run strictly in order because later requests depend on values
// captured by earlier ones. ReplayExchanger serves the responses recorded
// in the scenario file.
package runner
