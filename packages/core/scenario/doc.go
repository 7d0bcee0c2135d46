// Package scenario loads YAML scenario files.
//
// A scenario names the fields to track between steps, seeds variables,
// and lists steps. Each step is a request template plus the checks to run
// against its response, and optionally a recorded response for replay.
package scenario
