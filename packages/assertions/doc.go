// Package assertions checks captured responses.
//
// Supported assertions:
//   - Status code is 2xx
//   - Header contains a substring (Content-Type contains application/json)
//   - Body is a JSON object
//   - Field equals a value, skipped when the field is undefined
//   - Field exists
//   - Body matches a JSON Schema
//
// Each assertion is independent and returns a Result; none of them stops
// the others from running. A Report gathers the results of a run.
package assertions
