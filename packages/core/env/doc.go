// Package env holds the scenario variable store and the sources that seed it.
//
// It provides functionality for:
//   - The scenario-scoped Store that threads identifiers between steps
//   - Variable interpolation using {{variable}} syntax
//   - Built-in function evaluation (uuid, timestamp, random, etc.)
//   - Loading .env files and --var assignments
package env
