// Package builtin provides the functions callable from request templates.
//
// Available functions:
//   - uuid(): Random UUID v4, handy for idempotency keys
//   - now(), date(layout): Current time, RFC 3339 or a Go layout
//   - timestamp(), timestampMs(): Current Unix time
//   - random(min, max): Random integer in range
//   - randomString(length): Random alphanumeric string
//   - base64(value): Base64 encode a string
//
// Functions are invoked using the {{functionName(args)}} syntax.
package builtin
