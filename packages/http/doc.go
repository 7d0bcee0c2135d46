// Package http holds the request and response values exchanged by a
// scenario step.
//
// paychain does not send requests itself. An external client performs
// the exchange and its result is captured into a Response, either
// directly or through FromHTTP for net/http responses.
package http
