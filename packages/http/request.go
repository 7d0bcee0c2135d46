package http

import "strings"

// Request is a step's request after every {{variable}} placeholder has
// been resolved. It is handed to the exchanger as-is.
type Request struct {
	Step    string
	Method  string
	URL     string
	Headers map[string]string
	Body    string
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method:  strings.ToUpper(method),
		URL:     requestURL,
		Headers: make(map[string]string),
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

func (r *Request) SetBody(body string) *Request {
	r.Body = body
	return r
}

// Line renders the request as "METHOD URL".
func (r *Request) Line() string {
	return r.Method + " " + r.URL
}
