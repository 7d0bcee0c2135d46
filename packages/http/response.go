package http

import (
	"fmt"
	"io"
	nethttp "net/http"
	"strings"
	"time"
)

// Response is a captured HTTP response. It is created once per exchange
// and is not modified afterwards.
type Response struct {
	StatusCode int
	Status     string
	Headers    map[string]string
	Body       []byte
	Duration   time.Duration
}

// FromHTTP captures a response returned by an external HTTP client. The
// body is read fully and closed.
func FromHTTP(resp *nethttp.Response, duration time.Duration) (*Response, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Headers:    headers,
		Body:       body,
		Duration:   duration,
	}, nil
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

// Header returns the value of the named header. The lookup ignores case.
func (r *Response) Header(key string) string {
	v, _ := r.LookupHeader(key)
	return v
}

// LookupHeader is like Header but reports whether the header was sent.
func (r *Response) LookupHeader(key string) (string, bool) {
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
