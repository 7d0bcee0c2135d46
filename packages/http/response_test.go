package http

import (
	"io"
	nethttp "net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse_IsSuccess(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{199, false},
		{200, true},
		{201, true},
		{204, true},
		{299, true},
		{300, false},
		{404, false},
		{500, false},
	}

	for _, tt := range tests {
		r := &Response{StatusCode: tt.status}
		assert.Equal(t, tt.want, r.IsSuccess(), "status %d", tt.status)
	}
}

func TestResponse_Header_CaseInsensitive(t *testing.T) {
	r := &Response{Headers: map[string]string{"Content-Type": "application/json; charset=utf-8"}}

	assert.Equal(t, "application/json; charset=utf-8", r.Header("content-type"))
	assert.Equal(t, "application/json; charset=utf-8", r.Header("CONTENT-TYPE"))
	assert.Equal(t, "application/json; charset=utf-8", r.ContentType())

	_, ok := r.LookupHeader("X-Request-Id")
	assert.False(t, ok)
}

func TestFromHTTP(t *testing.T) {
	header := nethttp.Header{}
	header.Set("Content-Type", "application/json")
	resp := &nethttp.Response{
		StatusCode: 201,
		Status:     "201 Created",
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(`{"payment_id":"pay_123"}`)),
	}

	captured, err := FromHTTP(resp, 42*time.Millisecond)
	require.NoError(t, err)

	assert.Equal(t, 201, captured.StatusCode)
	assert.Equal(t, "application/json", captured.Header("content-type"))
	assert.Equal(t, `{"payment_id":"pay_123"}`, captured.BodyString())
	assert.Equal(t, 42*time.Millisecond, captured.Duration)
}

func TestNewRequest(t *testing.T) {
	req := NewRequest("post", "https://sandbox.example.com/payments").
		SetHeader("api-key", "secret").
		SetBody(`{"amount":6540}`)

	assert.Equal(t, "POST https://sandbox.example.com/payments", req.Line())
	assert.Equal(t, "secret", req.Headers["api-key"])
	assert.Equal(t, `{"amount":6540}`, req.Body)
}
