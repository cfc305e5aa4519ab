package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryAfterFromHeader(t *testing.T) {
	assert.Equal(t, 30*time.Second, retryAfterFrom("30", nil))
	assert.Equal(t, time.Duration(0), retryAfterFrom("soon", nil))
	assert.Equal(t, time.Duration(0), retryAfterFrom("", nil))
}

func TestRetryAfterFromErrorBody(t *testing.T) {
	body := []byte(`{"error":{"details":[
		{"@type":"type.googleapis.com/google.rpc.ErrorInfo","reason":"RATE_LIMIT_EXCEEDED"},
		{"@type":"type.googleapis.com/google.rpc.RetryInfo","retryDelay":"42s"}
	]}}`)
	assert.Equal(t, 42*time.Second, retryAfterFrom("", body))
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("", "key")
	assert.Equal(t, defaultBaseURL, c.BaseURL)

	c = NewClient("http://localhost:9999/", "key")
	assert.Equal(t, "http://localhost:9999", c.BaseURL)
}
