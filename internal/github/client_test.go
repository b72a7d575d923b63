package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gh "github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/assert"
)

func TestNew_WithToken(t *testing.T) {
	c := New("test-token")

	assert.NotNil(t, c)
	assert.Implements(t, (*Client)(nil), c)
}

func TestNew_WithoutToken(t *testing.T) {
	c := New("")

	assert.NotNil(t, c)
	assert.Implements(t, (*Client)(nil), c)
}

func TestAuthTransport_RoundTrip(t *testing.T) {
	transport := &authTransport{token: "my-secret-token"}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer my-secret-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	assert.NoError(t, err)

	resp, err := transport.RoundTrip(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestIsNotFound(t *testing.T) {
	notFound := &gh.ErrorResponse{
		Response: &http.Response{StatusCode: http.StatusNotFound},
	}
	serverErr := &gh.ErrorResponse{
		Response: &http.Response{StatusCode: http.StatusInternalServerError},
	}

	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsNotFound(serverErr))
	assert.False(t, IsNotFound(errors.New("boom")))
	assert.False(t, IsNotFound(nil))
}

func TestWithRetry_PassesThroughResult(t *testing.T) {
	calls := 0
	result, err := withRetry(context.Background(), func() (int, error) {
		calls++
		return 42, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_NonRateLimitErrorNotRetried(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	_, err := withRetry(context.Background(), func() (int, error) {
		calls++
		return 0, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_RateLimitRetried(t *testing.T) {
	calls := 0
	rateLimited := &gh.RateLimitError{
		Rate: gh.Rate{Reset: gh.Timestamp{Time: time.Now().Add(time.Millisecond)}},
	}
	result, err := withRetry(context.Background(), func() (string, error) {
		calls++
		if calls == 1 {
			return "", rateLimited
		}
		return "ok", nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 2, calls)
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rateLimited := &gh.RateLimitError{
		Rate: gh.Rate{Reset: gh.Timestamp{Time: time.Now().Add(time.Hour)}},
	}
	_, err := withRetry(ctx, func() (int, error) {
		return 0, rateLimited
	})

	assert.ErrorIs(t, err, context.Canceled)
}
