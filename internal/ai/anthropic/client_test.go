package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/gh-assist/internal/errors"
	"github.com/thomas-vilte/gh-assist/internal/httpclient"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient("test-key", 5*time.Second, WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	_, err := NewClient("", time.Second)

	assert.ErrorIs(t, err, errors.ErrAPIKeyMissing)
}

func TestClient_Complete(t *testing.T) {
	t.Run("should send the request and return the first text block", func(t *testing.T) {
		var got messagesRequest
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, messagesPath, r.URL.Path)
			assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
			assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

			_, _ = w.Write([]byte(`{
				"model": "claude-3-5-sonnet-20241022",
				"content": [{"type": "text", "text": "feat: add login endpoint"}, {"type": "text", "text": "ignored"}],
				"usage": {"input_tokens": 100, "output_tokens": 10}
			}`))
		})

		completion, err := c.Complete(context.Background(), "prompt", "claude-3-5-sonnet-20241022", 500)

		require.NoError(t, err)
		assert.Equal(t, "claude-3-5-sonnet-20241022", got.Model)
		assert.Equal(t, 500, got.MaxTokens)
		assert.Equal(t, []message{{Role: "user", Content: "prompt"}}, got.Messages)
		assert.Equal(t, "feat: add login endpoint", completion.Text)
		require.NotNil(t, completion.Usage)
		assert.Equal(t, 110, completion.Usage.TotalTokens)
	})

	t.Run("should return empty text when there is no text block", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"content": [], "usage": {"input_tokens": 5, "output_tokens": 0}}`))
		})

		completion, err := c.Complete(context.Background(), "p", "claude-3-5-haiku-20241022", 50)

		require.NoError(t, err)
		assert.Empty(t, completion.Text)
		assert.Equal(t, "claude-3-5-haiku-20241022", completion.Model)
	})

	t.Run("should map status codes to model errors", func(t *testing.T) {
		cases := []struct {
			status int
			want   *errors.AppError
		}{
			{http.StatusUnauthorized, errors.ErrModelAuth},
			{http.StatusForbidden, errors.ErrModelAuth},
			{http.StatusTooManyRequests, errors.ErrModelQuotaExceeded},
			{529, errors.ErrModelQuotaExceeded},
			{http.StatusInternalServerError, errors.ErrModelRequest},
		}
		for _, tc := range cases {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"type":"error","error":{"type":"some_error","message":"details here"}}`))
			})

			_, err := c.Complete(context.Background(), "p", "m", 10)

			assert.ErrorIs(t, err, tc.want, "status %d", tc.status)
			assert.ErrorIs(t, err, errors.ErrModelUnavailable)
			assert.ErrorContains(t, err, "some_error: details here")
		}
	})

	t.Run("should fail on a malformed body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		})

		_, err := c.Complete(context.Background(), "p", "m", 10)

		assert.ErrorIs(t, err, errors.ErrModelRequest)
	})

	t.Run("should fail when the server is unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()
		c, err := NewClient("k", time.Second, WithBaseURL(url))
		require.NoError(t, err)

		_, err = c.Complete(context.Background(), "p", "m", 10)

		assert.ErrorIs(t, err, errors.ErrModelUnavailable)
	})
}

func TestClient_InjectedHTTPClient(t *testing.T) {
	t.Run("should send the API headers through the injected client", func(t *testing.T) {
		// Arrange
		var got *http.Request
		doer := httpclient.DoFunc(func(req *http.Request) (*http.Response, error) {
			got = req
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(`{"model":"claude-test","content":[{"type":"text","text":"ok"}],"usage":{"input_tokens":3,"output_tokens":1}}`)),
			}, nil
		})
		c, err := NewClient("secret", time.Second, WithBaseURL("http://anthropic.test"), WithHTTPClient(doer))
		require.NoError(t, err)

		// Act
		completion, err := c.Complete(context.Background(), "hello", "claude-test", 16)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "ok", completion.Text)
		assert.Equal(t, 4, completion.Usage.TotalTokens)
		require.NotNil(t, got)
		assert.Equal(t, "http://anthropic.test/v1/messages", got.URL.String())
		assert.Equal(t, "secret", got.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, got.Header.Get("anthropic-version"))
	})
}
