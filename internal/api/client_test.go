package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/allscreenshots/allscreenshots-sdk-go/internal/apierrors"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *sleepRecorder) recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

func jsonResponse(r *http.Request, status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    r,
	}
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "https://example.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apierrors.ErrMissingAPIKey)
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	for _, base := range []string{"", "example.com", "/relative", "http://%zz"} {
		_, err := NewClient(Config{BaseURL: base, APIKey: "test-key"})
		assert.ErrorIs(t, err, apierrors.ErrInvalidEndpoint, "base %q", base)
	}
}

func TestNewClient_DefaultValues(t *testing.T) {
	c, err := NewClient(Config{BaseURL: "https://example.com/", APIKey: "test-key"})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", c.baseURL)
	assert.Equal(t, DefaultTimeout, c.timeout)
	assert.NotNil(t, c.httpClient)
	assert.NotNil(t, c.sleep)
	assert.Equal(t, 0, c.RetryPolicy().MaxRetries(), "zero policy never retries")
}

func TestClient_Do_Success(t *testing.T) {
	var gotHeader http.Header
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		gotQuery = r.URL.RawQuery
		assert.Equal(t, "/v1/schedules/sch_1/history", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"scheduleId":"sch_1","totalExecutions":2}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	var result struct {
		ScheduleID      string `json:"scheduleId"`
		TotalExecutions int    `json:"totalExecutions"`
	}
	limit := 5
	err := c.Do(context.Background(), http.MethodGet, "/v1/schedules/sch_1/history", Query{}.AddInt("limit", &limit), nil, &result)
	require.NoError(t, err)

	assert.Equal(t, "sch_1", result.ScheduleID)
	assert.Equal(t, 2, result.TotalExecutions)
	assert.Equal(t, "limit=5", gotQuery)
	assert.Equal(t, "test-key", gotHeader.Get(HeaderAPIKey))
	assert.Equal(t, "application/json", gotHeader.Get(HeaderAccept))
	assert.NotEmpty(t, gotHeader.Get(HeaderRequestID))
}

func TestClient_Do_RetriesThenSucceeds(t *testing.T) {
	var attempts atomic.Int32
	var mu sync.Mutex
	var requestIDs []string
	var bodies []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := attempts.Add(1)
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requestIDs = append(requestIDs, r.Header.Get(HeaderRequestID))
		bodies = append(bodies, string(body))
		mu.Unlock()

		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"id":"job_1"}`))
	}))
	defer server.Close()

	sleeps := &sleepRecorder{}
	c := newTestClient(t, server.URL, func(cfg *Config) { cfg.Sleeper = sleeps.sleep })

	var result struct {
		ID string `json:"id"`
	}
	err := c.Do(context.Background(), http.MethodPost, "/v1/screenshots/async", nil, map[string]string{"url": "https://example.com"}, &result)
	require.NoError(t, err)

	assert.Equal(t, "job_1", result.ID)
	assert.Equal(t, int32(3), attempts.Load())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeps.recorded())

	require.Len(t, requestIDs, 3)
	assert.Equal(t, requestIDs[0], requestIDs[1], "request ID is stable across retries")
	assert.Equal(t, requestIDs[0], requestIDs[2])
	assert.Equal(t, bodies[0], bodies[2], "the same body is replayed")
	assert.JSONEq(t, `{"url":"https://example.com"}`, bodies[2])
}

func TestClient_Do_NoRetryOnUnauthorized(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Unauthorized","message":"Invalid API key"}`))
	}))
	defer server.Close()

	sleeps := &sleepRecorder{}
	c := newTestClient(t, server.URL, func(cfg *Config) { cfg.Sleeper = sleeps.sleep })

	err := c.Do(context.Background(), http.MethodGet, "/v1/usage", nil, nil, nil)
	require.Error(t, err)

	assert.ErrorIs(t, err, apierrors.ErrUnauthorized)
	assert.Equal(t, int32(1), attempts.Load())
	assert.Empty(t, sleeps.recorded())

	var apiErr *apierrors.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid API key", apiErr.Message)
	assert.Equal(t, 1, apiErr.Attempts)
}

func TestClient_Do_RateLimitedExhaustsRetries(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.Header().Set("Retry-After", "5")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	sleeps := &sleepRecorder{}
	c := newTestClient(t, server.URL, func(cfg *Config) { cfg.Sleeper = sleeps.sleep })

	err := c.Do(context.Background(), http.MethodGet, "/v1/usage/quota", nil, nil, nil)
	require.Error(t, err)

	var apiErr *apierrors.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierrors.KindRateLimited, apiErr.Kind)
	require.NotNil(t, apiErr.RetryAfter)
	assert.Equal(t, 5*time.Second, *apiErr.RetryAfter)
	assert.True(t, apiErr.Retryable())

	assert.Equal(t, int32(4), attempts.Load(), "MaxRetries+1 attempts")
	assert.Equal(t, 4, apiErr.Attempts)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, sleeps.recorded(),
		"Retry-After does not alter the backoff")
}

func TestClient_Do_DisabledPolicy(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, func(cfg *Config) { cfg.Retry = NoRetryPolicy() })

	err := c.Do(context.Background(), http.MethodGet, "/v1/usage", nil, nil, nil)
	assert.ErrorIs(t, err, apierrors.ErrServer)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClient_Do_DecodeFailureNotRetried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		_, _ = w.Write([]byte(`{"id": 42`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	var result struct {
		ID string `json:"id"`
	}
	err := c.Do(context.Background(), http.MethodGet, "/v1/screenshots/jobs/abc", nil, nil, &result)
	assert.ErrorIs(t, err, apierrors.ErrDecoding)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClient_Do_EmptyBodyAndNoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte(`not json at all`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	var out struct{ ID string }
	require.NoError(t, c.Do(context.Background(), http.MethodDelete, "/v1/schedules/s1", nil, nil, &out))
	require.NoError(t, c.Do(context.Background(), http.MethodPost, "/v1/schedules/s1/pause", nil, nil, &NoContent{}))
	require.NoError(t, c.Do(context.Background(), http.MethodPost, "/v1/schedules/s1/pause", nil, nil, nil))

	_, err := Execute[NoContent](context.Background(), c, http.MethodPost, "/v1/schedules/s1/pause", nil, nil)
	require.NoError(t, err)
}

func TestClient_DoBinary(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "*/*", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	got, err := c.DoBinary(context.Background(), http.MethodPost, "/v1/screenshots", nil, map[string]string{"url": "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, png, got)
}

func TestExecute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tier":"pro","email":"dev@example.com"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	type usage struct {
		Tier  string `json:"tier"`
		Email string `json:"email"`
	}
	got, err := Execute[usage](context.Background(), c, http.MethodGet, "/v1/usage", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, usage{Tier: "pro", Email: "dev@example.com"}, got)
}

func TestClient_Do_TransportErrorRetried(t *testing.T) {
	var attempts atomic.Int32
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if attempts.Add(1) < 3 {
			return nil, &net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET}
		}
		return jsonResponse(r, http.StatusOK, `{"ok":true}`), nil
	})

	sleeps := &sleepRecorder{}
	c := newTestClient(t, "https://api.allscreenshots.com", func(cfg *Config) {
		cfg.HTTPClient = &http.Client{Transport: transport}
		cfg.Sleeper = sleeps.sleep
	})

	var result struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/v1/usage", nil, nil, &result))
	assert.True(t, result.OK)
	assert.Equal(t, int32(3), attempts.Load())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeps.recorded())
}

func TestClient_Do_TransportErrorNotRetryable(t *testing.T) {
	var attempts atomic.Int32
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		attempts.Add(1)
		return nil, &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
	})

	c := newTestClient(t, "https://api.allscreenshots.com", func(cfg *Config) {
		cfg.HTTPClient = &http.Client{Transport: transport}
	})

	err := c.Do(context.Background(), http.MethodGet, "/v1/usage", nil, nil, nil)

	var apiErr *apierrors.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierrors.KindNetwork, apiErr.Kind)
	assert.Equal(t, "https://api.allscreenshots.com/v1/usage", apiErr.Endpoint)
	assert.ErrorIs(t, err, syscall.ECONNREFUSED)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClient_Do_TransportErrorExhaustsRetries(t *testing.T) {
	var attempts atomic.Int32
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		attempts.Add(1)
		return nil, io.ErrUnexpectedEOF
	})

	c := newTestClient(t, "https://api.allscreenshots.com", func(cfg *Config) {
		cfg.HTTPClient = &http.Client{Transport: transport}
	})

	err := c.Do(context.Background(), http.MethodGet, "/v1/usage", nil, nil, nil)
	assert.ErrorIs(t, err, apierrors.ErrNetwork)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, int32(4), attempts.Load())

	var apiErr *apierrors.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 4, apiErr.Attempts)
	assert.True(t, apiErr.Retryable())
}

func TestClient_Do_PerAttemptTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	c := newTestClient(t, server.URL, func(cfg *Config) {
		cfg.Timeout = 20 * time.Millisecond
		cfg.Retry = NoRetryPolicy()
	})

	err := c.Do(context.Background(), http.MethodGet, "/v1/usage", nil, nil, nil)

	var apiErr *apierrors.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierrors.KindNetwork, apiErr.Kind)
	assert.True(t, apiErr.Timeout())
}

func TestClient_Do_CancelledDuringSleep(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := newTestClient(t, server.URL, func(cfg *Config) {
		cfg.Sleeper = func(ctx context.Context, d time.Duration) error {
			cancel()
			return sleepContext(ctx, d)
		}
	})

	err := c.Do(ctx, http.MethodGet, "/v1/usage", nil, nil, nil)
	assert.ErrorIs(t, err, apierrors.ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClient_Do_CancelledBeforeSend(t *testing.T) {
	var attempts atomic.Int32
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		attempts.Add(1)
		return nil, r.Context().Err()
	})

	c := newTestClient(t, "https://api.allscreenshots.com", func(cfg *Config) {
		cfg.HTTPClient = &http.Client{Transport: transport}
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Do(ctx, http.MethodGet, "/v1/usage", nil, nil, nil)
	assert.ErrorIs(t, err, apierrors.ErrCancelled)
	assert.LessOrEqual(t, attempts.Load(), int32(1))
}

func TestClient_Do_CallerDeadlineIsCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Do(ctx, http.MethodGet, "/v1/usage", nil, nil, nil)
	assert.ErrorIs(t, err, apierrors.ErrCancelled)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Do_RateLimiter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, func(cfg *Config) {
		cfg.Limiter = rate.NewLimiter(rate.Every(time.Hour), 1)
	})

	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/v1/usage", nil, nil, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := c.Do(ctx, http.MethodGet, "/v1/usage", nil, nil, nil)
	assert.ErrorIs(t, err, apierrors.ErrCancelled)
}

func TestClient_ConcurrentUse(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		_, _ = fmt.Fprintf(w, `{"path":%q}`, r.URL.Path)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var out struct {
				Path string `json:"path"`
			}
			path := fmt.Sprintf("/v1/screenshots/jobs/job_%d", i)
			if err := c.Do(context.Background(), http.MethodGet, path, nil, nil, &out); err != nil {
				errs <- err
				return
			}
			if out.Path != path {
				errs <- errors.New("mismatched response " + out.Path)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	assert.Equal(t, int32(20), attempts.Load())
}
