package lcdclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clicker/internal/core"
)

func fastConfig(baseURL string) Config {
	config := DefaultConfig("localterra", baseURL)
	config.InitialBackoff = 5 * time.Millisecond
	config.MaxBackoff = 20 * time.Millisecond
	return config
}

func TestClient_Do_Success(t *testing.T) {
	var gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get("X-Request-Id")
		assert.Equal(t, "/cosmos/base/tendermint/v1beta1/node_info", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"default_node_info":{"network":"localterra"}}`))
	}))
	defer server.Close()

	client := New(fastConfig(server.URL))

	var result struct {
		NodeInfo struct {
			Network string `json:"network"`
		} `json:"default_node_info"`
	}
	err := client.Do(context.Background(), Request{
		Method:   http.MethodGet,
		Endpoint: "/cosmos/base/tendermint/v1beta1/node_info",
	}, &result)

	require.NoError(t, err)
	assert.Equal(t, "localterra", result.NodeInfo.Network)
	assert.NotEmpty(t, gotRequestID, "a request id is generated when the context has none")
}

func TestClient_Do_ForwardsRequestIDAndBody(t *testing.T) {
	var (
		gotRequestID string
		gotBody      map[string]string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get("X-Request-Id")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := New(fastConfig(server.URL))
	ctx := core.WithRequestID(context.Background(), "req-42")

	err := client.Do(ctx, Request{
		Method:   http.MethodPost,
		Endpoint: "/cosmos/tx/v1beta1/simulate",
		Body:     map[string]string{"tx_bytes": "AAAA"},
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "req-42", gotRequestID)
	assert.Equal(t, "AAAA", gotBody["tx_bytes"])
}

func TestClient_Do_ErrorParsing(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantType   core.ErrorType
	}{
		{
			name:       "rate limit",
			statusCode: http.StatusTooManyRequests,
			body:       `{"code":8,"message":"rate limited"}`,
			wantType:   core.ErrorTypeRateLimit,
		},
		{
			name:       "not found",
			statusCode: http.StatusNotFound,
			body:       `{"code":5,"message":"contract: not found"}`,
			wantType:   core.ErrorTypeNotFound,
		},
		{
			name:       "bad request",
			statusCode: http.StatusBadRequest,
			body:       `{"code":3,"message":"invalid address"}`,
			wantType:   core.ErrorTypeInvalidRequest,
		},
		{
			name:       "query failure",
			statusCode: http.StatusInternalServerError,
			body:       `{"code":2,"message":"query wasm contract failed"}`,
			wantType:   core.ErrorTypeNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			config := fastConfig(server.URL)
			config.MaxRetries = 0
			client := New(config)

			err := client.Do(context.Background(), Request{Method: http.MethodGet, Endpoint: "/x"}, nil)

			var chainErr *core.ChainError
			require.ErrorAs(t, err, &chainErr)
			assert.Equal(t, tt.wantType, chainErr.Type)
		})
	}
}

func TestClient_Do_Retries(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := New(fastConfig(server.URL))

	var result struct {
		OK bool `json:"ok"`
	}
	err := client.Do(context.Background(), Request{Method: http.MethodGet, Endpoint: "/x"}, &result)

	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestClient_Do_RetriesExhausted(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	config := fastConfig(server.URL)
	config.MaxRetries = 2
	client := New(config)

	err := client.Do(context.Background(), Request{Method: http.MethodGet, Endpoint: "/x"}, nil)

	require.Error(t, err)
	// 1 initial + 2 retries
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestClient_Do_NoRetry(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(fastConfig(server.URL))

	err := client.Do(context.Background(), Request{
		Method:   http.MethodPost,
		Endpoint: "/cosmos/tx/v1beta1/txs",
		Body:     map[string]string{},
		NoRetry:  true,
	}, nil)

	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestClient_NonRetryableErrors(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := New(fastConfig(server.URL))

	err := client.Do(context.Background(), Request{Method: http.MethodGet, Endpoint: "/x"}, nil)

	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestClient_Hooks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	var (
		started  int
		endedFor int
	)
	config := fastConfig(server.URL)
	config.Hooks = Hooks{
		OnRequestStart: func(ctx context.Context, info RequestInfo) {
			started++
			assert.Equal(t, "localterra", info.Network)
		},
		OnRequestEnd: func(ctx context.Context, info RequestInfo, statusCode int, elapsed time.Duration, err error) {
			endedFor = statusCode
			assert.NoError(t, err)
		},
	}
	client := New(config)

	require.NoError(t, client.Do(context.Background(), Request{Method: http.MethodGet, Endpoint: "/x"}, nil))
	assert.Equal(t, 1, started)
	assert.Equal(t, http.StatusOK, endedFor)
}

func TestCircuitBreaker_OpensAfterFailures(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	config := fastConfig(server.URL)
	config.MaxRetries = 0
	config.CircuitBreaker = &CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		Timeout:          time.Second,
	}
	client := New(config)

	for i := 0; i < 5; i++ {
		_ = client.Do(context.Background(), Request{Method: http.MethodGet, Endpoint: "/x"}, nil)
	}

	err := client.Do(context.Background(), Request{Method: http.MethodGet, Endpoint: "/x"}, nil)

	var chainErr *core.ChainError
	require.ErrorAs(t, err, &chainErr)
	assert.Equal(t, http.StatusServiceUnavailable, chainErr.StatusCode)
	assert.Contains(t, chainErr.Message, "circuit breaker")
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestCircuitBreaker_ClosesAfterTimeout(t *testing.T) {
	var healthy atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if healthy.Load() {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	config := fastConfig(server.URL)
	config.MaxRetries = 0
	config.CircuitBreaker = &CircuitBreakerConfig{
		FailureThreshold: 2,
		SuccessThreshold: 1,
		Timeout:          50 * time.Millisecond,
	}
	client := New(config)

	for i := 0; i < 2; i++ {
		_ = client.Do(context.Background(), Request{Method: http.MethodGet, Endpoint: "/x"}, nil)
	}
	require.Error(t, client.Do(context.Background(), Request{Method: http.MethodGet, Endpoint: "/x"}, nil))

	time.Sleep(100 * time.Millisecond)
	healthy.Store(true)

	require.NoError(t, client.Do(context.Background(), Request{Method: http.MethodGet, Endpoint: "/x"}, nil))
	assert.Equal(t, "closed", client.circuitBreaker.State())
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := New(fastConfig(server.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := client.Do(ctx, Request{Method: http.MethodGet, Endpoint: "/x"}, nil)
	require.Error(t, err)
}

func TestBackoffCalculation(t *testing.T) {
	config := DefaultConfig("test", "http://lcd.test")
	config.InitialBackoff = 100 * time.Millisecond
	config.MaxBackoff = time.Second
	client := New(config)

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, time.Second},
		{10, time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, client.calculateBackoff(tt.attempt), "attempt %d", tt.attempt)
	}
}
