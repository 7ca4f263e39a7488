package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServer_AuthProtectsAPI(t *testing.T) {
	api := newTestAPI(&Config{MasterKey: "secret-key"})
	api.client.queryResult = []byte(`{"fortune":1}`)

	rec := api.do(http.MethodGet, "/v1/fortune", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/fortune", nil)
	req.Header.Set("Authorization", "Bearer secret-key")
	rec = httptest.NewRecorder()
	api.srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code, "health is public")
}

func TestServer_RequestID(t *testing.T) {
	api := newTestAPI(nil)
	api.client.queryResult = []byte(`{}`)

	rec := api.do(http.MethodGet, "/v1/scores", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/v1/scores", nil)
	req.Header.Set("X-Request-Id", "req-7")
	rec = httptest.NewRecorder()
	api.srv.ServeHTTP(rec, req)
	assert.Equal(t, "req-7", rec.Header().Get("X-Request-Id"))
}

func TestServer_BodyLimit(t *testing.T) {
	api := newTestAPI(&Config{BodySizeLimit: 1024})

	body := `{"score":1,"signer":"` + strings.Repeat("x", 2048) + `"}`
	rec := api.do(http.MethodPost, "/v1/scores", body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

// TestMetricsEndpointCustomPaths verifies that custom metrics paths work correctly
func TestMetricsEndpointCustomPaths(t *testing.T) {
	t.Run("custom metrics path is accessible without auth", func(t *testing.T) {
		api := newTestAPI(&Config{
			MasterKey:       "secret-key",
			MetricsEnabled:  true,
			MetricsEndpoint: "/monitoring/metrics",
		})

		rec := api.do(http.MethodGet, "/monitoring/metrics", "")
		if rec.Code != http.StatusOK {
			t.Errorf("Expected 200 for custom metrics path, got %d", rec.Code)
		}
	})

	t.Run("metrics disabled", func(t *testing.T) {
		api := newTestAPI(&Config{})

		rec := api.do(http.MethodGet, "/metrics", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected 404 with metrics disabled, got %d", rec.Code)
		}
	})
}

// TestMetricsEndpointAPIRouteProtection verifies that metrics endpoint cannot shadow API routes
func TestMetricsEndpointAPIRouteProtection(t *testing.T) {
	api := newTestAPI(&Config{
		MasterKey:       "secret-key",
		MetricsEnabled:  true,
		MetricsEndpoint: "/v1/metrics",
	})

	// /v1/metrics must not become a public route
	rec := api.do(http.MethodGet, "/v1/metrics", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for /v1/metrics, got %d", rec.Code)
	}

	rec = api.do(http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected metrics at /metrics, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/metrics"},
		{"/metrics", "/metrics"},
		{"monitoring/metrics", "/monitoring/metrics"},
		{"/a/../b/metrics", "/b/metrics"},
		{"/v1/metrics", "/metrics"},
		{"/v1/../v1/scores", "/metrics"},
		{"/health", "/metrics"},
		{"/", "/metrics"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, metricsEndpoint(tt.in), tt.in)
	}
}

func TestSwaggerEndpoint_Enabled(t *testing.T) {
	api := newTestAPI(&Config{SwaggerEnabled: true})

	rec := api.do(http.MethodGet, "/swagger/index.html", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "swagger")
}

func TestSwaggerEndpoint_Disabled(t *testing.T) {
	api := newTestAPI(&Config{SwaggerEnabled: false})

	rec := api.do(http.MethodGet, "/swagger/index.html", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = newTestAPI(nil).do(http.MethodGet, "/swagger/index.html", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSwaggerDocJSON_DescribesRoutes(t *testing.T) {
	api := newTestAPI(&Config{SwaggerEnabled: true})

	rec := api.do(http.MethodGet, "/swagger/doc.json", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	for _, route := range []string{"/v1/fortune", "/v1/scores", "/v1/send", "/v1/txs"} {
		assert.Contains(t, body, `"`+route+`"`)
	}
	assert.Contains(t, body, "clicker API")
}
