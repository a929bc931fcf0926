package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/agentry"
	"github.com/aretw0/agentry/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHealth(t *testing.T) {
	handler := NewHandler(agentry.New(), "test")

	req, _ := http.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestGetInfo(t *testing.T) {
	handler := NewHandler(agentry.New(agentry.WithWorkers(3)), "1.2.3")

	req, _ := http.NewRequest("GET", "/info", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "1.2.3", resp["version"])
	assert.Equal(t, 3.0, resp["workers"])
	assert.Equal(t, false, resp["metrics"])
}

func TestMetricsRoute(t *testing.T) {
	withMetrics := NewHandler(agentry.New(agentry.WithMetrics(observability.NewMetrics("srv"))), "x")
	rr := httptest.NewRecorder()
	withMetrics.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "srv_pool_slots")

	without := NewHandler(agentry.New(), "x")
	rr = httptest.NewRecorder()
	without.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
