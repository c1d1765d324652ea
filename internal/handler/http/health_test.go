package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-pulse/internal/resilience/circuitbreaker"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type staticBreakers map[string]circuitbreaker.Status

func (b staticBreakers) Status() map[string]circuitbreaker.Status { return b }

func serveHealth(t *testing.T, h http.Handler) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, PathHealth, nil))

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec, resp
}

func TestHealthHandler_Database(t *testing.T) {
	tests := []struct {
		name       string
		setupMock  func(sqlmock.Sqlmock)
		wantCode   int
		wantStatus string
	}{
		{
			name:       "healthy database",
			setupMock:  func(mock sqlmock.Sqlmock) { mock.ExpectPing() },
			wantCode:   http.StatusOK,
			wantStatus: StatusHealthy,
		},
		{
			name:       "database connection error",
			setupMock:  func(mock sqlmock.Sqlmock) { mock.ExpectPing().WillReturnError(sql.ErrConnDone) },
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
			require.NoError(t, err)
			defer func() { _ = db.Close() }()
			tt.setupMock(mock)

			rec, resp := serveHealth(t, &HealthHandler{DB: db, Version: "test-version"})

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, "test-version", resp.Version)
			assert.NotEmpty(t, resp.Timestamp)
			assert.Equal(t, tt.wantStatus, resp.Checks["database"].Status)
			assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHealthHandler_NothingConfigured(t *testing.T) {
	rec, resp := serveHealth(t, &HealthHandler{})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Empty(t, resp.Checks)
}

func TestHealthHandler_Pingers(t *testing.T) {
	h := &HealthHandler{Pingers: map[string]Pinger{
		"redis": pingerFunc(func(context.Context) error { return errors.New("connection refused") }),
		"other": pingerFunc(func(context.Context) error { return nil }),
	}}

	rec, resp := serveHealth(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, StatusUnhealthy, resp.Status)
	assert.Equal(t, "connection refused", resp.Checks["redis"].Message)
	assert.Equal(t, StatusHealthy, resp.Checks["other"].Status)
}

func TestHealthHandler_OpenBreakerDegrades(t *testing.T) {
	h := &HealthHandler{Breakers: staticBreakers{
		"Gemini API":  {State: "open", IsOpen: true},
		"Link Checks": {State: "closed"},
	}}

	rec, resp := serveHealth(t, h)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusDegraded, resp.Status)

	check := resp.Checks["circuit_breakers"]
	assert.Equal(t, StatusDegraded, check.Status)
	assert.Equal(t, []any{"Gemini API"}, check.Details["open"])
	assert.Equal(t, "closed", check.Details["Link Checks"])
}

func TestCheckDatabase_PoolUtilization(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectPing()
	db.SetMaxOpenConns(10)
	check := checkDatabase(context.Background(), db)
	assert.Equal(t, StatusHealthy, check.Status)
	assert.Equal(t, 10, check.Details["max_open_connections"])
	assert.Contains(t, check.Details, "utilization_percent")
}

func TestReadyHandler(t *testing.T) {
	healthy := &HealthHandler{Pingers: map[string]Pinger{
		"redis": pingerFunc(func(context.Context) error { return nil }),
	}}
	rec := httptest.NewRecorder()
	(&ReadyHandler{Health: healthy}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, PathReady, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", rec.Body.String())

	broken := &HealthHandler{Pingers: map[string]Pinger{
		"redis": pingerFunc(func(context.Context) error { return errors.New("down") }),
	}}
	rec = httptest.NewRecorder()
	(&ReadyHandler{Health: broken}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, PathReady, nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLiveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LiveHandler{}.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, PathLive, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", rec.Body.String())
}
