package main

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/triage-api/internal/config"
	"github.com/phrazzld/triage-api/internal/events"
	"github.com/phrazzld/triage-api/internal/feedback"
	"github.com/phrazzld/triage-api/internal/platform/postgres"
	"github.com/phrazzld/triage-api/internal/service/auth"
	"github.com/phrazzld/triage-api/internal/state"
	"github.com/phrazzld/triage-api/internal/ws"
)

// newTestApplication builds an application with real routing collaborators
// but no database or external services behind them. Enough to exercise
// route registration and middleware ordering.
func newTestApplication(t *testing.T) *application {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "error"},
		Auth: config.AuthConfig{
			JWTSecret:                   "test-secret-key-thats-32-characters",
			TokenLifetimeMinutes:        60,
			RefreshTokenLifetimeMinutes: 10080,
		},
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	require.NoError(t, err)

	logger := slog.Default()
	registry := ws.NewRegistry(logger)

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &application{
		config:           cfg,
		logger:           logger,
		operatorStore:    postgres.NewPostgresOperatorStore(db, bcrypt.MinCost),
		decisionStore:    postgres.NewPostgresDecisionStore(db, logger),
		jwtService:       jwtService,
		passwordVerifier: auth.NewBcryptVerifier(),
		registry:         registry,
		states:           state.NewStore(logger),
		broker:           feedback.NewBroker(registry, logger),
		eventEmitter:     events.NewInMemoryEventEmitter(logger),
	}
}

func TestRouterHealthEndpoint(t *testing.T) {
	t.Parallel()

	router := newTestApplication(t).setupRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRouterProtectedRoutesRequireAuth(t *testing.T) {
	t.Parallel()

	router := newTestApplication(t).setupRouter()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/automation/process-emails"},
		{http.MethodGet, "/api/automation/status"},
		{http.MethodPost, "/api/automation/provide-feedback"},
		{http.MethodGet, "/api/decisions"},
		{http.MethodGet, "/ws"},
	}
	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(route.method, route.path, nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRouterUnknownRouteIs404(t *testing.T) {
	t.Parallel()

	router := newTestApplication(t).setupRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterAuthEndpointsArePublic(t *testing.T) {
	t.Parallel()

	router := newTestApplication(t).setupRouter()

	// Empty bodies fail validation, not authentication: the endpoints must
	// be reachable without a token.
	for _, path := range []string{"/api/auth/register", "/api/auth/login", "/api/auth/refresh"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}
