package api

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stroycontrol/geomap-backend/internal/config"
	"github.com/stroycontrol/geomap-backend/internal/database"
)

const testSecret = "test-secret"

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret:       testSecret,
		SearchRateLimit: 100,
		SearchRateBurst: 100,
	}
	return SetupRouter(cfg, db)
}

func orgToken(t *testing.T, orgID int64) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"org_id": orgID,
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func doRequest(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpointIsPublic(t *testing.T) {
	r := testRouter(t)

	w := doRequest(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestAPIRequiresToken(t *testing.T) {
	r := testRouter(t)

	w := doRequest(r, http.MethodGet, "/api/v1/orgs/1/tiles/5/1/2", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(r, http.MethodGet, "/api/v1/orgs/1/tiles/5/1/2", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTileEndpoint(t *testing.T) {
	r := testRouter(t)
	token := orgToken(t, 1)

	w := doRequest(r, http.MethodGet, "/api/v1/orgs/1/tiles/5/1/2", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "FeatureCollection")

	// Tile coordinates outside the 2^z grid are rejected.
	w = doRequest(r, http.MethodGet, "/api/v1/orgs/1/tiles/5/32/2", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrganizationScopeEnforced(t *testing.T) {
	r := testRouter(t)
	token := orgToken(t, 1)

	w := doRequest(r, http.MethodGet, "/api/v1/orgs/2/tiles/5/1/2", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHeatmapEndpoint(t *testing.T) {
	r := testRouter(t)
	token := orgToken(t, 1)

	w := doRequest(r, http.MethodGet, "/api/v1/orgs/1/heatmap?metric=budget&zoom=5", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "heatmap")

	w = doRequest(r, http.MethodGet, "/api/v1/orgs/1/heatmap?metric=velocity", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchEndpointValidation(t *testing.T) {
	r := testRouter(t)
	token := orgToken(t, 1)

	w := doRequest(r, http.MethodGet, "/api/v1/orgs/1/search", token)
	assert.Equal(t, http.StatusBadRequest, w.Code, "query is required")

	w = doRequest(r, http.MethodGet, "/api/v1/orgs/1/search?q=tower", token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCacheInvalidationEndpoint(t *testing.T) {
	r := testRouter(t)
	token := orgToken(t, 1)

	w := doRequest(r, http.MethodPost, "/api/v1/orgs/1/cache/invalidate", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "evicted")

	w = doRequest(r, http.MethodPost, "/api/v1/orgs/1/cache/invalidate?projectId=abc", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
