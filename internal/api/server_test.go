package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx-interaction-engine/internal/domain"
	"github.com/rx-interaction-engine/internal/service"
	"github.com/rx-interaction-engine/internal/store"
	"github.com/rx-interaction-engine/pkg/external"
)

// stubConfigManager implements domain.ConfigManager with fixed test values.
type stubConfigManager struct {
	config domain.Config
}

func (m *stubConfigManager) GetConfig() *domain.Config             { return &m.config }
func (m *stubConfigManager) GetServerConfig() *domain.ServerConfig { return &m.config.Server }
func (m *stubConfigManager) GetEngineConfig() *domain.EngineConfig { return &m.config.Engine }
func (m *stubConfigManager) GetCacheConfig() *domain.CacheConfig   { return &m.config.Cache }
func (m *stubConfigManager) Validate() error                       { return nil }
func (m *stubConfigManager) IsProduction() bool                    { return false }

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	s := store.NewMemoryStore()
	cache, err := external.NewMemoryResultCache(256, time.Minute)
	require.NoError(t, err)

	engineCfg := domain.EngineConfig{
		MaxDrugs:           10,
		AdapterTimeout:     2 * time.Second,
		CheckDeadline:      5 * time.Second,
		MaxConcurrentPairs: 8,
	}
	engine := service.NewEngine(s,
		[]domain.SourceAdapter{external.NewLocalStoreAdapter(s)},
		cache, engineCfg, time.Minute, quietLogger())

	cfg := &stubConfigManager{config: domain.Config{
		Server:  domain.ServerConfig{Host: "127.0.0.1", Port: 8080},
		Engine:  engineCfg,
		Logging: domain.LoggingConfig{Level: "info", Format: "json"},
	}}
	return NewServer(cfg, engine, quietLogger())
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestCheckWarfarinAspirin(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/interactions/check",
		map[string]interface{}{"drugs": []string{"11289", "1191"}})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp service.CheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Interactions.Stored, 1)
	assert.Equal(t, domain.SeverityMajor, resp.Interactions.Stored[0].Severity)
	assert.Equal(t, "Increased bleeding risk", resp.Interactions.Stored[0].Effect)
	assert.Equal(t, 1, resp.Sources.Stored)
	assert.Equal(t, 0, resp.Sources.External)
}

func TestCheckIbuprofenAspirin(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/interactions/check",
		map[string]interface{}{"drugs": []string{"5640", "1191"}})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp service.CheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Interactions.Stored, 1)
	assert.Equal(t, domain.SeverityModerate, resp.Interactions.Stored[0].Severity)
}

func TestCheckValidationErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name  string
		drugs []string
	}{
		{"single drug", []string{"161"}},
		{"eleven drugs", []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/interactions/check",
				map[string]interface{}{"drugs": tt.drugs})
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestCheckMalformedBody(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/interactions/check", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFindAlternativesEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/alternatives/find-alternatives",
		map[string]interface{}{
			"drugs": []map[string]string{{"id": "36567"}, {"id": "21212"}},
		})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp service.AlternativesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 4, resp.Data.TotalAlternatives)
	assert.Equal(t, len(resp.Data.Alternatives), resp.Data.TotalAlternatives)
	assert.Equal(t, 2, resp.Data.RecommendedAlternatives)
}

func TestFindAlternativesUnknownClass(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/alternatives/find-alternatives",
		map[string]interface{}{
			"drugs": []map[string]string{{"id": "unknown-xyz"}},
		})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp service.AlternativesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Data.Alternatives, "unknown class yields zero candidates, not an error")
}

func TestKnownInteractionsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/alternatives/interactions/warfarin", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp service.KnownInteractionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "11289", resp.Drug.ID)
	require.Len(t, resp.Interactions, 5)
	for _, entry := range resp.Interactions {
		assert.Equal(t, entry.Severity.RiskScore(), entry.RiskScore)
	}
}

func TestKnownInteractionsUnknownDrug(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/alternatives/interactions/unobtainium", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClearCacheIsIdempotent(t *testing.T) {
	srv := newTestServer(t)

	for i := 0; i < 2; i++ {
		rec := doJSON(t, srv, http.MethodPost, "/alternatives/clear-cache", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]bool
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body["success"])
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])

	sources, ok := body["sources"].([]interface{})
	require.True(t, ok)
	require.Len(t, sources, 1)
	source := sources[0].(map[string]interface{})
	assert.Equal(t, "LOCAL", source["name"])
	assert.Equal(t, "up", source["state"])
	assert.Contains(t, body, "stats")
}
