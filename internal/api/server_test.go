package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aureuma/skillregistry/internal/config"
	"github.com/aureuma/skillregistry/internal/dispatch"
	"github.com/aureuma/skillregistry/internal/model"
	"github.com/aureuma/skillregistry/internal/query"
	"github.com/aureuma/skillregistry/internal/registry"
)

func newTestServer(t *testing.T) (*Server, *registry.Service, *dispatch.Authenticator) {
	t.Helper()
	tunables := config.DefaultTunables()
	service := registry.New(tunables, zap.NewNop().Sugar())
	auth := dispatch.NewAuthenticator("test-signing-key")
	surface := query.New(service.Catalog, service.Users, service.Enrichment, service.Analysis, service.Ledger)
	return New(service, surface, auth, zap.NewNop().Sugar(), 1000, 1000), service, auth
}

func doRequest(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doRequest(t, srv.Router(), http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoute_RequiresAdminToken(t *testing.T) {
	srv, _, auth := newTestServer(t)
	router := srv.Router()

	skill := model.NewSkill("s1", "Demo", "d", "o", "r")
	rec := doRequest(t, router, http.MethodPost, "/admin/skills", "", skill)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	userToken, err := auth.Issue("u1", model.RoleUser, time.Hour)
	require.NoError(t, err)
	rec = doRequest(t, router, http.MethodPost, "/admin/skills", userToken, skill)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	adminToken, err := auth.Issue("admin-1", model.RoleAdmin, time.Hour)
	require.NoError(t, err)
	rec = doRequest(t, router, http.MethodPost, "/admin/skills", adminToken, skill)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestGetSkill_AnonymousAllowed(t *testing.T) {
	srv, service, _ := newTestServer(t)
	service.Catalog.AddSkill(model.NewSkill("s1", "Demo", "d", "o", "r"))

	rec := doRequest(t, srv.Router(), http.MethodGet, "/skills/s1", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var got model.Skill
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Demo", got.Name)
}

func TestGetSkill_MissingReturns404(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doRequest(t, srv.Router(), http.MethodGet, "/skills/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvalidBearerToken_Rejected(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doRequest(t, srv.Router(), http.MethodGet, "/me", "not-a-real-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWorkerClaimEnrichment_RequiresWorkerRole(t *testing.T) {
	srv, _, auth := newTestServer(t)
	userToken, err := auth.Issue("u1", model.RoleUser, time.Hour)
	require.NoError(t, err)

	rec := doRequest(t, srv.Router(), http.MethodPost, "/worker/enrichment/claims", userToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	workerToken, err := auth.Issue("w1", model.RoleWorker, time.Hour)
	require.NoError(t, err)
	rec = doRequest(t, srv.Router(), http.MethodPost, "/worker/enrichment/claims", workerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestEnrichment_ThenClaimAndSubmit(t *testing.T) {
	srv, service, auth := newTestServer(t)
	service.Catalog.AddSkill(model.NewSkill("s1", "Demo", "d", "o", "r"))

	userToken, err := auth.Issue("u1", model.RoleUser, time.Hour)
	require.NoError(t, err)
	router := srv.Router()

	rec := doRequest(t, router, http.MethodPost, "/skills/s1/enrichment", userToken, requestEnrichmentBody{AutoAnalyze: false})
	require.Equal(t, http.StatusAccepted, rec.Code)

	var job model.EnrichmentJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))

	workerToken, err := auth.Issue("w1", model.RoleWorker, time.Hour)
	require.NoError(t, err)

	rec = doRequest(t, router, http.MethodPost, "/worker/enrichment/claims", workerToken, claimBody{Limit: 10})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/worker/enrichment/"+strconv.FormatInt(job.ID, 10)+"/result", workerToken,
		model.EnrichmentResult{Found: true, Content: "# Demo\n\nSome content."})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	skill, ok := service.Catalog.Get("s1")
	require.True(t, ok)
	assert.NotEmpty(t, skill.SkillMdContent)
}
