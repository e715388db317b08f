// Package api wires the registry's HTTP surface: chi routing, JWT role
// gating, request validation, and the error-kind-to-status mapping that
// keeps handlers from string-sniffing apierr messages.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/aureuma/skillregistry/internal/dispatch"
	"github.com/aureuma/skillregistry/internal/query"
	"github.com/aureuma/skillregistry/internal/registry"
)

// Server bundles every dependency a handler needs: the service, the
// read-only query surface, the JWT authenticator, a validator instance
// (safe for concurrent use once constructed), and the structured logger.
type Server struct {
	service *registry.Service
	surface *query.Surface
	auth    *dispatch.Authenticator
	log     *zap.SugaredLogger

	validate *validator.Validate

	throttle *rate.Limiter
}

// New constructs a Server. throttlePerSecond/throttleBurst configure the
// HTTP-wide request limiter, distinct from the per-skill install ledger in
// internal/ratelimit.
func New(service *registry.Service, surface *query.Surface, auth *dispatch.Authenticator, log *zap.SugaredLogger, throttlePerSecond float64, throttleBurst int) *Server {
	return &Server{
		service:  service,
		surface:  surface,
		auth:     auth,
		log:      log,
		validate: validator.New(),
		throttle: rate.NewLimiter(rate.Limit(throttlePerSecond), throttleBurst),
	}
}

// Router builds the complete chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequest)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.throttleRequest)
	r.Use(s.authenticate)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/skills", func(r chi.Router) {
		r.Get("/", s.handleListSkills)
		r.Get("/search", s.handleSearchSkills)
		r.Get("/{skillID}", s.handleGetSkill)
		r.Get("/{skillID}/analysis", s.handleGetSkillAnalysis)
		r.Post("/{skillID}/install", s.handleRecordInstall)
		r.Post("/{skillID}/enrichment", s.handleRequestEnrichment)
		r.Post("/{skillID}/analysis/requests", s.handleRequestAnalysis)
	})

	r.Get("/categories", s.handleCategories)
	r.Get("/stats", s.handleStats)

	r.Route("/me", func(r chi.Router) {
		r.Get("/", s.handleGetProfile)
		r.Get("/key", s.handleHasKey)
		r.Put("/key", s.handleSetLegacyKey)
		r.Put("/key/encrypted", s.handleSetEncryptedKey)
		r.Delete("/key", s.handleRemoveLegacyKey)
	})

	r.Route("/worker", func(r chi.Router) {
		r.Post("/enrichment/claims", s.handleClaimEnrichment)
		r.Post("/enrichment/{jobID}/result", s.handleSubmitEnrichmentResult)
		r.Post("/analysis/claims", s.handleClaimAnalysis)
		r.Post("/analysis/{jobID}/result", s.handleSubmitAnalysisResult)
		r.Post("/analysis/{jobID}/error", s.handleSubmitAnalysisError)
		r.Post("/cleanup", s.handleCleanupJobs)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Post("/skills", s.handleAddSkill)
		r.Post("/skills/batch", s.handleAddSkillsBatch)
		r.Post("/skills/ingest", s.handleAddSkillsIfNew)
		r.Put("/skills/{skillID}/md", s.handleUpdateSkillMD)
		r.Put("/skills/md/batch", s.handleUpdateSkillMDBatch)
		r.Put("/skills/{skillID}/files", s.handleSetSkillFiles)
		r.Post("/skills/{skillID}/files", s.handleAddSkillFile)
		r.Post("/skills/installs/sync", s.handleSyncInstallCounts)
		r.Post("/skills/installs/reset", s.handleResetInstallCounts)
		r.Delete("/skills/{skillID}/analysis", s.handleClearAnalysis)
		r.Delete("/skills/analysis", s.handleClearAllAnalyses)
		r.Delete("/skills/{skillID}/analysis/history", s.handleClearAnalysisHistory)
		r.Delete("/skills", s.handleClearAllSkills)
		r.Post("/workers/{identity}", s.handleRegisterWorker)
		r.Delete("/workers/{identity}", s.handleDeregisterWorker)
		r.Get("/workers", s.handleListWorkers)
		r.Put("/prompts", s.handleSetPrompt)
	})

	return r
}
