package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aureuma/skillregistry/internal/apierr"
	"github.com/aureuma/skillregistry/internal/model"
)

func jobIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "jobID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apierr.Parse("invalid job id")
	}
	return id, nil
}

type claimBody struct {
	Limit int `json:"limit"`
}

func (s *Server) handleClaimEnrichment(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	var body claimBody
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, apierr.Parse("invalid request body"))
			return
		}
	}
	if body.Limit <= 0 {
		body.Limit = s.service.Tunables.EnrichmentClaimCap
	}
	jobs, err := s.service.ClaimEnrichmentJobs(caller, body.Limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (s *Server) handleSubmitEnrichmentResult(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	jobID, err := jobIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var result model.EnrichmentResult
	if err := decodeJSON(r, &result); err != nil {
		writeError(w, r, apierr.Parse("invalid request body"))
		return
	}
	if err := s.service.SubmitEnrichmentResult(caller, jobID, result); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClaimAnalysis(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	var body claimBody
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, apierr.Parse("invalid request body"))
			return
		}
	}
	if body.Limit <= 0 {
		body.Limit = s.service.Tunables.AnalysisClaimCap
	}
	jobs, err := s.service.ClaimPendingJobs(caller, body.Limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

type submitAnalysisResultBody struct {
	Raw              string  `json:"raw" validate:"required"`
	TeeWorkerVersion *string `json:"tee_worker_version,omitempty"`
	PromptVersion    *string `json:"prompt_version,omitempty"`
}

func (s *Server) handleSubmitAnalysisResult(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	jobID, err := jobIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body submitAnalysisResultBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, apierr.Parse("invalid request body"))
		return
	}
	if err := s.validate.Struct(body); err != nil {
		writeError(w, r, apierr.Validation(err.Error()))
		return
	}

	var submitErr error
	if body.TeeWorkerVersion != nil || body.PromptVersion != nil {
		submitErr = s.service.SubmitJobResultWithMetadata(caller, jobID, body.Raw, body.TeeWorkerVersion, body.PromptVersion)
	} else {
		submitErr = s.service.SubmitJobResult(caller, jobID, body.Raw)
	}
	if submitErr != nil {
		writeError(w, r, submitErr)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type submitAnalysisErrorBody struct {
	Reason string `json:"reason" validate:"required"`
}

func (s *Server) handleSubmitAnalysisError(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	jobID, err := jobIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body submitAnalysisErrorBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, apierr.Parse("invalid request body"))
		return
	}
	if err := s.validate.Struct(body); err != nil {
		writeError(w, r, apierr.Validation(err.Error()))
		return
	}
	if err := s.service.SubmitJobError(caller, jobID, body.Reason); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCleanupJobs(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	if err := s.service.CleanupJobs(caller); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
