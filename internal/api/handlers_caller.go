package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aureuma/skillregistry/internal/apierr"
)

func (s *Server) handleRecordInstall(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	if err := s.service.RecordInstall(caller, chi.URLParam(r, "skillID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type requestEnrichmentBody struct {
	AutoAnalyze bool `json:"auto_analyze"`
}

func (s *Server) handleRequestEnrichment(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	var body requestEnrichmentBody
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, apierr.Parse("invalid request body"))
			return
		}
	}
	job, err := s.service.RequestEnrichment(caller, chi.URLParam(r, "skillID"), body.AutoAnalyze)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

type requestAnalysisBody struct {
	Model string `json:"model" validate:"required"`
}

func (s *Server) handleRequestAnalysis(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	var body requestAnalysisBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, apierr.Parse("invalid request body"))
		return
	}
	if err := s.validate.Struct(body); err != nil {
		writeError(w, r, apierr.Validation(err.Error()))
		return
	}
	job, err := s.service.RequestAnalysis(caller, chi.URLParam(r, "skillID"), body.Model)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	profile, err := s.service.GetProfile(caller)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleHasKey(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	has, err := s.service.HasKey(caller)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"has_anthropic_key": has})
}

type setLegacyKeyBody struct {
	Key string `json:"key" validate:"required"`
}

func (s *Server) handleSetLegacyKey(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	var body setLegacyKeyBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, apierr.Parse("invalid request body"))
		return
	}
	if err := s.validate.Struct(body); err != nil {
		writeError(w, r, apierr.Validation(err.Error()))
		return
	}
	if err := s.service.SetLegacyKey(caller, body.Key); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setEncryptedKeyBody struct {
	Envelope string `json:"envelope" validate:"required,hexadecimal"`
}

func (s *Server) handleSetEncryptedKey(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	var body setEncryptedKeyBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, apierr.Parse("invalid request body"))
		return
	}
	if err := s.validate.Struct(body); err != nil {
		writeError(w, r, apierr.Validation(err.Error()))
		return
	}
	if err := s.service.SetEncryptedKey(caller, body.Envelope); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveLegacyKey(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	if err := s.service.RemoveLegacyKey(caller); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
