package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aureuma/skillregistry/internal/apierr"
	"github.com/aureuma/skillregistry/internal/model"
)

func (s *Server) handleAddSkill(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	var skill model.Skill
	if err := decodeJSON(r, &skill); err != nil {
		writeError(w, r, apierr.Parse("invalid request body"))
		return
	}
	if err := s.service.AddSkill(caller, skill); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleAddSkillsBatch(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	var skills []model.Skill
	if err := decodeJSON(r, &skills); err != nil {
		writeError(w, r, apierr.Parse("invalid request body"))
		return
	}
	if err := s.service.AddSkillsBatch(caller, skills); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleAddSkillsIfNew(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	var skills []model.Skill
	if err := decodeJSON(r, &skills); err != nil {
		writeError(w, r, apierr.Parse("invalid request body"))
		return
	}
	inserted, err := s.service.AddSkillsIfNew(caller, skills)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"inserted": inserted})
}

type updateSkillMDBody struct {
	Text *string `json:"text"`
}

func (s *Server) handleUpdateSkillMD(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	var body updateSkillMDBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, apierr.Parse("invalid request body"))
		return
	}
	if err := s.service.UpdateSkillMD(caller, chi.URLParam(r, "skillID"), body.Text); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateSkillMDBatch(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	var entries map[string]string
	if err := decodeJSON(r, &entries); err != nil {
		writeError(w, r, apierr.Parse("invalid request body"))
		return
	}
	applied, err := s.service.UpdateSkillMDBatch(caller, entries)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"applied": applied})
}

func (s *Server) handleSetSkillFiles(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	var files []model.SkillFile
	if err := decodeJSON(r, &files); err != nil {
		writeError(w, r, apierr.Parse("invalid request body"))
		return
	}
	if err := s.service.SetSkillFiles(caller, chi.URLParam(r, "skillID"), files); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddSkillFile(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	var file model.SkillFile
	if err := decodeJSON(r, &file); err != nil {
		writeError(w, r, apierr.Parse("invalid request body"))
		return
	}
	if err := s.service.AddSkillFile(caller, chi.URLParam(r, "skillID"), file); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSyncInstallCounts(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	var counts map[string]int
	if err := decodeJSON(r, &counts); err != nil {
		writeError(w, r, apierr.Parse("invalid request body"))
		return
	}
	if err := s.service.SyncInstallCounts(caller, counts); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetInstallCounts(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	if err := s.service.ResetAllInstallCounts(caller); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearAnalysis(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	if err := s.service.ClearAnalysis(caller, chi.URLParam(r, "skillID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearAllAnalyses(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	if err := s.service.ClearAllAnalyses(caller); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearAnalysisHistory(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	if err := s.service.ClearAnalysisHistory(caller, chi.URLParam(r, "skillID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearAllSkills(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	if err := s.service.ClearAllSkills(caller); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRegisterWorker(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	id := model.Identity(chi.URLParam(r, "identity"))
	if err := s.service.RegisterWorker(caller, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeregisterWorker(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	id := model.Identity(chi.URLParam(r, "identity"))
	if err := s.service.DeregisterWorker(caller, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListWorkers(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	workers, err := s.service.ListWorkers(caller)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"workers": workers})
}

func (s *Server) handleSetPrompt(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	var p model.PromptTemplate
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, r, apierr.Parse("invalid request body"))
		return
	}
	if err := s.service.SetPrompt(caller, p); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
