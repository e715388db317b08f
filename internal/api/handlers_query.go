package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aureuma/skillregistry/internal/apierr"
	"github.com/aureuma/skillregistry/internal/store"
)

func (s *Server) handleListSkills(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := intParam(q, "limit", 20)
	offset := intParam(q, "offset", 0)
	sortBy := store.SortKey(q.Get("sort"))
	if sortBy == "" {
		sortBy = store.SortInstalls
	}

	page := s.surface.ListSkills(limit, offset, sortBy, q.Get("search"), q.Get("category"))
	writeJSON(w, http.StatusOK, map[string]any{"skills": page.Skills, "total": page.Total})
}

func (s *Server) handleSearchSkills(w http.ResponseWriter, r *http.Request) {
	results := s.surface.SearchSkills(r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleGetSkill(w http.ResponseWriter, r *http.Request) {
	skill, ok := s.surface.GetSkill(chi.URLParam(r, "skillID"))
	if !ok {
		writeError(w, r, apierr.NotFound("skill not found"))
		return
	}
	writeJSON(w, http.StatusOK, skill)
}

func (s *Server) handleGetSkillAnalysis(w http.ResponseWriter, r *http.Request) {
	skill, ok := s.surface.GetSkill(chi.URLParam(r, "skillID"))
	if !ok {
		writeError(w, r, apierr.NotFound("skill not found"))
		return
	}
	if skill.Analysis == nil {
		writeError(w, r, apierr.NotFound("skill has not been analyzed"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"analysis": skill.Analysis,
		"history":  skill.AnalysisHistory,
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": s.surface.Categories()})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.surface.MemoryStats())
}

func intParam(q interface{ Get(string) string }, key string, def int) int {
	v := q.Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
