package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/aureuma/skillregistry/internal/model"
)

// State is the single persisted tuple: skills, users, prompts, jobs and
// their counters, the worker roster, and the rate-limit ledger. Every field
// the current build didn't know about when an older row was written simply
// decodes to its Go zero value, so restoring an older snapshot needs no
// explicit per-version decode path as long as new fields stay additive.
type State struct {
	Skills map[string]model.Skill `json:"skills"`
	Users  map[model.Identity]model.UserProfile `json:"users"`
	Prompts map[string]model.PromptTemplate `json:"prompts"`

	AnalysisJobs   map[int64]model.AnalysisJob `json:"jobs"`
	JobCounter     int64                       `json:"job_counter"`
	EnrichmentJobs map[int64]model.EnrichmentJob `json:"enrichment_jobs"`
	EnrichmentJobCounter int64                   `json:"enrichment_job_counter"`

	// WorkerPrincipals is absent from any snapshot written before the
	// worker roster existed; such a row decodes it as nil, which is
	// already the correct "starts empty" default.
	WorkerPrincipals []model.Identity `json:"worker_principals,omitempty"`

	// RateLimitLedger is likewise additive; older rows simply have no
	// install-rate history to restore, which is an acceptable reset of
	// that particular window on upgrade.
	RateLimitLedger []RateLimitEntry `json:"rate_limit_ledger,omitempty"`
}

// RateLimitEntry mirrors ratelimit.Entry without importing that package,
// to keep internal/store free of a dependency on internal/ratelimit.
type RateLimitEntry struct {
	Caller      model.Identity `json:"caller"`
	SkillID     string         `json:"skill_id"`
	Count       int            `json:"count"`
	WindowStart time.Time      `json:"window_start"`
}

// Save serializes state as the single persisted tuple and upserts the one
// snapshot row.
func (s *Store) Save(ctx context.Context, state State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshot (id, payload, saved_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at
	`, string(payload), time.Now().UTC().Format(time.RFC3339))
	return err
}

// Load reads the snapshot row, if any, and decodes it. ok is false when no
// snapshot has ever been saved (a fresh database), which is not an error.
func (s *Store) Load(ctx context.Context) (State, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT payload FROM snapshot WHERE id = 1`)
	var payload string
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return State{}, false, nil
		}
		return State{}, false, err
	}
	var state State
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return State{}, false, err
	}
	return state, true, nil
}

// ApplyMigrationDefaults fills in the one field that needs more than a bare
// zero-value default after restoring an older snapshot: analysis_history
// seeds itself from the current analysis when absent. The other additive
// fields (file_history, tee_worker_version, prompt_version,
// worker_principals) are already correct as Go zero values once State
// decodes, so they need no code here.
func ApplyMigrationDefaults(state *State) {
	for id, skill := range state.Skills {
		if len(skill.AnalysisHistory) == 0 && skill.Analysis != nil {
			skill.AnalysisHistory = []model.Analysis{*skill.Analysis}
			state.Skills[id] = skill
		}
	}
}
