package model

import "time"

// AnalysisStatus is the closed state-machine enumeration for analysis jobs.
type AnalysisStatus string

const (
	AnalysisPending    AnalysisStatus = "pending"
	AnalysisProcessing AnalysisStatus = "processing"
	AnalysisCompleted  AnalysisStatus = "completed"
	AnalysisFailed     AnalysisStatus = "failed"
)

// AnalysisJob requests a worker run an AI evaluation on one skill snapshot.
type AnalysisJob struct {
	ID                   int64          `json:"id"`
	SkillID              string         `json:"skill_id"`
	Model                string         `json:"model"`
	EncryptedKeyEnvelope string         `json:"encrypted_key_envelope"`
	Requester            Identity       `json:"requester"`
	Status               AnalysisStatus `json:"status"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	Error                *string        `json:"error,omitempty"`
}

// IsTerminal reports whether the job has reached a terminal state eligible
// for retention sweeping.
func (j *AnalysisJob) IsTerminal() bool {
	return j.Status == AnalysisCompleted || j.Status == AnalysisFailed
}

// EnrichmentStatus is the closed state-machine enumeration for enrichment
// jobs.
type EnrichmentStatus string

const (
	EnrichmentPending    EnrichmentStatus = "pending"
	EnrichmentProcessing EnrichmentStatus = "processing"
	EnrichmentCompleted  EnrichmentStatus = "completed"
	EnrichmentFailed     EnrichmentStatus = "failed"
	EnrichmentNotFound   EnrichmentStatus = "not_found"
)

// EnrichmentJob requests a worker fetch upstream content for one skill.
type EnrichmentJob struct {
	ID          int64            `json:"id"`
	SkillID     string           `json:"skill_id"`
	Owner       string           `json:"owner"`
	Repo        string           `json:"repo"`
	Name        string           `json:"name"`
	Status      EnrichmentStatus `json:"status"`
	AutoAnalyze bool             `json:"auto_analyze"`
	Requester   Identity         `json:"requester"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Error       *string          `json:"error,omitempty"`

	ContentFound *bool   `json:"content_found,omitempty"`
	SourceURL    *string `json:"source_url,omitempty"`
}

// IsTerminal reports whether the job has reached a terminal state eligible
// for retention sweeping.
func (j *EnrichmentJob) IsTerminal() bool {
	switch j.Status {
	case EnrichmentCompleted, EnrichmentFailed, EnrichmentNotFound:
		return true
	default:
		return false
	}
}

// IsNonTerminal reports whether the job still counts against the
// at-most-one-non-terminal-job-per-skill invariant.
func (j *EnrichmentJob) IsNonTerminal() bool {
	return j.Status == EnrichmentPending || j.Status == EnrichmentProcessing
}

// EnrichmentClaimView is the lightweight view returned to a worker claiming
// enrichment jobs.
type EnrichmentClaimView struct {
	JobID       int64  `json:"job_id"`
	SkillID     string `json:"skill_id"`
	Owner       string `json:"owner"`
	Repo        string `json:"repo"`
	Name        string `json:"name"`
	AutoAnalyze bool   `json:"auto_analyze"`
}

// EnrichmentResult is the payload a worker posts for submit_enrichment_result.
type EnrichmentResult struct {
	Found       bool                   `json:"found"`
	Content     string                 `json:"content"`
	SourceURL   string                 `json:"source_url,omitempty"`
	FilesFound  []EnrichmentFoundFile  `json:"files_found,omitempty"`
}

// EnrichmentFoundFile is one supplementary file discovered during enrichment.
type EnrichmentFoundFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// AnalysisSnapshot is the skill content materialized for a worker claiming
// an analysis job: skill_md_content is synthesized if absent.
type AnalysisSnapshot struct {
	SkillID        string      `json:"skill_id"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	SkillMdContent string      `json:"skill_md_content"`
	Files          []SkillFile `json:"files"`
}

// AnalysisClaimView is returned to a worker claiming analysis jobs.
type AnalysisClaimView struct {
	JobID                int64            `json:"job_id"`
	SkillID              string           `json:"skill_id"`
	Model                string           `json:"model"`
	EncryptedKeyEnvelope string           `json:"encrypted_key_envelope"`
	Snapshot             AnalysisSnapshot `json:"snapshot"`
}
