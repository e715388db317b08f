package registry

import (
	"fmt"

	"github.com/aureuma/skillregistry/internal/apierr"
	"github.com/aureuma/skillregistry/internal/dispatch"
	"github.com/aureuma/skillregistry/internal/metrics"
	"github.com/aureuma/skillregistry/internal/model"
	"github.com/aureuma/skillregistry/internal/promotion"
)

// RequestAnalysis implements request_analysis, refusing a
// duplicate request for a model already present in the skill's analysis
// history.
func (s *Service) RequestAnalysis(caller model.Caller, skillID, modelID string) (model.AnalysisJob, error) {
	if !caller.Authenticated() {
		return model.AnalysisJob{}, apierr.Unauthorized(apierr.MustAuthenticated)
	}
	skill, ok := s.Catalog.Get(skillID)
	if !ok {
		return model.AnalysisJob{}, apierr.NotFound("skill not found")
	}
	if promotion.HasModelInHistory(skill.AnalysisHistory, modelID) {
		return model.AnalysisJob{}, apierr.Conflict("this model has already analyzed this skill")
	}
	envelope, ok := s.Users.EncryptedEnvelope(caller.Identity)
	if !ok {
		return model.AnalysisJob{}, apierr.Validation("no encrypted key on file; call set_my_encrypted_key first")
	}

	return s.Analysis.Enqueue(skillID, modelID, envelope, caller.Identity), nil
}

// ClaimPendingJobs implements claim_pending_jobs: materializes a
// snapshot of skill content for each claimed job, synthesizing
// skill_md_content when the skill has none yet. A job whose skill has been
// deleted since it was enqueued fails directly and is not returned.
func (s *Service) ClaimPendingJobs(caller model.Caller, limit int) ([]model.AnalysisClaimView, error) {
	if !caller.Role.IsWorker() {
		return nil, apierr.Unauthorized("worker role required")
	}

	ids := s.Analysis.ClaimIDs(limit, s.Tunables.AnalysisClaimCap)
	views := make([]model.AnalysisClaimView, 0, len(ids))
	for _, id := range ids {
		job, ok := s.Analysis.Get(id)
		if !ok {
			continue
		}
		skill, ok := s.Catalog.Get(job.SkillID)
		if !ok {
			s.Analysis.FailDirectly(id, "skill no longer exists")
			continue
		}
		job, err := s.Analysis.TransitionPendingToProcessing(id)
		if err != nil {
			// Another claim call raced us; skip silently.
			continue
		}

		content := skill.SkillMdContent
		if content == "" {
			content = fmt.Sprintf("# %s\n\n%s", skill.Name, skill.Description)
		}

		views = append(views, model.AnalysisClaimView{
			JobID:                job.ID,
			SkillID:              job.SkillID,
			Model:                job.Model,
			EncryptedKeyEnvelope: job.EncryptedKeyEnvelope,
			Snapshot: model.AnalysisSnapshot{
				SkillID:        skill.ID,
				Name:           skill.Name,
				Description:    skill.Description,
				SkillMdContent: content,
				Files:          skill.SortedFiles(),
			},
		})
	}
	return views, nil
}

// SubmitJobResult implements submit_job_result.
func (s *Service) SubmitJobResult(caller model.Caller, jobID int64, raw string) error {
	return s.submitJobResult(caller, jobID, raw, nil, nil)
}

// SubmitJobResultWithMetadata implements the metadata-carrying variant that
// attaches tee_worker_version/prompt_version to the resulting analysis.
func (s *Service) SubmitJobResultWithMetadata(caller model.Caller, jobID int64, raw string, teeWorkerVersion, promptVersion *string) error {
	return s.submitJobResult(caller, jobID, raw, teeWorkerVersion, promptVersion)
}

func (s *Service) submitJobResult(caller model.Caller, jobID int64, raw string, teeWorkerVersion, promptVersion *string) error {
	if !caller.Role.IsWorker() {
		return apierr.Unauthorized("worker role required")
	}

	job, ok := s.Analysis.Get(jobID)
	if !ok {
		return apierr.NotFound("analysis job not found")
	}

	analysis, err := dispatch.ParseWorkerResult(raw)
	if err != nil {
		return err
	}

	now := s.now()
	analysis.AnalyzedAt = now
	// analyzed_by always records the job's original requester, never the
	// submitting worker's identity.
	analysis.AnalyzedBy = job.Requester
	analysis.ModelUsed = job.Model
	analysis.TeeWorkerVersion = teeWorkerVersion
	analysis.PromptVersion = promptVersion

	if err := s.Analysis.CompleteProcessing(jobID); err != nil {
		return err
	}
	metrics.JobsCompletedTotal.WithLabelValues("analysis", "completed").Inc()

	promoted := false
	if err := s.Catalog.Mutate(job.SkillID, func(skill *model.Skill) error {
		displayed, history, wasPromoted := promotion.Apply(skill.Analysis, skill.AnalysisHistory, analysis)
		promoted = wasPromoted
		skill.Analysis = displayed
		skill.AnalysisHistory = history
		skill.UpdatedAt = now
		return nil
	}); err != nil {
		return err
	}
	if promoted {
		metrics.PromotionEventsTotal.WithLabelValues("promoted").Inc()
	} else {
		metrics.PromotionEventsTotal.WithLabelValues("archived").Inc()
	}

	s.Users.RecordAnalysisPerformed(job.Requester)
	s.triggerRetention()
	return nil
}

// SubmitJobError implements submit_job_error.
func (s *Service) SubmitJobError(caller model.Caller, jobID int64, reason string) error {
	if !caller.Role.IsWorker() {
		return apierr.Unauthorized("worker role required")
	}
	if err := s.Analysis.FailProcessing(jobID, reason); err != nil {
		return err
	}
	metrics.JobsCompletedTotal.WithLabelValues("analysis", "failed").Inc()
	s.triggerRetention()
	return nil
}
