package registry

import (
	"github.com/aureuma/skillregistry/internal/apierr"
	"github.com/aureuma/skillregistry/internal/metrics"
	"github.com/aureuma/skillregistry/internal/model"
	"github.com/aureuma/skillregistry/internal/sanitize"
)

// RequestEnrichment implements request_enrichment.
func (s *Service) RequestEnrichment(caller model.Caller, skillID string, autoAnalyze bool) (model.EnrichmentJob, error) {
	if !caller.Authenticated() {
		return model.EnrichmentJob{}, apierr.Unauthorized(apierr.MustAuthenticated)
	}
	skill, ok := s.Catalog.Get(skillID)
	if !ok {
		return model.EnrichmentJob{}, apierr.NotFound("skill not found")
	}
	if skill.SkillMdContent != "" {
		return model.EnrichmentJob{}, apierr.Conflict("skill already has content")
	}
	if s.Enrichment.HasNonTerminal(skillID) {
		return model.EnrichmentJob{}, apierr.Conflict("an enrichment job is already pending for this skill")
	}
	if autoAnalyze {
		if _, ok := s.Users.EncryptedEnvelope(caller.Identity); !ok {
			return model.EnrichmentJob{}, apierr.Validation("auto_analyze requires a stored encrypted key")
		}
	}

	job := s.Enrichment.Enqueue(skillID, skill.Owner, skill.Repo, skill.Name, autoAnalyze, caller.Identity)
	return job, nil
}

// ClaimEnrichmentJobs implements claim_enrichment_jobs.
func (s *Service) ClaimEnrichmentJobs(caller model.Caller, limit int) ([]model.EnrichmentClaimView, error) {
	if !caller.Role.IsWorker() {
		return nil, apierr.Unauthorized("worker role required")
	}
	return s.Enrichment.Claim(limit, s.Tunables.EnrichmentClaimCap), nil
}

// SubmitEnrichmentResult implements submit_enrichment_result.
func (s *Service) SubmitEnrichmentResult(caller model.Caller, jobID int64, result model.EnrichmentResult) error {
	if !caller.Role.IsWorker() {
		return apierr.Unauthorized("worker role required")
	}

	job, ok := s.Enrichment.Get(jobID)
	if !ok {
		return apierr.NotFound("enrichment job not found")
	}

	found := result.Found && result.Content != ""

	if !found {
		err := s.Enrichment.TransitionFromProcessing(jobID, func(j *model.EnrichmentJob) {
			j.Status = model.EnrichmentNotFound
			ok := result.Found
			j.ContentFound = &ok
		})
		if err == nil {
			metrics.JobsCompletedTotal.WithLabelValues("enrichment", "not_found").Inc()
		}
		return err
	}

	clean, err := sanitize.SanitizeSkillContent(result.Content)
	if err != nil {
		return apierr.Validation(err.Error())
	}
	digest := sanitize.Digest(clean)
	now := s.now()

	if err := s.Enrichment.TransitionFromProcessing(jobID, func(j *model.EnrichmentJob) {
		j.Status = model.EnrichmentCompleted
		foundTrue := true
		j.ContentFound = &foundTrue
		if result.SourceURL != "" {
			j.SourceURL = &result.SourceURL
		}
	}); err != nil {
		return err
	}
	metrics.JobsCompletedTotal.WithLabelValues("enrichment", "completed").Inc()

	mutateErr := s.Catalog.Mutate(job.SkillID, func(skill *model.Skill) error {
		skill.SkillMdContent = clean
		skill.UpdatedAt = now

		prependFileHistory(skill, model.FileVersion{
			Path: "SKILL.md", Digest: digest, Size: len(clean),
			FetchedAt: now, FetchedBy: caller.Identity, SourceURL: result.SourceURL,
		})

		if skill.Files == nil {
			skill.Files = make(map[string]model.SkillFile)
		}
		for _, f := range result.FilesFound {
			path, content, err := sanitize.SanitizeSkillFile(f.Path, f.Content)
			if err != nil {
				// Skip the offending file rather than fail the whole
				// submission, consistent with the best-effort posture of
				// the batch update path.
				continue
			}
			fileDigest := sanitize.Digest(content)
			prependFileHistory(skill, model.FileVersion{
				Path: path, Digest: fileDigest, Size: len(content),
				FetchedAt: now, FetchedBy: caller.Identity,
			})
			delete(skill.Files, path)
			skill.Files[path] = model.SkillFile{
				Path: path, Content: content, Digest: fileDigest, Size: len(content),
				Kind: model.ClassifyFileKind(path),
			}
		}

		recomputeChecksumInPlace(skill)
		return nil
	})
	if mutateErr != nil {
		return mutateErr
	}

	if job.AutoAnalyze {
		if envelope, ok := s.Users.EncryptedEnvelope(job.Requester); ok {
			s.Analysis.Enqueue(job.SkillID, model.ModelHaiku, envelope, job.Requester)
		}
	}

	s.triggerRetention()
	return nil
}

func prependFileHistory(skill *model.Skill, v model.FileVersion) {
	skill.FileHistory = append([]model.FileVersion{v}, skill.FileHistory...)
	if len(skill.FileHistory) > model.MaxFileHistory {
		skill.FileHistory = skill.FileHistory[:model.MaxFileHistory]
	}
}

func recomputeChecksumInPlace(skill *model.Skill) {
	entries := make([]sanitize.FileDigestEntry, 0, len(skill.Files))
	for path, f := range skill.Files {
		entries = append(entries, sanitize.FileDigestEntry{Path: path, Digest: f.Digest})
	}
	skill.FilesChecksum = sanitize.CombinedDigest(entries)
}
