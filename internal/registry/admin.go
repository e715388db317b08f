package registry

import (
	"github.com/aureuma/skillregistry/internal/apierr"
	"github.com/aureuma/skillregistry/internal/model"
)

func requireAdmin(caller model.Caller) error {
	if !caller.Role.IsAdmin() {
		return apierr.Unauthorized("admin role required")
	}
	return nil
}

// AddSkill implements add_skill.
func (s *Service) AddSkill(caller model.Caller, skill model.Skill) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	s.Catalog.AddSkill(skill)
	return nil
}

// AddSkillsBatch implements add_skills_batch.
func (s *Service) AddSkillsBatch(caller model.Caller, skills []model.Skill) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	s.Catalog.AddSkillsBatch(skills)
	return nil
}

// AddSkillsIfNew implements add_skills_if_new, the
// operation backing the admin bulk-ingest endpoint.
func (s *Service) AddSkillsIfNew(caller model.Caller, skills []model.Skill) (int, error) {
	if err := requireAdmin(caller); err != nil {
		return 0, err
	}
	return s.Catalog.AddSkillsIfNew(skills), nil
}

// UpdateSkillMD implements update_skill_md.
func (s *Service) UpdateSkillMD(caller model.Caller, skillID string, text *string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	return s.Catalog.UpdateSkillMD(skillID, text)
}

// UpdateSkillMDBatch implements update_skill_md_batch.
func (s *Service) UpdateSkillMDBatch(caller model.Caller, entries map[string]string) (int, error) {
	if err := requireAdmin(caller); err != nil {
		return 0, err
	}
	return s.Catalog.UpdateSkillMDBatch(entries), nil
}

// SetSkillFiles implements set_skill_files.
func (s *Service) SetSkillFiles(caller model.Caller, skillID string, files []model.SkillFile) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	return s.Catalog.SetSkillFiles(skillID, files)
}

// AddSkillFile implements add_skill_file.
func (s *Service) AddSkillFile(caller model.Caller, skillID string, file model.SkillFile) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	return s.Catalog.AddSkillFile(skillID, file)
}

// SyncInstallCounts implements sync_install_counts.
func (s *Service) SyncInstallCounts(caller model.Caller, counts map[string]int) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	s.Catalog.SyncInstallCounts(counts)
	return nil
}

// ResetAllInstallCounts implements reset_all_install_counts.
func (s *Service) ResetAllInstallCounts(caller model.Caller) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	s.Catalog.ResetAllInstallCounts()
	return nil
}

// ClearAnalysis implements clear_analysis.
func (s *Service) ClearAnalysis(caller model.Caller, skillID string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	return s.Catalog.ClearAnalysis(skillID)
}

// ClearAllAnalyses implements clear_all_analyses.
func (s *Service) ClearAllAnalyses(caller model.Caller) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	s.Catalog.ClearAllAnalyses()
	return nil
}

// ClearAnalysisHistory implements clear_analysis_history.
func (s *Service) ClearAnalysisHistory(caller model.Caller, skillID string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	return s.Catalog.ClearAnalysisHistory(skillID)
}

// ClearAllSkills implements clear_all_skills.
func (s *Service) ClearAllSkills(caller model.Caller) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	s.Catalog.ClearAllSkills()
	return nil
}

// RegisterWorker adds an identity to the worker roster. Role checks read the
// role from the caller's verified token; they do not consult the roster.
func (s *Service) RegisterWorker(caller model.Caller, id model.Identity) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	s.Roster.Add(id)
	return nil
}

// DeregisterWorker removes an identity from the worker roster.
func (s *Service) DeregisterWorker(caller model.Caller, id model.Identity) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	s.Roster.Remove(id)
	return nil
}

// ListWorkers returns the current worker roster.
func (s *Service) ListWorkers(caller model.Caller) ([]model.Identity, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.Roster.All(), nil
}

// SetPrompt implements prompt-registry admin operation: inserts or
// replaces a prompt template, optionally making it the new default.
func (s *Service) SetPrompt(caller model.Caller, p model.PromptTemplate) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	s.Prompts.Set(p)
	return nil
}

// CleanupJobs implements manually-triggered retention sweep,
// available to workers and admins alike per the role table.
func (s *Service) CleanupJobs(caller model.Caller) error {
	if !caller.Role.IsWorker() {
		return apierr.Unauthorized("worker role required")
	}
	s.triggerRetention()
	return nil
}
