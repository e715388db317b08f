package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aureuma/skillregistry/internal/apierr"
	"github.com/aureuma/skillregistry/internal/config"
	"github.com/aureuma/skillregistry/internal/model"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	tunables := config.DefaultTunables()
	tunables.InstallRateLimit = 2
	return New(tunables, zap.NewNop().Sugar())
}

const analysisJSON = `{"ratings":{"overall":4.5,"topics":[{"topic":"security","score":90,"confidence":80}]},"primary_category":"productivity","summary":"s"}`

func seedSkill(s *Service, id string) model.Skill {
	skill := model.NewSkill(id, "demo", "a demo skill", "acme", "demo-repo")
	s.Catalog.AddSkill(skill)
	return skill
}

func TestRequestEnrichment_RejectsAnonymous(t *testing.T) {
	s := newTestService(t)
	seedSkill(s, "s1")
	_, err := s.RequestEnrichment(model.Caller{Identity: model.Anonymous, Role: model.RoleUser}, "s1", false)
	var ae *apierr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apierr.KindUnauthorized, ae.Kind)
}

func TestRequestEnrichment_RejectsMissingSkill(t *testing.T) {
	s := newTestService(t)
	_, err := s.RequestEnrichment(model.Caller{Identity: "u1", Role: model.RoleUser}, "missing", false)
	var ae *apierr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apierr.KindNotFound, ae.Kind)
}

func TestRequestEnrichment_RejectsDuplicatePending(t *testing.T) {
	s := newTestService(t)
	seedSkill(s, "s1")
	caller := model.Caller{Identity: "u1", Role: model.RoleUser}
	_, err := s.RequestEnrichment(caller, "s1", false)
	require.NoError(t, err)
	_, err = s.RequestEnrichment(caller, "s1", false)
	var ae *apierr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apierr.KindConflict, ae.Kind)
}

func TestRequestEnrichment_AutoAnalyzeRequiresStoredKey(t *testing.T) {
	s := newTestService(t)
	seedSkill(s, "s1")
	caller := model.Caller{Identity: "u1", Role: model.RoleUser}
	_, err := s.RequestEnrichment(caller, "s1", true)
	var ae *apierr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apierr.KindValidation, ae.Kind)
}

func TestEnrichmentLifecycle_AutoAnalyzeEnqueuesAnalysisJob(t *testing.T) {
	s := newTestService(t)
	seedSkill(s, "s1")
	caller := model.Caller{Identity: "u1", Role: model.RoleUser}
	require.NoError(t, s.Users.SetEncryptedKey(caller.Identity, "ab"+stringsRepeat("cd", 27)))

	job, err := s.RequestEnrichment(caller, "s1", true)
	require.NoError(t, err)

	worker := model.Caller{Identity: "w1", Role: model.RoleWorker}
	_, err = s.ClaimEnrichmentJobs(worker, 10)
	require.NoError(t, err)

	err = s.SubmitEnrichmentResult(worker, job.ID, model.EnrichmentResult{
		Found:   true,
		Content: "# demo\n\nSome content here.",
	})
	require.NoError(t, err)

	skill, ok := s.Catalog.Get("s1")
	require.True(t, ok)
	assert.NotEmpty(t, skill.SkillMdContent)
	assert.Equal(t, 1, s.Analysis.Len())
}

func TestSubmitEnrichmentResult_RequiresWorkerRole(t *testing.T) {
	s := newTestService(t)
	seedSkill(s, "s1")
	caller := model.Caller{Identity: "u1", Role: model.RoleUser}
	job, err := s.RequestEnrichment(caller, "s1", false)
	require.NoError(t, err)

	err = s.SubmitEnrichmentResult(caller, job.ID, model.EnrichmentResult{Found: true, Content: "x"})
	var ae *apierr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apierr.KindUnauthorized, ae.Kind)
}

func TestSubmitEnrichmentResult_NotFoundTransitionsJob(t *testing.T) {
	s := newTestService(t)
	seedSkill(s, "s1")
	caller := model.Caller{Identity: "u1", Role: model.RoleUser}
	job, err := s.RequestEnrichment(caller, "s1", false)
	require.NoError(t, err)

	worker := model.Caller{Identity: "w1", Role: model.RoleWorker}
	_, err = s.ClaimEnrichmentJobs(worker, 10)
	require.NoError(t, err)

	err = s.SubmitEnrichmentResult(worker, job.ID, model.EnrichmentResult{Found: false})
	require.NoError(t, err)

	got, ok := s.Enrichment.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, model.EnrichmentNotFound, got.Status)
}

func TestRequestAnalysis_RejectsDuplicateModel(t *testing.T) {
	s := newTestService(t)
	seedSkill(s, "s1")
	caller := model.Caller{Identity: "u1", Role: model.RoleUser}
	require.NoError(t, s.Users.SetEncryptedKey(caller.Identity, "ab"+stringsRepeat("cd", 27)))

	_, err := s.RequestAnalysis(caller, "s1", model.ModelHaiku)
	require.NoError(t, err)

	worker := model.Caller{Identity: "w1", Role: model.RoleWorker}
	claims, err := s.ClaimPendingJobs(worker, 10)
	require.NoError(t, err)
	require.Len(t, claims, 1)

	err = s.SubmitJobResult(worker, claims[0].JobID, analysisJSON)
	require.NoError(t, err)

	_, err = s.RequestAnalysis(caller, "s1", model.ModelHaiku)
	var ae *apierr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apierr.KindConflict, ae.Kind)
}

func TestRequestAnalysis_RequiresEncryptedKey(t *testing.T) {
	s := newTestService(t)
	seedSkill(s, "s1")
	caller := model.Caller{Identity: "u1", Role: model.RoleUser}
	_, err := s.RequestAnalysis(caller, "s1", model.ModelHaiku)
	var ae *apierr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apierr.KindValidation, ae.Kind)
}

func TestSubmitJobResult_StrongerModelPromotes(t *testing.T) {
	s := newTestService(t)
	seedSkill(s, "s1")
	caller := model.Caller{Identity: "u1", Role: model.RoleUser}
	require.NoError(t, s.Users.SetEncryptedKey(caller.Identity, "ab"+stringsRepeat("cd", 27)))
	worker := model.Caller{Identity: "w1", Role: model.RoleWorker}

	_, err := s.RequestAnalysis(caller, "s1", model.ModelHaiku)
	require.NoError(t, err)
	claims, err := s.ClaimPendingJobs(worker, 10)
	require.NoError(t, err)
	require.NoError(t, s.SubmitJobResult(worker, claims[0].JobID, analysisJSON))

	skill, _ := s.Catalog.Get("s1")
	require.NotNil(t, skill.Analysis)
	assert.Equal(t, model.ModelHaiku, skill.Analysis.ModelUsed)

	_, err = s.RequestAnalysis(caller, "s1", model.ModelOpus)
	require.NoError(t, err)
	claims, err = s.ClaimPendingJobs(worker, 10)
	require.NoError(t, err)
	require.NoError(t, s.SubmitJobResult(worker, claims[0].JobID, analysisJSON))

	skill, _ = s.Catalog.Get("s1")
	require.NotNil(t, skill.Analysis)
	assert.Equal(t, model.ModelOpus, skill.Analysis.ModelUsed)
	assert.Len(t, skill.AnalysisHistory, 2)
}

func TestClaimPendingJobs_SkillDeletedFailsDirectly(t *testing.T) {
	s := newTestService(t)
	seedSkill(s, "s1")
	caller := model.Caller{Identity: "u1", Role: model.RoleUser}
	require.NoError(t, s.Users.SetEncryptedKey(caller.Identity, "ab"+stringsRepeat("cd", 27)))
	_, err := s.RequestAnalysis(caller, "s1", model.ModelHaiku)
	require.NoError(t, err)

	s.Catalog.ClearAllSkills()

	worker := model.Caller{Identity: "w1", Role: model.RoleWorker}
	claims, err := s.ClaimPendingJobs(worker, 10)
	require.NoError(t, err)
	assert.Empty(t, claims)
}

func TestRecordInstall_RateLimited(t *testing.T) {
	s := newTestService(t)
	seedSkill(s, "s1")
	caller := model.Caller{Identity: "u1", Role: model.RoleUser}

	require.NoError(t, s.RecordInstall(caller, "s1"))
	require.NoError(t, s.RecordInstall(caller, "s1"))
	err := s.RecordInstall(caller, "s1")
	var ae *apierr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apierr.KindConflict, ae.Kind)

	skill, _ := s.Catalog.Get("s1")
	assert.Equal(t, 2, skill.InstallCount)
}

func TestRecordInstall_MissingSkill(t *testing.T) {
	s := newTestService(t)
	caller := model.Caller{Identity: "u1", Role: model.RoleUser}
	err := s.RecordInstall(caller, "missing")
	var ae *apierr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apierr.KindNotFound, ae.Kind)
}

func TestAddSkill_RequiresAdmin(t *testing.T) {
	s := newTestService(t)
	err := s.AddSkill(model.Caller{Identity: "u1", Role: model.RoleUser}, model.NewSkill("s1", "n", "d", "o", "r"))
	var ae *apierr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apierr.KindUnauthorized, ae.Kind)

	require.NoError(t, s.AddSkill(model.Caller{Identity: "a1", Role: model.RoleAdmin}, model.NewSkill("s1", "n", "d", "o", "r")))
	assert.True(t, s.Catalog.Exists("s1"))
}

func TestRetentionSweepCallback_InvokedAfterJobCompletion(t *testing.T) {
	s := newTestService(t)
	seedSkill(s, "s1")
	called := false
	s.SetRetentionSweep(func() { called = true })

	caller := model.Caller{Identity: "u1", Role: model.RoleUser}
	require.NoError(t, s.Users.SetEncryptedKey(caller.Identity, "ab"+stringsRepeat("cd", 27)))
	_, err := s.RequestAnalysis(caller, "s1", model.ModelHaiku)
	require.NoError(t, err)

	worker := model.Caller{Identity: "w1", Role: model.RoleWorker}
	claims, err := s.ClaimPendingJobs(worker, 10)
	require.NoError(t, err)
	require.NoError(t, s.SubmitJobResult(worker, claims[0].JobID, analysisJSON))

	assert.True(t, called)
}

func stringsRepeat(s string, n int) string {
	out := make([]byte, 0, len(s)*n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}
