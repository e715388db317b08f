package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aureuma/skillregistry/internal/model"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "snapshot.sqlite"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	_, found, err := db.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found, "a fresh database has no snapshot yet")

	state := State{
		Skills: map[string]model.Skill{
			"a": model.NewSkill("a", "Alpha", "d", "o", "r"),
		},
		Users:      map[model.Identity]model.UserProfile{"u1": model.NewUserProfile("u1")},
		Prompts:    map[string]model.PromptTemplate{},
		JobCounter: 3,
		WorkerPrincipals: []model.Identity{"w1"},
	}
	require.NoError(t, db.Save(ctx, state))

	loaded, found, err := db.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(3), loaded.JobCounter)
	assert.Contains(t, loaded.Skills, "a")
	assert.Equal(t, []model.Identity{"w1"}, loaded.WorkerPrincipals)
}

func TestSave_UpsertsSingleRow(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "snapshot.sqlite"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.Save(ctx, State{JobCounter: 1}))
	require.NoError(t, db.Save(ctx, State{JobCounter: 2}))

	loaded, found, err := db.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(2), loaded.JobCounter)
}

func TestApplyMigrationDefaults_SeedsAnalysisHistoryFromDisplayedAnalysis(t *testing.T) {
	skill := model.NewSkill("a", "Alpha", "d", "o", "r")
	analyzedAt := time.Now().UTC()
	skill.Analysis = &model.Analysis{ModelUsed: model.ModelHaiku, AnalyzedAt: analyzedAt}
	state := State{Skills: map[string]model.Skill{"a": skill}}

	ApplyMigrationDefaults(&state)

	got := state.Skills["a"]
	require.Len(t, got.AnalysisHistory, 1)
	assert.Equal(t, model.ModelHaiku, got.AnalysisHistory[0].ModelUsed)
}

func TestApplyMigrationDefaults_LeavesExistingHistoryAlone(t *testing.T) {
	skill := model.NewSkill("a", "Alpha", "d", "o", "r")
	skill.Analysis = &model.Analysis{ModelUsed: model.ModelOpus}
	skill.AnalysisHistory = []model.Analysis{{ModelUsed: model.ModelHaiku}}
	state := State{Skills: map[string]model.Skill{"a": skill}}

	ApplyMigrationDefaults(&state)

	got := state.Skills["a"]
	require.Len(t, got.AnalysisHistory, 1)
	assert.Equal(t, model.ModelHaiku, got.AnalysisHistory[0].ModelUsed)
}
