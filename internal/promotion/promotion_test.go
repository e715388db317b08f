package promotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aureuma/skillregistry/internal/model"
)

func TestApply_StrongerModelWinsDisplay(t *testing.T) {
	haiku := model.Analysis{ModelUsed: model.ModelHaiku}
	displayed, history, promoted := Apply(nil, nil, haiku)
	require.NotNil(t, displayed)
	assert.True(t, promoted)
	assert.Equal(t, model.ModelHaiku, displayed.ModelUsed)

	opus := model.Analysis{ModelUsed: model.ModelOpus}
	displayed, history, promoted = Apply(displayed, history, opus)
	require.NotNil(t, displayed)
	assert.True(t, promoted)
	assert.Contains(t, displayed.ModelUsed, "opus")
	assert.Equal(t, model.ModelOpus, history[0].ModelUsed)
	assert.Equal(t, model.ModelHaiku, history[1].ModelUsed)
}

func TestApply_WeakerModelLosesDisplay(t *testing.T) {
	opus := model.Analysis{ModelUsed: model.ModelOpus}
	displayed, history, _ := Apply(nil, nil, opus)

	haiku := model.Analysis{ModelUsed: model.ModelHaiku}
	displayed, history, promoted := Apply(displayed, history, haiku)

	require.NotNil(t, displayed)
	assert.False(t, promoted)
	assert.Equal(t, model.ModelOpus, displayed.ModelUsed)
	assert.Equal(t, model.ModelHaiku, history[0].ModelUsed)
}

func TestApply_HistoryCappedAt20(t *testing.T) {
	var history []model.Analysis
	var displayed *model.Analysis
	for i := 0; i < 25; i++ {
		displayed, history, _ = Apply(displayed, history, model.Analysis{ModelUsed: model.ModelHaiku})
	}
	assert.Len(t, history, model.MaxAnalysisHistory)
}

func TestHasModelInHistory(t *testing.T) {
	history := []model.Analysis{{ModelUsed: model.ModelHaiku}}
	assert.True(t, HasModelInHistory(history, model.ModelHaiku))
	assert.False(t, HasModelInHistory(history, model.ModelOpus))
}
