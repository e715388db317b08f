package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aureuma/skillregistry/internal/model"
)

func TestEnrichmentQueue_ClaimCapAt20(t *testing.T) {
	q := NewEnrichmentQueue()
	for i := 0; i < 30; i++ {
		q.Enqueue("skill", "owner", "repo", "name", false, "u")
	}
	claimed := q.Claim(30, 20)
	assert.Len(t, claimed, 20)
}

func TestEnrichmentQueue_TransitionRequiresProcessing(t *testing.T) {
	q := NewEnrichmentQueue()
	job := q.Enqueue("skill", "owner", "repo", "name", false, "u")
	err := q.TransitionFromProcessing(job.ID, func(j *model.EnrichmentJob) { j.Status = model.EnrichmentCompleted })
	require.Error(t, err)

	q.Claim(1, 20)
	err = q.TransitionFromProcessing(job.ID, func(j *model.EnrichmentJob) { j.Status = model.EnrichmentCompleted })
	require.NoError(t, err)
	got, ok := q.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, model.EnrichmentCompleted, got.Status)
}

func TestEnrichmentQueue_SweepLeavesNonTerminalAlone(t *testing.T) {
	q := NewEnrichmentQueue()
	job := q.Enqueue("skill", "o", "r", "n", false, "u")
	q.Claim(1, 20) // -> Processing

	removed := q.Sweep(time.Now().UTC().Add(48*time.Hour), 10000)
	assert.Equal(t, 0, removed)
	got, ok := q.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, model.EnrichmentProcessing, got.Status)
}

func TestAnalysisQueue_ClaimCapAt10(t *testing.T) {
	q := NewAnalysisQueue()
	for i := 0; i < 50; i++ {
		q.Enqueue("skill", model.ModelHaiku, "envelope", "u")
	}
	ids := q.ClaimIDs(50, 10)
	assert.Len(t, ids, 10)
}

func TestAnalysisQueue_FailProcessingRequiresProcessing(t *testing.T) {
	q := NewAnalysisQueue()
	job := q.Enqueue("skill", model.ModelHaiku, "envelope", "u")
	err := q.FailProcessing(job.ID, "boom")
	require.Error(t, err)

	_, err = q.TransitionPendingToProcessing(job.ID)
	require.NoError(t, err)
	err = q.FailProcessing(job.ID, "boom")
	require.NoError(t, err)
	got, ok := q.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, model.AnalysisFailed, got.Status)
	require.NotNil(t, got.Error)
	assert.Equal(t, "boom", *got.Error)
}
