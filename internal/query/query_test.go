package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aureuma/skillregistry/internal/model"
	"github.com/aureuma/skillregistry/internal/queue"
	"github.com/aureuma/skillregistry/internal/ratelimit"
	"github.com/aureuma/skillregistry/internal/store"
)

func newTestSurface() (*Surface, *store.CatalogStore) {
	catalog := store.NewCatalogStore()
	users := store.NewUserStore()
	surface := New(catalog, users, queue.NewEnrichmentQueue(), queue.NewAnalysisQueue(), ratelimit.New(5, time.Hour))
	return surface, catalog
}

func TestListSkills_PageAndTotal(t *testing.T) {
	surface, catalog := newTestSurface()
	catalog.AddSkill(model.NewSkill("a", "Alpha", "d", "o", "r"))
	catalog.AddSkill(model.NewSkill("b", "Beta", "d", "o", "r"))

	page := surface.ListSkills(1, 0, store.SortName, "", "")
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Skills, 1)
	assert.Equal(t, "Alpha", page.Skills[0].Name)
}

func TestTopByRating_BreaksTiesByName(t *testing.T) {
	surface, catalog := newTestSurface()
	zed := model.NewSkill("z", "Zed", "d", "o", "r")
	zed.Analysis = &model.Analysis{Ratings: model.Ratings{Overall: 5}}
	alpha := model.NewSkill("a", "Alpha", "d", "o", "r")
	alpha.Analysis = &model.Analysis{Ratings: model.Ratings{Overall: 5}}
	catalog.AddSkill(zed)
	catalog.AddSkill(alpha)

	top := surface.TopByRating(10)
	require.Len(t, top, 2)
	assert.Equal(t, "Alpha", top[0].Name)
}

func TestUnanalyzed_OnlyReturnsSkillsWithoutDisplayedAnalysis(t *testing.T) {
	surface, catalog := newTestSurface()
	withAnalysis := model.NewSkill("a", "Alpha", "d", "o", "r")
	withAnalysis.Analysis = &model.Analysis{}
	catalog.AddSkill(withAnalysis)
	catalog.AddSkill(model.NewSkill("b", "Beta", "d", "o", "r"))

	unanalyzed := surface.Unanalyzed()
	require.Len(t, unanalyzed, 1)
	assert.Equal(t, "b", unanalyzed[0].ID)
}

func TestMemoryStats_ReflectsUnderlyingStores(t *testing.T) {
	surface, catalog := newTestSurface()
	catalog.AddSkill(model.NewSkill("a", "Alpha", "d", "o", "r"))

	stats := surface.MemoryStats()
	assert.Equal(t, 1, stats.SkillCount)
	assert.Equal(t, 0, stats.EnrichmentQueueSize)
}
