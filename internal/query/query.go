// Package query implements the registry's read-only surface: paginated listing, category facets, topic/rating leaderboards, and
// the memory/counter stats an operator dashboard would poll. None of these
// operations require authentication; they accept any caller, including
// anonymous.
package query

import (
	"sort"

	"github.com/aureuma/skillregistry/internal/model"
	"github.com/aureuma/skillregistry/internal/queue"
	"github.com/aureuma/skillregistry/internal/ratelimit"
	"github.com/aureuma/skillregistry/internal/store"
)

// Surface bundles the stores a read-only query touches. It is constructed
// once alongside registry.Service and shares the same underlying stores —
// it never mutates them.
type Surface struct {
	Catalog    *store.CatalogStore
	Users      *store.UserStore
	Enrichment *queue.EnrichmentQueue
	Analysis   *queue.AnalysisQueue
	Ledger     *ratelimit.Ledger
}

func New(catalog *store.CatalogStore, users *store.UserStore, enrichment *queue.EnrichmentQueue, analysis *queue.AnalysisQueue, ledger *ratelimit.Ledger) *Surface {
	return &Surface{Catalog: catalog, Users: users, Enrichment: enrichment, Analysis: analysis, Ledger: ledger}
}

// Page is one page of a ListSkills result, with the total count before
// pagination so callers can compute page counts.
type Page struct {
	Skills []model.Skill
	Total  int
}

// ListSkills implements list_skills_filtered.
func (s *Surface) ListSkills(limit, offset int, sortBy store.SortKey, search, category string) Page {
	skills, total := s.Catalog.ListFiltered(limit, offset, sortBy, search, category)
	return Page{Skills: skills, Total: total}
}

// SearchSkills implements search_skills.
func (s *Surface) SearchSkills(q string) []store.SearchResult {
	return s.Catalog.SearchSkills(q)
}

// GetSkill implements get_skill.
func (s *Surface) GetSkill(id string) (model.Skill, bool) {
	return s.Catalog.Get(id)
}

// Categories implements category facet listing.
func (s *Surface) Categories() []string {
	return s.Catalog.Categories()
}

// TopByRating returns the n highest-OverallRating skills, descending,
// breaking ties by name for a stable order.
func (s *Surface) TopByRating(n int) []model.Skill {
	all := s.Catalog.All()
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].OverallRating() != all[j].OverallRating() {
			return all[i].OverallRating() > all[j].OverallRating()
		}
		return all[i].Name < all[j].Name
	})
	if n > 0 && n < len(all) {
		all = all[:n]
	}
	return all
}

// TopicScore pairs a skill with its score on one fixed topic, used by
// TopByTopic.
type TopicScore struct {
	Skill model.Skill
	Score int
}

// TopByTopic returns the n skills with the highest score on topic, omitting
// skills with no displayed analysis or no rating for that topic.
func (s *Surface) TopByTopic(topic model.Topic, n int) []TopicScore {
	all := s.Catalog.All()
	scored := make([]TopicScore, 0, len(all))
	for _, sk := range all {
		if sk.Analysis == nil {
			continue
		}
		for _, t := range sk.Analysis.Ratings.Topics {
			if t.Topic == topic {
				scored = append(scored, TopicScore{Skill: sk, Score: t.Score})
				break
			}
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Skill.Name < scored[j].Skill.Name
	})
	if n > 0 && n < len(scored) {
		scored = scored[:n]
	}
	return scored
}

// Unanalyzed returns every skill with no displayed analysis yet.
func (s *Surface) Unanalyzed() []model.Skill {
	all := s.Catalog.All()
	out := make([]model.Skill, 0)
	for _, sk := range all {
		if sk.Analysis == nil {
			out = append(out, sk)
		}
	}
	return out
}

// ContentMissing returns every skill with no SkillMdContent fetched yet —
// the population request_enrichment still needs to process.
func (s *Surface) ContentMissing() []model.Skill {
	all := s.Catalog.All()
	out := make([]model.Skill, 0)
	for _, sk := range all {
		if sk.SkillMdContent == "" {
			out = append(out, sk)
		}
	}
	return out
}

// Stats is the operator-facing snapshot of in-memory counters, analogous to
// a /debug or /status endpoint.
type Stats struct {
	SkillCount          int `json:"skill_count"`
	EnrichmentQueueSize int `json:"enrichment_queue_size"`
	AnalysisQueueSize   int `json:"analysis_queue_size"`
	RateLimitEntries    int `json:"rate_limit_entries"`
	UserCount           int `json:"user_count"`
}

// MemoryStats implements memory/counter stats.
func (s *Surface) MemoryStats() Stats {
	return Stats{
		SkillCount:          s.Catalog.Count(),
		EnrichmentQueueSize: s.Enrichment.Len(),
		AnalysisQueueSize:   s.Analysis.Len(),
		RateLimitEntries:    s.Ledger.Len(),
		UserCount:           len(s.Users.All()),
	}
}
