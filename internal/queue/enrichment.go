// Package queue implements the two pull-based job queues: enrichment and analysis. Both are plain in-memory maps guarded by
// a mutex, following the same single-operation-atomicity shape as
// internal/store's CatalogStore.
package queue

import (
	"sort"
	"sync"
	"time"

	"github.com/aureuma/skillregistry/internal/apierr"
	"github.com/aureuma/skillregistry/internal/model"
)

// EnrichmentQueue holds enrichment jobs keyed by monotonically assigned id.
type EnrichmentQueue struct {
	mu      sync.Mutex
	jobs    map[int64]model.EnrichmentJob
	counter int64
}

func NewEnrichmentQueue() *EnrichmentQueue {
	return &EnrichmentQueue{jobs: make(map[int64]model.EnrichmentJob)}
}

// HasNonTerminal reports whether a Pending or Processing enrichment job
// already exists for skillID.
func (q *EnrichmentQueue) HasNonTerminal(skillID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, j := range q.jobs {
		if j.SkillID == skillID && j.IsNonTerminal() {
			return true
		}
	}
	return false
}

// Enqueue assigns the next monotonic id and inserts a Pending job.
func (q *EnrichmentQueue) Enqueue(skillID, owner, repo, name string, autoAnalyze bool, requester model.Identity) model.EnrichmentJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.counter++
	now := time.Now().UTC()
	job := model.EnrichmentJob{
		ID:          q.counter,
		SkillID:     skillID,
		Owner:       owner,
		Repo:        repo,
		Name:        name,
		Status:      model.EnrichmentPending,
		AutoAnalyze: autoAnalyze,
		Requester:   requester,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	q.jobs[job.ID] = job
	return job
}

// Claim transitions up to min(limit, maxClaim) Pending jobs to Processing
// and returns their lightweight claim views. Selection order iterates job
// ids ascending, which is stable within a single call without
// being a promise of FIFO service across calls.
func (q *EnrichmentQueue) Claim(limit, maxClaim int) []model.EnrichmentClaimView {
	if limit > maxClaim {
		limit = maxClaim
	}
	if limit <= 0 {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	ids := make([]int64, 0, len(q.jobs))
	for id, j := range q.jobs {
		if j.Status == model.EnrichmentPending {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if len(ids) > limit {
		ids = ids[:limit]
	}

	out := make([]model.EnrichmentClaimView, 0, len(ids))
	now := time.Now().UTC()
	for _, id := range ids {
		j := q.jobs[id]
		j.Status = model.EnrichmentProcessing
		j.UpdatedAt = now
		q.jobs[id] = j
		out = append(out, model.EnrichmentClaimView{
			JobID:       j.ID,
			SkillID:     j.SkillID,
			Owner:       j.Owner,
			Repo:        j.Repo,
			Name:        j.Name,
			AutoAnalyze: j.AutoAnalyze,
		})
	}
	return out
}

// Get returns a copy of the job with id.
func (q *EnrichmentQueue) Get(id int64) (model.EnrichmentJob, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	return j, ok
}

// TransitionFromProcessing moves a job out of Processing into one of
// Completed/NotFound/Failed, as decided by fn, which also gets to mutate
// the job's result fields. Any other current status is a contract
// violation.
func (q *EnrichmentQueue) TransitionFromProcessing(id int64, fn func(*model.EnrichmentJob)) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	if !ok {
		return apierr.NotFound("enrichment job not found")
	}
	if j.Status != model.EnrichmentProcessing {
		return apierr.Conflict("enrichment job is not in processing state")
	}
	fn(&j)
	j.UpdatedAt = time.Now().UTC()
	q.jobs[id] = j
	return nil
}

// FailDirectly transitions a job straight to Failed regardless of its
// current state, mirroring AnalysisQueue.FailDirectly. Claim does not call
// it: every selected Pending job moves to Processing without a catalog
// check.
func (q *EnrichmentQueue) FailDirectly(id int64, reason string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	if !ok {
		return
	}
	j.Status = model.EnrichmentFailed
	j.Error = &reason
	j.UpdatedAt = time.Now().UTC()
	q.jobs[id] = j
}

// Sweep removes terminal jobs older than cutoff, then trims down to
// maxEntries if still over, oldest first.
func (q *EnrichmentQueue) Sweep(cutoff time.Time, maxEntries int) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	removed := 0
	for id, j := range q.jobs {
		if j.IsTerminal() && j.UpdatedAt.Before(cutoff) {
			delete(q.jobs, id)
			removed++
		}
	}
	if len(q.jobs) > maxEntries {
		removed += trimOldestTerminal(q.jobs, maxEntries, func(j model.EnrichmentJob) bool { return j.IsTerminal() },
			func(j model.EnrichmentJob) time.Time { return j.UpdatedAt },
			func(id int64) { delete(q.jobs, id) })
	}
	return removed
}

// Len reports the current job count, used by query-surface stats.
func (q *EnrichmentQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// All returns a copy of every job, used only by snapshot/migration.
func (q *EnrichmentQueue) All() (map[int64]model.EnrichmentJob, int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make(map[int64]model.EnrichmentJob, len(q.jobs))
	for k, v := range q.jobs {
		out[k] = v
	}
	return out, q.counter
}

// LoadAll replaces the entire job map and counter, used only by snapshot
// restore.
func (q *EnrichmentQueue) LoadAll(jobs map[int64]model.EnrichmentJob, counter int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = jobs
	q.counter = counter
}

// trimOldestTerminal is shared by both queues' Sweep implementations; a
// small generic helper avoids duplicating the oldest-first trim logic for
// two near-identical job structs.
func trimOldestTerminal[T any](m map[int64]T, maxEntries int, isTerminal func(T) bool, updatedAt func(T) time.Time, del func(int64)) int {
	type idTime struct {
		id int64
		t  time.Time
	}
	candidates := make([]idTime, 0)
	for id, v := range m {
		if isTerminal(v) {
			candidates = append(candidates, idTime{id: id, t: updatedAt(v)})
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].t.Before(candidates[j].t) })

	over := len(m) - maxEntries
	removed := 0
	for _, c := range candidates {
		if over <= 0 {
			break
		}
		del(c.id)
		over--
		removed++
	}
	return removed
}
