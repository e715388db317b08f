package queue

import (
	"sort"
	"sync"
	"time"

	"github.com/aureuma/skillregistry/internal/apierr"
	"github.com/aureuma/skillregistry/internal/model"
)

// AnalysisQueue holds analysis jobs keyed by monotonically assigned id.
type AnalysisQueue struct {
	mu      sync.Mutex
	jobs    map[int64]model.AnalysisJob
	counter int64
}

func NewAnalysisQueue() *AnalysisQueue {
	return &AnalysisQueue{jobs: make(map[int64]model.AnalysisJob)}
}

// Enqueue assigns the next monotonic id and inserts a Pending job.
func (q *AnalysisQueue) Enqueue(skillID, modelID, encryptedKeyEnvelope string, requester model.Identity) model.AnalysisJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.counter++
	now := time.Now().UTC()
	job := model.AnalysisJob{
		ID:                   q.counter,
		SkillID:              skillID,
		Model:                modelID,
		EncryptedKeyEnvelope: encryptedKeyEnvelope,
		Requester:            requester,
		Status:               model.AnalysisPending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	q.jobs[job.ID] = job
	return job
}

// Get returns a copy of the job with id.
func (q *AnalysisQueue) Get(id int64) (model.AnalysisJob, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	return j, ok
}

// ClaimIDs returns up to min(limit, maxClaim) Pending job ids, ascending,
// without mutating state; the caller (internal/registry) decides per-job
// whether to transition to Processing or fail the job directly when its
// skill has been deleted, then calls TransitionPendingToProcessing or
// FailDirectly accordingly.
func (q *AnalysisQueue) ClaimIDs(limit, maxClaim int) []int64 {
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
		if j.Status == model.AnalysisPending {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}

// TransitionPendingToProcessing moves a Pending job to Processing and
// returns its new state. Returns an error if the job is no longer Pending
// (another claim call or a concurrent cleanup raced it).
func (q *AnalysisQueue) TransitionPendingToProcessing(id int64) (model.AnalysisJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	if !ok {
		return model.AnalysisJob{}, apierr.NotFound("analysis job not found")
	}
	if j.Status != model.AnalysisPending {
		return model.AnalysisJob{}, apierr.Conflict("analysis job is not pending")
	}
	j.Status = model.AnalysisProcessing
	j.UpdatedAt = time.Now().UTC()
	q.jobs[id] = j
	return j, nil
}

// FailDirectly transitions a job straight to Failed, used when claim
// discovers the underlying skill has been deleted since the job was
// created.
func (q *AnalysisQueue) FailDirectly(id int64, reason string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	if !ok {
		return
	}
	j.Status = model.AnalysisFailed
	j.Error = &reason
	j.UpdatedAt = time.Now().UTC()
	q.jobs[id] = j
}

// CompleteProcessing transitions a Processing job to Completed, clearing
// any prior error.
func (q *AnalysisQueue) CompleteProcessing(id int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	if !ok {
		return apierr.NotFound("analysis job not found")
	}
	if j.Status != model.AnalysisProcessing {
		return apierr.Conflict("analysis job is not in processing state")
	}
	j.Status = model.AnalysisCompleted
	j.Error = nil
	j.UpdatedAt = time.Now().UTC()
	q.jobs[id] = j
	return nil
}

// FailProcessing transitions a Processing job to Failed with a recorded
// reason (submit_job_error). Any other current status is rejected with a
// conflict, the same precondition CompleteProcessing enforces.
func (q *AnalysisQueue) FailProcessing(id int64, reason string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	if !ok {
		return apierr.NotFound("analysis job not found")
	}
	if j.Status != model.AnalysisProcessing {
		return apierr.Conflict("analysis job is not in processing state")
	}
	j.Status = model.AnalysisFailed
	j.Error = &reason
	j.UpdatedAt = time.Now().UTC()
	q.jobs[id] = j
	return nil
}

// Sweep removes terminal jobs older than cutoff, then trims down to
// maxEntries if still over, oldest first.
func (q *AnalysisQueue) Sweep(cutoff time.Time, maxEntries int) int {
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
		removed += trimOldestTerminal(q.jobs, maxEntries, func(j model.AnalysisJob) bool { return j.IsTerminal() },
			func(j model.AnalysisJob) time.Time { return j.UpdatedAt },
			func(id int64) { delete(q.jobs, id) })
	}
	return removed
}

// Len reports the current job count, used by query-surface stats.
func (q *AnalysisQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// All returns a copy of every job, used only by snapshot/migration.
func (q *AnalysisQueue) All() (map[int64]model.AnalysisJob, int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make(map[int64]model.AnalysisJob, len(q.jobs))
	for k, v := range q.jobs {
		out[k] = v
	}
	return out, q.counter
}

// LoadAll replaces the entire job map and counter, used only by snapshot
// restore.
func (q *AnalysisQueue) LoadAll(jobs map[int64]model.AnalysisJob, counter int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = jobs
	q.counter = counter
}
