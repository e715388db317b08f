// Package retention schedules the periodic sweep and drives the
// persisted-state snapshot save/restore around it. It is the one package
// that knows about both internal/registry's Service and internal/store's
// sqlite-backed Store, since neither of those packages may depend on the
// other without a cycle.
package retention

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/aureuma/skillregistry/internal/config"
	"github.com/aureuma/skillregistry/internal/metrics"
	"github.com/aureuma/skillregistry/internal/ratelimit"
	"github.com/aureuma/skillregistry/internal/registry"
	"github.com/aureuma/skillregistry/internal/store"
)

// Manager owns the cron schedule that periodically sweeps terminal jobs and
// persists a snapshot of registry state.
type Manager struct {
	service  *registry.Service
	db       *store.Store
	tunables config.Tunables
	log      *zap.SugaredLogger

	cron *cron.Cron
}

// New constructs a Manager and registers its sweep on tunables'
// RetentionSweepCron schedule, but does not start the scheduler; call Start.
func New(service *registry.Service, db *store.Store, tunables config.Tunables, log *zap.SugaredLogger) (*Manager, error) {
	m := &Manager{service: service, db: db, tunables: tunables, log: log, cron: cron.New()}

	if _, err := m.cron.AddFunc(tunables.RetentionSweepCron, m.runScheduled); err != nil {
		return nil, err
	}

	service.SetRetentionSweep(m.runInline)
	return m, nil
}

// Start begins the cron scheduler in its own goroutine (robfig/cron owns the
// goroutine lifecycle internally).
func (m *Manager) Start() {
	m.cron.Start()
}

// Stop halts the scheduler, waiting for any in-flight sweep to finish.
func (m *Manager) Stop() {
	<-m.cron.Stop().Done()
}

// runScheduled is the cron-triggered sweep; it also persists a snapshot
// afterward so a restart never loses more than one cron period of state.
func (m *Manager) runScheduled() {
	removed := m.sweep()
	m.log.Infow("retention sweep completed", "removed", removed)
	if err := m.SaveSnapshot(context.Background()); err != nil {
		m.log.Errorw("snapshot save failed after scheduled sweep", "error", err)
	}
}

// runInline is invoked synchronously by registry.Service after every
// successful job completion. It intentionally skips the snapshot
// write to avoid putting sqlite I/O on every request's hot path; the cron
// schedule and process shutdown both cover that.
func (m *Manager) runInline() {
	m.sweep()
}

func (m *Manager) sweep() int {
	cutoff := time.Now().UTC().Add(-m.tunables.RetentionWindow)

	enrichmentRemoved := m.service.Enrichment.Sweep(cutoff, m.tunables.MaxQueueEntries)
	analysisRemoved := m.service.Analysis.Sweep(cutoff, m.tunables.MaxQueueEntries)
	ledgerRemoved := m.service.Ledger.Sweep(cutoff)

	metrics.RetentionSweptTotal.WithLabelValues("enrichment_jobs").Add(float64(enrichmentRemoved))
	metrics.RetentionSweptTotal.WithLabelValues("analysis_jobs").Add(float64(analysisRemoved))
	metrics.RetentionSweptTotal.WithLabelValues("rate_limit_entries").Add(float64(ledgerRemoved))

	metrics.CatalogSize.Set(float64(m.service.Catalog.Count()))
	metrics.EnrichmentQueueDepth.Set(float64(m.service.Enrichment.Len()))
	metrics.AnalysisQueueDepth.Set(float64(m.service.Analysis.Len()))

	return enrichmentRemoved + analysisRemoved + ledgerRemoved
}

// SaveSnapshot serializes the Service's current state into the single
// persisted tuple and writes it to sqlite.
func (m *Manager) SaveSnapshot(ctx context.Context) error {
	analysisJobs, jobCounter := m.service.Analysis.All()
	enrichmentJobs, enrichmentCounter := m.service.Enrichment.All()

	ledgerEntries := m.service.Ledger.Snapshot()
	rateLimitEntries := make([]store.RateLimitEntry, 0, len(ledgerEntries))
	for _, e := range ledgerEntries {
		rateLimitEntries = append(rateLimitEntries, store.RateLimitEntry{
			Caller: e.Caller, SkillID: e.SkillID, Count: e.Count, WindowStart: e.WindowStart,
		})
	}

	state := store.State{
		Skills:               m.service.Catalog.AllMap(),
		Users:                m.service.Users.All(),
		Prompts:              m.service.Prompts.All(),
		AnalysisJobs:         analysisJobs,
		JobCounter:           jobCounter,
		EnrichmentJobs:       enrichmentJobs,
		EnrichmentJobCounter: enrichmentCounter,
		WorkerPrincipals:     m.service.Roster.All(),
		RateLimitLedger:      rateLimitEntries,
	}
	return m.db.Save(ctx, state)
}

// RestoreSnapshot loads the persisted tuple, if any, applies the migration
// defaults, and loads every store. ok reports whether a snapshot existed to
// restore.
func (m *Manager) RestoreSnapshot(ctx context.Context) (ok bool, err error) {
	state, found, err := m.db.Load(ctx)
	if err != nil || !found {
		return false, err
	}
	store.ApplyMigrationDefaults(&state)

	m.service.Catalog.LoadAll(state.Skills)
	m.service.Users.LoadAll(state.Users)
	m.service.Prompts.LoadAll(state.Prompts)
	m.service.Analysis.LoadAll(state.AnalysisJobs, state.JobCounter)
	m.service.Enrichment.LoadAll(state.EnrichmentJobs, state.EnrichmentJobCounter)
	m.service.Roster.LoadAll(state.WorkerPrincipals)

	entries := make([]ratelimit.Entry, 0, len(state.RateLimitLedger))
	for _, e := range state.RateLimitLedger {
		entries = append(entries, ratelimit.Entry{Caller: e.Caller, SkillID: e.SkillID, Count: e.Count, WindowStart: e.WindowStart})
	}
	m.service.Ledger.Restore(entries)

	// The default prompt's template and version are always replaced with
	// the values hard-coded in the current build on every successful
	// restore, regardless of what the snapshot's own default prompt held.
	m.service.Prompts.ReplaceDefaultWithBuildConstant()

	return true, nil
}
