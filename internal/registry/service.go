// Package registry is the worker dispatch layer wired on top of the catalog,
// user, prompt, rate-limit, and queue stores. It is the one place that
// knows how those pieces compose into a coherent set of operations callers
// can invoke.
package registry

import (
	"time"

	"go.uber.org/zap"

	"github.com/aureuma/skillregistry/internal/config"
	"github.com/aureuma/skillregistry/internal/prompt"
	"github.com/aureuma/skillregistry/internal/queue"
	"github.com/aureuma/skillregistry/internal/ratelimit"
	"github.com/aureuma/skillregistry/internal/store"
)

// Service composes every store into the operations this package exposes,
// grouped loosely into queries and updates.
type Service struct {
	Catalog    *store.CatalogStore
	Users      *store.UserStore
	Roster     *store.RosterStore
	Enrichment *queue.EnrichmentQueue
	Analysis   *queue.AnalysisQueue
	Ledger     *ratelimit.Ledger
	Prompts    *prompt.Registry

	Tunables config.Tunables
	log      *zap.SugaredLogger

	// retentionSweep is invoked synchronously after every successful job
	// completion. Kept as a field (set via SetRetentionSweep) rather than an
	// import of internal/retention to avoid a dependency cycle, since
	// internal/retention itself depends on these same stores.
	retentionSweep func()
}

func New(tunables config.Tunables, log *zap.SugaredLogger) *Service {
	return &Service{
		Catalog:    store.NewCatalogStore(),
		Users:      store.NewUserStore(),
		Roster:     store.NewRosterStore(),
		Enrichment: queue.NewEnrichmentQueue(),
		Analysis:   queue.NewAnalysisQueue(),
		Ledger:     ratelimit.New(tunables.InstallRateLimit, tunables.InstallRateWindow),
		Prompts:    prompt.New(),
		Tunables:   tunables,
		log:        log,
	}
}

// SetRetentionSweep wires the sweep callback invoked after job completion.
// Called once by internal/retention.New, which passes its own inline sweep.
func (s *Service) SetRetentionSweep(fn func()) {
	s.retentionSweep = fn
}

func (s *Service) triggerRetention() {
	if s.retentionSweep != nil {
		s.retentionSweep()
	}
}

func (s *Service) now() time.Time { return time.Now().UTC() }
