package registry

import (
	"github.com/aureuma/skillregistry/internal/apierr"
	"github.com/aureuma/skillregistry/internal/metrics"
	"github.com/aureuma/skillregistry/internal/model"
)

// RecordInstall implements record_install: checks the
// sliding-window ledger before incrementing the skill's install counter.
// Anonymous callers are permitted and share model.Anonymous's bucket.
func (s *Service) RecordInstall(caller model.Caller, skillID string) error {
	if !s.Catalog.Exists(skillID) {
		return apierr.NotFound("skill not found")
	}
	if !s.Ledger.Allow(caller.Identity, skillID) {
		metrics.RateLimitRejectionsTotal.Inc()
		return apierr.Conflict("install rate limit exceeded, try again later")
	}
	return s.Catalog.IncrementInstall(skillID)
}
