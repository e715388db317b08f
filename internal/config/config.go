package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the registry's runtime configuration. Most fields come from
// environment variables via the env(key, def) helper below; the
// retention/quota knobs that rarely change between deploys can instead be
// supplied via an optional TOML file (SR_TUNABLES_PATH).
type Config struct {
	Addr string

	DatabasePath string

	JWTSigningKey string

	PromptDir string

	Tunables Tunables
}

// Tunables are the operational knobs a TOML file can override; zero values
// fall back to the hard-coded defaults in DefaultTunables.
type Tunables struct {
	RetentionWindow    time.Duration `toml:"-"`
	RetentionWindowStr string        `toml:"retention_window"`

	MaxQueueEntries int `toml:"max_queue_entries"`

	InstallRateLimit       int           `toml:"install_rate_limit"`
	InstallRateWindow      time.Duration `toml:"-"`
	InstallRateWindowStr   string        `toml:"install_rate_window"`

	EnrichmentClaimCap int `toml:"enrichment_claim_cap"`
	AnalysisClaimCap   int `toml:"analysis_claim_cap"`

	RetentionSweepCron string `toml:"retention_sweep_cron"`
}

// DefaultTunables returns the registry's baked-in operational defaults,
// used when no TOML override file is present.
func DefaultTunables() Tunables {
	return Tunables{
		RetentionWindow:    24 * time.Hour,
		MaxQueueEntries:    10000,
		InstallRateLimit:   5,
		InstallRateWindow:  time.Hour,
		EnrichmentClaimCap: 20,
		AnalysisClaimCap:   10,
		RetentionSweepCron: "@every 1h",
	}
}

// Load builds Config from the environment, then applies an optional TOML
// tunables file if SR_TUNABLES_PATH is set.
func Load() (Config, error) {
	cfg := Config{
		Addr:          env("SR_ADDR", ":8080"),
		DatabasePath:  env("SR_DB_PATH", "data/skillregistry.sqlite"),
		JWTSigningKey: env("SR_JWT_SIGNING_KEY", ""),
		PromptDir:     env("SR_PROMPT_DIR", "data/prompts"),
		Tunables:      DefaultTunables(),
	}

	if strings.TrimSpace(cfg.JWTSigningKey) == "" {
		return Config{}, errors.New("missing SR_JWT_SIGNING_KEY")
	}

	if path := strings.TrimSpace(env("SR_TUNABLES_PATH", "")); path != "" {
		if err := applyTunablesFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Tunables.resolveDurations(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func applyTunablesFile(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var t Tunables
	if err := toml.Unmarshal(b, &t); err != nil {
		return err
	}
	merged := cfg.Tunables
	if t.MaxQueueEntries > 0 {
		merged.MaxQueueEntries = t.MaxQueueEntries
	}
	if t.InstallRateLimit > 0 {
		merged.InstallRateLimit = t.InstallRateLimit
	}
	if t.EnrichmentClaimCap > 0 {
		merged.EnrichmentClaimCap = t.EnrichmentClaimCap
	}
	if t.AnalysisClaimCap > 0 {
		merged.AnalysisClaimCap = t.AnalysisClaimCap
	}
	if t.RetentionWindowStr != "" {
		merged.RetentionWindowStr = t.RetentionWindowStr
	}
	if t.InstallRateWindowStr != "" {
		merged.InstallRateWindowStr = t.InstallRateWindowStr
	}
	if t.RetentionSweepCron != "" {
		merged.RetentionSweepCron = t.RetentionSweepCron
	}
	cfg.Tunables = merged
	return nil
}

func (t *Tunables) resolveDurations() error {
	if t.RetentionWindowStr != "" {
		d, err := time.ParseDuration(t.RetentionWindowStr)
		if err != nil {
			return err
		}
		t.RetentionWindow = d
	}
	if t.InstallRateWindowStr != "" {
		d, err := time.ParseDuration(t.InstallRateWindowStr)
		if err != nil {
			return err
		}
		t.InstallRateWindow = d
	}
	return nil
}

func env(key, def string) string {
	if v := os.Getenv(key); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

