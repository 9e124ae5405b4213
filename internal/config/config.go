package config

import (
	"slices"
	"time"

	"github.com/tekoetch/investorscout/internal/consolidate"
	"github.com/tekoetch/investorscout/internal/firstpass"
	"github.com/tekoetch/investorscout/internal/leads"
	"github.com/tekoetch/investorscout/internal/taxonomy"
	"github.com/tekoetch/investorscout/internal/verify"
)

// Config represents the application configuration
type Config struct {
	Database     DatabaseConfig     `toml:"database"`
	Search       SearchConfig       `toml:"search"`
	Discovery    DiscoveryConfig    `toml:"discovery"`
	Keywords     KeywordsConfig     `toml:"keywords"`
	Region       RegionConfig       `toml:"region"`
	Scoring      firstpass.Weights  `toml:"scoring"`
	Verification VerificationConfig `toml:"verification"`
	Verdict      consolidate.Config `toml:"verdict"`
	Enrichment   EnrichmentConfig   `toml:"enrichment"`
	Model        ModelConfig        `toml:"model"`
	Schedule     ScheduleConfig     `toml:"schedule"`
	Logging      LoggingConfig      `toml:"logging"`
	MCP          MCPConfig          `toml:"mcp"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// SearchConfig selects and tunes the search providers
type SearchConfig struct {
	// Providers are tried in order: brave, google, duckduckgo, mock
	Providers      []string     `toml:"providers"`
	DelayMS        int          `toml:"delay_ms"`
	TimeoutSeconds int          `toml:"timeout_seconds"`
	Attempts       int          `toml:"attempts"`
	CacheDir       string       `toml:"cache_dir"`
	CacheTTLHours  int          `toml:"cache_ttl_hours"`
	Brave          BraveConfig  `toml:"brave"`
	Google         GoogleConfig `toml:"google"`
	News           NewsConfig   `toml:"news"`
}

// Delay returns the per-host politeness delay
func (s SearchConfig) Delay() time.Duration {
	return time.Duration(s.DelayMS) * time.Millisecond
}

// Timeout returns the HTTP timeout
func (s SearchConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long search responses are cached
func (s SearchConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLHours) * time.Hour
}

// BraveConfig contains Brave Search settings
type BraveConfig struct {
	// API key falls back to BRAVE_API_KEY or ~/.brave
	APIKey string `toml:"api_key"`
}

// GoogleConfig contains Custom Search settings
type GoogleConfig struct {
	// API key falls back to GOOGLE_API_KEY
	APIKey   string `toml:"api_key"`
	EngineID string `toml:"engine_id"`
}

// NewsConfig contains Google News RSS settings
type NewsConfig struct {
	Enabled bool   `toml:"enabled"`
	HL      string `toml:"hl"`
	GL      string `toml:"gl"`
	CEID    string `toml:"ceid"`
}

// DiscoveryConfig contains first-pass query settings
type DiscoveryConfig struct {
	Queries    []string `toml:"queries"`
	MaxResults int      `toml:"max_results"`
}

// KeywordsConfig contains the non-geographic taxonomy groups
type KeywordsConfig struct {
	Identity  []string `toml:"identity"`
	Behavior  []string `toml:"behavior"`
	Seniority []string `toml:"seniority"`
}

// RegionConfig describes the target market
type RegionConfig struct {
	Target           []string `toml:"target"`
	Wider            []string `toml:"wider"`
	PrimaryCities    []string `toml:"primary_cities"`
	Qualifier        string   `toml:"qualifier"`
	LocalizedDomains []string `toml:"localized_domains"`
	OffTargetDomains []string `toml:"off_target_domains"`
	NonTargetHubs    []string `toml:"non_target_hubs"`
}

// VerificationConfig contains second-pass settings
type VerificationConfig struct {
	Workers         int      `toml:"workers"`
	MinScore        float64  `toml:"min_score"`
	ResultsPerQuery int      `toml:"results_per_query"`
	Cap             float64  `toml:"cap"`
	GeoCap          int      `toml:"geo_cap"`
	LinkedInCap     int      `toml:"linkedin_cap"`
	CommonNames     []string `toml:"common_names"`
	NoiseDomains    []string `toml:"noise_domains"`
	BonusDomains    []string `toml:"bonus_domains"`
}

// EnrichmentConfig contains third-pass settings
type EnrichmentConfig struct {
	Queries         []string `toml:"queries"` // %s is replaced with the quoted name
	ResultsPerQuery int      `toml:"results_per_query"`
}

// ModelConfig points at the external prediction service
type ModelConfig struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the prediction request timeout
func (m ModelConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// ScheduleConfig contains the recurring discovery schedule
type ScheduleConfig struct {
	Cron   string `toml:"cron"`
	Verify bool   `toml:"verify"`
}

// LoggingConfig contains log settings
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// MCPConfig contains MCP server settings
type MCPConfig struct {
	Enabled   bool   `toml:"enabled"`
	Transport string `toml:"transport"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	tax := taxonomy.Default()
	geo := firstpass.DefaultGeo()
	vc := verify.DefaultConfig()

	return &Config{
		Database: DatabaseConfig{
			Path: "~/.local/share/investorscout/scout.db",
		},
		Search: SearchConfig{
			Providers:      []string{"brave", "google", "duckduckgo"},
			DelayMS:        1100,
			TimeoutSeconds: 15,
			Attempts:       2,
			CacheDir:       "~/.cache/investorscout",
			CacheTTLHours:  24 * 7,
			News: NewsConfig{
				Enabled: true,
				HL:      "en-AE",
				GL:      "AE",
				CEID:    "AE:en",
			},
		},
		Discovery: DiscoveryConfig{
			Queries: []string{
				`"angel investor" UAE site:linkedin.com/in`,
				`angel investor "UAE" site:linkedin.com/in`,
			},
			MaxResults: 10,
		},
		Keywords: KeywordsConfig{
			Identity:  tax.Identity,
			Behavior:  tax.Behavior,
			Seniority: tax.Seniority,
		},
		Region: RegionConfig{
			Target:           tax.TargetRegion,
			Wider:            tax.WiderRegion,
			PrimaryCities:    tax.PrimaryCities,
			Qualifier:        vc.RegionQualifier,
			LocalizedDomains: geo.LocalizedDomains,
			OffTargetDomains: geo.OffTargetDomains,
			NonTargetHubs:    geo.NonTargetHubs,
		},
		Scoring: firstpass.DefaultWeights(),
		Verification: VerificationConfig{
			Workers:         4,
			MinScore:        4.0,
			ResultsPerQuery: 3,
			Cap:             vc.Cap,
			GeoCap:          vc.GeoCap,
			LinkedInCap:     vc.LinkedInCap,
			CommonNames:     slices.Clone(leads.DefaultCommonNames),
			NoiseDomains:    vc.NoiseDomains,
			BonusDomains:    vc.BonusDomains,
		},
		Verdict: consolidate.DefaultConfig(),
		Enrichment: EnrichmentConfig{
			Queries: []string{
				"site:instagram.com %s",
				"site:x.com %s",
				"site:facebook.com %s",
				"%s email",
				"%s phone",
			},
			ResultsPerQuery: 2,
		},
		Model: ModelConfig{
			URL:            "http://localhost:8643",
			TimeoutSeconds: 30,
		},
		Schedule: ScheduleConfig{
			Cron:   "0 6 * * 1",
			Verify: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		MCP: MCPConfig{
			Enabled:   true,
			Transport: "stdio",
		},
	}
}

// Taxonomy builds the normalized keyword taxonomy
func (c *Config) Taxonomy() taxonomy.Taxonomy {
	t := taxonomy.Taxonomy{
		Identity:      c.Keywords.Identity,
		Behavior:      c.Keywords.Behavior,
		Seniority:     c.Keywords.Seniority,
		TargetRegion:  c.Region.Target,
		WiderRegion:   c.Region.Wider,
		PrimaryCities: c.Region.PrimaryCities,
	}
	t.Normalize()
	return t
}

// Geo returns the first-pass URL and location rules
func (c *Config) Geo() firstpass.Geo {
	return firstpass.Geo{
		LocalizedDomains: c.Region.LocalizedDomains,
		OffTargetDomains: c.Region.OffTargetDomains,
		NonTargetHubs:    c.Region.NonTargetHubs,
	}
}

// VerifyConfig returns the second-pass rules with configured overrides
func (c *Config) VerifyConfig() verify.Config {
	vc := verify.DefaultConfig()
	vc.RegionQualifier = c.Region.Qualifier
	vc.Cap = c.Verification.Cap
	vc.GeoCap = c.Verification.GeoCap
	vc.LinkedInCap = c.Verification.LinkedInCap
	if len(c.Verification.NoiseDomains) > 0 {
		vc.NoiseDomains = c.Verification.NoiseDomains
	}
	if len(c.Verification.BonusDomains) > 0 {
		vc.BonusDomains = c.Verification.BonusDomains
	}
	return vc
}
