package verify

// Config holds the second-pass rules and weights
type Config struct {
	NoiseDomains      []string `toml:"noise_domains"`
	BonusDomains      []string `toml:"bonus_domains"`
	DirectoryPatterns []string `toml:"directory_patterns"`
	ArtifactPhrases   []string `toml:"artifact_phrases"`
	QueryBlocklist    []string `toml:"query_blocklist"`
	RegionQualifier   string   `toml:"region_qualifier"`

	Cap         float64 `toml:"cap"`
	GeoCap      int     `toml:"geo_cap"`
	LinkedInCap int     `toml:"linkedin_cap"`

	IdentityBonus  float64 `toml:"identity_bonus"`
	BehaviorBonus  float64 `toml:"behavior_bonus"`
	SeniorityBonus float64 `toml:"seniority_bonus"`
	GeoBonus       float64 `toml:"geo_bonus"`
	DomainBonus    float64 `toml:"domain_bonus"`
}

// DefaultConfig returns the production second-pass configuration
func DefaultConfig() Config {
	return Config{
		NoiseDomains: []string{
			"wikipedia.org", "saatchiart.com", "researchgate.net",
			"academia.edu", "sciprofiles.com", "datapile.co",
		},
		BonusDomains: []string{"theorg.com", "rocketreach.co", "crunchbase.com", "pitchbook.com"},
		DirectoryPatterns: []string{
			"crunchbase.com/person/",
			"theorg.com/org/",
			"rocketreach.co/",
			"pitchbook.com/profiles/person/",
			"signalhire.com/profiles/",
			"zoominfo.com/p/",
		},
		ArtifactPhrases: []string{"missing:", "show results with:"},
		QueryBlocklist:  []string{"partner", "ceo", "co-founder", "founder"},
		RegionQualifier: "UAE",

		Cap:         10.0,
		GeoCap:      2,
		LinkedInCap: 1,

		IdentityBonus:  1.5,
		BehaviorBonus:  0.5,
		SeniorityBonus: 0.2,
		GeoBonus:       0.3,
		DomainBonus:    0.4,
	}
}
