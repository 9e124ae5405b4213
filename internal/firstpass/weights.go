package firstpass

// Weights configures the first-pass scoring algorithm.
// A Weights value is copied into the Scorer and never mutated.
type Weights struct {
	Base                    float64 `toml:"base"`                      // Starting score for every hit
	Identity                float64 `toml:"identity"`                  // First identity keyword
	IdentityDiminishing     float64 `toml:"identity_diminishing"`      // Each additional identity keyword
	Behavior                float64 `toml:"behavior"`                  // Each behavior keyword
	Synergy                 float64 `toml:"synergy"`                   // Identity and behavior both present
	Seniority               float64 `toml:"seniority"`                 // Each seniority keyword
	SeniorityGroup          float64 `toml:"seniority_group"`           // Any seniority keyword present
	GeoGroup                float64 `toml:"geo_group"`                 // Any region keyword or localized domain
	PrimaryCity             float64 `toml:"primary_city"`              // Primary city named explicitly
	HashtagMultiplier       float64 `toml:"hashtag_multiplier"`        // Applied to category weight for hashtags
	LocationTarget          float64 `toml:"location_target"`           // location: field inside the region
	LocationNonTarget       float64 `toml:"location_non_target"`       // location: field naming a known hub elsewhere
	LocationOther           float64 `toml:"location_other"`            // location: field that confirms nothing
	Organization            float64 `toml:"organization"`              // Affiliated organization found
	UnconfirmedGeoPenalty   float64 `toml:"unconfirmed_geo_penalty"`   // High score with no geography
	UnconfirmedGeoThreshold float64 `toml:"unconfirmed_geo_threshold"` // Score at which the penalty applies
	OffTargetDomain         float64 `toml:"off_target_domain"`         // Off-region localized domain
}

// DefaultWeights returns the tuned production weights
func DefaultWeights() Weights {
	return Weights{
		Base:                    2.0,
		Identity:                2.5,
		IdentityDiminishing:     0.8,
		Behavior:                0.4,
		Synergy:                 0.5,
		Seniority:               1.0,
		SeniorityGroup:          0.5,
		GeoGroup:                0.6,
		PrimaryCity:             0.3,
		HashtagMultiplier:       1.0,
		LocationTarget:          0.5,
		LocationNonTarget:       -1.5,
		LocationOther:           -0.5,
		Organization:            0.3,
		UnconfirmedGeoPenalty:   -1.2,
		UnconfirmedGeoThreshold: 5.0,
		OffTargetDomain:         -0.3,
	}
}

// Geo holds the URL and location rules that tie a hit to the target region
type Geo struct {
	LocalizedDomains []string `toml:"localized_domains"`  // e.g. ae.linkedin.com/in
	OffTargetDomains []string `toml:"off_target_domains"` // e.g. in.linkedin.com/in
	NonTargetHubs    []string `toml:"non_target_hubs"`    // locations that rule the region out
}

// DefaultGeo returns URL and location rules for the UAE
func DefaultGeo() Geo {
	return Geo{
		LocalizedDomains: []string{"ae.linkedin.com/in"},
		OffTargetDomains: []string{"in.linkedin.com/in", "br.linkedin.com/in", "pk.linkedin.com/in"},
		NonTargetHubs: []string{
			"singapore", "new york", "united states", "usa", "uk",
			"united kingdom", "london", "india", "san francisco", "hong kong",
		},
	}
}
