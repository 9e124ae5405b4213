package consolidate

// Formula selects how first and second pass scores combine
type Formula string

const (
	FormulaAverage Formula = "average"
	FormulaSum     Formula = "sum"
)

// Valid reports whether f is a known formula
func (f Formula) Valid() bool {
	return f == FormulaAverage || f == FormulaSum
}

// Config holds the verdict thresholds and enrichment lists
type Config struct {
	Formula      Formula `toml:"formula"`
	Cap          float64 `toml:"cap"`
	Great        float64 `toml:"great"`
	Good         float64 `toml:"good"`
	PendingFloor float64 `toml:"pending_floor"`

	ContactDomains []string `toml:"contact_domains"`
	Webmail        []string `toml:"webmail"`
	SocialDomains  []string `toml:"social_domains"`
	AddressWords   []string `toml:"address_words"`
}

// DefaultConfig returns the averaging scale with Great/Good at 8 and 5
func DefaultConfig() Config {
	return Config{
		Formula:      FormulaAverage,
		Cap:          10.0,
		Great:        8.0,
		Good:         5.0,
		PendingFloor: 5.0,

		ContactDomains: []string{"rocketreach.co", "theorg.com", "signalhire.com", "contactout.com", "crunchbase.com"},
		Webmail:        []string{"gmail", "yahoo", "hotmail", "outlook", "icloud"},
		SocialDomains:  []string{"instagram.com", "x.com", "twitter.com", "facebook.com", "tiktok.com"},
		AddressWords:   []string{"street", "building", "floor", "po box", "p.o. box", "road", "tower"},
	}
}
