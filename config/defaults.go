package config

// Default values applied before a config file is decoded.
const (
	defaultLogFormat       = "text"
	defaultLogLevel        = "info"
	defaultTitleFormat     = "%s %d Conference Report"
	defaultOutputFormat    = "cr_%d%02d.epub"
	defaultPartTitleFormat = "%s Conference Addresses"
)

// Default returns the configuration used when a file leaves a value unset.
// It packages English and Hungarian and knows the Hungarian session labels.
func Default() Config {
	return Config{
		Languages: []string{"eng", "hun"},
		LanguageNames: map[string]string{
			"eng": "English",
			"hun": "Magyar",
		},
		Metadata: Metadata{
			Creator:         "Greg Reeve",
			Publisher:       "The Church of Jesus Christ of Latter-day Saints",
			PartTitleFormat: defaultPartTitleFormat,
		},
		Sessions: map[string]string{
			"Szombat délelőtti ülés":  "sat_am",
			"Szombat délutáni ülés":   "sat_pm",
			"Általános papsági ülés":  "sat_ps",
			"Vasárnap délelőtti ülés": "sun_am",
			"Vasárnap délutáni ülés":  "sun_pm",
		},
		Source: ".",
		Verify: true,
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
