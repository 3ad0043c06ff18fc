package config

import "karolbroda.com/kraken/internal/source"

const (
	DefaultEndpoint     = source.DefaultEndpoint
	DefaultMprisService = source.DefaultMprisService

	defaultIntervalMS = 3000
	defaultPolicy     = "on_change"
	defaultMethod     = "average"
	defaultThreshold  = 0.7
	defaultDark       = "#121212"
	defaultLight      = "#FFFFFF"
	defaultBackground = "#121212"
	defaultLogLevel   = "info"
)

// Default returns a Config populated with built-in defaults.
func Default() Config {
	return Config{
		Source: Source{
			Kind:         SourceHTTP,
			Endpoint:     DefaultEndpoint,
			MprisService: DefaultMprisService,
		},
		Poll: Poll{
			IntervalMS: defaultIntervalMS,
			Policy:     defaultPolicy,
		},
		Theme: Theme{
			Method:     defaultMethod,
			Threshold:  defaultThreshold,
			Dark:       defaultDark,
			Light:      defaultLight,
			Background: defaultBackground,
		},
		Logging: Logging{
			Level: defaultLogLevel,
		},
	}
}
