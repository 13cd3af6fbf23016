package config

const (
	defaultStateDir           = "~/.local/share/maestro"
	defaultLogDir             = "~/.local/share/maestro/logs"
	defaultPortalBaseURL      = "https://devwebinar.change20.no/api"
	defaultRequestTimeout     = 30
	defaultPollInterval       = 5
	defaultPollInitialDelay   = 2
	defaultPollMaxAttempts    = 60
	defaultProgressEvery      = 3
	defaultAssetTTLSeconds    = 5
	defaultNotifyTimeout      = 10
	defaultNotifyDedupSeconds = 600
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Portal: Portal{
			BaseURL:        defaultPortalBaseURL,
			RequestTimeout: defaultRequestTimeout,
		},
		Jobs: Jobs{
			PollInterval:  defaultPollInterval,
			InitialDelay:  defaultPollInitialDelay,
			MaxAttempts:   defaultPollMaxAttempts,
			ProgressEvery: defaultProgressEvery,
		},
		AssetCache: AssetCache{
			TTLSeconds: defaultAssetTTLSeconds,
		},
		Notifications: Notifications{
			RequestTimeout:     defaultNotifyTimeout,
			Jobs:               true,
			Stages:             true,
			Approvals:          true,
			Errors:             true,
			DedupWindowSeconds: defaultNotifyDedupSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
