package config

const (
	defaultDataDir           = "~/.local/share/reelcheck"
	defaultLogDir            = "~/.local/share/reelcheck/logs"
	defaultAPIBind           = "127.0.0.1:7519"
	defaultProbeBinary       = "mediainfo"
	defaultProbeTimeout      = 300
	defaultSaveEvery         = 25
	defaultResultTimeout     = 60
	defaultWatchDebounce     = 30
	defaultNotifyTimeout     = 10
	defaultReconcileSpec     = "@every 1h"
	defaultReprocessAfter    = "24h"
	defaultRetentionSpec     = "@daily"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLogRetentionDays  = 30
	defaultPenaltyMain       = 15
	defaultPenaltyHDR        = 5
	defaultPenaltySurround   = 5
	defaultPenaltyBitrate    = 5
	defaultPenaltyFastStart  = 5
	defaultBitrateThreshold  = 40.0
)

func defaultVideoExtensions() []string {
	return []string{
		".mp4", ".m4v", ".mkv", ".mov", ".avi", ".wmv",
		".webm", ".ts", ".m2ts", ".mpg", ".mpeg", ".flv",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Probe: Probe{
			Binary:         defaultProbeBinary,
			TimeoutSeconds: defaultProbeTimeout,
		},
		Scanner: Scanner{
			SaveEvery:            defaultSaveEvery,
			ResultTimeoutSeconds: defaultResultTimeout,
			VideoExtensions:      defaultVideoExtensions(),
		},
		Rating: Rating{
			PenaltyUnsupported: defaultPenaltyMain,
			PenaltyHDR:         defaultPenaltyHDR,
			PenaltySurround:    defaultPenaltySurround,
			PenaltyHighBitrate: defaultPenaltyBitrate,
			PenaltyNoFastStart: defaultPenaltyFastStart,
			BitrateThreshold:   defaultBitrateThreshold,
		},
		Watch: Watch{
			DebounceSeconds: defaultWatchDebounce,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			ScanComplete:   true,
			Errors:         true,
		},
		Scheduler: Scheduler{
			ReconcileSpec:  defaultReconcileSpec,
			ReprocessAfter: defaultReprocessAfter,
			RetentionSpec:  defaultRetentionSpec,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
