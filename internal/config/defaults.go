package config

const (
	defaultWatchDir           = "~/recordings"
	defaultWorkDir            = "~/.local/share/scribe/work"
	defaultLogDir             = "~/.local/share/scribe/logs"
	defaultModel              = "large-v3"
	defaultVADMethod          = "silero"
	defaultSourceLanguage     = "en"
	defaultTargetLanguage     = "zh-TW"
	defaultTranslateTimeout   = 30
	defaultReportFontFamily   = "Noto Sans CJK TC"
	defaultReportFontSize     = 12
	defaultNotifyTimeout      = 10
	defaultWatchPollInterval  = 30
	defaultErrorRetryInterval = 60
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WatchDir: defaultWatchDir,
			WorkDir:  defaultWorkDir,
			LogDir:   defaultLogDir,
		},
		Transcription: Transcription{
			Model:            defaultModel,
			VADMethod:        defaultVADMethod,
			AllowedLanguages: []string{"zh", "en"},
		},
		Diarization: Diarization{
			Enabled: true,
		},
		Translation: Translation{
			Enabled:        true,
			SourceLanguage: defaultSourceLanguage,
			TargetLanguage: defaultTargetLanguage,
			TimeoutSeconds: defaultTranslateTimeout,
		},
		Report: Report{
			PDFEnabled: true,
			FontFamily: defaultReportFontFamily,
			FontSize:   defaultReportFontSize,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Completions:    true,
			Errors:         true,
		},
		Workflow: Workflow{
			WatchPollInterval:  defaultWatchPollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
