package config

const (
	defaultOutputDir           = "~/storyreel/output"
	defaultStagingDir          = "~/.local/share/storyreel/staging"
	defaultLogDir              = "~/.local/share/storyreel/logs"
	defaultAPIBind             = "127.0.0.1:7512"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultFrameRate           = 30
	defaultSceneSeconds        = 5.0
	defaultProgressTickMS      = 100
	defaultAssetTimeoutSeconds = 30
	defaultNotifyTimeout       = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:  defaultOutputDir,
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Composition: Composition{
			FrameRate:           defaultFrameRate,
			DefaultSceneSeconds: defaultSceneSeconds,
			ProgressTickMS:      defaultProgressTickMS,
		},
		Tools: Tools{
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
		},
		Assets: Assets{
			RequestTimeout: defaultAssetTimeoutSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Compositions:   true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
