package config

const (
	defaultConfigPath      = "~/.config/autovideo/config.toml"
	defaultOutputDir       = "output"
	defaultLogDir          = "~/.local/share/autovideo/logs"
	defaultTemplateDir     = "~/.local/share/autovideo/templates"
	defaultFrameSize       = 256
	defaultFramerate       = 10
	defaultKeepAspectRatio = true
	defaultFFmpeg          = "ffmpeg"
	defaultFFprobe         = "ffprobe"
	defaultAudioEncoder    = "xWMAEncode"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	maxFramerate           = 60
)

// FrameSizes lists the accepted frame edge lengths.
var FrameSizes = []int{128, 256, 512, 1024}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:   defaultOutputDir,
			CacheDir:    defaultCacheDir(),
			LogDir:      defaultLogDir,
			TemplateDir: defaultTemplateDir,
		},
		Video: Video{
			FrameSize:       defaultFrameSize,
			Framerate:       defaultFramerate,
			KeepAspectRatio: defaultKeepAspectRatio,
		},
		Tools: Tools{
			FFmpeg:       defaultFFmpeg,
			FFprobe:      defaultFFprobe,
			AudioEncoder: defaultAudioEncoder,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
