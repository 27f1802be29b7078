// ABOUTME: Program configuration from flags and an optional config file
// ABOUTME: Explicit flags override file values, which override defaults
package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/Resonate-Protocol/pcmplay/pkg/audio/output"
	"github.com/Resonate-Protocol/pcmplay/pkg/playback"
	"github.com/spf13/viper"
)

// Config holds everything the entry sequence needs
type Config struct {
	WAV        string        `mapstructure:"wav"`
	PCM        []string      `mapstructure:"pcm"`
	SampleRate int           `mapstructure:"rate"`
	Channels   int           `mapstructure:"channels"`
	BitDepth   int           `mapstructure:"bits"`
	Volume     float64       `mapstructure:"volume"`
	Backend    string        `mapstructure:"backend"`
	Poll       time.Duration `mapstructure:"poll"`
	TUI        bool          `mapstructure:"tui"`
	LogFile    string        `mapstructure:"log-file"`
	StreamLogs bool          `mapstructure:"stream-logs"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		WAV: "recorded_audio_20240804_143022.wav",
		PCM: []string{
			"micin_48k_s16_mono.pcm",
			"speaker_48k_s16_mono_161317.pcm",
		},
		SampleRate: 48000,
		Channels:   1,
		BitDepth:   16,
		Volume:     1.0,
		Backend:    output.BackendMalgo,
		Poll:       playback.DefaultPollInterval,
		LogFile:    "pcmplay.log",
	}
}

// Load registers the config flags on fs, parses args and merges in the
// file named by -config. fs may carry extra flags of its own.
func Load(fs *flag.FlagSet, args []string) (Config, error) {
	def := Default()
	keys := map[string]any{
		"wav":         def.WAV,
		"pcm":         def.PCM,
		"rate":        def.SampleRate,
		"channels":    def.Channels,
		"bits":        def.BitDepth,
		"volume":      def.Volume,
		"backend":     def.Backend,
		"poll":        def.Poll,
		"tui":         def.TUI,
		"log-file":    def.LogFile,
		"stream-logs": def.StreamLogs,
	}

	v := viper.New()
	v.SetConfigType("yaml")
	for key, value := range keys {
		v.SetDefault(key, value)
	}

	fs.String("wav", def.WAV, "WAV (or other self-describing audio) file to play")
	fs.String("pcm", strings.Join(def.PCM, ","), "Comma-separated raw PCM files to play concurrently")
	fs.Int("rate", def.SampleRate, "Raw PCM sample rate in Hz")
	fs.Int("channels", def.Channels, "Raw PCM channel count")
	fs.Int("bits", def.BitDepth, "Raw PCM bits per sample (8, 16, 24 or 32)")
	fs.Float64("volume", def.Volume, "Playback volume for the WAV file (0.0 to 1.0)")
	fs.String("backend", def.Backend, "Audio output: malgo, oto, portaudio or null")
	fs.Duration("poll", def.Poll, "Device state poll interval")
	fs.Bool("tui", def.TUI, "Show a terminal UI with pause and volume keys")
	fs.String("log-file", def.LogFile, "Log file path")
	fs.Bool("stream-logs", def.StreamLogs, "Also write logs to stdout")
	configFile := fs.String("config", "", "Optional YAML config file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *configFile != "" {
		v.SetConfigFile(*configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	fs.Visit(func(f *flag.Flag) {
		if _, ok := keys[f.Name]; ok {
			v.Set(f.Name, f.Value.String())
		}
	})

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the program cannot start with. Raw PCM format
// values are not checked here; the reader reports bad combinations.
func (c Config) Validate() error {
	switch c.Backend {
	case output.BackendMalgo, output.BackendOto, output.BackendPortAudio, output.BackendNull:
	default:
		return fmt.Errorf("invalid backend %q", c.Backend)
	}
	if c.Poll <= 0 {
		return fmt.Errorf("invalid poll interval %v", c.Poll)
	}
	if c.LogFile == "" {
		return fmt.Errorf("log file path is required")
	}
	return nil
}
