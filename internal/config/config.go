package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lowaak/smart-trainer/interval-timer/internal/intervals"
)

// EnvPrefix prefixes environment overrides, e.g. INTERVAL_WORK or INTERVAL_SPEECH_COMMAND
const EnvPrefix = "INTERVAL"

// Field values used when neither configuration nor the last session provides one
const (
	DefaultLeadin = "0:10"
	DefaultWork   = "0:30"
	DefaultBreak  = "0:10"
	DefaultSets   = "8"
)

// ErrHelp is returned by Load when --help was requested
var ErrHelp = pflag.ErrHelp

// Speech selects how announcements are spoken
type Speech struct {
	Command    string            `mapstructure:"command"`
	Args       []string          `mapstructure:"args"`
	Clips      map[string]string `mapstructure:"clips"`
	Player     string            `mapstructure:"player"`
	PlayerArgs []string          `mapstructure:"player_args"`
}

// Assets configures the offline clip cache
type Assets struct {
	Dir     string `mapstructure:"dir"`
	Name    string `mapstructure:"name"`
	Version int    `mapstructure:"version"`
}

// Log configures the rotating log file
type Log struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// State configures where the last used inputs are kept
type State struct {
	File string `mapstructure:"file"`
}

// Config is the resolved application configuration
type Config struct {
	Leadin   string `mapstructure:"leadin"`
	Work     string `mapstructure:"work"`
	Break    string `mapstructure:"break"`
	Sets     string `mapstructure:"sets"`
	Halfway  bool   `mapstructure:"halfway"`
	Headless bool   `mapstructure:"headless"`
	Autoplay bool   `mapstructure:"autoplay"`

	Speech Speech `mapstructure:"speech"`
	Assets Assets `mapstructure:"assets"`
	Log    Log    `mapstructure:"log"`
	State  State  `mapstructure:"state"`

	// File is the config file that was read, empty when none
	File string `mapstructure:"-"`

	halfwaySet bool
}

// flagKeys maps flag names to configuration keys where they differ
var flagKeys = map[string]string{
	"speech-command":     "speech.command",
	"speech-args":        "speech.args",
	"speech-player":      "speech.player",
	"speech-player-args": "speech.player_args",
	"assets-dir":         "assets.dir",
	"assets-version":     "assets.version",
	"log-file":           "log.file",
	"state-file":         "state.file",
}

// Load resolves the configuration from flags, INTERVAL_* environment variables, an optional
// config file and defaults, in that order of precedence. home is the base of the default paths.
func Load(args []string, home string) (*Config, error) {
	v := viper.New()
	setDefaults(v, home)

	flags := newFlagSet()
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if file, _ := flags.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
		cfg.File = v.ConfigFileUsed()
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(filepath.Join(home, ".interval-timer"))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else {
			cfg.File = v.ConfigFileUsed()
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.halfwaySet = v.IsSet("halfway")
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("interval-timer", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.String("config", "", "config file (yaml, toml or json)")
	flags.String("leadin", "", "lead-in before the first set, seconds or m:ss, at most 99:59:59")
	flags.String("work", "", "work interval per set")
	flags.String("break", "", "break between sets")
	flags.String("sets", "", "number of sets, at most 999")
	flags.Bool("halfway", false, "announce the middle of every work interval")
	flags.Bool("headless", false, "play right away without the terminal UI, showing a progress bar")
	flags.Bool("autoplay", false, "start playing right away")
	flags.String("speech-command", "", "text-to-speech program, e.g. espeak or say")
	flags.StringSlice("speech-args", nil, "arguments for the speech program; {text} is replaced by the announcement")
	flags.String("speech-player", "", "audio player for cached clips, reading the clip from stdin")
	flags.StringSlice("speech-player-args", nil, "arguments for the audio player")
	flags.String("assets-dir", "", "directory of the offline clip cache")
	flags.Int("assets-version", 0, "clip cache version; other versions are deleted on start")
	flags.String("log-file", "", "log file")
	flags.String("state-file", "", "file remembering the last used inputs")
	return flags
}

func setDefaults(v *viper.Viper, home string) {
	base := filepath.Join(home, ".interval-timer")
	v.SetDefault("speech.player_args", []string{"-q", "-"})
	v.SetDefault("speech.player", "aplay")
	v.SetDefault("assets.dir", filepath.Join(base, "cache"))
	v.SetDefault("assets.name", "interval-clips")
	v.SetDefault("assets.version", 1)
	v.SetDefault("log.file", filepath.Join(base, "interval-timer.log"))
	v.SetDefault("log.max_size_mb", 5)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("state.file", filepath.Join(base, "last_inputs.yaml"))
}

func (c *Config) validate() error {
	if c.Assets.Version < 0 {
		return fmt.Errorf("assets.version must not be negative, got %d", c.Assets.Version)
	}
	if len(c.Speech.Clips) > 0 && c.Speech.Player == "" {
		return errors.New("speech.clips needs speech.player")
	}
	for text := range c.Speech.Clips {
		if !slices.Contains(intervals.AnnouncementTexts(), text) {
			return fmt.Errorf("speech.clips: %q is not an announcement", text)
		}
	}
	return nil
}

// Inputs returns the session fields. Explicitly configured values win, then last, then the
// built-in defaults.
func (c *Config) Inputs(last *intervals.Inputs) intervals.Inputs {
	in := intervals.Inputs{Leadin: DefaultLeadin, Work: DefaultWork, Break: DefaultBreak, Sets: DefaultSets}
	if last != nil {
		for _, p := range intervals.AllPhases {
			if value := last.Get(p); value != "" {
				in.Set(p, value)
			}
		}
		in.Halfway = last.Halfway
	}
	configured := intervals.Inputs{Leadin: c.Leadin, Work: c.Work, Break: c.Break, Sets: c.Sets}
	for _, p := range intervals.AllPhases {
		if value := configured.Get(p); value != "" {
			in.Set(p, value)
		}
	}
	if c.halfwaySet {
		in.Halfway = c.Halfway
	}
	return in
}

// HomeDir returns the user's home directory, or "." when it cannot be determined
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
