// Package config resolves runtime settings from defaults, an optional YAML
// file, QUESTD_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sandeepkv93/questd/internal/model"
	"github.com/spf13/viper"
)

const EnvPrefix = "QUESTD"

const (
	KeyDBPath              = "db.path"
	KeyLogPath             = "log.path"
	KeyLogVerbose          = "log.verbose"
	KeyAPIKey              = "gateway.api_key"
	KeyModel               = "gateway.model"
	KeyOffline             = "gateway.offline"
	KeyGatewayTimeout      = "gateway.timeout"
	KeyOverdueInterval     = "reconcile.overdue_interval"
	KeyInactivityInterval  = "reconcile.inactivity_interval"
	KeyInactivityThreshold = "reconcile.inactivity_threshold"
	KeyMaxConcurrent       = "reconcile.max_concurrent_fetches"
	KeyNotifyTTL           = "notify.ttl"
	KeyNotifyCapacity      = "notify.capacity"
	KeySchedulerBuffer     = "scheduler.buffer"
	KeyLanguage            = "language"
)

type Config struct {
	DBPath     string
	LogPath    string
	LogVerbose bool

	APIKey         string
	Model          string
	Offline        bool
	GatewayTimeout time.Duration

	OverdueInterval     time.Duration
	InactivityInterval  time.Duration
	InactivityThreshold time.Duration
	MaxConcurrent       int

	NotifyTTL       time.Duration
	NotifyCapacity  int
	SchedulerBuffer int

	Language model.Language
}

func Default() Config {
	return Config{
		DBPath:              "questd.db",
		LogPath:             "questd.log",
		Model:               "gemini-2.5-flash",
		GatewayTimeout:      30 * time.Second,
		OverdueInterval:     time.Minute,
		InactivityInterval:  time.Hour,
		InactivityThreshold: 24 * time.Hour,
		MaxConcurrent:       4,
		NotifyTTL:           8 * time.Second,
		NotifyCapacity:      5,
		SchedulerBuffer:     64,
		Language:            model.DefaultLanguage,
	}
}

// NewViper returns a viper instance with defaults registered and QUESTD_*
// environment lookup enabled.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyDBPath, d.DBPath)
	v.SetDefault(KeyLogPath, d.LogPath)
	v.SetDefault(KeyLogVerbose, d.LogVerbose)
	v.SetDefault(KeyAPIKey, "")
	v.SetDefault(KeyModel, d.Model)
	v.SetDefault(KeyOffline, false)
	v.SetDefault(KeyGatewayTimeout, d.GatewayTimeout)
	v.SetDefault(KeyOverdueInterval, d.OverdueInterval)
	v.SetDefault(KeyInactivityInterval, d.InactivityInterval)
	v.SetDefault(KeyInactivityThreshold, d.InactivityThreshold)
	v.SetDefault(KeyMaxConcurrent, d.MaxConcurrent)
	v.SetDefault(KeyNotifyTTL, d.NotifyTTL)
	v.SetDefault(KeyNotifyCapacity, d.NotifyCapacity)
	v.SetDefault(KeySchedulerBuffer, d.SchedulerBuffer)
	v.SetDefault(KeyLanguage, string(d.Language))
}

// Load reads file when it is non-empty and builds a validated Config from v.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	cfg := FromViper(v)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func FromViper(v *viper.Viper) Config {
	cfg := Config{
		DBPath:              strings.TrimSpace(v.GetString(KeyDBPath)),
		LogPath:             strings.TrimSpace(v.GetString(KeyLogPath)),
		LogVerbose:          v.GetBool(KeyLogVerbose),
		APIKey:              strings.TrimSpace(v.GetString(KeyAPIKey)),
		Model:               strings.TrimSpace(v.GetString(KeyModel)),
		Offline:             v.GetBool(KeyOffline),
		GatewayTimeout:      v.GetDuration(KeyGatewayTimeout),
		OverdueInterval:     v.GetDuration(KeyOverdueInterval),
		InactivityInterval:  v.GetDuration(KeyInactivityInterval),
		InactivityThreshold: v.GetDuration(KeyInactivityThreshold),
		MaxConcurrent:       v.GetInt(KeyMaxConcurrent),
		NotifyTTL:           v.GetDuration(KeyNotifyTTL),
		NotifyCapacity:      v.GetInt(KeyNotifyCapacity),
		SchedulerBuffer:     v.GetInt(KeySchedulerBuffer),
		Language:            model.ParseLanguage(v.GetString(KeyLanguage)),
	}
	if cfg.APIKey == "" {
		cfg.APIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	}
	if cfg.APIKey == "" {
		cfg.Offline = true
	}
	return cfg
}

func (c Config) Validate() error {
	var errs []error
	if c.DBPath == "" {
		errs = append(errs, errors.New("db.path is required"))
	}
	durations := map[string]time.Duration{
		KeyGatewayTimeout:      c.GatewayTimeout,
		KeyOverdueInterval:     c.OverdueInterval,
		KeyInactivityInterval:  c.InactivityInterval,
		KeyInactivityThreshold: c.InactivityThreshold,
		KeyNotifyTTL:           c.NotifyTTL,
	}
	for _, key := range []string{KeyGatewayTimeout, KeyOverdueInterval, KeyInactivityInterval, KeyInactivityThreshold, KeyNotifyTTL} {
		if durations[key] <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", key))
		}
	}
	if c.MaxConcurrent <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", KeyMaxConcurrent))
	}
	if c.NotifyCapacity <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", KeyNotifyCapacity))
	}
	if c.SchedulerBuffer <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", KeySchedulerBuffer))
	}
	if !c.Offline && c.Model == "" {
		errs = append(errs, fmt.Errorf("%s is required", KeyModel))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
