// Package config loads server settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/warp/leave-tracker/generic"
	"github.com/warp/leave-tracker/timeoff"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

type Config struct {
	Env  string
	Port int

	Store    StoreConfig
	Log      LogConfig
	CORS     CORSConfig
	Leave    LeaveConfig
	SeedDemo bool
}

type StoreConfig struct {
	Driver string // memory | sqlite
	DBPath string
}

type LogConfig struct {
	Level  string
	Format string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// LeaveConfig holds the policy switches of the leave engine.
type LeaveConfig struct {
	Overdraw       timeoff.OverdrawPolicy
	IncludePending bool
	Periods        generic.PeriodConfig
	Locale         generic.Locale
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Env:      v.GetString("ENV"),
		Port:     v.GetInt("PORT"),
		SeedDemo: v.GetBool("SEED_DEMO"),
	}

	cfg.Store = StoreConfig{
		Driver: strings.ToLower(v.GetString("STORE_DRIVER")),
		DBPath: v.GetString("DB_PATH"),
	}
	switch cfg.Store.Driver {
	case DriverMemory, DriverSQLite:
	default:
		return nil, fmt.Errorf("STORE_DRIVER: unknown driver %q", cfg.Store.Driver)
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	overdraw, ok := timeoff.ParseOverdrawPolicy(strings.ToLower(v.GetString("OVERDRAW_POLICY")))
	if !ok {
		return nil, fmt.Errorf("OVERDRAW_POLICY: unknown policy %q", v.GetString("OVERDRAW_POLICY"))
	}
	periodType, err := generic.ParsePeriodType(strings.ToLower(v.GetString("PERIOD_TYPE")))
	if err != nil {
		return nil, fmt.Errorf("PERIOD_TYPE: %w", err)
	}
	startMonth := v.GetInt("FISCAL_YEAR_START_MONTH")
	if startMonth < 1 || startMonth > 12 {
		return nil, fmt.Errorf("FISCAL_YEAR_START_MONTH: %d is not a month", startMonth)
	}

	cfg.Leave = LeaveConfig{
		Overdraw:       overdraw,
		IncludePending: v.GetBool("CALENDAR_INCLUDE_PENDING"),
		Periods: generic.PeriodConfig{
			Type:                 periodType,
			FiscalYearStartMonth: time.Month(startMonth),
		},
		Locale: generic.LocaleFor(v.GetString("LOCALE")),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)

	v.SetDefault("STORE_DRIVER", DriverMemory)
	v.SetDefault("DB_PATH", ":memory:")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:8080")

	v.SetDefault("OVERDRAW_POLICY", string(timeoff.OverdrawAllow))
	v.SetDefault("CALENDAR_INCLUDE_PENDING", true)
	v.SetDefault("PERIOD_TYPE", string(generic.PeriodCalendarYear))
	v.SetDefault("FISCAL_YEAR_START_MONTH", 4)
	v.SetDefault("LOCALE", "en-US")
	v.SetDefault("SEED_DEMO", true)
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
