// Package config merges defaults, an optional JSON file, .env and
// RETAILDASH_* environment variables, and command-line flags, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"retaildash/model"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// DefaultFile is read from the working directory when --config is not set.
const DefaultFile = "retaildash.json"

// EnvPrefix prefixes every environment variable; nested keys use "_",
// for example RETAILDASH_CHARTS_PNG.
const EnvPrefix = "RETAILDASH"

type ChartsConfig struct {
	PNG bool `mapstructure:"png"`
}

type CSVConfig struct {
	BOM bool `mapstructure:"bom"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Env   string `mapstructure:"env"`
}

// Config is the merged run configuration. Dates are YYYY-MM-DD; an empty
// AsOf means the latest snapshot date in the data.
type Config struct {
	OutputDir        string       `mapstructure:"output_dir"`
	Seed             uint64       `mapstructure:"seed"`
	StartDate        string       `mapstructure:"start_date"`
	Months           int          `mapstructure:"months"`
	AsOf             string       `mapstructure:"as_of"`
	NumPOs           int          `mapstructure:"num_pos"`
	InputDir         string       `mapstructure:"input_dir"`
	DBPath           string       `mapstructure:"db_path"`
	TrailingWeeks    int          `mapstructure:"trailing_weeks"`
	OverstockWeeks   float64      `mapstructure:"overstock_weeks"`
	TargetWeeks      float64      `mapstructure:"target_weeks"`
	TopN             int          `mapstructure:"top_n"`
	InStockAlert     float64      `mapstructure:"instock_alert"`
	OTDAlert         float64      `mapstructure:"otd_alert"`
	DeepDiveCategory string       `mapstructure:"deep_dive_category"`
	Charts           ChartsConfig `mapstructure:"charts"`
	CSV              CSVConfig    `mapstructure:"csv"`
	Serve            string       `mapstructure:"serve"`
	Log              LogConfig    `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output_dir", "output")
	v.SetDefault("seed", 42)
	v.SetDefault("start_date", "2025-02-01")
	v.SetDefault("months", 12)
	v.SetDefault("as_of", "")
	v.SetDefault("num_pos", 120)
	v.SetDefault("input_dir", "")
	v.SetDefault("db_path", "")
	v.SetDefault("trailing_weeks", 12)
	v.SetDefault("overstock_weeks", 12.0)
	v.SetDefault("target_weeks", 8.0)
	v.SetDefault("top_n", 10)
	v.SetDefault("instock_alert", 80.0)
	v.SetDefault("otd_alert", 85.0)
	v.SetDefault("deep_dive_category", "Climbing Shoes")
	v.SetDefault("charts.png", false)
	v.SetDefault("csv.bom", true)
	v.SetDefault("serve", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.env", "development")
}

// flagKeys maps each command-line flag to its configuration key.
var flagKeys = map[string]string{
	"output-dir":         "output_dir",
	"seed":               "seed",
	"start-date":         "start_date",
	"months":             "months",
	"as-of":              "as_of",
	"num-pos":            "num_pos",
	"input-dir":          "input_dir",
	"db-path":            "db_path",
	"trailing-weeks":     "trailing_weeks",
	"overstock-weeks":    "overstock_weeks",
	"target-weeks":       "target_weeks",
	"top-n":              "top_n",
	"instock-alert":      "instock_alert",
	"otd-alert":          "otd_alert",
	"deep-dive-category": "deep_dive_category",
	"png":                "charts.png",
	"bom":                "csv.bom",
	"serve":              "serve",
	"log-level":          "log.level",
	"log-env":            "log.env",
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("retaildash", pflag.ContinueOnError)
	fs.String("config", "", "path to a JSON config file (default ./"+DefaultFile+" if present)")
	fs.String("output-dir", "output", "root directory for charts, data and metrics")
	fs.Uint64("seed", 42, "random seed for the synthetic data")
	fs.String("start-date", "2025-02-01", "first day of generated sales")
	fs.Int("months", 12, "months of generated sales")
	fs.String("as-of", "", "inventory snapshot and reporting date (default: latest snapshot)")
	fs.Int("num-pos", 120, "number of generated purchase orders")
	fs.String("input-dir", "", "load raw CSV tables from this directory instead of generating")
	fs.String("db-path", "", "SQLite run store (default <output-dir>/retaildash.db)")
	fs.Int("trailing-weeks", 12, "sales window for velocity, in weeks")
	fs.Float64("overstock-weeks", 12, "weeks of supply above which stock is overstock")
	fs.Float64("target-weeks", 8, "weeks of sales an allocation index of 1.0 covers")
	fs.Int("top-n", 10, "rows in top and bottom rankings")
	fs.Float64("instock-alert", 80, "alert when a gym's in-stock rate is below this percent")
	fs.Float64("otd-alert", 85, "alert when a vendor's on-time rate is below this percent")
	fs.String("deep-dive-category", "Climbing Shoes", "category for the deep-dive chart")
	fs.Bool("png", false, "also rasterise charts to PNG with headless Chromium")
	fs.Bool("bom", true, "write a UTF-8 byte order mark at the start of CSV files")
	fs.String("serve", "", "serve the results over HTTP on this address after the run")
	fs.String("log-level", "info", "debug, info, warn or error")
	fs.String("log-env", "development", "development (console) or production (JSON)")
	return fs
}

// Load builds the configuration from args (without the program name).
// A --help flag returns pflag.ErrHelp.
func Load(args []string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// 1. Flags are parsed first so --config can pick the file
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// 2. Optional JSON file
	path, _ := fs.GetString("config")
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	// 3. .env and environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Flags set on the command line win
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects non-positive windows, bad dates and unknown log settings.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if _, err := model.ParseDate(c.StartDate); err != nil {
		return fmt.Errorf("invalid start_date %q: %w", c.StartDate, err)
	}
	if c.AsOf != "" {
		if _, err := model.ParseDate(c.AsOf); err != nil {
			return fmt.Errorf("invalid as_of %q: %w", c.AsOf, err)
		}
	}
	if c.Months <= 0 {
		return fmt.Errorf("months must be positive, got %d", c.Months)
	}
	if c.NumPOs < 0 {
		return fmt.Errorf("num_pos must not be negative, got %d", c.NumPOs)
	}
	if c.TrailingWeeks <= 0 {
		return fmt.Errorf("trailing_weeks must be positive, got %d", c.TrailingWeeks)
	}
	if c.OverstockWeeks <= 0 {
		return fmt.Errorf("overstock_weeks must be positive, got %g", c.OverstockWeeks)
	}
	if c.TargetWeeks <= 0 {
		return fmt.Errorf("target_weeks must be positive, got %g", c.TargetWeeks)
	}
	if c.TopN <= 0 {
		return fmt.Errorf("top_n must be positive, got %d", c.TopN)
	}
	if c.InStockAlert < 0 || c.InStockAlert > 100 || c.OTDAlert < 0 || c.OTDAlert > 100 {
		return fmt.Errorf("alert thresholds must be between 0 and 100")
	}
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level %q: %w", c.Log.Level, err)
	}
	if c.Log.Env != "development" && c.Log.Env != "production" {
		return fmt.Errorf("log.env must be development or production, got %q", c.Log.Env)
	}
	return nil
}

// StartTime returns the parsed start date.
func (c *Config) StartTime() time.Time {
	t, _ := model.ParseDate(c.StartDate)
	return t
}

// AsOfTime returns the parsed reporting date, or the zero time when unset.
func (c *Config) AsOfTime() time.Time {
	if c.AsOf == "" {
		return time.Time{}
	}
	t, _ := model.ParseDate(c.AsOf)
	return t
}

func (c *Config) ChartsDir() string  { return filepath.Join(c.OutputDir, "charts") }
func (c *Config) DataDir() string    { return filepath.Join(c.OutputDir, "data") }
func (c *Config) MetricsDir() string { return filepath.Join(c.OutputDir, "metrics") }

// StorePath is DBPath, defaulting to <output_dir>/retaildash.db.
func (c *Config) StorePath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(c.OutputDir, "retaildash.db")
}

// Fields returns the configuration as zap fields for the startup log.
func (c *Config) Fields() []zap.Field {
	return []zap.Field{
		zap.String("output_dir", c.OutputDir),
		zap.Uint64("seed", c.Seed),
		zap.String("start_date", c.StartDate),
		zap.Int("months", c.Months),
		zap.String("as_of", c.AsOf),
		zap.String("input_dir", c.InputDir),
		zap.String("db_path", c.StorePath()),
		zap.Bool("png", c.Charts.PNG),
		zap.String("serve", c.Serve),
	}
}
