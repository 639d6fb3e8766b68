package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/articles.db" description:"Path to the SQLite database file"`

	// Application configuration
	SourcesFile     string `long:"sources-file" env:"SOURCES_FILE" default:"./sources.yml" description:"YAML file with seed sources, loaded on startup"`
	Port            string `long:"port" env:"PORT" default:"8765" description:"HTTP server port"`
	FetchInterval   int    `long:"fetch-interval" env:"FETCH_INTERVAL" default:"360" description:"Feed fetch cycle interval in minutes"`
	ExtractInterval int    `long:"extract-interval" env:"EXTRACT_INTERVAL" default:"30" description:"Content extraction cycle interval in minutes"`
	MaxPerSource    int    `long:"max-per-source" env:"MAX_PER_SOURCE" default:"5" description:"Maximum new articles accepted per source per fetch cycle"`
	ExtractLimit    int    `long:"extract-limit" env:"EXTRACT_LIMIT" default:"10" description:"Maximum articles processed per extraction cycle"`
	WorkerCount     int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background task workers"`
	SourceDelay     int    `long:"source-delay" env:"SOURCE_DELAY" default:"1" description:"Delay between source fetches in seconds"`
	ExtractDelay    int    `long:"extract-delay" env:"EXTRACT_DELAY" default:"2" description:"Delay between article extractions in seconds"`
	HTTPTimeout     int    `long:"http-timeout" env:"HTTP_TIMEOUT" default:"30" description:"Outbound HTTP request timeout in seconds"`
	APIAccessKey    string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"ArticleAggregator/1.0 (RSS Reader)" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:          raw.DBPath,
		SourcesFile:     raw.SourcesFile,
		Port:            raw.Port,
		FetchInterval:   raw.FetchInterval,
		ExtractInterval: raw.ExtractInterval,
		MaxPerSource:    raw.MaxPerSource,
		ExtractLimit:    raw.ExtractLimit,
		WorkerCount:     raw.WorkerCount,
		SourceDelay:     raw.SourceDelay,
		ExtractDelay:    raw.ExtractDelay,
		HTTPTimeout:     raw.HTTPTimeout,
		APIAccessKey:    raw.APIAccessKey,
		UserAgent:       raw.UserAgent,
		Timezone:        raw.Timezone,
		Debug:           raw.Debug,
		Version:         GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
