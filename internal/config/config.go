package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/mixradar/internal/raster"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

const maxWorkers = 256

// Config holds all tool settings, populated from environment variables.
type Config struct {
	LogLevel        string
	LogFormat       string
	LogFile         string
	HTTPAddr        string
	ShutdownTimeout time.Duration

	Workers         int
	OutputPrefix    string
	OutputFormat    raster.Format
	CalibrationFile string

	// Progress notifications, enabled when brokers are set.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool

	// Chart download settings for the update command.
	ChartBaseURL string
	ChartTimeout time.Duration
	ChartSlots   int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	workers, err := parseWorkers()
	if err != nil {
		return nil, err
	}

	format, err := raster.ParseFormat(sharedcfg.EnvOrDefault("OUTPUT_FORMAT", "png"))
	if err != nil {
		return nil, fmt.Errorf("invalid OUTPUT_FORMAT: %w", err)
	}

	chartTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("CHART_TIMEOUT", "30s"))
	if err != nil || chartTimeout <= 0 {
		return nil, errors.New("invalid CHART_TIMEOUT")
	}

	chartSlots, err := strconv.Atoi(sharedcfg.EnvOrDefault("CHART_SLOTS", "49"))
	if err != nil || chartSlots <= 0 {
		return nil, errors.New("invalid CHART_SLOTS")
	}

	var brokers []string
	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		LogFile:         os.Getenv("LOG_FILE"),
		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		ShutdownTimeout: shutdownTimeout,

		Workers:         workers,
		OutputPrefix:    sharedcfg.EnvOrDefault("OUTPUT_PREFIX", "mixradar"),
		OutputFormat:    format,
		CalibrationFile: os.Getenv("CALIBRATION_FILE"),

		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "radar-merge-progress"),
		KafkaEnabled: len(brokers) > 0,

		ChartBaseURL: strings.TrimRight(sharedcfg.EnvOrDefault("CHART_BASE_URL", "https://dev.weercijfers.nl/static/harmonie/benelux"), "/"),
		ChartTimeout: chartTimeout,
		ChartSlots:   chartSlots,
	}

	if cfg.OutputPrefix == "" || strings.ContainsAny(cfg.OutputPrefix, `/\`) {
		return nil, errors.New("OUTPUT_PREFIX must be a non-empty file name prefix")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func parseWorkers() (int, error) {
	s := os.Getenv("WORKERS")
	if s == "" {
		return runtime.NumCPU(), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxWorkers {
		return 0, fmt.Errorf("invalid WORKERS: must be between 1 and %d", maxWorkers)
	}
	return n, nil
}
