package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Brasil.io upstream.
	BrasilIOURL   string
	BrasilIOToken string
	FetchTimeout  time.Duration

	// TopN is the number of states in the comparative charts.
	TopN int

	// Optional snapshot publishing; disabled when no brokers are set.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	// DashboardConfig is an optional YAML file with presentation settings.
	DashboardConfig string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("FETCH_TIMEOUT", "10s"))
	if err != nil || fetchTimeout <= 0 {
		return nil, errors.New("invalid FETCH_TIMEOUT")
	}

	topN, err := parseTopN()
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		BrasilIOURL:   sharedcfg.EnvOrDefault("BRASILIO_URL", "https://brasil.io/api/dataset/covid19/caso/data"),
		BrasilIOToken: os.Getenv("BRASILIO_TOKEN"),
		FetchTimeout:  fetchTimeout,

		TopN: topN,

		KafkaEnabled: len(brokers) > 0,
		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "covid-state-snapshots"),

		DashboardConfig: os.Getenv("DASHBOARD_CONFIG"),
	}

	if cfg.BrasilIOURL == "" {
		return nil, errors.New("BRASILIO_URL is required")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func parseTopN() (int, error) {
	s := os.Getenv("TOP_N")
	if s == "" {
		return 10, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 27 {
		return 0, fmt.Errorf("invalid TOP_N %q: must be between 1 and 27", s)
	}
	return n, nil
}
