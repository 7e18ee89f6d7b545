// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
)

// Environment variables that override values from the configuration file.
const (
	EnvCacheTTL         = "LOGICAPPS_MCP_CACHE_TTL"
	EnvBatchConcurrency = "LOGICAPPS_MCP_BATCH_CONCURRENCY"
	EnvCloud            = "LOGICAPPS_MCP_CLOUD"
	EnvSubscriptionId   = "AZURE_SUBSCRIPTION_ID"
	EnvRequestsPerSec   = "LOGICAPPS_MCP_RPS"
	EnvOtlpEndpoint     = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvTraceFile        = "LOGICAPPS_MCP_TRACE_FILE"
)

// Settings is the typed view of the server configuration.
type Settings struct {
	Cache   CacheSettings   `json:"cache"`
	Batch   BatchSettings   `json:"batch"`
	Azure   AzureSettings   `json:"azure"`
	Http    HttpSettings    `json:"http"`
	Tracing TracingSettings `json:"tracing"`
}

type CacheSettings struct {
	TtlSeconds int `json:"ttlSeconds"`
}

// TTL returns the cache lifetime as a duration.
func (s CacheSettings) TTL() time.Duration {
	return time.Duration(s.TtlSeconds) * time.Second
}

type BatchSettings struct {
	Concurrency int `json:"concurrency"`
}

type AzureSettings struct {
	// AzurePublic, AzureChinaCloud or AzureUSGovernment.
	Cloud                 string `json:"cloud"`
	DefaultSubscriptionId string `json:"defaultSubscriptionId"`
}

type HttpSettings struct {
	// Zero means unlimited.
	RequestsPerSecond float64 `json:"requestsPerSecond"`
}

type TracingSettings struct {
	OtlpEndpoint string `json:"otlpEndpoint"`
	File         string `json:"file"`
}

// DefaultSettings returns the settings used for values absent from both the file and the environment.
func DefaultSettings() Settings {
	return Settings{
		Cache: CacheSettings{TtlSeconds: 300},
		Batch: BatchSettings{Concurrency: 5},
		Azure: AzureSettings{Cloud: "AzurePublic"},
	}
}

// LoadSettings reads the configuration file at path (the user config file when empty), applies defaults and then
// environment overrides. Variables from a .env file in the working directory are loaded first; they never replace
// variables already set in the process environment.
func LoadSettings(path string) (*Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}

	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	cfg, err := NewFileConfigManager(NewManager()).LoadOrEmpty(path)
	if err != nil {
		return nil, err
	}

	settings, err := FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("reading settings from '%s': %w", path, err)
	}

	if err := settings.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	log.Printf("loaded settings from '%s'", path)
	return settings, nil
}

// FromConfig decodes settings from cfg and fills unset values from DefaultSettings.
func FromConfig(cfg Config) (*Settings, error) {
	settings := &Settings{}
	for section, target := range map[string]any{
		"cache":   &settings.Cache,
		"batch":   &settings.Batch,
		"azure":   &settings.Azure,
		"http":    &settings.Http,
		"tracing": &settings.Tracing,
	} {
		if _, err := cfg.GetSection(section, target); err != nil {
			return nil, fmt.Errorf("section '%s': %w", section, err)
		}
	}

	if err := mergo.Merge(settings, DefaultSettings()); err != nil {
		return nil, fmt.Errorf("applying default settings: %w", err)
	}

	return settings, nil
}

func (s *Settings) applyEnv(lookup func(string) (string, bool)) error {
	if value, has := lookup(EnvCacheTTL); has && value != "" {
		seconds, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be a number of seconds: %w", EnvCacheTTL, err)
		}
		s.Cache.TtlSeconds = seconds
	}

	if value, has := lookup(EnvBatchConcurrency); has && value != "" {
		concurrency, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", EnvBatchConcurrency, err)
		}
		s.Batch.Concurrency = concurrency
	}

	if value, has := lookup(EnvRequestsPerSec); has && value != "" {
		rps, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s must be a number: %w", EnvRequestsPerSec, err)
		}
		s.Http.RequestsPerSecond = rps
	}

	if value, has := lookup(EnvCloud); has && value != "" {
		s.Azure.Cloud = value
	}

	if value, has := lookup(EnvSubscriptionId); has && value != "" {
		s.Azure.DefaultSubscriptionId = value
	}

	if value, has := lookup(EnvOtlpEndpoint); has && value != "" {
		s.Tracing.OtlpEndpoint = value
	}

	if value, has := lookup(EnvTraceFile); has && value != "" {
		s.Tracing.File = value
	}

	return nil
}

// Validate reports settings that cannot be used.
func (s *Settings) Validate() error {
	if s.Cache.TtlSeconds <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %d seconds", s.Cache.TtlSeconds)
	}

	if s.Batch.Concurrency < 1 {
		return fmt.Errorf("batch concurrency must be at least 1, got %d", s.Batch.Concurrency)
	}

	if s.Http.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second must not be negative, got %v", s.Http.RequestsPerSecond)
	}

	return nil
}
