// Package config provides configuration management for the edge engine.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App         AppConfig         `mapstructure:"app" validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database" validate:"required"`
	Ensemble    EnsembleConfig    `mapstructure:"ensemble" validate:"required"`
	Calibration CalibrationConfig `mapstructure:"calibration" validate:"required"`
	Betting     BettingConfig     `mapstructure:"betting" validate:"required"`
	Simulation  SimulationConfig  `mapstructure:"simulation" validate:"required"`
	Server      ServerConfig      `mapstructure:"server" validate:"required"`
	Metrics     MetricsConfig     `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
}

// BaseModelConfig describes one remote base model endpoint
type BaseModelConfig struct {
	Name          string  `mapstructure:"name" validate:"required"`
	URL           string  `mapstructure:"url" validate:"required,url"`
	APIKey        string  `mapstructure:"api_key"`
	Weight        float64 `mapstructure:"weight" validate:"required,gt=0,lte=1"`
	TimeoutMillis int     `mapstructure:"timeout_millis" validate:"required,gt=0"`
	RateLimit     float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
}

// EnsembleConfig represents ensemble combiner configuration
type EnsembleConfig struct {
	Models          []BaseModelConfig `mapstructure:"models" validate:"required,min=1,dive"`
	Quorum          int               `mapstructure:"quorum" validate:"required,gt=0"`
	CacheTTLSeconds int               `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
}

// CalibrationConfig represents the live calibration loop configuration
type CalibrationConfig struct {
	RefitIntervalSeconds int `mapstructure:"refit_interval_seconds" validate:"required,gte=10"`
	WindowSize           int `mapstructure:"window_size" validate:"required,gt=0"`
	MinSamples           int `mapstructure:"min_samples" validate:"required,gt=0"`
	BinCount             int `mapstructure:"bin_count" validate:"required,gte=2"`
}

// BettingConfig represents edge detection and staking configuration
type BettingConfig struct {
	MinEdge         float64 `mapstructure:"min_edge" validate:"required,gt=0,lt=1"`
	MinConfidence   float64 `mapstructure:"min_confidence" validate:"required,gt=0,lt=1"`
	MaxDisagreement float64 `mapstructure:"max_disagreement" validate:"required,gt=0,lt=1"`
	HardCapFraction float64 `mapstructure:"hard_cap_fraction" validate:"required,gt=0,lte=0.2"`
	MinStake        float64 `mapstructure:"min_stake" validate:"gte=0"`
	DefaultProfile  string  `mapstructure:"default_profile" validate:"required,riskprofile"`
	Bankroll        float64 `mapstructure:"bankroll" validate:"required,gt=0"`
}

// SimulationConfig represents Monte Carlo simulation configuration
type SimulationConfig struct {
	Trials         int     `mapstructure:"trials" validate:"required,gte=100"`
	SequenceLength int     `mapstructure:"sequence_length" validate:"required,gt=0"`
	Workers        int     `mapstructure:"workers" validate:"required,gt=0"`
	RuinThreshold  float64 `mapstructure:"ruin_threshold" validate:"gte=0,lt=1"`
}

// ServerConfig represents the HTTP ingress configuration
type ServerConfig struct {
	Port       int `mapstructure:"port" validate:"required,min=1,max=65535"`
	HealthPort int `mapstructure:"health_port" validate:"required,min=1,max=65535"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN builds the PostgreSQL connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// ModelWeights returns the configured weight for each base model by name
func (c *Config) ModelWeights() map[string]float64 {
	weights := make(map[string]float64, len(c.Ensemble.Models))
	for _, m := range c.Ensemble.Models {
		weights[m.Name] = m.Weight
	}
	return weights
}
