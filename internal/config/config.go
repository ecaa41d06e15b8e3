// Package config loads runtime configuration from environment variables
// (and an optional .env file), in the style of the Hintro config
// package: viper with explicit defaults, never a silent zero value.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every tunable the CLI and HTTP server need.
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Solver   SolverConfig
	LogLevel string `mapstructure:"LOG_LEVEL"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"SERVER_HOST"`
	Port         int           `mapstructure:"SERVER_PORT"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

// PostgresConfig holds the connection settings for the station/request
// store.
type PostgresConfig struct {
	Host     string `mapstructure:"POSTGRES_HOST"`
	Port     int    `mapstructure:"POSTGRES_PORT"`
	User     string `mapstructure:"POSTGRES_USER"`
	Password string `mapstructure:"POSTGRES_PASSWORD"`
	DBName   string `mapstructure:"POSTGRES_DB"`
	SSLMode  string `mapstructure:"POSTGRES_SSLMODE"`
	MaxConns int32  `mapstructure:"POSTGRES_MAX_CONNS"`
}

// SolverConfig holds solver settings for the CLI's solve command, which
// takes Provider, MIPGapRelative and Verbose from here and its time limit
// from the --time-limit flag. HTTP runs take their solver settings from the
// request body and do not read this section.
type SolverConfig struct {
	Provider       string        `mapstructure:"SOLVER_PROVIDER"`
	TimeLimit      time.Duration `mapstructure:"SOLVER_TIME_LIMIT"`
	MIPGapRelative float64       `mapstructure:"SOLVER_MIP_GAP"`
	Verbose        bool          `mapstructure:"SOLVER_VERBOSE"`
}

// DSN returns the PostgreSQL connection string.
func (p *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode,
	)
}

// Addr returns the HTTP listen address in host:port form.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads configuration from environment variables and a .env file,
// falling back to defaults for anything unset.
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("SERVER_READ_TIMEOUT", "5s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "60s")

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "stationselect")
	viper.SetDefault("POSTGRES_PASSWORD", "stationselect_dev_pwd")
	viper.SetDefault("POSTGRES_DB", "stationselect")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")
	viper.SetDefault("POSTGRES_MAX_CONNS", 20)

	viper.SetDefault("SOLVER_PROVIDER", "highs")
	viper.SetDefault("SOLVER_TIME_LIMIT", "30s")
	viper.SetDefault("SOLVER_MIP_GAP", 0.0)
	viper.SetDefault("SOLVER_VERBOSE", false)

	viper.SetDefault("LOG_LEVEL", "info")

	// Absence of a .env file is not an error: docker-compose and plain
	// env injection both work without one.
	_ = viper.ReadInConfig()

	cfg := &Config{
		LogLevel: viper.GetString("LOG_LEVEL"),
		Server: ServerConfig{
			Host:         viper.GetString("SERVER_HOST"),
			Port:         viper.GetInt("SERVER_PORT"),
			ReadTimeout:  viper.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: viper.GetDuration("SERVER_WRITE_TIMEOUT"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
			MaxConns: viper.GetInt32("POSTGRES_MAX_CONNS"),
		},
		Solver: SolverConfig{
			Provider:       viper.GetString("SOLVER_PROVIDER"),
			TimeLimit:      viper.GetDuration("SOLVER_TIME_LIMIT"),
			MIPGapRelative: viper.GetFloat64("SOLVER_MIP_GAP"),
			Verbose:        viper.GetBool("SOLVER_VERBOSE"),
		},
	}

	return cfg, nil
}
