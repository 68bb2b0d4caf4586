// Package config loads process configuration from the environment, an
// optional .env file and, for the desktop CLI, an optional config file.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Env      string
	Port     string
	LogLevel string

	// Database
	DBDriver          string
	DBPath            string
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBSSLMode         string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	// Events
	AMQPURL      string
	AMQPExchange string

	ShutdownTimeout time.Duration
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "")
	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("db_path", "budgetledger.db")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "ledger")
	v.SetDefault("db_password", "ledger")
	v.SetDefault("db_name", "ledger")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("db_max_open_conns", 100)
	v.SetDefault("db_max_idle_conns", 10)
	v.SetDefault("db_conn_max_lifetime", time.Hour)
	v.SetDefault("amqp_url", "")
	v.SetDefault("amqp_exchange", "budgetledger")
	v.SetDefault("shutdown_timeout", 10*time.Second)
}

// Load reads configuration from the environment, after loading .env if
// one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already prepared viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Env:               v.GetString("env"),
		Port:              v.GetString("port"),
		LogLevel:          v.GetString("log_level"),
		DBDriver:          v.GetString("db_driver"),
		DBPath:            v.GetString("db_path"),
		DBHost:            v.GetString("db_host"),
		DBPort:            v.GetString("db_port"),
		DBUser:            v.GetString("db_user"),
		DBPassword:        v.GetString("db_password"),
		DBName:            v.GetString("db_name"),
		DBSSLMode:         v.GetString("db_sslmode"),
		DBMaxOpenConns:    v.GetInt("db_max_open_conns"),
		DBMaxIdleConns:    v.GetInt("db_max_idle_conns"),
		DBConnMaxLifetime: v.GetDuration("db_conn_max_lifetime"),
		AMQPURL:           v.GetString("amqp_url"),
		AMQPExchange:      v.GetString("amqp_exchange"),
		ShutdownTimeout:   v.GetDuration("shutdown_timeout"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late at connect time.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (use sqlite or postgres)", c.DBDriver)
	}
	if c.DBDriver == "sqlite" && c.DBPath == "" {
		return errors.New("DB_PATH is required for the sqlite driver")
	}
	if c.DBMaxOpenConns < 1 {
		return errors.New("DB_MAX_OPEN_CONNS must be at least 1")
	}
	return nil
}
