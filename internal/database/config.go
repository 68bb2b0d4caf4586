package database

import (
	"fmt"
	"net/url"
	"time"

	"budgetledger/internal/config"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds database connection and pool settings
type Config struct {
	Driver   string
	Path     string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewConfig derives the database settings from the application config.
func NewConfig(cfg *config.Config) *Config {
	return &Config{
		Driver:          cfg.DBDriver,
		Path:            cfg.DBPath,
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		User:            cfg.DBUser,
		Password:        cfg.DBPassword,
		DBName:          cfg.DBName,
		SSLMode:         cfg.DBSSLMode,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	}
}

// DSN returns the connection string for the GORM dialector. SQLite
// connections always enforce foreign keys.
func (c *Config) DSN() string {
	if c.Driver == DriverSQLite {
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL", c.Path)
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// MigrateURL returns the URL form expected by golang-migrate.
func (c *Config) MigrateURL() string {
	if c.Driver == DriverSQLite {
		return "sqlite://" + c.Path
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}
