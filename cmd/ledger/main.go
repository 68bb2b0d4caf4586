// Command ledger is the desktop front end of the budget ledger. It
// drives the same services as the HTTP API against a local database.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"budgetledger/internal/config"
	"budgetledger/internal/database"
	apperrors "budgetledger/internal/errors"
	"budgetledger/internal/events"
	"budgetledger/internal/logger"
	"budgetledger/internal/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	logger.Sync()

	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error kind to the process status: 2 for bad input,
// 3 for a missing record and 1 for everything else.
func exitCode(err error) int {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return 1
	}
	switch appErr.Kind {
	case apperrors.KindInvalidArgument:
		return 2
	case apperrors.KindNotFound:
		return 3
	default:
		return 1
	}
}

// cli carries the state shared by every subcommand.
type cli struct {
	v       *viper.Viper
	cfgFile string
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}
	config.SetDefaults(c.v)

	root := &cobra.Command{
		Use:   "ledger",
		Short: "Personal budget ledger",
		Long: `ledger records income and expenses against categories and reports
monthly and yearly summaries.

Settings come from flags, then environment variables
(DB_PATH, DB_DRIVER, ...), then $HOME/.config/budgetledger/ledger.yaml.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.initConfig,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default: $HOME/.config/budgetledger/ledger.yaml)")
	flags.String("db-driver", "", "database driver (sqlite, postgres)")
	flags.String("db-path", "", "sqlite database file")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	_ = c.v.BindPFlag("db_driver", flags.Lookup("db-driver"))
	_ = c.v.BindPFlag("db_path", flags.Lookup("db-path"))
	_ = c.v.BindPFlag("log_level", flags.Lookup("log-level"))

	root.AddCommand(c.categoriesCmd())
	root.AddCommand(c.transactionsCmd())
	root.AddCommand(c.summaryCmd())
	root.AddCommand(c.yearlyCmd())
	root.AddCommand(c.exportCmd())
	root.AddCommand(c.importOFXCmd())
	root.AddCommand(c.migrateCmd())

	return root
}

func (c *cli) initConfig(_ *cobra.Command, _ []string) error {
	if c.cfgFile != "" {
		c.v.SetConfigFile(c.cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			c.v.AddConfigPath(filepath.Join(home, ".config", "budgetledger"))
		}
		c.v.SetConfigName("ledger")
		c.v.SetConfigType("yaml")
	}
	c.v.AutomaticEnv()

	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	level := c.v.GetString("log_level")
	if level == "" {
		level = "warn"
	}
	logger.Init(c.v.GetString("env"), level)
	return nil
}

// app is an open database with the services built on it.
type app struct {
	manager      *database.Manager
	publisher    events.Publisher
	categories   services.CategoryServicer
	transactions services.TransactionServicer
	summaries    services.SummaryServicer
}

func (a *app) close() {
	if err := a.publisher.Close(); err != nil {
		logger.Get().Warnw("failed to close event publisher", "error", err)
	}
	if err := a.manager.Close(); err != nil {
		logger.Get().Warnw("failed to close database", "error", err)
	}
}

// open connects to the configured database and applies pending
// migrations so a fresh file is usable straight away.
func (c *cli) open() (*app, error) {
	cfg, err := config.FromViper(c.v)
	if err != nil {
		return nil, err
	}

	manager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return nil, err
	}
	if err := manager.RunMigrations(); err != nil {
		_ = manager.Close()
		return nil, err
	}

	publisher, err := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		_ = manager.Close()
		return nil, err
	}

	db := manager.DB()
	return &app{
		manager:      manager,
		publisher:    publisher,
		categories:   services.NewCategoryService(db, publisher),
		transactions: services.NewTransactionService(db, publisher),
		summaries:    services.NewSummaryService(db),
	}, nil
}

// run wraps a command body with an open app.
func (c *cli) run(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := c.open()
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd, args, a)
	}
}
