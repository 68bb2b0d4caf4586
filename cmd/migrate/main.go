package main

import (
	"fmt"
	"os"
	"strconv"

	"budgetledger/internal/config"
	"budgetledger/internal/database"
	"budgetledger/internal/logger"
)

func main() {
	logger.Init(os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	if err := run(os.Args[1:]); err != nil {
		logger.Get().Fatalf("Migration error: %v", err)
	}
}

func run(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: migrate <up|down|version> [N]")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	m, err := database.NewMigrator(database.NewConfig(cfg))
	if err != nil {
		return err
	}
	defer m.Close()

	switch args[0] {
	case "up":
		if err := m.Up(); err != nil {
			return err
		}
		logger.Get().Info("Migrations applied successfully")

	case "down":
		steps := 1
		if len(args) > 1 {
			steps, err = strconv.Atoi(args[1])
			if err != nil || steps < 1 {
				return fmt.Errorf("invalid step count %q", args[1])
			}
		}
		if err := m.Down(steps); err != nil {
			return err
		}
		logger.Get().Infof("Rolled back %d migration(s)", steps)

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		logger.Get().Infof("Version: %d, Dirty: %v", version, dirty)

	default:
		return fmt.Errorf("unknown command %q (use up, down or version)", args[0])
	}
	return nil
}
