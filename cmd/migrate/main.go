// Package main 数据库迁移入口
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"collab-novel-api/internal/config"
	"collab-novel-api/internal/infrastructure/persistence/postgres"
	"collab-novel-api/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [up|down|version]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx := context.Background()

	m, err := postgres.NewMigrator(cfg.Database.Postgres.MigrationURL())
	if err != nil {
		logger.Fatal(ctx, "failed to init migrator", err)
	}
	defer func() {
		if err := m.Close(); err != nil {
			logger.Warn(ctx, "failed to close migrator", "error", err.Error())
		}
	}()

	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "version":
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal(ctx, "migration failed", err, "command", command)
	}

	version, dirty, err := m.Version()
	if err != nil {
		logger.Fatal(ctx, "failed to read migration version", err)
	}
	logger.Info(ctx, "migration finished", "command", command, "version", version, "dirty", dirty)
}
