package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/genasnewdar/lever-stg/internal/data/db"
	"github.com/genasnewdar/lever-stg/internal/platform/envutil"
	"github.com/genasnewdar/lever-stg/internal/platform/logger"
)

func main() {
	var pendingOnly bool
	flag.BoolVar(&pendingOnly, "pending", false, "list pending migrations without applying them")
	flag.Parse()

	_ = godotenv.Load()

	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	m, err := db.NewMigrator(db.DSN(), log)
	if err != nil {
		log.Error("Migrator init failed", "error", err)
		os.Exit(1)
	}
	defer m.Close()

	ctx := context.Background()
	if pendingOnly {
		pending, err := m.Pending(ctx)
		if err != nil {
			log.Error("Listing pending migrations failed", "error", err)
			os.Exit(1)
		}
		if len(pending) == 0 {
			log.Info("No pending migrations")
			return
		}
		for _, version := range pending {
			fmt.Println(version)
		}
		return
	}

	applied, err := m.Run(ctx)
	if err != nil {
		log.Error("Migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("Migrations applied", "count", applied)
}
