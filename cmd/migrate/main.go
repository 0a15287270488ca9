package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/narwhalmedia/catalog/pkg/config"
	"github.com/narwhalmedia/catalog/pkg/database"
	"github.com/narwhalmedia/catalog/pkg/interfaces"
	"github.com/narwhalmedia/catalog/pkg/logger"
)

func main() {
	var (
		driver = flag.String("driver", "", "Database driver (sqlite or postgres), overrides config")
		path   = flag.String("path", "", "SQLite database file, overrides config")
		dsn    = flag.String("dsn", "", "Postgres connection string, overrides config")
		status = flag.Bool("status", false, "Show migration status")
		dryRun = flag.Bool("dry-run", false, "Show pending migrations without applying them")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.GetDefaults()
	if err := config.LoadServiceConfig("catalog", cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dbCfg := cfg.Database.ToDatabaseConfig()
	if *driver != "" {
		dbCfg.Driver = *driver
	}
	if *path != "" {
		dbCfg.Path = *path
	}
	if *dsn != "" {
		dbCfg.DSN = *dsn
	}

	quiet := logger.NewNoopLogger()
	db, err := database.Open(dbCfg, quiet)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	switch {
	case *status:
		showMigrationStatus(db, quiet)
	case *dryRun:
		showPendingMigrations(db, quiet)
	default:
		runMigrations(db, logger.New())
	}
}

// runMigrations applies all pending migrations
func runMigrations(db *gorm.DB, l interfaces.Logger) {
	fmt.Println("Running database migrations...")

	if err := database.RunMigrations(db, l); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	fmt.Println("Migrations completed successfully!")
}

// showMigrationStatus displays the current migration status
func showMigrationStatus(db *gorm.DB, l interfaces.Logger) {
	applied, err := database.NewMigrator(db, l).AppliedMigrations()
	if err != nil {
		log.Fatalf("Failed to get migrations: %v", err)
	}

	if len(applied) == 0 {
		fmt.Println("No migrations have been applied yet.")
	} else {
		fmt.Println("Applied migrations:")
		fmt.Println("==================")
		for _, m := range applied {
			fmt.Printf("%s | %s | Applied at: %s\n", m.Version, m.Name, m.AppliedAt.Format("2006-01-02 15:04:05"))
		}
	}

	pending, err := database.GetPendingMigrations(db, l)
	if err != nil {
		log.Fatalf("Failed to get pending migrations: %v", err)
	}

	if len(pending) > 0 {
		fmt.Println("\nPending migrations:")
		fmt.Println("==================")
		for _, m := range pending {
			fmt.Printf("%s | %s\n", m.Version, m.Name)
		}
	} else {
		fmt.Println("\nAll migrations are up to date!")
	}
}

// showPendingMigrations displays migrations that would be applied
func showPendingMigrations(db *gorm.DB, l interfaces.Logger) {
	pending, err := database.GetPendingMigrations(db, l)
	if err != nil {
		log.Fatalf("Failed to get pending migrations: %v", err)
	}

	if len(pending) == 0 {
		fmt.Println("No pending migrations.")
		return
	}

	fmt.Println("Pending migrations that would be applied:")
	fmt.Println("========================================")
	for _, m := range pending {
		fmt.Printf("%s | %s\n", m.Version, m.Name)
	}
}
