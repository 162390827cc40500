package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/comandero-software/comandero/internal/config"
	"github.com/comandero-software/comandero/internal/database"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	action := flag.String("action", "up", "Migration action: up, down, version, force")
	version := flag.Int("version", 0, "Target version (for force action)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// golang-migrate drives a database/sql handle, not the pgx pool the
	// API uses.
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	migrator, err := database.NewMigrator(db, "comandero")
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer func() { _ = migrator.Close() }()

	switch *action {
	case "up":
		log.Println("applying migrations")
		if err := migrator.Up(); err != nil {
			return err
		}
		log.Println("migrations applied")
		return nil

	case "down":
		log.Println("rolling back last migration")
		if err := migrator.Down(); err != nil {
			return err
		}
		log.Println("migration rolled back")
		return nil

	case "version":
		v, dirty, err := migrator.Version()
		if err != nil {
			return err
		}
		if dirty {
			log.Printf("current version: %d (dirty, last migration did not finish)", v)
		} else {
			log.Printf("current version: %d", v)
		}
		return nil

	case "force":
		if *version == 0 {
			return fmt.Errorf("version flag is required for force action")
		}
		log.Printf("forcing schema version to %d", *version)
		if err := migrator.Force(*version); err != nil {
			return err
		}
		log.Println("schema version forced")
		return nil

	default:
		return fmt.Errorf("invalid action: %s (use: up, down, version, force)", *action)
	}
}
