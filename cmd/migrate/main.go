package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/stocklane/stocklane-backend/pkg/config"
	"github.com/stocklane/stocklane-backend/pkg/migrate"
)

// Runs goose against the configured database:
//
//	go run ./cmd/migrate -command up
//	go run ./cmd/migrate -command down
//	go run ./cmd/migrate -command status
func main() {
	_ = godotenv.Load()

	var (
		command = flag.String("command", "up", "goose command (up, down, status, version, ...)")
		dir     = flag.String("dir", migrate.DefaultDir, "migrations directory")
	)
	flag.Parse()

	if err := run(*command, *dir, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run(command, dir string, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := migrate.ValidateDir(dir); err != nil {
		return err
	}

	db, err := sql.Open("postgres", cfg.DB.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	return migrate.Run(context.Background(), db, dir, command, args...)
}
