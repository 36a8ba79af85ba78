// Command migrate creates or updates the database schema.
package main

import (
	"fmt"
	"log"

	"tradepost/internal/config"
	"tradepost/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()

	if err := database.Migrate(db); err != nil {
		return err
	}
	log.Println("schema is up to date")
	return nil
}
