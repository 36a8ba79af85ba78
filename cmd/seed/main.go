// Command seed loads demo users and listings into the database.
package main

import (
	"flag"
	"fmt"
	"log"

	"tradepost/internal/config"
	"tradepost/internal/database"
	"tradepost/internal/seed"
)

func main() {
	fake := flag.Int("fake", 0, "Number of generated listings to add")
	randSeed := flag.Int64("seed", 0, "Random seed for generated listings (0 = time based)")
	flag.Parse()

	if err := run(*fake, *randSeed); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
	log.Println("✨ All done!")
}

func run(fake int, randSeed int64) error {
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

	if _, err := seed.Demo(db); err != nil {
		return err
	}
	if fake > 0 {
		if _, err := seed.NewFactory(db, randSeed).Items(fake); err != nil {
			return err
		}
	}
	return nil
}
