// Command seed populates the database with demo users, posts, and votes.
package main

import (
	"flag"
	"log"

	"riptide/internal/config"
	"riptide/internal/database"
	"riptide/internal/seed"
)

func main() {
	presetPath := flag.String("preset", "", "path to a YAML seed preset (optional)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	preset := seed.DefaultPreset
	if *presetPath != "" {
		preset, err = seed.LoadPreset(*presetPath)
		if err != nil {
			log.Fatalf("Failed to load preset: %v", err)
		}
	}

	if err := seed.Run(db, preset); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
