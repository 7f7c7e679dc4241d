// Command migrate applies the database schema for CampusFind.
//
// Schema changes are applied automatically in development; production
// deployments run this explicitly as part of their rollout.
package main

import (
	"log"

	"campusfind/internal/config"
	"campusfind/internal/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Schema applied")
}
