// Command main runs the database seeder for CampusFind.
package main

import (
	"flag"
	"log"

	"campusfind/internal/config"
	"campusfind/internal/database"
	"campusfind/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 30, "Number of users to create")
	numItems := flag.Int("items", 120, "Number of items to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d items, clean=%v\n", *numUsers, *numItems, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)
	if err := s.Run(seed.Options{
		NumUsers:    *numUsers,
		NumItems:    *numItems,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("All done! The database is now populated with demo data.")
	log.Println("All seeded users have the password: Password123")
}
