// Package main provides admin management utilities for CampusFind.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"campusfind/internal/config"
	"campusfind/internal/database"
	"campusfind/internal/models"

	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin/main.go promote <user_id>   - Promote user to admin")
		fmt.Println("  go run ./cmd/admin/main.go demote <user_id>    - Demote user from admin")
		fmt.Println("  go run ./cmd/admin/main.go list-admins         - List all admins")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	switch os.Args[1] {
	case "promote":
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/admin/main.go promote <user_id>")
			os.Exit(1)
		}
		setRole(db, os.Args[2], models.UserRoleAdmin)

	case "demote":
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/admin/main.go demote <user_id>")
			os.Exit(1)
		}
		setRole(db, os.Args[2], models.UserRoleMember)

	case "list-admins":
		listAdmins(db)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func setRole(db *gorm.DB, idArg string, role models.UserRole) {
	id, err := strconv.ParseUint(idArg, 10, 32)
	if err != nil {
		log.Fatalf("Invalid user ID %q", idArg)
	}

	var user models.User
	if err := db.First(&user, uint(id)).Error; err != nil {
		log.Fatalf("User %d not found: %v", id, err)
	}

	user.Role = role
	if err := db.Save(&user).Error; err != nil {
		log.Fatalf("Failed to update user %d: %v", id, err)
	}

	fmt.Printf("User %d (%s) is now %s\n", user.ID, user.Email, role)
}

func listAdmins(db *gorm.DB) {
	var admins []models.User
	if err := db.Where("role = ?", models.UserRoleAdmin).Find(&admins).Error; err != nil {
		log.Fatalf("Failed to list admins: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admins found")
		return
	}

	for _, a := range admins {
		fmt.Printf("%d\t%s\t%s\n", a.ID, a.Name, a.Email)
	}
}
