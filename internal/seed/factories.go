// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"campusfind/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// campusLocations are the places items get reported at.
var campusLocations = []string{
	"Main Library, 2nd floor",
	"Student Union food court",
	"Engineering Building, Room 204",
	"Science Hall lobby",
	"Recreation Center locker room",
	"North Campus bus stop",
	"Lecture Hall B",
	"Dormitory A common room",
	"Parking Lot C",
	"Campus Cafe",
}

var itemTitlesByCategory = map[models.ItemCategory][]string{
	models.ItemCategoryElectronics: {"Black wireless earbuds", "Silver laptop", "Phone charger", "Graphing calculator", "USB drive"},
	models.ItemCategoryDocuments:   {"Student ID card", "Blue folder with notes", "Passport", "Bus pass", "Lab report binder"},
	models.ItemCategoryClothing:    {"Grey hoodie", "Navy rain jacket", "Red scarf", "Baseball cap", "Pair of gloves"},
	models.ItemCategoryAccessories: {"Black backpack", "Water bottle", "Umbrella", "Silver watch", "Keychain with 3 keys"},
	models.ItemCategoryBooks:       {"Calculus textbook", "Paperback novel", "Organic chemistry notes", "Sketchbook", "Library book"},
	models.ItemCategoryOthers:      {"Skateboard", "Lunch box", "Travel mug", "Glasses case", "Badminton racket"},
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.DefaultCost)
	user := &models.User{
		Name:     gofakeit.Name(),
		Email:    fmt.Sprintf("%s%d@campus.example.edu", gofakeit.Username(), gofakeit.Number(100, 999)),
		Password: string(hashed),
		Role:     models.UserRoleMember,
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateAdmin persists the well-known admin account used by demos.
func (f *Factory) CreateAdmin() (*models.User, error) {
	return f.CreateUser(func(u *models.User) {
		u.Name = "Campus Admin"
		u.Email = "admin@campus.example.edu"
		u.Role = models.UserRoleAdmin
	})
}

// CreateItem constructs and persists a sample item reported by the given user.
func (f *Factory) CreateItem(reporter *models.User, overrides ...func(*models.Item)) (*models.Item, error) {
	category := models.ItemCategories[f.rand.Intn(len(models.ItemCategories))]
	titles := itemTitlesByCategory[category]

	itemType := models.ItemTypeLost
	if f.rand.Intn(2) == 0 {
		itemType = models.ItemTypeFound
	}

	item := &models.Item{
		Title:       titles[f.rand.Intn(len(titles))],
		Description: gofakeit.Paragraph(1, 2, 8, " "),
		Category:    category,
		ItemType:    itemType,
		Location:    campusLocations[f.rand.Intn(len(campusLocations))],
		Date:        time.Now().UTC().AddDate(0, 0, -f.rand.Intn(60)),
		PhotoPath:   fmt.Sprintf("photos/seed_%s.jpg", gofakeit.UUID()),
		Status:      models.ItemStatusPending,
		ReporterID:  reporter.ID,
	}

	for _, override := range overrides {
		override(item)
	}
	item.IsVerified = item.Status == models.ItemStatusVerified || item.Status == models.ItemStatusClaimed

	if err := f.db.Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// CreateClaim constructs and persists a claim on behalf of the claimant.
func (f *Factory) CreateClaim(item *models.Item, claimant *models.User, overrides ...func(*models.Claim)) (*models.Claim, error) {
	claim := &models.Claim{
		ItemID:     item.ID,
		ClaimantID: claimant.ID,
		Status:     models.ClaimStatusPending,
		Notes:      gofakeit.Sentence(12),
		ClaimDate:  time.Now().UTC().AddDate(0, 0, -f.rand.Intn(14)),
	}

	for _, override := range overrides {
		override(claim)
	}

	if err := f.db.Create(claim).Error; err != nil {
		return nil, err
	}
	return claim, nil
}
