package seed

import (
	"fmt"
	"log"

	"campusfind/internal/models"

	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	NumUsers    int
	NumItems    int
	ShouldClean bool
}

// Seeder populates the database with demo data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db)}
}

// ClearAll removes all seeded rows. Deletion order respects foreign keys.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	for _, model := range []interface{}{&models.Claim{}, &models.Item{}, &models.User{}} {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

// Run seeds the campus: one admin, a population of users, items spread
// across every lifecycle state, and overlapping claims on popular items.
func (s *Seeder) Run(opts Options) error {
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
	}

	admin, err := s.factory.CreateAdmin()
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	log.Printf("Admin created: %s", admin.Email)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("%d users created", len(users))

	items, err := s.seedItems(users, opts.NumItems)
	if err != nil {
		return err
	}
	log.Printf("%d items created", len(items))

	claims, err := s.seedClaims(users, items)
	if err != nil {
		return err
	}
	log.Printf("%d claims created", claims)

	return nil
}

// seedItems creates count items spread across the lifecycle:
// roughly a quarter pending, half verified, and the rest split between
// claimed and rejected.
func (s *Seeder) seedItems(users []*models.User, count int) ([]*models.Item, error) {
	items := make([]*models.Item, 0, count)
	for i := 0; i < count; i++ {
		reporter := users[s.factory.rand.Intn(len(users))]

		status := models.ItemStatusVerified
		switch i % 8 {
		case 0, 1:
			status = models.ItemStatusPending
		case 2:
			status = models.ItemStatusClaimed
		case 3:
			status = models.ItemStatusRejected
		}

		item, err := s.factory.CreateItem(reporter, func(it *models.Item) {
			it.Status = status
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

// seedClaims submits pending claims against verified items, including
// several items with competing claimants, and backfills approved claims
// for items already in the claimed state.
func (s *Seeder) seedClaims(users []*models.User, items []*models.Item) (int, error) {
	created := 0
	for _, item := range items {
		switch item.Status {
		case models.ItemStatusVerified:
			// Claim roughly half of the verified inventory.
			if s.factory.rand.Intn(2) == 0 {
				continue
			}
			claimants := 1 + s.factory.rand.Intn(3)
			seen := map[uint]bool{item.ReporterID: true}
			for i := 0; i < claimants; i++ {
				claimant := users[s.factory.rand.Intn(len(users))]
				if seen[claimant.ID] {
					continue
				}
				seen[claimant.ID] = true
				if _, err := s.factory.CreateClaim(item, claimant); err != nil {
					return created, fmt.Errorf("failed to create claim: %w", err)
				}
				created++
			}
		case models.ItemStatusClaimed:
			claimant := users[s.factory.rand.Intn(len(users))]
			if claimant.ID == item.ReporterID {
				continue
			}
			if _, err := s.factory.CreateClaim(item, claimant, func(c *models.Claim) {
				c.Status = models.ClaimStatusApproved
			}); err != nil {
				return created, fmt.Errorf("failed to create approved claim: %w", err)
			}
			created++
		}
	}
	return created, nil
}
