package repository

import (
	"context"
	"errors"
	"time"

	"campusfind/internal/cache"
	"campusfind/internal/models"
	"campusfind/internal/observability"

	"gorm.io/gorm"
)

// Sort fields accepted by item search; anything else falls back to created_at.
var itemSortFields = map[string]struct{}{
	"created_at": {},
	"date":       {},
	"title":      {},
	"location":   {},
}

const (
	// DefaultPerPage is the item search page size when none is requested.
	DefaultPerPage = 20
	// MaxPerPage caps the item search page size.
	MaxPerPage = 100
)

// ItemFilter describes an item search. Zero values mean "no constraint".
type ItemFilter struct {
	VerifiedOnly bool
	Status       models.ItemStatus
	ReporterID   uint
	Category     models.ItemCategory
	ItemType     models.ItemType
	Location     string
	Query        string
	DateFrom     *time.Time
	DateTo       *time.Time
	SortBy       string
	SortOrder    string
	Page         int
	PerPage      int
}

// Normalize clamps pagination and sorting to the allowed ranges.
func (f *ItemFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage <= 0 {
		f.PerPage = DefaultPerPage
	}
	if f.PerPage > MaxPerPage {
		f.PerPage = MaxPerPage
	}
	if _, ok := itemSortFields[f.SortBy]; !ok {
		f.SortBy = "created_at"
	}
	if f.SortOrder != "asc" {
		f.SortOrder = "desc"
	}
}

// ItemRepository defines persistence operations for items.
type ItemRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Item, error)
	Create(ctx context.Context, item *models.Item) error
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, filter ItemFilter) ([]models.Item, int64, error)
	ListByReporter(ctx context.Context, reporterID uint) ([]models.Item, error)
	ListByStatus(ctx context.Context, status models.ItemStatus) ([]models.Item, error)
}

type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository returns a new ItemRepository implementation.
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) GetByID(ctx context.Context, id uint) (*models.Item, error) {
	var item models.Item
	key := cache.ItemKey(id)

	err := cache.Aside(ctx, key, &item, cache.ItemTTL, func() error {
		defer observability.TrackQuery("select", "items")()
		if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Item", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) Create(ctx context.Context, item *models.Item) error {
	defer observability.TrackQuery("insert", "items")()
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *itemRepository) Update(ctx context.Context, item *models.Item) error {
	defer observability.TrackQuery("update", "items")()
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateItem(ctx, item.ID)
	return nil
}

// Delete removes the item. Its claims go with it through the ON DELETE
// CASCADE constraint; the explicit claim delete below covers sqlite files
// created before foreign keys were enabled.
func (r *itemRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "items")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", id).Delete(&models.Claim{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Item{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateItem(ctx, id)
	return nil
}

func (r *itemRepository) Search(ctx context.Context, filter ItemFilter) ([]models.Item, int64, error) {
	filter.Normalize()
	defer observability.TrackQuery("select", "items")()

	query := r.db.WithContext(ctx).Model(&models.Item{})

	if filter.VerifiedOnly {
		query = query.Where("is_verified = ?", true)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ReporterID != 0 {
		query = query.Where("reporter_id = ?", filter.ReporterID)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.ItemType != "" {
		query = query.Where("item_type = ?", filter.ItemType)
	}
	if filter.Location != "" {
		query = query.Where("LOWER(location) LIKE ?", "%"+lowerPattern(filter.Location)+"%")
	}
	if filter.Query != "" {
		pattern := "%" + lowerPattern(filter.Query) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if filter.DateFrom != nil {
		query = query.Where("date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("date <= ?", *filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var items []models.Item
	err := query.
		Order(filter.SortBy + " " + filter.SortOrder).
		Offset((filter.Page - 1) * filter.PerPage).
		Limit(filter.PerPage).
		Find(&items).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return items, total, nil
}

func (r *itemRepository) ListByReporter(ctx context.Context, reporterID uint) ([]models.Item, error) {
	var items []models.Item
	defer observability.TrackQuery("select", "items")()
	err := r.db.WithContext(ctx).
		Where("reporter_id = ?", reporterID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *itemRepository) ListByStatus(ctx context.Context, status models.ItemStatus) ([]models.Item, error) {
	var items []models.Item
	defer observability.TrackQuery("select", "items")()
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}
