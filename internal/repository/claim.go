package repository

import (
	"context"
	"errors"

	"campusfind/internal/models"
	"campusfind/internal/observability"

	"gorm.io/gorm"
)

// ClaimRepository defines persistence operations for claims.
type ClaimRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Claim, error)
	GetByIDWithItem(ctx context.Context, id uint) (*models.Claim, error)
	Create(ctx context.Context, claim *models.Claim) error
	UpdateNotes(ctx context.Context, id uint, notes string) error
	UpdateStatus(ctx context.Context, id uint, status models.ClaimStatus) error
	GetPendingByItemAndClaimant(ctx context.Context, itemID, claimantID uint) (*models.Claim, error)
	GetByItemAndClaimant(ctx context.Context, itemID, claimantID uint) (*models.Claim, error)
	ListByClaimant(ctx context.Context, claimantID uint) ([]models.Claim, error)
	ListForAdmin(ctx context.Context, status models.ClaimStatus) ([]models.Claim, error)
}

type claimRepository struct {
	db *gorm.DB
}

// NewClaimRepository returns a new ClaimRepository implementation.
func NewClaimRepository(db *gorm.DB) ClaimRepository {
	return &claimRepository{db: db}
}

func (r *claimRepository) GetByID(ctx context.Context, id uint) (*models.Claim, error) {
	var claim models.Claim
	defer observability.TrackQuery("select", "claims")()
	if err := r.db.WithContext(ctx).First(&claim, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Claim", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &claim, nil
}

func (r *claimRepository) GetByIDWithItem(ctx context.Context, id uint) (*models.Claim, error) {
	var claim models.Claim
	defer observability.TrackQuery("select", "claims")()
	if err := r.db.WithContext(ctx).Preload("Item").First(&claim, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Claim", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &claim, nil
}

// Create inserts the claim. The partial unique index on
// (item_id, claimant_id) WHERE status = 'pending' is the commit-time
// backstop for the duplicate pre-check, so a unique violation here maps to
// the duplicate-claim error, not a generic conflict.
func (r *claimRepository) Create(ctx context.Context, claim *models.Claim) error {
	defer observability.TrackQuery("insert", "claims")()
	if err := r.db.WithContext(ctx).Create(claim).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewDuplicateClaimError()
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *claimRepository) UpdateNotes(ctx context.Context, id uint, notes string) error {
	defer observability.TrackQuery("update", "claims")()
	result := r.db.WithContext(ctx).Model(&models.Claim{}).Where("id = ?", id).Update("notes", notes)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Claim", id)
	}
	return nil
}

func (r *claimRepository) UpdateStatus(ctx context.Context, id uint, status models.ClaimStatus) error {
	if !status.Valid() {
		return models.NewValidationError("Unrecognized claim status")
	}
	defer observability.TrackQuery("update", "claims")()
	result := r.db.WithContext(ctx).Model(&models.Claim{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Claim", id)
	}
	return nil
}

func (r *claimRepository) GetPendingByItemAndClaimant(ctx context.Context, itemID, claimantID uint) (*models.Claim, error) {
	var claim models.Claim
	defer observability.TrackQuery("select", "claims")()
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND claimant_id = ? AND status = ?", itemID, claimantID, models.ClaimStatusPending).
		First(&claim).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &claim, nil
}

func (r *claimRepository) GetByItemAndClaimant(ctx context.Context, itemID, claimantID uint) (*models.Claim, error) {
	var claim models.Claim
	defer observability.TrackQuery("select", "claims")()
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND claimant_id = ?", itemID, claimantID).
		Order("created_at DESC").
		First(&claim).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &claim, nil
}

func (r *claimRepository) ListByClaimant(ctx context.Context, claimantID uint) ([]models.Claim, error) {
	var claims []models.Claim
	defer observability.TrackQuery("select", "claims")()
	err := r.db.WithContext(ctx).
		Where("claimant_id = ?", claimantID).
		Order("created_at DESC").
		Find(&claims).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return claims, nil
}

// ListForAdmin returns claims enriched with the item, the item's reporter and
// the claimant for admin review. An empty status means all statuses.
func (r *claimRepository) ListForAdmin(ctx context.Context, status models.ClaimStatus) ([]models.Claim, error) {
	var claims []models.Claim
	defer observability.TrackQuery("select", "claims")()
	query := r.db.WithContext(ctx).
		Preload("Item").
		Preload("Item.Reporter").
		Preload("Claimant")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("created_at ASC").Find(&claims).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return claims, nil
}
