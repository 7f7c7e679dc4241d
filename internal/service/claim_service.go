package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"campusfind/internal/cache"
	"campusfind/internal/models"
	"campusfind/internal/observability"
	"campusfind/internal/repository"
	"campusfind/internal/validation"
)

const maxClaimNotesLength = 2000

// ClaimService governs the claim lifecycle: submission against verified
// items, and the admin approve/reject decisions. Approval transitions
// the claim and its item together inside one transaction.
type ClaimService struct {
	claimRepo repository.ClaimRepository
	itemRepo  repository.ItemRepository
	db        *gorm.DB
	isAdmin   IsAdminFunc
}

// NewClaimService returns a new ClaimService.
func NewClaimService(claimRepo repository.ClaimRepository, itemRepo repository.ItemRepository, db *gorm.DB, isAdmin IsAdminFunc) *ClaimService {
	return &ClaimService{
		claimRepo: claimRepo,
		itemRepo:  itemRepo,
		db:        db,
		isAdmin:   isAdmin,
	}
}

// Create submits a claim on a verified item. A user may not claim their
// own report and may hold at most one pending claim per item; the
// pre-check here is backed by a partial unique index so concurrent
// submissions cannot slip a duplicate through.
func (s *ClaimService) Create(ctx context.Context, claimantID, itemID uint, notes string) (*models.Claim, error) {
	notes = validation.SanitizeText(notes, 0)
	if len(notes) > maxClaimNotesLength {
		return nil, models.NewValidationError("Notes must be at most 2000 characters")
	}

	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if !item.OpenForClaims() {
		return nil, models.NewValidationError("Item is not open for claims")
	}

	if item.ReporterID == claimantID {
		return nil, models.NewValidationError("You cannot claim an item you reported")
	}

	existing, err := s.claimRepo.GetPendingByItemAndClaimant(ctx, itemID, claimantID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewDuplicateClaimError()
	}

	claim := &models.Claim{
		ItemID:     itemID,
		ClaimantID: claimantID,
		Status:     models.ClaimStatusPending,
		Notes:      notes,
		ClaimDate:  time.Now().UTC(),
	}

	if err := s.claimRepo.Create(ctx, claim); err != nil {
		return nil, err
	}
	return claim, nil
}

// Approve grants a pending claim. The claim moves to approved and its
// item to claimed in a single transaction, so a crash cannot leave an
// approved claim against an unclaimed item. Sibling pending claims on
// the same item are left untouched for manual review.
func (s *ClaimService) Approve(ctx context.Context, callerID, claimID uint) (*models.Claim, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	claim, err := s.claimRepo.GetByIDWithItem(ctx, claimID)
	if err != nil {
		return nil, err
	}

	if claim.Status != models.ClaimStatusPending {
		return nil, models.NewConflictError("Claim has already been decided")
	}

	if claim.Item.Status != models.ItemStatusVerified {
		return nil, models.NewConflictError("Item is no longer available to claim")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Claim{}).
			Where("id = ? AND status = ?", claimID, models.ClaimStatusPending).
			Update("status", models.ClaimStatusApproved)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewConflictError("Claim has already been decided")
		}

		res = tx.Model(&models.Item{}).
			Where("id = ? AND status = ?", claim.ItemID, models.ItemStatusVerified).
			Updates(map[string]interface{}{
				"status":      models.ItemStatusClaimed,
				"is_verified": true,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewConflictError("Item is no longer available to claim")
		}
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, models.NewInternalError(err)
	}

	cache.InvalidateItem(ctx, claim.ItemID)
	observability.ClaimDecisions.WithLabelValues("approved").Inc()

	claim.Status = models.ClaimStatusApproved
	claim.Item.Status = models.ItemStatusClaimed
	claim.Item.IsVerified = true
	return claim, nil
}

// Reject declines a pending claim. The item stays verified and open for
// other claimants.
func (s *ClaimService) Reject(ctx context.Context, callerID, claimID uint) (*models.Claim, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	if claim.Status != models.ClaimStatusPending {
		return nil, models.NewConflictError("Claim has already been decided")
	}

	if err := s.claimRepo.UpdateStatus(ctx, claimID, models.ClaimStatusRejected); err != nil {
		return nil, err
	}

	observability.ClaimDecisions.WithLabelValues("rejected").Inc()

	claim.Status = models.ClaimStatusRejected
	return claim, nil
}

// SetNotes replaces the admin-facing notes on a claim.
func (s *ClaimService) SetNotes(ctx context.Context, callerID, claimID uint, notes string) (*models.Claim, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	notes = strings.TrimSpace(validation.SanitizeText(notes, 0))
	if len(notes) > maxClaimNotesLength {
		return nil, models.NewValidationError("Notes must be at most 2000 characters")
	}

	if err := s.claimRepo.UpdateNotes(ctx, claimID, notes); err != nil {
		return nil, err
	}
	return s.claimRepo.GetByID(ctx, claimID)
}

// ListForAdmin returns claims for the admin review queue, optionally
// filtered to one status, with item and party details preloaded.
func (s *ClaimService) ListForAdmin(ctx context.Context, callerID uint, status models.ClaimStatus) ([]models.Claim, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, models.NewValidationError("Unrecognized claim status")
	}
	return s.claimRepo.ListForAdmin(ctx, status)
}

// GetOwn returns the caller's most recent claim on an item, or nil if
// they never claimed it.
func (s *ClaimService) GetOwn(ctx context.Context, claimantID, itemID uint) (*models.Claim, error) {
	return s.claimRepo.GetByItemAndClaimant(ctx, itemID, claimantID)
}

// ListOwn returns every claim the caller has submitted.
func (s *ClaimService) ListOwn(ctx context.Context, claimantID uint) ([]models.Claim, error) {
	return s.claimRepo.ListByClaimant(ctx, claimantID)
}

func (s *ClaimService) requireAdmin(ctx context.Context, callerID uint) error {
	admin, err := s.isAdmin(ctx, callerID)
	if err != nil {
		return err
	}
	if !admin {
		return models.NewForbiddenError("Admin access required")
	}
	return nil
}
