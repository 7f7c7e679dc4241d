package service

import (
	"context"

	"campusfind/internal/models"
	"campusfind/internal/observability"
	"campusfind/internal/repository"
	"campusfind/internal/validation"
)

// VerifyAction is the admin decision on a pending item.
type VerifyAction string

const (
	// VerifyActionApprove marks an item verified and publicly browsable.
	VerifyActionApprove VerifyAction = "approve"
	// VerifyActionReject declines the report.
	VerifyActionReject VerifyAction = "reject"
)

// IsAdminFunc reports whether the given user holds the admin role.
type IsAdminFunc func(ctx context.Context, userID uint) (bool, error)

// ItemService governs the item lifecycle: reporting, verification, browsing
// and the administrative status override.
type ItemService struct {
	itemRepo repository.ItemRepository
	photos   *PhotoService
	isAdmin  IsAdminFunc
}

// NewItemService returns a new ItemService.
func NewItemService(itemRepo repository.ItemRepository, photos *PhotoService, isAdmin IsAdminFunc) *ItemService {
	return &ItemService{
		itemRepo: itemRepo,
		photos:   photos,
		isAdmin:  isAdmin,
	}
}

// Report validates and creates an item on behalf of its reporter. Every
// report requires a photo; the stored files are removed again if the
// database insert fails so no orphaned uploads remain.
func (s *ItemService) Report(ctx context.Context, reporterID uint, in validation.ItemInput, photo *PhotoUpload) (*models.Item, error) {
	if photo == nil || len(photo.Content) == 0 {
		return nil, models.NewPhotoError("No photo uploaded")
	}

	item, err := validation.ValidateItemInput(in)
	if err != nil {
		return nil, err
	}

	photoPath, cleanup, err := s.photos.Save(*photo)
	if err != nil {
		return nil, err
	}

	item.PhotoPath = photoPath
	item.ReporterID = reporterID
	item.Status = models.ItemStatusPending
	item.IsVerified = false

	if err := s.itemRepo.Create(ctx, item); err != nil {
		cleanup()
		return nil, err
	}

	return item, nil
}

// Verify applies an admin approve/reject decision to a pending item.
// Approval sets is_verified; rejection leaves it false.
func (s *ItemService) Verify(ctx context.Context, callerID, itemID uint, action VerifyAction) (*models.Item, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	if action != VerifyActionApprove && action != VerifyActionReject {
		return nil, models.NewValidationError(`Action must be "approve" or "reject"`)
	}

	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if item.Status != models.ItemStatusPending {
		return nil, models.NewValidationError("Item is not awaiting verification")
	}

	switch action {
	case VerifyActionApprove:
		item.Status = models.ItemStatusVerified
		item.IsVerified = true
	case VerifyActionReject:
		item.Status = models.ItemStatusRejected
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	observability.ItemVerifications.WithLabelValues(string(action)).Inc()
	return item, nil
}

// OverrideStatus is the administrative escape hatch: it sets any recognized
// status directly, keeping is_verified in sync with the new status.
func (s *ItemService) OverrideStatus(ctx context.Context, callerID, itemID uint, status models.ItemStatus) (*models.Item, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	if !status.Valid() {
		return nil, models.NewValidationError("Unrecognized item status")
	}

	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	item.Status = status
	item.IsVerified = status == models.ItemStatusVerified || status == models.ItemStatusClaimed

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Get returns an item by id. Unverified items are only visible to their
// reporter and to admins; everyone else sees not-found.
func (s *ItemService) Get(ctx context.Context, callerID, itemID uint) (*models.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if !item.IsVerified && item.ReporterID != callerID {
		admin, err := s.isAdmin(ctx, callerID)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, models.NewNotFoundError("Item", itemID)
		}
	}
	return item, nil
}

// ListPublic returns verified items matching the filter. The verified-only
// constraint is forced here so no filter combination can surface
// unverified items.
func (s *ItemService) ListPublic(ctx context.Context, filter repository.ItemFilter) ([]models.Item, int64, error) {
	filter.VerifiedOnly = true
	filter.ReporterID = 0
	filter.Status = ""
	return s.itemRepo.Search(ctx, filter)
}

// ListOwn returns every item the caller reported, regardless of status.
func (s *ItemService) ListOwn(ctx context.Context, reporterID uint) ([]models.Item, error) {
	return s.itemRepo.ListByReporter(ctx, reporterID)
}

// ListPendingForAdmin returns all items awaiting verification.
func (s *ItemService) ListPendingForAdmin(ctx context.Context, callerID uint) ([]models.Item, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	return s.itemRepo.ListByStatus(ctx, models.ItemStatusPending)
}

// Delete removes an item and, by cascade, all of its claims.
func (s *ItemService) Delete(ctx context.Context, callerID, itemID uint) error {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return err
	}
	if _, err := s.itemRepo.GetByID(ctx, itemID); err != nil {
		return err
	}
	return s.itemRepo.Delete(ctx, itemID)
}

func (s *ItemService) requireAdmin(ctx context.Context, callerID uint) error {
	admin, err := s.isAdmin(ctx, callerID)
	if err != nil {
		return err
	}
	if !admin {
		return models.NewForbiddenError("Admin access required")
	}
	return nil
}
