package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"campusfind/internal/config"
	"campusfind/internal/models"
	"campusfind/internal/repository"
	"campusfind/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// itemRepoStub is a stub for repository.ItemRepository.
type itemRepoStub struct {
	getByIDFn        func(context.Context, uint) (*models.Item, error)
	createFn         func(context.Context, *models.Item) error
	updateFn         func(context.Context, *models.Item) error
	deleteFn         func(context.Context, uint) error
	searchFn         func(context.Context, repository.ItemFilter) ([]models.Item, int64, error)
	listByReporterFn func(context.Context, uint) ([]models.Item, error)
	listByStatusFn   func(context.Context, models.ItemStatus) ([]models.Item, error)
}

func (s *itemRepoStub) GetByID(ctx context.Context, id uint) (*models.Item, error) {
	return s.getByIDFn(ctx, id)
}
func (s *itemRepoStub) Create(ctx context.Context, item *models.Item) error {
	return s.createFn(ctx, item)
}
func (s *itemRepoStub) Update(ctx context.Context, item *models.Item) error {
	return s.updateFn(ctx, item)
}
func (s *itemRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *itemRepoStub) Search(ctx context.Context, filter repository.ItemFilter) ([]models.Item, int64, error) {
	return s.searchFn(ctx, filter)
}
func (s *itemRepoStub) ListByReporter(ctx context.Context, reporterID uint) ([]models.Item, error) {
	return s.listByReporterFn(ctx, reporterID)
}
func (s *itemRepoStub) ListByStatus(ctx context.Context, status models.ItemStatus) ([]models.Item, error) {
	return s.listByStatusFn(ctx, status)
}

func noopItemRepo() *itemRepoStub {
	return &itemRepoStub{
		getByIDFn:        func(_ context.Context, _ uint) (*models.Item, error) { return &models.Item{}, nil },
		createFn:         func(_ context.Context, _ *models.Item) error { return nil },
		updateFn:         func(_ context.Context, _ *models.Item) error { return nil },
		deleteFn:         func(_ context.Context, _ uint) error { return nil },
		searchFn:         func(_ context.Context, _ repository.ItemFilter) ([]models.Item, int64, error) { return nil, 0, nil },
		listByReporterFn: func(_ context.Context, _ uint) ([]models.Item, error) { return nil, nil },
		listByStatusFn:   func(_ context.Context, _ models.ItemStatus) ([]models.Item, error) { return nil, nil },
	}
}

func testPhotoService(t *testing.T) *PhotoService {
	t.Helper()
	return NewPhotoService(&config.Config{
		UploadDir:       t.TempDir(),
		MaxUploadSizeMB: 5,
	})
}

// testPhotoUpload builds a small real PNG so the decode pipeline accepts it.
func testPhotoUpload(t *testing.T) *PhotoUpload {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &PhotoUpload{
		Filename:    "photo.png",
		ContentType: "image/png",
		Content:     buf.Bytes(),
	}
}

func validItemInput() validation.ItemInput {
	return validation.ItemInput{
		Title:       "Silver laptop",
		Description: "Thin silver laptop with a sticker on the lid.",
		Category:    "electronics",
		ItemType:    "found",
		Location:    "Student Union food court",
		Date:        time.Now().UTC().Format(time.RFC3339),
	}
}

func TestItemService_Report(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("requires a photo", func(t *testing.T) {
		t.Parallel()
		svc := NewItemService(noopItemRepo(), testPhotoService(t), nil)

		_, err := svc.Report(ctx, 1, validItemInput(), nil)
		assertAppErrorCode(t, err, models.CodePhoto)

		_, err = svc.Report(ctx, 1, validItemInput(), &PhotoUpload{Filename: "x.jpg"})
		assertAppErrorCode(t, err, models.CodePhoto)
	})

	t.Run("validates input before storing the photo", func(t *testing.T) {
		t.Parallel()
		svc := NewItemService(noopItemRepo(), testPhotoService(t), nil)

		in := validItemInput()
		in.Title = "ab"
		_, err := svc.Report(ctx, 1, in, testPhotoUpload(t))
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("creates pending item with stored photo", func(t *testing.T) {
		t.Parallel()
		photos := testPhotoService(t)
		var created *models.Item
		repo := noopItemRepo()
		repo.createFn = func(_ context.Context, item *models.Item) error {
			created = item
			return nil
		}
		svc := NewItemService(repo, photos, nil)

		item, err := svc.Report(ctx, 7, validItemInput(), testPhotoUpload(t))
		require.NoError(t, err)
		require.Same(t, created, item)
		assert.Equal(t, models.ItemStatusPending, item.Status)
		assert.False(t, item.IsVerified)
		assert.Equal(t, uint(7), item.ReporterID)
		assert.NotEmpty(t, item.PhotoPath)

		abs, err := photos.Resolve(item.PhotoPath)
		require.NoError(t, err)
		_, err = os.Stat(abs)
		assert.NoError(t, err, "jpg variant should exist on disk")
		webpPath := abs[:len(abs)-len(filepath.Ext(abs))] + ".webp"
		_, err = os.Stat(webpPath)
		assert.NoError(t, err, "webp variant should exist on disk")
	})

	t.Run("removes stored photo when the insert fails", func(t *testing.T) {
		t.Parallel()
		photos := testPhotoService(t)
		var photoPath string
		repo := noopItemRepo()
		repo.createFn = func(_ context.Context, item *models.Item) error {
			photoPath = item.PhotoPath
			return models.NewInternalError(errors.New("insert failed"))
		}
		svc := NewItemService(repo, photos, nil)

		_, err := svc.Report(ctx, 1, validItemInput(), testPhotoUpload(t))
		assertAppErrorCode(t, err, models.CodeInternal)

		require.NotEmpty(t, photoPath)
		_, err = photos.Resolve(photoPath)
		assertAppErrorCode(t, err, models.CodeNotFound)
	})
}

func TestItemService_Verify(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("approve marks item verified", func(t *testing.T) {
		t.Parallel()
		repo := noopItemRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Item, error) {
			return &models.Item{ID: 1, Status: models.ItemStatusPending}, nil
		}
		var saved *models.Item
		repo.updateFn = func(_ context.Context, item *models.Item) error {
			saved = item
			return nil
		}
		svc := NewItemService(repo, testPhotoService(t), adminAlways)

		item, err := svc.Verify(ctx, 1, 1, VerifyActionApprove)
		require.NoError(t, err)
		assert.Equal(t, models.ItemStatusVerified, item.Status)
		assert.True(t, item.IsVerified)
		require.Same(t, item, saved)
	})

	t.Run("reject leaves is_verified false", func(t *testing.T) {
		t.Parallel()
		repo := noopItemRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Item, error) {
			return &models.Item{ID: 1, Status: models.ItemStatusPending}, nil
		}
		svc := NewItemService(repo, testPhotoService(t), adminAlways)

		item, err := svc.Verify(ctx, 1, 1, VerifyActionReject)
		require.NoError(t, err)
		assert.Equal(t, models.ItemStatusRejected, item.Status)
		assert.False(t, item.IsVerified)
	})

	t.Run("rejects unknown action", func(t *testing.T) {
		t.Parallel()
		svc := NewItemService(noopItemRepo(), testPhotoService(t), adminAlways)
		_, err := svc.Verify(ctx, 1, 1, VerifyAction("maybe"))
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("rejects non-pending item", func(t *testing.T) {
		t.Parallel()
		repo := noopItemRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Item, error) {
			return &models.Item{ID: 1, Status: models.ItemStatusVerified, IsVerified: true}, nil
		}
		svc := NewItemService(repo, testPhotoService(t), adminAlways)
		_, err := svc.Verify(ctx, 1, 1, VerifyActionApprove)
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("rejects non-admin caller", func(t *testing.T) {
		t.Parallel()
		notAdmin := func(_ context.Context, _ uint) (bool, error) { return false, nil }
		svc := NewItemService(noopItemRepo(), testPhotoService(t), notAdmin)
		_, err := svc.Verify(ctx, 1, 1, VerifyActionApprove)
		assertAppErrorCode(t, err, models.CodeForbidden)
	})
}

func TestItemService_OverrideStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("keeps is_verified in sync with status", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			status   models.ItemStatus
			verified bool
		}{
			{models.ItemStatusPending, false},
			{models.ItemStatusVerified, true},
			{models.ItemStatusClaimed, true},
			{models.ItemStatusRejected, false},
		}
		for _, tc := range tests {
			repo := noopItemRepo()
			repo.getByIDFn = func(_ context.Context, _ uint) (*models.Item, error) {
				return &models.Item{ID: 1, Status: models.ItemStatusVerified, IsVerified: true}, nil
			}
			svc := NewItemService(repo, testPhotoService(t), adminAlways)

			item, err := svc.OverrideStatus(ctx, 1, 1, tc.status)
			require.NoError(t, err)
			assert.Equal(t, tc.status, item.Status)
			assert.Equal(t, tc.verified, item.IsVerified, "status %s", tc.status)
		}
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		t.Parallel()
		svc := NewItemService(noopItemRepo(), testPhotoService(t), adminAlways)
		_, err := svc.OverrideStatus(ctx, 1, 1, models.ItemStatus("vanished"))
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("rejects non-admin caller", func(t *testing.T) {
		t.Parallel()
		notAdmin := func(_ context.Context, _ uint) (bool, error) { return false, nil }
		svc := NewItemService(noopItemRepo(), testPhotoService(t), notAdmin)
		_, err := svc.OverrideStatus(ctx, 1, 1, models.ItemStatusVerified)
		assertAppErrorCode(t, err, models.CodeForbidden)
	})
}

func TestItemService_Get(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	unverified := func(_ context.Context, _ uint) (*models.Item, error) {
		return &models.Item{ID: 1, Status: models.ItemStatusPending, ReporterID: 10}, nil
	}

	t.Run("reporter sees own unverified item", func(t *testing.T) {
		t.Parallel()
		repo := noopItemRepo()
		repo.getByIDFn = unverified
		svc := NewItemService(repo, testPhotoService(t), func(_ context.Context, _ uint) (bool, error) { return false, nil })

		item, err := svc.Get(ctx, 10, 1)
		require.NoError(t, err)
		assert.Equal(t, uint(1), item.ID)
	})

	t.Run("admin sees unverified item", func(t *testing.T) {
		t.Parallel()
		repo := noopItemRepo()
		repo.getByIDFn = unverified
		svc := NewItemService(repo, testPhotoService(t), adminAlways)

		_, err := svc.Get(ctx, 99, 1)
		assert.NoError(t, err)
	})

	t.Run("other users get not found", func(t *testing.T) {
		t.Parallel()
		repo := noopItemRepo()
		repo.getByIDFn = unverified
		svc := NewItemService(repo, testPhotoService(t), func(_ context.Context, _ uint) (bool, error) { return false, nil })

		_, err := svc.Get(ctx, 99, 1)
		assertAppErrorCode(t, err, models.CodeNotFound)
	})
}

func TestItemService_ListPublic_ForcesVerifiedOnly(t *testing.T) {
	t.Parallel()
	var seen repository.ItemFilter
	repo := noopItemRepo()
	repo.searchFn = func(_ context.Context, filter repository.ItemFilter) ([]models.Item, int64, error) {
		seen = filter
		return nil, 0, nil
	}
	svc := NewItemService(repo, testPhotoService(t), nil)

	// A caller trying to smuggle status/reporter filters through.
	_, _, err := svc.ListPublic(context.Background(), repository.ItemFilter{
		VerifiedOnly: false,
		Status:       models.ItemStatusPending,
		ReporterID:   42,
		Category:     models.ItemCategoryBooks,
	})
	require.NoError(t, err)
	assert.True(t, seen.VerifiedOnly)
	assert.Empty(t, seen.Status)
	assert.Zero(t, seen.ReporterID)
	assert.Equal(t, models.ItemCategoryBooks, seen.Category)
}

func TestItemService_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("admin deletes existing item", func(t *testing.T) {
		t.Parallel()
		deleted := false
		repo := noopItemRepo()
		repo.deleteFn = func(_ context.Context, _ uint) error {
			deleted = true
			return nil
		}
		svc := NewItemService(repo, testPhotoService(t), adminAlways)
		require.NoError(t, svc.Delete(ctx, 1, 1))
		assert.True(t, deleted)
	})

	t.Run("missing item returns not found", func(t *testing.T) {
		t.Parallel()
		repo := noopItemRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Item, error) {
			return nil, models.NewNotFoundError("Item", id)
		}
		svc := NewItemService(repo, testPhotoService(t), adminAlways)
		assertAppErrorCode(t, svc.Delete(ctx, 1, 404), models.CodeNotFound)
	})

	t.Run("rejects non-admin caller", func(t *testing.T) {
		t.Parallel()
		notAdmin := func(_ context.Context, _ uint) (bool, error) { return false, nil }
		svc := NewItemService(noopItemRepo(), testPhotoService(t), notAdmin)
		assertAppErrorCode(t, svc.Delete(ctx, 1, 1), models.CodeForbidden)
	})
}
