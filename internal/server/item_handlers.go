package server

import (
	"io"
	"strings"
	"time"

	"campusfind/internal/models"
	"campusfind/internal/repository"
	"campusfind/internal/service"
	"campusfind/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ItemListResponse is the paginated response for item browsing.
type ItemListResponse struct {
	Items   []models.Item `json:"items"`
	Total   int64         `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
}

// ReportItem handles POST /api/items
//
// The request is multipart/form-data: item fields plus a mandatory photo.
func (s *Server) ReportItem(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	in := validation.ItemInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Category:    c.FormValue("category"),
		ItemType:    c.FormValue("item_type"),
		Location:    c.FormValue("location"),
		Date:        c.FormValue("date"),
	}

	var photo *service.PhotoUpload
	file, err := c.FormFile("photo")
	if err == nil {
		src, openErr := file.Open()
		if openErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewPhotoError("Unable to read uploaded photo"))
		}
		content, readErr := io.ReadAll(src)
		_ = src.Close()
		if readErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewPhotoError("Unable to read uploaded photo"))
		}
		photo = &service.PhotoUpload{
			Filename:    file.Filename,
			ContentType: file.Header.Get("Content-Type"),
			Content:     content,
		}
	}

	item, err := s.itemService.Report(c.UserContext(), userID, in, photo)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Item reported. It will appear publicly once verified by an admin.",
		"item":    item,
	})
}

// BrowseItems handles GET /api/items
//
// Only verified items are returned, whatever filters the caller sends.
func (s *Server) BrowseItems(c *fiber.Ctx) error {
	filter := repository.ItemFilter{
		Category:  models.ItemCategory(strings.TrimSpace(c.Query("category"))),
		ItemType:  models.ItemType(strings.TrimSpace(c.Query("item_type"))),
		Location:  strings.TrimSpace(c.Query("location")),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Page:      c.QueryInt("page", 1),
		PerPage:   c.QueryInt("per_page", repository.DefaultPerPage),
	}

	if q := c.Query("q"); q != "" {
		cleaned, err := validation.ValidateSearchQuery(q)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		filter.Query = cleaned
	}

	if filter.Category != "" && !filter.Category.Valid() {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unrecognized category"))
	}
	if filter.ItemType != "" && !filter.ItemType.Valid() {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(`Item type must be either "lost" or "found"`))
	}

	if from := c.Query("date_from"); from != "" {
		t, err := validation.ParseFlexibleTime(from)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid date_from"))
		}
		filter.DateFrom = &t
	}
	if to := c.Query("date_to"); to != "" {
		t, err := validation.ParseFlexibleTime(to)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid date_to"))
		}
		// A bare date means "through the end of that day".
		if len(strings.TrimSpace(to)) == len("2006-01-02") {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		filter.DateTo = &t
	}

	items, total, err := s.itemService.ListPublic(c.UserContext(), filter)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	filter.Normalize()
	return c.JSON(ItemListResponse{
		Items:   items,
		Total:   total,
		Page:    filter.Page,
		PerPage: filter.PerPage,
	})
}

// GetItemCategories handles GET /api/items/categories
func (s *Server) GetItemCategories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"categories": models.ItemCategories})
}

// GetItem handles GET /api/items/:id
func (s *Server) GetItem(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	item, err := s.itemService.Get(c.UserContext(), userID, id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(item)
}

// GetMyItems handles GET /api/items/mine
func (s *Server) GetMyItems(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	items, err := s.itemService.ListOwn(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"items": items})
}

// ServePhoto handles GET /api/photos/*
func (s *Server) ServePhoto(c *fiber.Ctx) error {
	rel := c.Params("*")
	abs, err := s.photoService.Resolve(rel)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendFile(abs)
}

// ClaimItem handles POST /api/items/:id/claim
func (s *Server) ClaimItem(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Notes string `json:"notes"`
	}
	// An empty body is fine; notes are optional.
	_ = c.BodyParser(&req)

	claim, err := s.claimService.Create(c.UserContext(), userID, id, req.Notes)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Claim submitted. An admin will review it.",
		"claim":   claim,
	})
}

// GetMyClaimForItem handles GET /api/items/:id/my-claim
func (s *Server) GetMyClaimForItem(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	claim, err := s.claimService.GetOwn(c.UserContext(), userID, id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	// Having no claim on an item is a normal answer, not an error.
	return c.JSON(fiber.Map{"claim": claim})
}

// GetMyClaims handles GET /api/claims/mine
func (s *Server) GetMyClaims(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	claims, err := s.claimService.ListOwn(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"claims": claims})
}
