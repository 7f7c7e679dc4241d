package server

import (
	"strings"

	"campusfind/internal/models"
	"campusfind/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPendingItems handles GET /api/admin/items/pending
func (s *Server) GetPendingItems(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	items, err := s.itemService.ListPendingForAdmin(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"items": items})
}

// VerifyItem handles POST /api/admin/items/:id/verify
func (s *Server) VerifyItem(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Action string `json:"action"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	action := service.VerifyAction(strings.ToLower(strings.TrimSpace(req.Action)))
	item, err := s.itemService.Verify(c.UserContext(), userID, id, action)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Item " + string(item.Status),
		"item":    item,
	})
}

// OverrideItemStatus handles PUT /api/admin/items/:id/status
func (s *Server) OverrideItemStatus(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	status := models.ItemStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	item, err := s.itemService.OverrideStatus(c.UserContext(), userID, id, status)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Item status updated",
		"item":    item,
	})
}

// DeleteItem handles DELETE /api/admin/items/:id
func (s *Server) DeleteItem(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.itemService.Delete(c.UserContext(), userID, id); err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Item deleted"})
}

// GetPendingClaims handles GET /api/admin/claims/pending
func (s *Server) GetPendingClaims(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	claims, err := s.claimService.ListForAdmin(c.UserContext(), userID, models.ClaimStatusPending)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"claims": claims})
}

// GetAllClaims handles GET /api/admin/claims
//
// An optional ?status= query narrows the list to one claim status.
func (s *Server) GetAllClaims(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	status := models.ClaimStatus(strings.ToLower(strings.TrimSpace(c.Query("status"))))
	claims, err := s.claimService.ListForAdmin(c.UserContext(), userID, status)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"claims": claims})
}

// ApproveClaim handles POST /api/admin/claims/:id/approve
func (s *Server) ApproveClaim(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	claim, err := s.claimService.Approve(c.UserContext(), userID, id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Claim approved; item marked as claimed",
		"claim":   claim,
	})
}

// RejectClaim handles POST /api/admin/claims/:id/reject
func (s *Server) RejectClaim(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	claim, err := s.claimService.Reject(c.UserContext(), userID, id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Claim rejected",
		"claim":   claim,
	})
}

// UpdateClaimNotes handles PUT /api/admin/claims/:id/notes
func (s *Server) UpdateClaimNotes(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Notes string `json:"notes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	claim, err := s.claimService.SetNotes(c.UserContext(), userID, id, req.Notes)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Claim notes updated",
		"claim":   claim,
	})
}
