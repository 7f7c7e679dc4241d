package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campusfind/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminTestApp(t *testing.T, s *Server, userID uint) *fiber.App {
	t.Helper()
	app := fiber.New()
	asUser := func(h fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			c.Locals("userID", userID)
			return h(c)
		}
	}
	admin := app.Group("/admin", asUser(func(c *fiber.Ctx) error { return c.Next() }), s.AdminRequired())
	admin.Get("/items/pending", s.GetPendingItems)
	admin.Post("/items/:id/verify", s.VerifyItem)
	admin.Put("/items/:id/status", s.OverrideItemStatus)
	admin.Delete("/items/:id", s.DeleteItem)
	admin.Get("/claims/pending", s.GetPendingClaims)
	admin.Get("/claims", s.GetAllClaims)
	admin.Post("/claims/:id/approve", s.ApproveClaim)
	admin.Post("/claims/:id/reject", s.RejectClaim)
	admin.Put("/claims/:id/notes", s.UpdateClaimNotes)
	return app
}

func putJSON(t *testing.T, app *fiber.App, path string, body interface{}) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestAdminRequired(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	s := newTestServer(t, db)
	member := createUser(t, db, "member@e.com", models.UserRoleMember)
	app := newAdminTestApp(t, s, member.ID)

	req := httptest.NewRequest(http.MethodGet, "/admin/items/pending", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, models.CodeForbidden, body["code"])
}

func TestVerifyItem(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	s := newTestServer(t, db)
	reporter := createUser(t, db, "reporter@e.com", models.UserRoleMember)
	admin := createUser(t, db, "admin@e.com", models.UserRoleAdmin)
	app := newAdminTestApp(t, s, admin.ID)

	t.Run("approve", func(t *testing.T) {
		item := createItem(t, db, reporter.ID, models.ItemStatusPending)
		resp := postJSON(t, app, fmt.Sprintf("/admin/items/%d/verify", item.ID), fiber.Map{"action": "approve"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()

		var dbItem models.Item
		require.NoError(t, db.First(&dbItem, item.ID).Error)
		assert.Equal(t, models.ItemStatusVerified, dbItem.Status)
		assert.True(t, dbItem.IsVerified)
	})

	t.Run("reject", func(t *testing.T) {
		item := createItem(t, db, reporter.ID, models.ItemStatusPending)
		resp := postJSON(t, app, fmt.Sprintf("/admin/items/%d/verify", item.ID), fiber.Map{"action": "reject"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()

		var dbItem models.Item
		require.NoError(t, db.First(&dbItem, item.ID).Error)
		assert.Equal(t, models.ItemStatusRejected, dbItem.Status)
		assert.False(t, dbItem.IsVerified)
	})

	t.Run("unknown action", func(t *testing.T) {
		item := createItem(t, db, reporter.ID, models.ItemStatusPending)
		resp := postJSON(t, app, fmt.Sprintf("/admin/items/%d/verify", item.ID), fiber.Map{"action": "maybe"})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("already verified", func(t *testing.T) {
		item := createItem(t, db, reporter.ID, models.ItemStatusVerified)
		resp := postJSON(t, app, fmt.Sprintf("/admin/items/%d/verify", item.ID), fiber.Map{"action": "approve"})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestOverrideItemStatus(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	s := newTestServer(t, db)
	reporter := createUser(t, db, "reporter@e.com", models.UserRoleMember)
	admin := createUser(t, db, "admin@e.com", models.UserRoleAdmin)
	app := newAdminTestApp(t, s, admin.ID)

	t.Run("reopens a claimed item", func(t *testing.T) {
		item := createItem(t, db, reporter.ID, models.ItemStatusClaimed)
		resp := putJSON(t, app, fmt.Sprintf("/admin/items/%d/status", item.ID), fiber.Map{"status": "verified"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()

		var dbItem models.Item
		require.NoError(t, db.First(&dbItem, item.ID).Error)
		assert.Equal(t, models.ItemStatusVerified, dbItem.Status)
		assert.True(t, dbItem.IsVerified)
	})

	t.Run("unknown status", func(t *testing.T) {
		item := createItem(t, db, reporter.ID, models.ItemStatusVerified)
		resp := putJSON(t, app, fmt.Sprintf("/admin/items/%d/status", item.ID), fiber.Map{"status": "vanished"})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestAdminClaimWorkflow(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	s := newTestServer(t, db)
	reporter := createUser(t, db, "reporter@e.com", models.UserRoleMember)
	alice := createUser(t, db, "alice@e.com", models.UserRoleMember)
	bob := createUser(t, db, "bob@e.com", models.UserRoleMember)
	admin := createUser(t, db, "admin@e.com", models.UserRoleAdmin)
	item := createItem(t, db, reporter.ID, models.ItemStatusVerified)
	app := newAdminTestApp(t, s, admin.ID)

	aliceClaim := &models.Claim{ItemID: item.ID, ClaimantID: alice.ID, Status: models.ClaimStatusPending, ClaimDate: time.Now().UTC()}
	require.NoError(t, db.Create(aliceClaim).Error)
	bobClaim := &models.Claim{ItemID: item.ID, ClaimantID: bob.ID, Status: models.ClaimStatusPending, ClaimDate: time.Now().UTC()}
	require.NoError(t, db.Create(bobClaim).Error)

	t.Run("pending queue lists both claims with details", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/claims/pending", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		claims := body["claims"].([]interface{})
		require.Len(t, claims, 2)
		first := claims[0].(map[string]interface{})
		assert.NotNil(t, first["item"], "claims in the queue carry the item")
		assert.NotNil(t, first["claimant"], "claims in the queue carry the claimant")
	})

	t.Run("set notes", func(t *testing.T) {
		resp := putJSON(t, app, fmt.Sprintf("/admin/claims/%d/notes", aliceClaim.ID), fiber.Map{
			"notes": "Called claimant, receipt checks out",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()

		var dbClaim models.Claim
		require.NoError(t, db.First(&dbClaim, aliceClaim.ID).Error)
		assert.Equal(t, "Called claimant, receipt checks out", dbClaim.Notes)
	})

	t.Run("approve moves claim and item together", func(t *testing.T) {
		resp := postJSON(t, app, fmt.Sprintf("/admin/claims/%d/approve", aliceClaim.ID), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()

		var dbClaim models.Claim
		require.NoError(t, db.First(&dbClaim, aliceClaim.ID).Error)
		assert.Equal(t, models.ClaimStatusApproved, dbClaim.Status)

		var dbItem models.Item
		require.NoError(t, db.First(&dbItem, item.ID).Error)
		assert.Equal(t, models.ItemStatusClaimed, dbItem.Status)

		// Bob's claim stays pending for manual review.
		var dbBob models.Claim
		require.NoError(t, db.First(&dbBob, bobClaim.ID).Error)
		assert.Equal(t, models.ClaimStatusPending, dbBob.Status)
	})

	t.Run("approving the loser now conflicts", func(t *testing.T) {
		resp := postJSON(t, app, fmt.Sprintf("/admin/claims/%d/approve", bobClaim.ID), nil)
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, models.CodeConflict, body["code"])
	})

	t.Run("reject the remaining claim", func(t *testing.T) {
		resp := postJSON(t, app, fmt.Sprintf("/admin/claims/%d/reject", bobClaim.ID), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()

		var dbBob models.Claim
		require.NoError(t, db.First(&dbBob, bobClaim.ID).Error)
		assert.Equal(t, models.ClaimStatusRejected, dbBob.Status)
	})

	t.Run("all-claims endpoint filters by status", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/claims?status=approved", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Len(t, body["claims"].([]interface{}), 1)
	})
}

func TestDeleteItemCascades(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	s := newTestServer(t, db)
	reporter := createUser(t, db, "reporter@e.com", models.UserRoleMember)
	claimant := createUser(t, db, "claimant@e.com", models.UserRoleMember)
	admin := createUser(t, db, "admin@e.com", models.UserRoleAdmin)
	item := createItem(t, db, reporter.ID, models.ItemStatusVerified)
	claim := &models.Claim{ItemID: item.ID, ClaimantID: claimant.ID, Status: models.ClaimStatusPending, ClaimDate: time.Now().UTC()}
	require.NoError(t, db.Create(claim).Error)
	app := newAdminTestApp(t, s, admin.ID)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/admin/items/%d", item.ID), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	var itemCount, claimCount int64
	require.NoError(t, db.Model(&models.Item{}).Where("id = ?", item.ID).Count(&itemCount).Error)
	require.NoError(t, db.Model(&models.Claim{}).Where("item_id = ?", item.ID).Count(&claimCount).Error)
	assert.Zero(t, itemCount)
	assert.Zero(t, claimCount)
}
