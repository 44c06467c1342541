package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/alfredflix/alfredflix/app/models"
	"github.com/alfredflix/alfredflix/app/repository"
	"github.com/alfredflix/alfredflix/internal/pkg/jellyfin"
	"github.com/alfredflix/alfredflix/internal/pkg/jobqueue"
)

func userParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid user id")
	}
	return uint(id), nil
}

func adminUserView(user *models.User) fiber.Map {
	return fiber.Map{
		"id":                    user.ID,
		"username":              user.Username,
		"email":                 user.Email,
		"role":                  user.Role,
		"status":                user.Status,
		"plan":                  user.PlanType,
		"jellyfin_user_id":      user.JellyfinUserID,
		"referral_credit_cents": user.ReferralCreditCents,
		"referred_by_id":        user.ReferredByID,
		"created_at":            user.CreatedAt,
		"last_login_at":         user.LastLoginAt,
	}
}

// HandleAdminListUsers lists users, optionally filtered by a search query.
func HandleAdminListUsers(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetUserRepository()

	if query := c.Query("q"); query != "" {
		users, err := repo.Search(query)
		if err != nil {
			return internalError(c, "Failed to search users")
		}
		items := make([]fiber.Map, 0, len(users))
		for i := range users {
			items = append(items, adminUserView(&users[i]))
		}
		return c.JSON(fiber.Map{"items": items, "total": len(items)})
	}

	offset, limit := pagination(c)
	users, err := repo.List(offset, limit)
	if err != nil {
		return internalError(c, "Failed to load users")
	}
	total, err := repo.Count()
	if err != nil {
		return internalError(c, "Failed to load users")
	}

	items := make([]fiber.Map, 0, len(users))
	for i := range users {
		items = append(items, adminUserView(&users[i]))
	}
	return c.JSON(fiber.Map{
		"items":  items,
		"total":  total,
		"offset": offset,
		"limit":  limit,
	})
}

// HandleAdminGetUser returns one user with referral details.
func HandleAdminGetUser(c *fiber.Ctx) error {
	id, err := userParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "User not found")
		}
		return internalError(c, "Failed to load user")
	}

	referrals, err := repo.CountReferrals(user.ID)
	if err != nil {
		return internalError(c, "Failed to load referral statistics")
	}

	view := adminUserView(user)
	view["referrals_total"] = referrals
	view["referrals_credited"] = user.TotalReferrals()
	return c.JSON(view)
}

type userStatusRequest struct {
	Status string `json:"status"`
}

// HandleAdminUpdateUserStatus suspends or reactivates an account. The
// Jellyfin side is kept in sync on a best-effort basis.
func HandleAdminUpdateUserStatus(c *fiber.Ctx) error {
	id, err := userParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}

	var req userStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if req.Status != models.STATUS_ACTIVE && req.Status != models.STATUS_SUSPENDED {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Status must be active or suspended")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "User not found")
		}
		return internalError(c, "Failed to load user")
	}

	user.Status = req.Status
	if err := repo.Update(user); err != nil {
		return internalError(c, "Failed to update user")
	}

	if user.JellyfinUserID != "" {
		client := jellyfin.NewClient()
		if client.Enabled() {
			if err := client.SetDisabled(c.Context(), user.JellyfinUserID, req.Status == models.STATUS_SUSPENDED); err != nil {
				log.Warnf("[Admin] failed to sync status for jellyfin user %s: %v", user.JellyfinUserID, err)
			}
		}
	}

	return c.JSON(adminUserView(user))
}

// HandleAdminProvisionUser queues a provisioning retry for a user whose
// streaming account was never created.
func HandleAdminProvisionUser(c *fiber.Ctx) error {
	id, err := userParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "User not found")
		}
		return internalError(c, "Failed to load user")
	}
	if user.JellyfinUserID != "" {
		return jsonError(c, fiber.StatusConflict, "already_provisioned", "User already has a streaming account")
	}

	if err := jobqueue.GetManager().EnqueueProvisionJob(user.ID); err != nil {
		return internalError(c, "Failed to queue provisioning")
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"queued":  true,
		"user_id": user.ID,
	})
}

// HandleAdminDeleteUser soft deletes an account and removes the streaming
// user.
func HandleAdminDeleteUser(c *fiber.Ctx) error {
	id, err := userParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "User not found")
		}
		return internalError(c, "Failed to load user")
	}
	if user.Role == models.ROLE_ADMIN {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "Admin accounts cannot be deleted here")
	}

	if user.JellyfinUserID != "" {
		client := jellyfin.NewClient()
		if client.Enabled() {
			if err := client.DeleteUser(c.Context(), user.JellyfinUserID); err != nil {
				log.Warnf("[Admin] failed to delete jellyfin user %s: %v", user.JellyfinUserID, err)
			}
		}
	}

	if err := repo.Delete(id); err != nil {
		return internalError(c, "Failed to delete user")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
