package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/alfredflix/alfredflix/app/models"
	"github.com/alfredflix/alfredflix/app/repository"
	"github.com/alfredflix/alfredflix/internal/pkg/entitlements"
	"github.com/alfredflix/alfredflix/internal/pkg/usercontext"
)

// HandleGetAccount returns account information for the authenticated member.
func HandleGetAccount(c *fiber.Ctx) error {
	userCtx := usercontext.Current(c)

	repo := repository.GetGlobalFactory().GetUserRepository()
	account, err := repo.GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "User not found")
		}
		return internalError(c, "Failed to load user")
	}

	ent := entitlements.ForPlan(entitlements.Plan(account.PlanType))
	referralCount, err := repo.CountReferrals(account.ID)
	if err != nil {
		return internalError(c, "Failed to load referral statistics")
	}

	return c.JSON(fiber.Map{
		"id":            account.ID,
		"username":      account.Username,
		"email":         account.Email,
		"status":        account.Status,
		"plan":          account.PlanType,
		"is_admin":      account.Role == models.ROLE_ADMIN,
		"created_at":    account.CreatedAt.UTC().Format(time.RFC3339),
		"last_login_at": formatTimePtr(account.LastLoginAt),
		"entitlements": fiber.Map{
			"max_streams":  ent.MaxStreams,
			"max_quality":  ent.MaxQuality,
			"early_access": ent.EarlyAccess,
		},
		"referrals": fiber.Map{
			"code":            account.Username,
			"total":           referralCount,
			"credited":        account.TotalReferrals(),
			"credit_cents":    account.ReferralCreditCents,
			"credit_cap_cents": models.ReferralCreditCapCents,
			"remaining_slots": account.RemainingReferralSlots(),
			"exhausted":       account.ReferralExhausted(),
		},
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// HandleChangePassword updates the member's password after verifying the
// current one.
func HandleChangePassword(c *fiber.Ctx) error {
	userCtx := usercontext.Current(c)

	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if len(req.NewPassword) < 6 {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "New password must be at least 6 characters")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	account, err := repo.GetByID(userCtx.UserID)
	if err != nil {
		return internalError(c, "Failed to load user")
	}

	if !account.CheckPassword(req.CurrentPassword) {
		return jsonError(c, fiber.StatusUnauthorized, "invalid_credentials", "Current password is wrong")
	}
	if err := account.SetPassword(req.NewPassword); err != nil {
		return internalError(c, "Failed to update password")
	}
	if err := repo.Update(account); err != nil {
		return internalError(c, "Failed to update password")
	}

	return c.JSON(fiber.Map{"message": "password updated"})
}
