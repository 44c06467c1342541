package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/alfredflix/alfredflix/app/models"
	"github.com/alfredflix/alfredflix/app/repository"
	"github.com/alfredflix/alfredflix/internal/pkg/database"
	"github.com/alfredflix/alfredflix/internal/pkg/session"
	"github.com/alfredflix/alfredflix/internal/pkg/usercontext"
)

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// HandleLogin authenticates a member by username or email and opens a session.
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	req.Identifier = strings.TrimSpace(req.Identifier)
	if req.Identifier == "" || req.Password == "" {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Username/email and password are required")
	}

	users := repository.GetGlobalFactory().GetUserRepository()
	var user *models.User
	var err error
	if strings.Contains(req.Identifier, "@") {
		user, err = users.GetByEmail(req.Identifier)
	} else {
		user, err = users.GetByUsername(req.Identifier)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusUnauthorized, "invalid_credentials", "Wrong username or password")
		}
		return internalError(c, "Failed to load user")
	}

	if !user.CheckPassword(req.Password) {
		return jsonError(c, fiber.StatusUnauthorized, "invalid_credentials", "Wrong username or password")
	}
	if user.Status == models.STATUS_SUSPENDED {
		return jsonError(c, fiber.StatusForbidden, "account_suspended", "This account is suspended")
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return internalError(c, "Failed to open session")
	}

	sess.Set(usercontext.AuthKey, true)
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyUsername, user.Username)
	sess.Set(usercontext.KeyIsAdmin, user.Role == models.ROLE_ADMIN)
	sess.Set(usercontext.KeyPlan, user.PlanType)

	if err := sess.Save(); err != nil {
		return internalError(c, "Failed to save session")
	}

	database.GetDB().Model(user).Update("last_login_at", time.Now())

	return c.JSON(fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"plan":     user.PlanType,
		"is_admin": user.Role == models.ROLE_ADMIN,
		"status":   user.Status,
	})
}

// HandleLogout destroys the current session.
func HandleLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err == nil {
		_ = sess.Destroy()
	}
	return c.JSON(fiber.Map{"message": "logged out"})
}
