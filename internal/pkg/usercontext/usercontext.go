package usercontext

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alfredflix/alfredflix/internal/pkg/entitlements"
)

// Member is the session-derived identity attached to every request.
// Anonymous requests carry the zero value.
type Member struct {
	UserID     uint   `json:"user_id"`
	Username   string `json:"username"`
	Plan       string `json:"plan"`
	IsLoggedIn bool   `json:"is_logged_in"`
	IsAdmin    bool   `json:"is_admin"`
}

// HasPremium reports whether the member's tier carries premium entitlements.
func (m Member) HasPremium() bool {
	return m.Plan == string(entitlements.PlanPremium)
}

// Set attaches the member to the request for downstream handlers.
func Set(c *fiber.Ctx, m Member) {
	c.Locals(localsKey, m)
}

// Current returns the member for the request, anonymous when none is set.
func Current(c *fiber.Ctx) Member {
	if m, ok := c.Locals(localsKey).(Member); ok {
		return m
	}
	return Member{}
}

// IsLoggedIn reports whether the request carries an authenticated session.
func IsLoggedIn(c *fiber.Ctx) bool {
	return Current(c).IsLoggedIn
}

// IsAdmin reports whether the request carries an admin session.
func IsAdmin(c *fiber.Ctx) bool {
	return Current(c).IsAdmin
}

// GetUserID returns the member's id, or 0 for anonymous requests.
func GetUserID(c *fiber.Ctx) uint {
	return Current(c).UserID
}

// GetUsername returns the member's username, or "" for anonymous requests.
func GetUsername(c *fiber.Ctx) string {
	return Current(c).Username
}

// GetPlan returns the member's subscription tier, or "" for anonymous requests.
func GetPlan(c *fiber.Ctx) string {
	return Current(c).Plan
}
