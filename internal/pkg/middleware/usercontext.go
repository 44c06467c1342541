package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alfredflix/alfredflix/internal/pkg/session"
	"github.com/alfredflix/alfredflix/internal/pkg/usercontext"
)

// MemberContextMiddleware resolves the session into a usercontext.Member for
// every request. A missing or unreadable session yields the anonymous member.
func MemberContextMiddleware(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		usercontext.Set(c, usercontext.Member{})
		return c.Next()
	}

	userID := sess.Get(usercontext.KeyUserID)
	if userID == nil {
		usercontext.Set(c, usercontext.Member{})
		return c.Next()
	}

	isAdmin := sess.Get(usercontext.KeyIsAdmin)

	usercontext.Set(c, usercontext.Member{
		UserID:     userID.(uint),
		Username:   session.GetSessionValue(c, usercontext.KeyUsername),
		Plan:       session.GetSessionValue(c, usercontext.KeyPlan),
		IsLoggedIn: true,
		IsAdmin:    isAdmin != nil && isAdmin.(bool),
	})

	return c.Next()
}
