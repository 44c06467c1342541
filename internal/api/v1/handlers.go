package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/alfredflix/alfredflix/app/controllers"
	"github.com/alfredflix/alfredflix/internal/pkg/middleware"
)

// Pong is the response payload for the ping endpoint
type Pong struct {
	Ping string `json:"ping"`
}

// APIServer implements the ServerInterface
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// GetPlans lists the subscription plans with pricing.
func (s *APIServer) GetPlans(c *fiber.Ctx) error {
	return controllers.HandleGetPlans(c)
}

// PostValidateReferral checks a referral code during checkout.
func (s *APIServer) PostValidateReferral(c *fiber.Ctx) error {
	return controllers.HandleValidateReferral(c)
}

// PostValidateCoupon checks a coupon code during checkout.
func (s *APIServer) PostValidateCoupon(c *fiber.Ctx) error {
	return controllers.HandleValidateCoupon(c)
}

// PostSignupIntent prices the signup and creates the payment intent.
func (s *APIServer) PostSignupIntent(c *fiber.Ctx) error {
	return controllers.HandleCreateIntent(c)
}

// PostSignupComplete finalizes a paid signup and provisions the account.
func (s *APIServer) PostSignupComplete(c *fiber.Ctx) error {
	return controllers.HandleCompleteSignup(c)
}

// RegisterHandlers wires all v1 routes onto the given router group.
func RegisterHandlers(router fiber.Router, s *APIServer) {
	router.Get("/ping", s.GetPing)
	router.Get("/plans", s.GetPlans)

	// Checkout flow, anonymous by design
	signup := router.Group("/signup")
	signup.Post("/validate-referral", s.PostValidateReferral)
	signup.Post("/validate-coupon", s.PostValidateCoupon)
	signup.Post("/intent", s.PostSignupIntent)
	signup.Post("/complete", s.PostSignupComplete)

	auth := router.Group("/auth")
	auth.Post("/login", controllers.HandleLogin)
	auth.Post("/logout", controllers.HandleLogout)

	router.Post("/contact", controllers.HandleContactSubmit)

	// Member endpoints require a session
	account := router.Group("/account", middleware.RequireAuth)
	account.Get("/", controllers.HandleGetAccount)
	account.Post("/password", controllers.HandleChangePassword)

	progress := router.Group("/watch-progress", middleware.RequireAuth)
	progress.Get("/", controllers.HandleListWatchProgress)
	progress.Get("/:itemId", controllers.HandleGetWatchProgress)
	progress.Put("/:itemId", controllers.HandleUpsertWatchProgress)
	progress.Delete("/:itemId", controllers.HandleDeleteWatchProgress)

	// Back office
	admin := router.Group("/admin", middleware.RequireAdmin)
	admin.Get("/stats", controllers.HandleAdminStats)
	admin.Get("/health", controllers.HandleAdminHealth)
	admin.Get("/settings", controllers.HandleAdminGetSettings)
	admin.Put("/settings", controllers.HandleAdminUpdateSettings)
	admin.Put("/settings/signup", controllers.HandleAdminToggleSignup)
	admin.Get("/queues/keys", controllers.HandleAdminQueueKeys)

	admin.Get("/coupons", controllers.HandleAdminListCoupons)
	admin.Post("/coupons", controllers.HandleAdminCreateCoupon)
	admin.Get("/coupons/:id", controllers.HandleAdminGetCoupon)
	admin.Put("/coupons/:id", controllers.HandleAdminUpdateCoupon)
	admin.Delete("/coupons/:id", controllers.HandleAdminDeleteCoupon)

	admin.Get("/users", controllers.HandleAdminListUsers)
	admin.Get("/users/:id", controllers.HandleAdminGetUser)
	admin.Put("/users/:id/status", controllers.HandleAdminUpdateUserStatus)
	admin.Post("/users/:id/provision", controllers.HandleAdminProvisionUser)
	admin.Delete("/users/:id", controllers.HandleAdminDeleteUser)

	admin.Get("/contact-messages", controllers.HandleAdminListContactMessages)
	admin.Put("/contact-messages/:id/status", controllers.HandleAdminUpdateContactStatus)
	admin.Delete("/contact-messages/:id", controllers.HandleAdminDeleteContactMessage)
}
