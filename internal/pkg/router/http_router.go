package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alfredflix/alfredflix/app/controllers"
	"github.com/alfredflix/alfredflix/internal/pkg/middleware"
	"github.com/alfredflix/alfredflix/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.MemberContextMiddleware)

	// Initialize checkout controller with repositories and providers
	controllers.InitializeCheckoutController()

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
