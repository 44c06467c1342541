package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/alfredflix/alfredflix/app/models"
	"github.com/alfredflix/alfredflix/app/repository"
	"github.com/alfredflix/alfredflix/internal/pkg/mail"
)

// HandleContactSubmit stores a contact-form message and notifies support.
func HandleContactSubmit(c *fiber.Ctx) error {
	var message models.ContactMessage
	if err := c.BodyParser(&message); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	message.ID = 0
	message.Status = models.CONTACT_STATUS_NEW
	if err := message.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	repo := repository.GetGlobalFactory().GetContactRepository()
	if err := repo.Create(&message); err != nil {
		return internalError(c, "Failed to store message")
	}

	// Notification is best effort; the message is already persisted.
	supportEmail := models.GetAppSettings().GetSupportEmail()
	if supportEmail != "" {
		if err := mail.NewMailer().SendContactNotification(supportEmail, message.Name, message.Email, message.Message); err != nil {
			log.Warnf("[Contact] support notification failed: %v", err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":      message.ID,
		"message": "Thanks, we will get back to you",
	})
}
