package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/alfredflix/alfredflix/app/models"
	"github.com/alfredflix/alfredflix/app/repository"
)

func contactParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid message id")
	}
	return uint(id), nil
}

// HandleAdminListContactMessages lists contact messages, optionally by status.
func HandleAdminListContactMessages(c *fiber.Ctx) error {
	offset, limit := pagination(c)
	repo := repository.GetGlobalFactory().GetContactRepository()

	status := c.Query("status")
	var (
		messages []models.ContactMessage
		total    int64
		err      error
	)
	if status != "" {
		messages, err = repo.ListByStatus(status, offset, limit)
		if err == nil {
			total, err = repo.CountByStatus(status)
		}
	} else {
		messages, err = repo.List(offset, limit)
		if err == nil {
			total, err = repo.Count()
		}
	}
	if err != nil {
		return internalError(c, "Failed to load contact messages")
	}

	return c.JSON(fiber.Map{
		"items":  messages,
		"total":  total,
		"offset": offset,
		"limit":  limit,
	})
}

type contactStatusRequest struct {
	Status string `json:"status"`
}

// HandleAdminUpdateContactStatus transitions a message between new, read
// and closed.
func HandleAdminUpdateContactStatus(c *fiber.Ctx) error {
	id, err := contactParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}

	var req contactStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	switch req.Status {
	case models.CONTACT_STATUS_NEW, models.CONTACT_STATUS_READ, models.CONTACT_STATUS_CLOSED:
	default:
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Unknown status")
	}

	repo := repository.GetGlobalFactory().GetContactRepository()
	if _, err := repo.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Message not found")
		}
		return internalError(c, "Failed to load message")
	}
	if err := repo.UpdateStatus(id, req.Status); err != nil {
		return internalError(c, "Failed to update message")
	}

	message, err := repo.GetByID(id)
	if err != nil {
		return internalError(c, "Failed to load message")
	}
	return c.JSON(message)
}

// HandleAdminDeleteContactMessage removes a contact message.
func HandleAdminDeleteContactMessage(c *fiber.Ctx) error {
	id, err := contactParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}

	repo := repository.GetGlobalFactory().GetContactRepository()
	if _, err := repo.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Message not found")
		}
		return internalError(c, "Failed to load message")
	}
	if err := repo.Delete(id); err != nil {
		return internalError(c, "Failed to delete message")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
