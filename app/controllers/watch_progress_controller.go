package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/alfredflix/alfredflix/app/models"
	"github.com/alfredflix/alfredflix/app/repository"
	"github.com/alfredflix/alfredflix/internal/pkg/usercontext"
)

type watchProgressRequest struct {
	PositionTicks int64 `json:"position_ticks"`
	TotalTicks    int64 `json:"total_ticks"`
	IsWatched     bool  `json:"is_watched"`
}

// HandleListWatchProgress returns the member's playback positions, most
// recently updated first.
func HandleListWatchProgress(c *fiber.Ctx) error {
	userCtx := usercontext.Current(c)
	offset, limit := pagination(c)

	repo := repository.GetGlobalFactory().GetWatchProgressRepository()
	entries, err := repo.ListByUser(userCtx.UserID, offset, limit)
	if err != nil {
		return internalError(c, "Failed to load watch progress")
	}
	total, err := repo.CountByUser(userCtx.UserID)
	if err != nil {
		return internalError(c, "Failed to load watch progress")
	}

	return c.JSON(fiber.Map{
		"items":  entries,
		"total":  total,
		"offset": offset,
		"limit":  limit,
	})
}

// HandleGetWatchProgress returns the stored position for one item.
func HandleGetWatchProgress(c *fiber.Ctx) error {
	userCtx := usercontext.Current(c)
	itemID := c.Params("itemId")
	if itemID == "" {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "itemId missing")
	}

	repo := repository.GetGlobalFactory().GetWatchProgressRepository()
	entry, err := repo.GetByUserAndItem(userCtx.UserID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "No progress stored for this item")
		}
		return internalError(c, "Failed to load watch progress")
	}

	return c.JSON(entry)
}

// HandleUpsertWatchProgress stores the playback position for one item.
func HandleUpsertWatchProgress(c *fiber.Ctx) error {
	userCtx := usercontext.Current(c)
	itemID := c.Params("itemId")
	if itemID == "" {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "itemId missing")
	}

	var req watchProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if req.PositionTicks < 0 || req.TotalTicks < 0 {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Ticks must not be negative")
	}

	progress := &models.WatchProgress{
		UserID:         userCtx.UserID,
		JellyfinItemID: itemID,
		PositionTicks:  req.PositionTicks,
		TotalTicks:     req.TotalTicks,
		IsWatched:      req.IsWatched,
	}

	repo := repository.GetGlobalFactory().GetWatchProgressRepository()
	if err := repo.Upsert(progress); err != nil {
		return internalError(c, "Failed to store watch progress")
	}

	return c.JSON(progress)
}

// HandleDeleteWatchProgress removes the stored position for one item.
func HandleDeleteWatchProgress(c *fiber.Ctx) error {
	userCtx := usercontext.Current(c)
	itemID := c.Params("itemId")
	if itemID == "" {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "itemId missing")
	}

	repo := repository.GetGlobalFactory().GetWatchProgressRepository()
	if err := repo.DeleteByUserAndItem(userCtx.UserID, itemID); err != nil {
		return internalError(c, "Failed to delete watch progress")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
