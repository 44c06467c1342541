package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/alfredflix/alfredflix/app/models"
	"github.com/alfredflix/alfredflix/app/repository"
	"github.com/alfredflix/alfredflix/internal/pkg/database"
	"github.com/alfredflix/alfredflix/internal/pkg/jobqueue"
	"github.com/alfredflix/alfredflix/internal/pkg/statistics"
)

// HandleAdminStats returns the dashboard headline numbers, a 30-day signup
// series and queue health.
func HandleAdminStats(c *fiber.Ctx) error {
	stats := statistics.GetStatisticsData()

	repos := repository.GetGlobalRepositories()
	now := time.Now()
	start := now.AddDate(0, 0, -30)

	dailySignups, err := repos.Signup.GetDailyStats(start, now)
	if err != nil {
		return internalError(c, "Failed to load signup statistics")
	}
	dailyUsers, err := repos.User.GetDailyStats(start, now)
	if err != nil {
		return internalError(c, "Failed to load user statistics")
	}

	pendingProvisioning, err := repos.User.CountByStatus(models.STATUS_PROVISIONING_PENDING)
	if err != nil {
		return internalError(c, "Failed to load user statistics")
	}
	suspended, err := repos.User.CountByStatus(models.STATUS_SUSPENDED)
	if err != nil {
		return internalError(c, "Failed to load user statistics")
	}
	newMessages, err := repos.Contact.CountByStatus(models.CONTACT_STATUS_NEW)
	if err != nil {
		return internalError(c, "Failed to load contact statistics")
	}

	queue := jobqueue.GetManager().GetQueue()
	queueStats, _ := queue.GetJobStats(c.Context())
	queueSize, _ := queue.GetQueueSize(c.Context())
	processingSize, _ := queue.GetProcessingSize(c.Context())

	return c.JSON(fiber.Map{
		"totals": fiber.Map{
			"users":                stats.TotalUsers,
			"signups":              stats.TotalSignups,
			"signups_today":        stats.TodaySignups,
			"provisioning_pending": pendingProvisioning,
			"suspended":            suspended,
			"new_contact_messages": newMessages,
		},
		"daily_signups": dailySignups,
		"daily_users":   dailyUsers,
		"queue": fiber.Map{
			"pending":    queueSize,
			"processing": processingSize,
			"stats":      queueStats,
		},
	})
}

// HandleAdminGetSettings returns the editable application settings.
func HandleAdminGetSettings(c *fiber.Ctx) error {
	settings, err := repository.GetGlobalFactory().GetSettingRepository().Get()
	if err != nil {
		return internalError(c, "Failed to load settings")
	}
	return c.JSON(settings)
}

type settingsRequest struct {
	SiteTitle     string `json:"site_title"`
	SupportEmail  string `json:"support_email"`
	SignupEnabled bool   `json:"signup_enabled"`
}

// HandleAdminUpdateSettings persists the application settings.
func HandleAdminUpdateSettings(c *fiber.Ctx) error {
	var req settingsRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	settings := &models.AppSettings{
		SiteTitle:     req.SiteTitle,
		SupportEmail:  req.SupportEmail,
		SignupEnabled: req.SignupEnabled,
	}
	if err := repository.GetGlobalFactory().GetSettingRepository().Save(settings); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	return c.JSON(settings)
}

type signupToggleRequest struct {
	Enabled bool `json:"enabled"`
}

// HandleAdminToggleSignup flips the signup kill switch without touching the
// other settings.
func HandleAdminToggleSignup(c *fiber.Ctx) error {
	var req signupToggleRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	if err := repository.GetGlobalFactory().GetSettingRepository().SetSignupEnabled(req.Enabled); err != nil {
		return internalError(c, "Failed to update settings")
	}

	return c.JSON(fiber.Map{"signup_enabled": req.Enabled})
}

// HandleAdminQueueKeys lists persisted provisioning jobs with their payloads
// and remaining retention.
func HandleAdminQueueKeys(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetQueueRepository()

	keys, err := repo.ListJobKeys()
	if err != nil {
		return internalError(c, "Failed to inspect queue")
	}

	jobs := make([]fiber.Map, 0, len(keys))
	for _, key := range keys {
		entry := fiber.Map{"key": key}
		if data, err := repo.GetJobData(key); err == nil {
			entry["data"] = data
		}
		if ttl, err := repo.GetJobTTL(key); err == nil {
			entry["ttl_seconds"] = int64(ttl.Seconds())
		}
		jobs = append(jobs, entry)
	}

	pending, processing, err := repo.QueueDepths()
	if err != nil {
		return internalError(c, "Failed to inspect queue")
	}

	return c.JSON(fiber.Map{
		"jobs":       jobs,
		"pending":    pending,
		"processing": processing,
	})
}

// HandleAdminHealth reports dependency health for operations.
func HandleAdminHealth(c *fiber.Ctx) error {
	dbOK := database.GetDB() != nil
	queueRunning := jobqueue.GetManager().IsRunning()

	return c.JSON(fiber.Map{
		"database":  dbOK,
		"job_queue": queueRunning,
		"time":      time.Now().UTC().Format(time.RFC3339),
	})
}
