package jobqueue

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alfredflix/alfredflix/app/models"
	"github.com/alfredflix/alfredflix/app/repository"
	"github.com/alfredflix/alfredflix/internal/pkg/billing"
	"github.com/alfredflix/alfredflix/internal/pkg/jellyfin"
)

// processProvisionAccountJob retries streaming account creation for users
// parked as provisioning_pending after a failed inline provision. The signup
// password is only available at signup time, so retries provision with a
// generated temporary password; the member resets it from their account page.
func (q *Queue) processProvisionAccountJob(ctx context.Context, job *Job) error {
	payload, err := ProvisionAccountJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid provision payload: %w", err)
	}

	users := repository.GetGlobalRepositories().User
	user, err := users.GetByID(payload.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("[JobQueue] Provision job %s: user %d no longer exists", job.ID, payload.UserID)
			return nil
		}
		return fmt.Errorf("failed to load user %d: %w", payload.UserID, err)
	}

	if user.JellyfinUserID != "" {
		// Provisioned elsewhere; just clear the pending status
		if user.Status == models.STATUS_PROVISIONING_PENDING {
			user.Status = models.STATUS_ACTIVE
			return users.Update(user)
		}
		return nil
	}

	client := jellyfin.NewClient()
	if !client.Enabled() {
		return fmt.Errorf("jellyfin is not configured")
	}

	provisioner := jellyfin.NewAccountProvisioner(client)
	tempPassword := uuid.New().String()
	jellyfinID, err := provisioner.CreateUser(ctx, user.Username, tempPassword, billing.Plan(user.PlanType))
	if err != nil {
		return fmt.Errorf("provisioning user %d failed: %w", user.ID, err)
	}

	user.JellyfinUserID = jellyfinID
	user.Status = models.STATUS_ACTIVE
	if err := users.Update(user); err != nil {
		return fmt.Errorf("failed to activate user %d after provisioning: %w", user.ID, err)
	}

	log.Infof("[JobQueue] Provisioned streaming account %s for user %d", jellyfinID, user.ID)
	return nil
}
