package jellyfin

import (
	"context"

	"github.com/gofiber/fiber/v2/log"

	"github.com/alfredflix/alfredflix/internal/pkg/billing"
	"github.com/alfredflix/alfredflix/internal/pkg/entitlements"
)

// AccountProvisioner creates streaming accounts with the plan's policy
// applied. It satisfies the billing completion handler's Provisioner.
type AccountProvisioner struct {
	client *Client
}

// NewAccountProvisioner wraps a Jellyfin client for signup provisioning.
func NewAccountProvisioner(client *Client) *AccountProvisioner {
	return &AccountProvisioner{client: client}
}

// CreateUser creates the account and applies the plan policy. A policy
// failure does not fail provisioning; the account works with server defaults
// until the next policy sync.
func (p *AccountProvisioner) CreateUser(ctx context.Context, username, password string, plan billing.Plan) (string, error) {
	userID, err := p.client.CreateUser(ctx, username, password)
	if err != nil {
		return "", err
	}

	policy := PolicyFor(entitlements.ForPlan(entitlements.Plan(plan)))
	if err := p.client.SetPolicy(ctx, userID, policy); err != nil {
		log.Warnf("[Jellyfin] policy for new user %s not applied: %v", userID, err)
	}

	return userID, nil
}
