package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/alfredflix/alfredflix/app/models"
	"github.com/alfredflix/alfredflix/internal/pkg/payment"
)

var validate = validator.New()

var (
	// ErrAccountExists is returned when the requested username or email is taken.
	ErrAccountExists = errors.New("account already exists")
	// ErrPaymentNotConfirmed is returned when the referenced payment has not succeeded.
	ErrPaymentNotConfirmed = errors.New("payment not confirmed")
)

// SignupUserStore is the slice of the user repository completion needs.
type SignupUserStore interface {
	UserStore
	Create(user *models.User) error
	Update(user *models.User) error
	GetByID(id uint) (*models.User, error)
	AddReferralCredit(userID uint, amountCents int64) (bool, error)
}

// SignupCouponStore is the slice of the coupon repository completion needs.
type SignupCouponStore interface {
	CouponStore
	IncrementUse(couponID uint) (bool, error)
	CreateRedemption(redemption *models.CouponRedemption) error
}

// CompletionStore records finished signups for idempotent retries.
type CompletionStore interface {
	CreateCompletionIfNotExists(completion *models.SignupCompletion) (bool, error)
	GetCompletionByConfirmationID(confirmationID string) (*models.SignupCompletion, error)
}

// Provisioner creates the streaming account for a finished signup.
type Provisioner interface {
	CreateUser(ctx context.Context, username, password string, plan Plan) (string, error)
}

// ProvisionQueue schedules a retry when provisioning fails inline.
type ProvisionQueue interface {
	EnqueueProvisionJob(userID uint) error
}

// WelcomeMailer sends the post-signup welcome email. Best effort only.
type WelcomeMailer interface {
	SendWelcome(email, username string) error
}

// SignupRequest carries everything needed to finalize a paid signup. The
// client holds these fields through checkout; nothing is persisted before
// completion.
type SignupRequest struct {
	Username              string `json:"username" validate:"required,min=3,max=150"`
	Email                 string `json:"email" validate:"required,email"`
	Password              string `json:"password" validate:"required,min=6"`
	Plan                  string `json:"plan" validate:"required"`
	ReferralCode          string `json:"referral_code"`
	CouponCode            string `json:"coupon_code"`
	PaymentConfirmationID string `json:"payment_confirmation_id" validate:"required"`
}

// SignupResult reports the finalized account. AlreadyCompleted means the
// confirmation id was seen before and no side effects were reapplied.
type SignupResult struct {
	User             *models.User
	AmountCents      int64
	AlreadyCompleted bool
	Provisioned      bool
}

// CompletionHandler finalizes signups after payment confirmation.
type CompletionHandler struct {
	users       SignupUserStore
	coupons     SignupCouponStore
	completions CompletionStore
	resolver    *Resolver
	provider    payment.Provider
	provisioner Provisioner
	queue       ProvisionQueue
	mailer      WelcomeMailer
}

// NewCompletionHandler wires a completion handler. Provider, provisioner,
// queue and mailer may be nil in tests or reduced deployments; the
// corresponding step is skipped.
func NewCompletionHandler(users SignupUserStore, coupons SignupCouponStore, completions CompletionStore, resolver *Resolver, provider payment.Provider, provisioner Provisioner, queue ProvisionQueue, mailer WelcomeMailer) *CompletionHandler {
	return &CompletionHandler{
		users:       users,
		coupons:     coupons,
		completions: completions,
		resolver:    resolver,
		provider:    provider,
		provisioner: provisioner,
		queue:       queue,
		mailer:      mailer,
	}
}

// Complete finalizes a signup exactly once per payment confirmation id.
// A retried completion returns the already created account and does not
// reapply discount side effects. After payment capture the account is never
// rolled back; provisioning failures park the user as provisioning_pending
// and schedule a retry.
func (h *CompletionHandler) Complete(ctx context.Context, req SignupRequest) (*SignupResult, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	plan, err := ParsePlan(req.Plan)
	if err != nil {
		return nil, err
	}
	if req.PaymentConfirmationID == "" {
		return nil, ErrPaymentNotConfirmed
	}

	// Retried confirmation ids short-circuit to the existing account.
	if existing, err := h.completions.GetCompletionByConfirmationID(req.PaymentConfirmationID); err == nil {
		user, err := h.users.GetByID(existing.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to load completed signup user: %w", err)
		}
		return &SignupResult{User: user, AmountCents: existing.AmountCents, AlreadyCompleted: true, Provisioned: user.JellyfinUserID != ""}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check signup completion: %w", err)
	}

	// Codes are revalidated server-side; the client-held resolution is not trusted.
	result, err := h.resolver.Resolve(ctx, plan, req.ReferralCode, req.CouponCode, req.Username, req.Email)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, &CodeError{Message: result.Message}
	}

	amount := plan.BasePriceCents()
	if result.Resolution != nil {
		amount = result.Resolution.FinalCents
	}

	if err := h.verifyPayment(ctx, req.PaymentConfirmationID, amount); err != nil {
		return nil, err
	}

	user, err := h.findResumableUser(req)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = models.CreateUser(req.Username, req.Email, req.Password, string(plan))
		if err != nil {
			return nil, err
		}
		if result.Resolution != nil {
			user.ReferredByID = result.Resolution.ReferrerID
			user.SignupCouponID = result.Resolution.CouponID
		}
		if err := h.users.Create(user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	}

	completion := &models.SignupCompletion{
		PaymentConfirmationID: req.PaymentConfirmationID,
		UserID:                user.ID,
		AmountCents:           amount,
	}
	if result.Resolution != nil {
		completion.CouponID = result.Resolution.CouponID
		completion.ReferrerID = result.Resolution.ReferrerID
	}
	created, err := h.completions.CreateCompletionIfNotExists(completion)
	if err != nil {
		return nil, err
	}
	if created {
		h.applySideEffects(req, result.Resolution)
	}

	provisioned := h.provision(ctx, user, plan, req.Password)

	if h.mailer != nil {
		if err := h.mailer.SendWelcome(user.Email, user.Username); err != nil {
			log.Warnf("[Signup] welcome mail to %s failed: %v", user.Email, err)
		}
	}

	return &SignupResult{User: user, AmountCents: amount, Provisioned: provisioned}, nil
}

// findResumableUser distinguishes a taken account from a half-finished
// signup. A crash between the user insert and the completion insert leaves
// an account without a completion row; a retry with the same credentials
// must pick that account up instead of failing with ErrAccountExists. The
// password check proves the retry comes from the same signup. Returns
// (nil, nil) when neither username nor email is taken.
func (h *CompletionHandler) findResumableUser(req SignupRequest) (*models.User, error) {
	existing, err := h.users.GetByUsername(req.Username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		existing, err = h.users.GetByEmail(req.Email)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check account: %w", err)
	}
	if !strings.EqualFold(existing.Username, req.Username) || existing.Email != req.Email || !existing.CheckPassword(req.Password) {
		return nil, ErrAccountExists
	}
	return existing, nil
}

// verifyPayment checks the intent with the provider. Zero-amount signups
// confirm a setup intent instead of a charge and are accepted as-is.
func (h *CompletionHandler) verifyPayment(ctx context.Context, confirmationID string, amountCents int64) error {
	if h.provider == nil || amountCents <= 0 {
		return nil
	}
	intent, err := h.provider.GetIntent(ctx, confirmationID)
	if err != nil {
		return fmt.Errorf("failed to verify payment: %w", err)
	}
	switch intent.Status {
	case "succeeded", "processing":
	default:
		return ErrPaymentNotConfirmed
	}
	// The captured amount must match the server-side resolution. A stale
	// intent from a different plan or discount does not pay for this signup.
	if intent.AmountCents != amountCents {
		return ErrPaymentNotConfirmed
	}
	return nil
}

// applySideEffects grants referral credit and burns coupon usage. Both
// writes are single conditional UPDATEs, so a lost race simply matches zero
// rows instead of overshooting a cap.
func (h *CompletionHandler) applySideEffects(req SignupRequest, resolution *Resolution) {
	if resolution == nil {
		return
	}

	if resolution.ReferrerID != nil {
		applied, err := h.users.AddReferralCredit(*resolution.ReferrerID, models.ReferralCreditPerSignupCents)
		if err != nil {
			log.Errorf("[Signup] referral credit for user %d failed: %v", *resolution.ReferrerID, err)
		} else if !applied {
			log.Infof("[Signup] referral credit for user %d skipped: cap reached", *resolution.ReferrerID)
		}
	}

	if resolution.CouponID != nil {
		applied, err := h.coupons.IncrementUse(*resolution.CouponID)
		if err != nil {
			log.Errorf("[Signup] coupon %d usage increment failed: %v", *resolution.CouponID, err)
		} else if !applied {
			log.Infof("[Signup] coupon %d usage increment skipped: limit reached", *resolution.CouponID)
		}
		redemption := &models.CouponRedemption{
			CouponID:              *resolution.CouponID,
			RedeemerEmail:         req.Email,
			PaymentConfirmationID: req.PaymentConfirmationID,
		}
		if err := h.coupons.CreateRedemption(redemption); err != nil {
			log.Errorf("[Signup] coupon %d redemption record failed: %v", *resolution.CouponID, err)
		}
	}
}

// provision creates the streaming account. Failure never rolls the signup
// back; the user is parked as provisioning_pending and a retry is queued.
func (h *CompletionHandler) provision(ctx context.Context, user *models.User, plan Plan, password string) bool {
	if user.JellyfinUserID != "" {
		return true
	}
	if h.provisioner == nil {
		h.parkForRetry(user)
		return false
	}

	jellyfinID, err := h.provisioner.CreateUser(ctx, user.Username, password, plan)
	if err != nil {
		log.Errorf("[Signup] provisioning for user %d failed: %v", user.ID, err)
		h.parkForRetry(user)
		return false
	}

	user.JellyfinUserID = jellyfinID
	if err := h.users.Update(user); err != nil {
		log.Errorf("[Signup] failed to store streaming account id for user %d: %v", user.ID, err)
	}
	return true
}

func (h *CompletionHandler) parkForRetry(user *models.User) {
	user.Status = models.STATUS_PROVISIONING_PENDING
	if err := h.users.Update(user); err != nil {
		log.Errorf("[Signup] failed to park user %d as provisioning_pending: %v", user.ID, err)
	}
	if h.queue != nil {
		if err := h.queue.EnqueueProvisionJob(user.ID); err != nil {
			log.Errorf("[Signup] failed to enqueue provisioning retry for user %d: %v", user.ID, err)
		}
	}
}
