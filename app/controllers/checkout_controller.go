package controllers

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/alfredflix/alfredflix/app/models"
	"github.com/alfredflix/alfredflix/app/repository"
	"github.com/alfredflix/alfredflix/internal/pkg/billing"
	"github.com/alfredflix/alfredflix/internal/pkg/env"
	"github.com/alfredflix/alfredflix/internal/pkg/jellyfin"
	"github.com/alfredflix/alfredflix/internal/pkg/jobqueue"
	"github.com/alfredflix/alfredflix/internal/pkg/mail"
	"github.com/alfredflix/alfredflix/internal/pkg/payment"
)

var (
	checkoutResolver *billing.Resolver
	checkoutIntents  *billing.IntentBuilder
	checkoutSignup   *billing.CompletionHandler
)

// InitializeCheckoutController wires the billing services. Must run after
// the repository factory and cache are initialized.
func InitializeCheckoutController() {
	repos := repository.GetGlobalRepositories()

	provider := payment.NewStripeProvider(env.GetEnv("STRIPE_SECRET_KEY", ""))

	var provisioner billing.Provisioner
	jfClient := jellyfin.NewClient()
	if jfClient.Enabled() {
		provisioner = jellyfin.NewAccountProvisioner(jfClient)
	} else {
		log.Warn("[Checkout] Jellyfin is not configured; signups will be parked as provisioning_pending")
	}

	checkoutResolver = billing.NewResolver(repos.User, repos.Coupon)
	checkoutIntents = billing.NewIntentBuilder(checkoutResolver, provider)
	checkoutSignup = billing.NewCompletionHandler(
		repos.User,
		repos.Coupon,
		repos.Signup,
		checkoutResolver,
		provider,
		provisioner,
		jobqueue.GetManager(),
		mail.NewMailer(),
	)
}

type validateCodeRequest struct {
	Plan         string `json:"plan"`
	ReferralCode string `json:"referral_code"`
	CouponCode   string `json:"coupon_code"`
	Username     string `json:"username"`
	Email        string `json:"email"`
}

// HandleValidateReferral checks a referral code and returns its pricing.
func HandleValidateReferral(c *fiber.Ctx) error {
	var req validateCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	plan, err := billing.ParsePlan(req.Plan)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Unknown plan")
	}
	if req.ReferralCode == "" {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "referral_code is required")
	}

	// Invalid codes are inline form feedback, not request failures.
	result, err := checkoutResolver.ResolveReferral(c.Context(), plan, req.ReferralCode, req.Username)
	if err != nil {
		return internalError(c, "Failed to validate referral code")
	}
	return c.JSON(result)
}

// HandleValidateCoupon checks a coupon code and returns its pricing.
func HandleValidateCoupon(c *fiber.Ctx) error {
	var req validateCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	plan, err := billing.ParsePlan(req.Plan)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Unknown plan")
	}
	if req.CouponCode == "" {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "coupon_code is required")
	}

	result, err := checkoutResolver.ResolveCoupon(c.Context(), plan, req.CouponCode, req.Email)
	if err != nil {
		return internalError(c, "Failed to validate coupon code")
	}
	return c.JSON(result)
}

// HandleCreateIntent prices the signup and returns a confirmable payment intent.
func HandleCreateIntent(c *fiber.Ctx) error {
	if !models.GetAppSettings().IsSignupEnabled() {
		return jsonError(c, fiber.StatusForbidden, "signup_disabled", "Signups are currently disabled")
	}

	var req validateCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	plan, err := billing.ParsePlan(req.Plan)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Unknown plan")
	}

	intent, err := checkoutIntents.CreateIntent(c.Context(), plan, req.ReferralCode, req.CouponCode, req.Username, req.Email)
	if err != nil {
		var codeErr *billing.CodeError
		if errors.As(err, &codeErr) {
			code := "invalid_coupon"
			if req.ReferralCode != "" {
				code = "invalid_referral_code"
			}
			return jsonError(c, fiber.StatusUnprocessableEntity, code, codeErr.Message)
		}
		log.Errorf("[Checkout] intent creation failed: %v", err)
		return internalError(c, "Failed to create payment intent")
	}

	return c.JSON(intent)
}

// HandleCompleteSignup finalizes a paid signup and provisions the account.
func HandleCompleteSignup(c *fiber.Ctx) error {
	if !models.GetAppSettings().IsSignupEnabled() {
		return jsonError(c, fiber.StatusForbidden, "signup_disabled", "Signups are currently disabled")
	}

	var req billing.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	result, err := checkoutSignup.Complete(c.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrAccountExists):
			return jsonError(c, fiber.StatusConflict, "account_exists", "An account with this username or email already exists")
		case errors.Is(err, billing.ErrPaymentNotConfirmed):
			return jsonError(c, fiber.StatusPaymentRequired, "payment_not_confirmed", "The payment has not been confirmed")
		case errors.Is(err, billing.ErrUnknownPlan):
			return jsonError(c, fiber.StatusBadRequest, "bad_request", "Unknown plan")
		}
		var codeErr *billing.CodeError
		if errors.As(err, &codeErr) {
			code := "invalid_coupon"
			if req.ReferralCode != "" {
				code = "invalid_referral_code"
			}
			return jsonError(c, fiber.StatusUnprocessableEntity, code, codeErr.Message)
		}
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return jsonError(c, fiber.StatusBadRequest, "validation_failed", validationErrs.Error())
		}
		log.Errorf("[Checkout] signup completion failed: %v", err)
		return internalError(c, "Failed to complete signup")
	}

	status := fiber.StatusCreated
	if result.AlreadyCompleted {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(fiber.Map{
		"id":                result.User.ID,
		"username":          result.User.Username,
		"email":             result.User.Email,
		"plan":              result.User.PlanType,
		"status":            result.User.Status,
		"amount_cents":      result.AmountCents,
		"provisioned":       result.Provisioned,
		"already_completed": result.AlreadyCompleted,
		"created_at":        result.User.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// HandleGetPlans lists the purchasable tiers with pricing.
func HandleGetPlans(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"plans": []fiber.Map{
			{"id": string(billing.PlanStandard), "price_cents": billing.PlanStandardPriceCents, "currency": billing.DefaultCurrency},
			{"id": string(billing.PlanPremium), "price_cents": billing.PlanPremiumPriceCents, "currency": billing.DefaultCurrency},
		},
		"signup_enabled": models.GetAppSettings().IsSignupEnabled(),
	})
}
