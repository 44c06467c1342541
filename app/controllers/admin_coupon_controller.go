package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/alfredflix/alfredflix/app/models"
	"github.com/alfredflix/alfredflix/app/repository"
)

type couponRequest struct {
	Code            string     `json:"code"`
	Name            string     `json:"name"`
	DiscountType    string     `json:"discount_type"`
	DiscountValue   int64      `json:"discount_value"`
	IsActive        *bool      `json:"is_active"`
	OneTimeUse      bool       `json:"one_time_use"`
	NewAccountsOnly bool       `json:"new_accounts_only"`
	MaxUses         *int64     `json:"max_uses"`
	ExpiresAt       *time.Time `json:"expires_at"`
}

func couponParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid coupon id")
	}
	return uint(id), nil
}

// HandleAdminListCoupons returns all coupons, newest first.
func HandleAdminListCoupons(c *fiber.Ctx) error {
	offset, limit := pagination(c)
	repo := repository.GetGlobalFactory().GetCouponRepository()

	coupons, err := repo.List(offset, limit)
	if err != nil {
		return internalError(c, "Failed to load coupons")
	}
	total, err := repo.Count()
	if err != nil {
		return internalError(c, "Failed to load coupons")
	}

	return c.JSON(fiber.Map{
		"items":  coupons,
		"total":  total,
		"offset": offset,
		"limit":  limit,
	})
}

// HandleAdminGetCoupon returns one coupon with its redemption history.
func HandleAdminGetCoupon(c *fiber.Ctx) error {
	id, err := couponParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}

	repo := repository.GetGlobalFactory().GetCouponRepository()
	coupon, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Coupon not found")
		}
		return internalError(c, "Failed to load coupon")
	}

	redemptions, err := repo.ListRedemptions(coupon.ID)
	if err != nil {
		return internalError(c, "Failed to load redemptions")
	}

	return c.JSON(fiber.Map{
		"coupon":      coupon,
		"redemptions": redemptions,
		"display":     coupon.DisplayDiscount(),
		"redeemable":  coupon.Redeemable(time.Now()),
	})
}

// HandleAdminCreateCoupon creates a coupon.
func HandleAdminCreateCoupon(c *fiber.Ctx) error {
	var req couponRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	coupon := models.Coupon{
		Code:            req.Code,
		Name:            req.Name,
		DiscountType:    req.DiscountType,
		DiscountValue:   req.DiscountValue,
		IsActive:        true,
		OneTimeUse:      req.OneTimeUse,
		NewAccountsOnly: req.NewAccountsOnly,
		MaxUses:         req.MaxUses,
		ExpiresAt:       req.ExpiresAt,
	}
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}
	if coupon.DiscountType == models.DISCOUNT_TYPE_PERCENT && coupon.DiscountValue > 100 {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", "Percent discount cannot exceed 100")
	}
	if err := coupon.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	repo := repository.GetGlobalFactory().GetCouponRepository()
	if _, err := repo.GetByCode(coupon.Code); err == nil {
		return jsonError(c, fiber.StatusConflict, "code_taken", "A coupon with this code already exists")
	}
	if err := repo.Create(&coupon); err != nil {
		return internalError(c, "Failed to create coupon")
	}

	return c.Status(fiber.StatusCreated).JSON(coupon)
}

// HandleAdminUpdateCoupon updates coupon fields. The code itself and the
// usage counter are immutable from this endpoint.
func HandleAdminUpdateCoupon(c *fiber.Ctx) error {
	id, err := couponParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}

	var req couponRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	repo := repository.GetGlobalFactory().GetCouponRepository()
	coupon, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Coupon not found")
		}
		return internalError(c, "Failed to load coupon")
	}

	if req.Name != "" {
		coupon.Name = req.Name
	}
	if req.DiscountType != "" {
		coupon.DiscountType = req.DiscountType
		coupon.DiscountValue = req.DiscountValue
	}
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}
	coupon.OneTimeUse = req.OneTimeUse
	coupon.NewAccountsOnly = req.NewAccountsOnly
	coupon.MaxUses = req.MaxUses
	coupon.ExpiresAt = req.ExpiresAt

	if coupon.DiscountType == models.DISCOUNT_TYPE_PERCENT && coupon.DiscountValue > 100 {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", "Percent discount cannot exceed 100")
	}
	if err := coupon.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}
	if err := repo.Update(coupon); err != nil {
		return internalError(c, "Failed to update coupon")
	}

	return c.JSON(coupon)
}

// HandleAdminDeleteCoupon soft deletes a coupon. Past redemptions stay on
// record.
func HandleAdminDeleteCoupon(c *fiber.Ctx) error {
	id, err := couponParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}

	repo := repository.GetGlobalFactory().GetCouponRepository()
	if _, err := repo.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Coupon not found")
		}
		return internalError(c, "Failed to load coupon")
	}
	if err := repo.Delete(id); err != nil {
		return internalError(c, "Failed to delete coupon")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
