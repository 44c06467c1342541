package repository

import (
	"fmt"
	"strings"

	"github.com/alfredflix/alfredflix/app/models"
	"gorm.io/gorm"
)

// couponRepository implements the CouponRepository interface
type couponRepository struct {
	db *gorm.DB
}

// NewCouponRepository creates a new coupon repository instance
func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepository{db: db}
}

// Create creates a new coupon in the database
func (r *couponRepository) Create(coupon *models.Coupon) error {
	return r.db.Create(coupon).Error
}

// GetByID retrieves a coupon by its ID
func (r *couponRepository) GetByID(id uint) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.First(&coupon, id).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// GetByCode retrieves a coupon by its code
func (r *couponRepository) GetByCode(code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.Where("code = ?", strings.TrimSpace(code)).First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// Update updates an existing coupon in the database
func (r *couponRepository) Update(coupon *models.Coupon) error {
	return r.db.Save(coupon).Error
}

// Delete soft deletes a coupon by its ID
func (r *couponRepository) Delete(id uint) error {
	return r.db.Delete(&models.Coupon{}, id).Error
}

// List retrieves a paginated list of coupons
func (r *couponRepository) List(offset, limit int) ([]models.Coupon, error) {
	var coupons []models.Coupon
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&coupons).Error
	return coupons, err
}

// Count returns the total number of coupons
func (r *couponRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Coupon{}).Count(&count).Error
	return count, err
}

// IncrementUse bumps current_uses by one inside a single conditional UPDATE.
// The WHERE clause re-checks active status and the usage limit so concurrent
// redeemers of the last slot cannot both succeed. Returns true when the
// increment was applied.
func (r *couponRepository) IncrementUse(couponID uint) (bool, error) {
	result := r.db.Model(&models.Coupon{}).
		Where("id = ? AND is_active = ? AND (max_uses IS NULL OR current_uses < max_uses)", couponID, true).
		Update("current_uses", gorm.Expr("current_uses + 1"))
	if result.Error != nil {
		return false, fmt.Errorf("failed to increment coupon %d usage: %w", couponID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// HasRedemption reports whether the given email already redeemed the coupon
func (r *couponRepository) HasRedemption(couponID uint, email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.CouponRedemption{}).
		Where("coupon_id = ? AND redeemer_email = ?", couponID, strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateRedemption records a coupon redemption for one-time-use enforcement
func (r *couponRepository) CreateRedemption(redemption *models.CouponRedemption) error {
	redemption.RedeemerEmail = strings.ToLower(strings.TrimSpace(redemption.RedeemerEmail))
	return r.db.Create(redemption).Error
}

// ListRedemptions returns all recorded redemptions for a coupon
func (r *couponRepository) ListRedemptions(couponID uint) ([]models.CouponRedemption, error) {
	var redemptions []models.CouponRedemption
	err := r.db.Where("coupon_id = ?", couponID).Order("created_at DESC").Find(&redemptions).Error
	return redemptions, err
}
