package billing

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/alfredflix/alfredflix/app/models"
	"github.com/alfredflix/alfredflix/internal/pkg/payment"
)

// The fakes mirror the conditional-UPDATE semantics of the real
// repositories. The credit and usage guards are atomic under the mutex, the
// same exactly-once behavior the single SQL statements give.
type fakeUserStore struct {
	mu     sync.Mutex
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uint]*models.User), nextID: 1}
}

func (s *fakeUserStore) add(user *models.User) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(user)
}

func (s *fakeUserStore) insert(user *models.User) *models.User {
	if user.ID == 0 {
		user.ID = s.nextID
		s.nextID++
	} else if user.ID >= s.nextID {
		s.nextID = user.ID + 1
	}
	s.users[user.ID] = user
	return user
}

func (s *fakeUserStore) Create(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insert(user)
	return nil
}

func (s *fakeUserStore) Update(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) GetByID(id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeUserStore) GetByUsername(username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Username, strings.TrimSpace(username)) {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeUserStore) GetByEmail(email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == strings.ToLower(strings.TrimSpace(email)) {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeUserStore) AddReferralCredit(userID uint, amountCents int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return false, nil
	}
	if user.ReferralCreditCents+amountCents > models.ReferralCreditCapCents {
		return false, nil
	}
	user.ReferralCreditCents += amountCents
	return true, nil
}

type fakeCouponStore struct {
	mu          sync.Mutex
	coupons     map[string]*models.Coupon
	redemptions map[string]bool
}

func newFakeCouponStore() *fakeCouponStore {
	return &fakeCouponStore{
		coupons:     make(map[string]*models.Coupon),
		redemptions: make(map[string]bool),
	}
}

func (s *fakeCouponStore) add(coupon *models.Coupon) *models.Coupon {
	s.mu.Lock()
	defer s.mu.Unlock()
	if coupon.ID == 0 {
		coupon.ID = uint(len(s.coupons) + 1)
	}
	s.coupons[coupon.Code] = coupon
	return coupon
}

func (s *fakeCouponStore) GetByCode(code string) (*models.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if coupon, ok := s.coupons[strings.TrimSpace(code)]; ok {
		return coupon, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeCouponStore) redemptionKey(couponID uint, email string) string {
	return fmt.Sprintf("%d:%s", couponID, strings.ToLower(email))
}

func (s *fakeCouponStore) HasRedemption(couponID uint, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.redemptions[s.redemptionKey(couponID, email)], nil
}

func (s *fakeCouponStore) CreateRedemption(redemption *models.CouponRedemption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redemptions[s.redemptionKey(redemption.CouponID, redemption.RedeemerEmail)] = true
	return nil
}

func (s *fakeCouponStore) IncrementUse(couponID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, coupon := range s.coupons {
		if coupon.ID != couponID {
			continue
		}
		if !coupon.IsActive || coupon.IsExhausted() {
			return false, nil
		}
		coupon.CurrentUses++
		return true, nil
	}
	return false, nil
}

type fakeCompletionStore struct {
	mu          sync.Mutex
	completions map[string]*models.SignupCompletion
	failNext    error
}

func newFakeCompletionStore() *fakeCompletionStore {
	return &fakeCompletionStore{completions: make(map[string]*models.SignupCompletion)}
}

func (s *fakeCompletionStore) CreateCompletionIfNotExists(completion *models.SignupCompletion) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return false, err
	}
	if _, ok := s.completions[completion.PaymentConfirmationID]; ok {
		return false, nil
	}
	completion.ID = uint(len(s.completions) + 1)
	s.completions[completion.PaymentConfirmationID] = completion
	return true, nil
}

func (s *fakeCompletionStore) GetCompletionByConfirmationID(confirmationID string) (*models.SignupCompletion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if completion, ok := s.completions[confirmationID]; ok {
		return completion, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeProvisioner struct {
	fail  bool
	calls int
}

func (p *fakeProvisioner) CreateUser(ctx context.Context, username, password string, plan Plan) (string, error) {
	p.calls++
	if p.fail {
		return "", fmt.Errorf("streaming server unavailable")
	}
	return "jf-" + strings.ToLower(username), nil
}

type fakeQueue struct {
	enqueued []uint
}

func (q *fakeQueue) EnqueueProvisionJob(userID uint) error {
	q.enqueued = append(q.enqueued, userID)
	return nil
}

type fakeProvider struct {
	intents map[string]*payment.Intent
	created int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{intents: make(map[string]*payment.Intent)}
}

func (p *fakeProvider) CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*payment.Intent, error) {
	p.created++
	intent := &payment.Intent{
		ID:           fmt.Sprintf("pi_test_%d", p.created),
		ClientSecret: fmt.Sprintf("pi_test_%d_secret", p.created),
		AmountCents:  amountCents,
		Currency:     currency,
		Status:       "requires_payment_method",
	}
	p.intents[intent.ID] = intent
	return intent, nil
}

func (p *fakeProvider) GetIntent(ctx context.Context, id string) (*payment.Intent, error) {
	if intent, ok := p.intents[id]; ok {
		return intent, nil
	}
	return nil, fmt.Errorf("no such intent %s", id)
}

// succeeded registers a confirmed intent without going through CreateIntent.
func (p *fakeProvider) succeeded(id string, amountCents int64) {
	p.intents[id] = &payment.Intent{
		ID:          id,
		AmountCents: amountCents,
		Currency:    DefaultCurrency,
		Status:      "succeeded",
	}
}
