package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	u, err := CreateUser("alice", " Alice@Example.COM ", "secret123", "standard")
	require.NoError(t, err)

	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, ROLE_USER, u.Role)
	assert.Equal(t, STATUS_ACTIVE, u.Status)
	assert.NotEqual(t, "secret123", u.Password)
	assert.True(t, u.CheckPassword("secret123"))
	assert.False(t, u.CheckPassword("wrong"))
}

func TestCreateUserRejectsShortPassword(t *testing.T) {
	_, err := CreateUser("alice", "alice@example.com", "abc", "standard")
	assert.Error(t, err)
}

func TestSetPassword(t *testing.T) {
	u, err := CreateUser("bob", "bob@example.com", "original1", "premium")
	require.NoError(t, err)

	require.NoError(t, u.SetPassword("changed99"))
	assert.True(t, u.CheckPassword("changed99"))
	assert.False(t, u.CheckPassword("original1"))
}

func TestReferralCredit(t *testing.T) {
	u := &User{}
	assert.False(t, u.ReferralExhausted())
	assert.Equal(t, 3, u.RemainingReferralSlots())
	assert.Equal(t, 0, u.TotalReferrals())

	u.ReferralCreditCents = ReferralCreditPerSignupCents
	assert.False(t, u.ReferralExhausted())
	assert.Equal(t, 2, u.RemainingReferralSlots())
	assert.Equal(t, 1, u.TotalReferrals())

	u.ReferralCreditCents = ReferralCreditCapCents
	assert.True(t, u.ReferralExhausted())
	assert.Equal(t, 0, u.RemainingReferralSlots())
	assert.Equal(t, 3, u.TotalReferrals())
}
