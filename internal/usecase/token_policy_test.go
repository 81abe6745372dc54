package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auto_publish_social/internal/domain"
	"auto_publish_social/internal/infrastructure/instagram"
	"auto_publish_social/internal/repository/memory"
)

type stubRefresher struct {
	refreshed *instagram.RefreshedToken
	err       error
	calls     int
}

func (s *stubRefresher) RefreshLongLivedToken(ctx context.Context, accessToken string) (*instagram.RefreshedToken, error) {
	s.calls++
	return s.refreshed, s.err
}

func newTokenPolicyFixture(t *testing.T, expiresAt time.Time) (*TokenPolicy, *memory.InstagramAccountRepository, *stubRefresher, time.Time) {
	t.Helper()

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	accounts := memory.NewInstagramAccountRepository()
	require.NoError(t, accounts.Save(&domain.InstagramAccount{
		ID:          "acc1",
		Name:        "brand",
		BusinessID:  "biz1",
		AccessToken: "old-token",
		ExpiresAt:   expiresAt,
	}))

	refresher := &stubRefresher{}
	policy := NewTokenPolicy(accounts, refresher)
	policy.now = func() time.Time { return now }
	return policy, accounts, refresher, now
}

func TestGetValidTokenRefreshesInsideWindow(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	policy, accounts, refresher, now := newTokenPolicyFixture(t, base.Add(5*24*time.Hour))

	refresher.refreshed = &instagram.RefreshedToken{
		AccessToken: "new-token",
		ExpiresAt:   now.Add(60 * 24 * time.Hour),
	}

	account, err := policy.GetValidToken(context.Background(), "acc1")
	require.NoError(t, err)
	assert.Equal(t, 1, refresher.calls)
	assert.Equal(t, "new-token", account.AccessToken)

	stored, err := accounts.GetByID("acc1")
	require.NoError(t, err)
	assert.Equal(t, "new-token", stored.AccessToken)
	assert.Equal(t, refresher.refreshed.ExpiresAt, stored.ExpiresAt)
}

func TestGetValidTokenSkipsRefreshOutsideWindow(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	policy, _, refresher, _ := newTokenPolicyFixture(t, base.Add(30*24*time.Hour))

	account, err := policy.GetValidToken(context.Background(), "acc1")
	require.NoError(t, err)
	assert.Zero(t, refresher.calls)
	assert.Equal(t, "old-token", account.AccessToken)
}

func TestGetValidTokenFailsWhenExpired(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	policy, _, refresher, _ := newTokenPolicyFixture(t, base.Add(-time.Second))

	_, err := policy.GetValidToken(context.Background(), "acc1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
	assert.Zero(t, refresher.calls)
}

func TestGetValidTokenFallsBackOnRefreshFailure(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	policy, accounts, refresher, _ := newTokenPolicyFixture(t, base.Add(5*24*time.Hour))

	refresher.err = errors.New("graph API unavailable")

	account, err := policy.GetValidToken(context.Background(), "acc1")
	require.NoError(t, err)
	assert.Equal(t, 1, refresher.calls)
	assert.Equal(t, "old-token", account.AccessToken)

	stored, err := accounts.GetByID("acc1")
	require.NoError(t, err)
	assert.Equal(t, "old-token", stored.AccessToken)
}

func TestGetValidTokenUnknownAccount(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	policy, _, _, _ := newTokenPolicyFixture(t, base.Add(30*24*time.Hour))

	_, err := policy.GetValidToken(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}
