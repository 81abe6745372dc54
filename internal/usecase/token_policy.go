package usecase

import (
	"context"
	"fmt"
	"time"

	"auto_publish_social/internal/domain"
	"auto_publish_social/internal/infrastructure/instagram"
	"auto_publish_social/internal/logger"
)

// refreshWindow is how close to expiry a token must be before we proactively
// exchange it for a fresh one.
const refreshWindow = 10 * 24 * time.Hour

// TokenRefresher exchanges a long-lived Instagram token for a fresh one
type TokenRefresher interface {
	RefreshLongLivedToken(ctx context.Context, accessToken string) (*instagram.RefreshedToken, error)
}

// TokenPolicy guarantees publishers are never handed an expired Instagram
// credential, refreshing soon-to-expire tokens on the way through.
type TokenPolicy struct {
	accounts  domain.InstagramAccountRepository
	refresher TokenRefresher
	now       func() time.Time
}

// NewTokenPolicy creates a new token policy
func NewTokenPolicy(accounts domain.InstagramAccountRepository, refresher TokenRefresher) *TokenPolicy {
	return &TokenPolicy{
		accounts:  accounts,
		refresher: refresher,
		now:       time.Now,
	}
}

// GetValidToken loads the account and returns it with a usable access token.
//
// An already-expired token is not recoverable here and fails with
// domain.ErrTokenExpired. A token expiring within the refresh window is
// exchanged and persisted; if the exchange fails the still-valid stored token
// is returned instead, deferring the problem to the next tick.
func (p *TokenPolicy) GetValidToken(ctx context.Context, accountID string) (*domain.InstagramAccount, error) {
	account, err := p.accounts.GetByID(accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load instagram account %s: %w", accountID, err)
	}
	if account == nil {
		return nil, fmt.Errorf("instagram account %s: %w", accountID, domain.ErrAccountNotFound)
	}

	now := p.now()

	if !now.Before(account.ExpiresAt) {
		return nil, fmt.Errorf("instagram account %s: %w", account.Name, domain.ErrTokenExpired)
	}

	if account.ExpiresAt.Sub(now) < refreshWindow {
		refreshed, err := p.refresher.RefreshLongLivedToken(ctx, account.AccessToken)
		if err != nil {
			// Keep publishing on the still-valid token; the next tick retries
			logger.Warn().Printf("Token refresh failed for account %s, using existing token: %v", account.Name, err)
			return account, nil
		}

		if err := p.accounts.UpdateToken(account.ID, refreshed.AccessToken, refreshed.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to persist refreshed token for account %s: %w", account.Name, err)
		}

		logger.Info().Printf("Refreshed instagram token for account %s, new expiry %s", account.Name, refreshed.ExpiresAt.Format(time.RFC3339))

		account.AccessToken = refreshed.AccessToken
		account.ExpiresAt = refreshed.ExpiresAt
	}

	return account, nil
}
