package domain

import "time"

// InstagramAccount holds the credentials of one Instagram business account
type InstagramAccount struct {
	// ID is the unique identifier for the account
	ID string

	// Name is a human-readable label
	Name string

	// BusinessID is the Instagram business account identifier used by the Graph API
	BusinessID string

	// AccessToken is the long-lived Graph API access token
	AccessToken string

	// ExpiresAt is when the access token expires
	ExpiresAt time.Time

	// UpdatedAt is the timestamp when the account was last updated
	UpdatedAt time.Time
}

// YouTubeAccount holds the OAuth credentials of one YouTube channel
type YouTubeAccount struct {
	// ID is the unique identifier for the account
	ID string

	// Name is a human-readable label
	Name string

	// AccessToken is the last issued access token (optional, refreshed on use)
	AccessToken string

	// RefreshToken is the OAuth refresh token used to mint upload credentials
	RefreshToken string

	// ExpiryDate is when the access token expires (optional)
	ExpiryDate *time.Time

	// ClientID optionally overrides the application OAuth client for this account
	ClientID string

	// CreatedAt is the timestamp when the account was created
	CreatedAt time.Time
}

// InstagramAccountRepository defines the interface for Instagram account data operations
type InstagramAccountRepository interface {
	// GetAll returns all registered accounts
	GetAll() ([]*InstagramAccount, error)

	// GetByID returns an account by its ID
	GetByID(id string) (*InstagramAccount, error)

	// Save creates or updates an account
	Save(account *InstagramAccount) error

	// UpdateToken persists a refreshed access token and its new expiry
	UpdateToken(id string, accessToken string, expiresAt time.Time) error
}

// YouTubeAccountRepository defines the interface for YouTube account data operations
type YouTubeAccountRepository interface {
	// GetAll returns all registered accounts
	GetAll() ([]*YouTubeAccount, error)

	// GetByID returns an account by its ID
	GetByID(id string) (*YouTubeAccount, error)

	// Save creates or updates an account
	Save(account *YouTubeAccount) error
}
