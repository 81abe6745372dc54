package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"auto_publish_social/internal/domain"
)

// InstagramAccountRepository is an in-memory implementation of domain.InstagramAccountRepository
type InstagramAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.InstagramAccount
}

// NewInstagramAccountRepository creates a new in-memory Instagram account repository
func NewInstagramAccountRepository() *InstagramAccountRepository {
	return &InstagramAccountRepository{
		accounts: make(map[string]*domain.InstagramAccount),
	}
}

// GetAll returns all accounts
func (r *InstagramAccountRepository) GetAll() ([]*domain.InstagramAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	accounts := make([]*domain.InstagramAccount, 0, len(r.accounts))
	for _, account := range r.accounts {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })
	return accounts, nil
}

// GetByID returns an account by its ID
func (r *InstagramAccountRepository) GetByID(id string) (*domain.InstagramAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.accounts[id], nil
}

// Save creates or updates an account
func (r *InstagramAccountRepository) Save(account *domain.InstagramAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	account.UpdatedAt = time.Now()
	r.accounts[account.ID] = account
	return nil
}

// UpdateToken persists a refreshed access token and expiry
func (r *InstagramAccountRepository) UpdateToken(id string, accessToken string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if account, exists := r.accounts[id]; exists {
		account.AccessToken = accessToken
		account.ExpiresAt = expiresAt
		account.UpdatedAt = time.Now()
	}
	return nil
}

// YouTubeAccountRepository is an in-memory implementation of domain.YouTubeAccountRepository
type YouTubeAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.YouTubeAccount
}

// NewYouTubeAccountRepository creates a new in-memory YouTube account repository
func NewYouTubeAccountRepository() *YouTubeAccountRepository {
	return &YouTubeAccountRepository{
		accounts: make(map[string]*domain.YouTubeAccount),
	}
}

// GetAll returns all accounts
func (r *YouTubeAccountRepository) GetAll() ([]*domain.YouTubeAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	accounts := make([]*domain.YouTubeAccount, 0, len(r.accounts))
	for _, account := range r.accounts {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })
	return accounts, nil
}

// GetByID returns an account by its ID
func (r *YouTubeAccountRepository) GetByID(id string) (*domain.YouTubeAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.accounts[id], nil
}

// Save creates or updates an account
func (r *YouTubeAccountRepository) Save(account *domain.YouTubeAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if account.ID == "" {
		account.ID = uuid.NewString()
		account.CreatedAt = time.Now()
	}
	r.accounts[account.ID] = account
	return nil
}
