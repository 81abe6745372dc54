package sqlite

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"auto_publish_social/internal/domain"
)

// InstagramAccountRepository is a SQLite implementation of domain.InstagramAccountRepository.
type InstagramAccountRepository struct {
	db *sql.DB
}

// NewInstagramAccountRepository creates a new InstagramAccountRepository backed by SQLite.
func NewInstagramAccountRepository(db *sql.DB) *InstagramAccountRepository {
	return &InstagramAccountRepository{db: db}
}

// GetAll returns all Instagram accounts.
func (r *InstagramAccountRepository) GetAll() ([]*domain.InstagramAccount, error) {
	rows, err := r.db.Query(`SELECT id, name, instagram_business_id, access_token, expires_at, updated_at
		FROM instagram_accounts ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.InstagramAccount
	for rows.Next() {
		account, err := scanInstagramAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// GetByID returns an Instagram account by ID.
func (r *InstagramAccountRepository) GetByID(id string) (*domain.InstagramAccount, error) {
	row := r.db.QueryRow(`SELECT id, name, instagram_business_id, access_token, expires_at, updated_at
		FROM instagram_accounts WHERE id = ?`, id)
	return scanInstagramAccount(row)
}

// Save inserts or updates an Instagram account.
func (r *InstagramAccountRepository) Save(account *domain.InstagramAccount) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	account.UpdatedAt = time.Now().UTC()

	_, err := r.db.Exec(`INSERT INTO instagram_accounts
		(id, name, instagram_business_id, access_token, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			instagram_business_id = excluded.instagram_business_id,
			access_token = excluded.access_token,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`,
		account.ID, account.Name, account.BusinessID, account.AccessToken,
		account.ExpiresAt.UTC(), account.UpdatedAt)
	return err
}

// UpdateToken persists a refreshed access token and expiry.
func (r *InstagramAccountRepository) UpdateToken(id string, accessToken string, expiresAt time.Time) error {
	_, err := r.db.Exec(`UPDATE instagram_accounts SET access_token = ?, expires_at = ?, updated_at = ? WHERE id = ?`,
		accessToken, expiresAt.UTC(), time.Now().UTC(), id)
	return err
}

func scanInstagramAccount(scanner interface {
	Scan(dest ...any) error
}) (*domain.InstagramAccount, error) {
	var account domain.InstagramAccount

	if err := scanner.Scan(
		&account.ID,
		&account.Name,
		&account.BusinessID,
		&account.AccessToken,
		&account.ExpiresAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &account, nil
}

// YouTubeAccountRepository is a SQLite implementation of domain.YouTubeAccountRepository.
type YouTubeAccountRepository struct {
	db *sql.DB
}

// NewYouTubeAccountRepository creates a new YouTubeAccountRepository backed by SQLite.
func NewYouTubeAccountRepository(db *sql.DB) *YouTubeAccountRepository {
	return &YouTubeAccountRepository{db: db}
}

// GetAll returns all YouTube accounts.
func (r *YouTubeAccountRepository) GetAll() ([]*domain.YouTubeAccount, error) {
	rows, err := r.db.Query(`SELECT id, name, access_token, refresh_token, expiry_date, client_id, created_at
		FROM youtube_accounts ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.YouTubeAccount
	for rows.Next() {
		account, err := scanYouTubeAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// GetByID returns a YouTube account by ID.
func (r *YouTubeAccountRepository) GetByID(id string) (*domain.YouTubeAccount, error) {
	row := r.db.QueryRow(`SELECT id, name, access_token, refresh_token, expiry_date, client_id, created_at
		FROM youtube_accounts WHERE id = ?`, id)
	return scanYouTubeAccount(row)
}

// Save inserts or updates a YouTube account.
func (r *YouTubeAccountRepository) Save(account *domain.YouTubeAccount) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
		account.CreatedAt = time.Now().UTC()
	}

	var expiry any
	if account.ExpiryDate != nil {
		expiry = account.ExpiryDate.UTC()
	}

	_, err := r.db.Exec(`INSERT INTO youtube_accounts
		(id, name, access_token, refresh_token, expiry_date, client_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expiry_date = excluded.expiry_date,
			client_id = excluded.client_id`,
		account.ID, account.Name, account.AccessToken, account.RefreshToken,
		expiry, account.ClientID, account.CreatedAt.UTC())
	return err
}

func scanYouTubeAccount(scanner interface {
	Scan(dest ...any) error
}) (*domain.YouTubeAccount, error) {
	var account domain.YouTubeAccount
	var (
		accessToken sql.NullString
		expiryDate  sql.NullTime
		clientID    sql.NullString
	)

	if err := scanner.Scan(
		&account.ID,
		&account.Name,
		&accessToken,
		&account.RefreshToken,
		&expiryDate,
		&clientID,
		&account.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if accessToken.Valid {
		account.AccessToken = accessToken.String
	}
	if expiryDate.Valid {
		t := expiryDate.Time
		account.ExpiryDate = &t
	}
	if clientID.Valid {
		account.ClientID = clientID.String
	}

	return &account, nil
}
