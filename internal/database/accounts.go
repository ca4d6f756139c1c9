package database

import (
	"context"
	"errors"

	"github.com/clipzone/clipzone/internal/apperr"
	"github.com/clipzone/clipzone/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const accountColumns = `id, name, email, password_hash, role, cpm, balance,
       profile_pic, portfolio_url, social_links, created_at, updated_at`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Role, &a.CPM, &a.Balance,
		&a.ProfilePic, &a.PortfolioURL, &a.SocialLinks, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAccount creates a new account record
func (r *Repository) CreateAccount(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}

	query := `
		INSERT INTO accounts (id, name, email, password_hash, role, cpm, balance, profile_pic, portfolio_url, social_links)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		account.ID, account.Name, account.Email, account.PasswordHash, account.Role,
		account.CPM, account.Balance, account.ProfilePic, account.PortfolioURL, account.SocialLinks,
	).Scan(&account.CreatedAt, &account.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperr.New(apperr.KindConflict, "email already registered")
		}
		return apperr.Wrap(apperr.KindUnavailable, "failed to create account", err)
	}

	return nil
}

// GetAccount retrieves an account by ID
func (r *Repository) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.db.Pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotFound, "account not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "failed to get account", err)
	}

	return account, nil
}

// GetAccountByEmail retrieves an account by email
func (r *Repository) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`

	account, err := scanAccount(r.db.Pool.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotFound, "account not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "failed to get account", err)
	}

	return account, nil
}

// ListCreators retrieves all creator-role accounts
func (r *Repository) ListCreators(ctx context.Context) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE role = $1 ORDER BY name`

	rows, err := r.db.Pool.Query(ctx, query, models.RoleCreator)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "failed to list creators", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindUnavailable, "failed to scan account", err)
		}
		accounts = append(accounts, account)
	}

	return accounts, nil
}

// SetCPM updates a creator's CPM rate. Existing clip snapshots are left
// untouched; the new rate applies on the next moderation.
func (r *Repository) SetCPM(ctx context.Context, id string, cpm float64) error {
	query := `UPDATE accounts SET cpm = $2, updated_at = now() WHERE id = $1`

	tag, err := r.db.Pool.Exec(ctx, query, id, cpm)
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "failed to set cpm", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.KindNotFound, "account not found")
	}

	return nil
}
