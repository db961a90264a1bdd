package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fitkart/storefront-api/internal/domain"
	"github.com/fitkart/storefront-api/internal/repository"
	"github.com/fitkart/storefront-api/pkg/errors"
)

type userRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) repository.UserRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	query := `
		INSERT INTO users (id, name, email, role, api_key_hash, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Name, user.Email, user.Role, user.APIKeyHash, user.IsActive,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert user", zap.Error(err))
		return err
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, name, email, role, api_key_hash, is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var user domain.User
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.Role, &user.APIKeyHash,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &errors.ErrNotFound{Resource: "user", ID: id.String()}
		}
		r.logger.Error("Failed to query user", zap.Error(err))
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByAPIKey(ctx context.Context, apiKey string) (*domain.User, error) {
	// Bcrypt hashes are salted, so there is no direct hash lookup. Iterate the
	// active users and verify the key against each stored hash.
	query := `
		SELECT id, name, email, role, api_key_hash, is_active, created_at, updated_at
		FROM users
		WHERE is_active = true
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query users", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID, &user.Name, &user.Email, &user.Role, &user.APIKeyHash,
			&user.IsActive, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			continue
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.APIKeyHash), []byte(apiKey)); err == nil {
			return &user, nil
		}
	}

	return nil, &errors.ErrUnauthorized{Message: "invalid API key"}
}
