package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/yoga-lecture-api/internal/models"
)

// UserRepository reads platform users. Accounts are managed elsewhere.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs a new repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns a user. Returns sql.ErrNoRows when absent.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT id, nickname, role, COALESCE(profile_image_url, '') AS profile_image_url,
COALESCE(profile_image_url_small, '') AS profile_image_url_small, active, created_at, updated_at
FROM users WHERE id = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}
