package repositories

import (
	"context"
	"errors"

	"foamworks/internal/common"
	"foamworks/internal/models"

	"github.com/jackc/pgx/v5"
)

type UsersRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type usersRepo struct {
	db DB
}

func NewUsersRepo(db DB) UsersRepository {
	return &usersRepo{db: db}
}

func (r *usersRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, password_hash, company_name, email, crew_pin)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, user.Username, user.PasswordHash, user.CompanyName, user.Email, user.CrewPIN)
	if err != nil {
		return common.Internal("create user", err)
	}
	return nil
}

func (r *usersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT username, password_hash, company_name, email, crew_pin
		FROM users
		WHERE username = $1
	`
	err := r.db.QueryRow(ctx, query, username).Scan(&user.Username, &user.PasswordHash, &user.CompanyName, &user.Email, &user.CrewPIN)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("user not found")
		}
		return nil, common.Internal("get user", err)
	}
	return user, nil
}
