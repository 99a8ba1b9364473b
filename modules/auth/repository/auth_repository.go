package repository

import (
	"context"
	"database/sql"

	"github.com/AndyVoronov/ObschiySbor-sub000/core/database"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/logger"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/auth/entity"

	"github.com/google/uuid"
)

const userColumns = `
	id, email, password_hash, name, gender, is_admin, created_at, updated_at`

type AuthRepository struct {
	DB database.Database
}

func NewAuthRepository(db database.Database) *AuthRepository {
	return &AuthRepository{DB: db}
}

type AuthRepositoryInterface interface {
	CreateUser(ctx context.Context, user *entity.User) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name string, gender entity.Gender) (*entity.User, error)
}

func (r *AuthRepository) CreateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	query := `
		INSERT INTO users (email, password_hash, name, gender, is_admin)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING` + userColumns

	var created entity.User
	err := r.DB.GetContext(ctx, &created, query,
		user.Email, user.PasswordHash, user.Name, user.Gender, user.IsAdmin)
	if err != nil {
		logger.Error("AuthRepository:CreateUser", err)
		return nil, err
	}
	return &created, nil
}

func (r *AuthRepository) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE email = $1`

	var user entity.User
	err := r.DB.GetContext(ctx, &user, query, email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Error("AuthRepository:GetUserByEmail", err)
		return nil, err
	}
	return &user, nil
}

func (r *AuthRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE id = $1`

	var user entity.User
	err := r.DB.GetContext(ctx, &user, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Error("AuthRepository:GetUserByID", err)
		return nil, err
	}
	return &user, nil
}

func (r *AuthRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name string, gender entity.Gender) (*entity.User, error) {
	query := `
		UPDATE users
		SET name = $2, gender = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING` + userColumns

	var updated entity.User
	err := r.DB.GetContext(ctx, &updated, query, id, name, gender)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Error("AuthRepository:UpdateProfile", err)
		return nil, err
	}
	return &updated, nil
}
