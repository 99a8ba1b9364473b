package service

import (
	"context"
	"strings"

	"github.com/AndyVoronov/ObschiySbor-sub000/core/errors"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/logger"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/utils"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/auth/dto"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/auth/entity"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/auth/repository"

	"github.com/google/uuid"
)

type AuthService struct {
	repo repository.AuthRepositoryInterface
}

type AuthServiceInterface interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, *errors.AppError)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, *errors.AppError)
	GetProfile(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, *errors.AppError)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, *errors.AppError)

	// GetGender implements the gender lookup admission depends on.
	GetGender(ctx context.Context, userID uuid.UUID) (string, error)
}

func NewAuthService(repo repository.AuthRepositoryInterface) AuthServiceInterface {
	return &AuthService{repo: repo}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, *errors.AppError) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to check email", err)
	}
	if existing != nil {
		return nil, errors.NewAppError(errors.ErrAlreadyExists, "An account with this email already exists", nil)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to hash password", err)
	}

	user, err := s.repo.CreateUser(ctx, &entity.User{
		Email:        email,
		PasswordHash: hash,
		Name:         req.Name,
		Gender:       entity.GenderUnset,
	})
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to create user", err)
	}

	token, err := utils.GenerateToken(user.ID, user.IsAdmin)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to issue token", err)
	}

	logger.Info("AuthService:Register:Success", "user_id", user.ID)
	return &dto.AuthResponse{Token: token, User: dto.ToUserResponse(user)}, nil
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, *errors.AppError) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load user", err)
	}
	if user == nil || !utils.CheckPassword(user.PasswordHash, req.Password) {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid email or password", nil)
	}

	token, err := utils.GenerateToken(user.ID, user.IsAdmin)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to issue token", err)
	}

	logger.Info("AuthService:Login:Success", "user_id", user.ID)
	return &dto.AuthResponse{Token: token, User: dto.ToUserResponse(user)}, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, *errors.AppError) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load profile", err)
	}
	if user == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "User not found", nil)
	}
	resp := dto.ToUserResponse(user)
	return &resp, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, *errors.AppError) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load profile", err)
	}
	if user == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "User not found", nil)
	}

	name := user.Name
	if req.Name != nil {
		name = *req.Name
	}
	gender := user.Gender
	if req.Gender != nil {
		gender = entity.Gender(*req.Gender)
		if !gender.Valid() {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid gender", nil)
		}
	}

	updated, err := s.repo.UpdateProfile(ctx, userID, name, gender)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to update profile", err)
	}
	if updated == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "User not found", nil)
	}

	resp := dto.ToUserResponse(updated)
	return &resp, nil
}

func (s *AuthService) GetGender(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", nil
	}
	return string(user.Gender), nil
}
