package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"glucolog/domain"
	"glucolog/entities"
	"glucolog/internal/logging"
	"glucolog/pkg/jwt"
)

type (
	MealCounter interface {
		CountMeals(ctx context.Context, userID uuid.UUID) (int64, error)
	}

	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error)
		Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error)
		GetProfile(ctx context.Context, userID string) (domain.ProfileResponse, error)
		UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (domain.UserResponse, error)
	}

	userService struct {
		userRepository UserRepository
		jwtService     jwt.JWTService
		meals          MealCounter
		hashCost       int
		logger         logging.Logger
	}
)

func NewUserService(userRepository UserRepository, jwtService jwt.JWTService, meals MealCounter, logger logging.Logger) UserService {
	return &userService{
		userRepository: userRepository,
		jwtService:     jwtService,
		meals:          meals,
		hashCost:       bcrypt.DefaultCost,
		logger:         logger.With("component", "user"),
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return domain.AuthResponse{}, fmt.Errorf("%w: %v", domain.ErrPasswordHashFailure, err)
	}

	user, err := s.userRepository.CreateUser(ctx, &entities.User{
		Email:    req.Email,
		Password: string(hashed),
		Name:     strings.TrimSpace(req.Name),
	})
	if err != nil {
		return domain.AuthResponse{}, err
	}
	s.logger.Info(ctx, "user registered", "user_id", user.ID.String())

	return s.authResponse(user)
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.AuthResponse{}, domain.ErrInvalidCredentials
		}
		return domain.AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return domain.AuthResponse{}, domain.ErrInvalidCredentials
	}

	return s.authResponse(user)
}

func (s *userService) GetProfile(ctx context.Context, userID string) (domain.ProfileResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return domain.ProfileResponse{}, domain.ErrParseUUID
	}
	user, err := s.userRepository.GetUserByID(ctx, id)
	if err != nil {
		return domain.ProfileResponse{}, err
	}

	count, err := s.meals.CountMeals(ctx, id)
	if err != nil {
		return domain.ProfileResponse{}, err
	}

	return domain.ProfileResponse{UserResponse: toUserResponse(user), MealCount: count}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (domain.UserResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return domain.UserResponse{}, domain.ErrParseUUID
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.UserResponse{}, domain.ErrValidation
	}

	user, err := s.userRepository.UpdateName(ctx, id, name)
	if err != nil {
		return domain.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func (s *userService) authResponse(user *entities.User) (domain.AuthResponse, error) {
	token, err := s.jwtService.GenerateTokenUser(user.ID.String())
	if err != nil {
		return domain.AuthResponse{}, err
	}
	return domain.AuthResponse{Token: token, User: toUserResponse(user)}, nil
}

func toUserResponse(user *entities.User) domain.UserResponse {
	return domain.UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
	}
}
