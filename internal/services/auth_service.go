package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carpool/internal/models"
	"carpool/internal/repositories/interfaces"
	"carpool/internal/utils"
	"carpool/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	Name     string          `json:"name"`
	Nickname string          `json:"nickname"`
	Username string          `json:"username"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
	Gender   models.Gender   `json:"gender"`
	Contact  models.Contact  `json:"contact"`
	Address  models.Address  `json:"address"`
}

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, *models.User, error)
	ChangePassword(ctx context.Context, userID primitive.ObjectID, newPassword string) error
}

type authService struct {
	userRepo   interfaces.UserRepository
	jwtSecret  string
	tokenTTL   time.Duration
	bcryptCost int
	logger     *logger.Logger
}

func NewAuthService(userRepo interfaces.UserRepository, jwtSecret string, tokenTTL time.Duration, bcryptCost int, log *logger.Logger) AuthService {
	if bcryptCost == 0 {
		bcryptCost = utils.BcryptCost
	}
	return &authService{
		userRepo:   userRepo,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
		logger:     log,
	}
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	existing, err := s.userRepo.FindByUsernameOrEmail(ctx, req.Username, req.Contact.Email)
	if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}
	if existing != nil {
		if existing.Contact.Email == req.Contact.Email {
			return nil, NewPreconditionError("EMAIL_IN_USE", "This Email is already in use. Try a different Email")
		}
		return nil, NewPreconditionError("USERNAME_IN_USE", "Username already in use. Try a different Username")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:       req.Name,
		Nickname:   req.Nickname,
		Username:   req.Username,
		Password:   string(hash),
		Role:       req.Role,
		Gender:     req.Gender,
		Contact:    req.Contact,
		Address:    req.Address,
		RideStatus: models.RideStatusOffline,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.WithUserID(user.ID).WithField("role", user.Role).Info("User registered")

	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.WithUserID(user.ID).Info("User logged in")

	return token, user, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID primitive.ObjectID, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.WithUserID(userID).Info("Password updated")

	return nil
}
