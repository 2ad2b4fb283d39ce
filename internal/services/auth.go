package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/focusplus/backend/internal/middleware"
	"github.com/focusplus/backend/internal/models"
	"github.com/focusplus/backend/internal/repository"
)

type AuthService struct {
	userRepo *repository.UserRepo
	redis    *redis.Client
	jwt      *middleware.JWTAuth
}

func NewAuthService(userRepo *repository.UserRepo, redisClient *redis.Client, jwt *middleware.JWTAuth) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		redis:    redisClient,
		jwt:      jwt,
	}
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	// Validate all fields at once
	fieldErrors := make(map[string]string)

	if req.Username == "" {
		fieldErrors["username"] = "Username is required"
	}
	if !emailRegex.MatchString(req.Email) {
		fieldErrors["email"] = "Invalid email format"
	}
	if err := validatePassword(req.Password); err != nil {
		fieldErrors["password"] = err.Error()
	}

	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	// Check uniqueness
	_, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err == nil {
		return nil, &ConflictError{Message: "Email already in use"}
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	_, err = s.userRepo.GetByUsername(ctx, req.Username)
	if err == nil {
		return nil, &ConflictError{Message: "Username already taken"}
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// Hash password (bcrypt cost 12)
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &UnauthorizedError{Message: "Invalid email or password"}
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, &UnauthorizedError{Message: "Invalid email or password"}
	}

	return s.issueTokens(ctx, user)
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	userIDStr, err := s.redis.Get(ctx, "refresh:"+refreshToken).Result()
	if err != nil {
		return nil, &UnauthorizedError{Message: "Invalid or expired refresh token. Please log in again."}
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}

	// Delete old token (rotation)
	s.redis.Del(ctx, "refresh:"+refreshToken)

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.redis.Del(ctx, "refresh:"+refreshToken).Err()
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*models.AuthResponse, error) {
	accessToken, err := s.jwt.GenerateAccessToken(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := generateToken(64)
	if err != nil {
		return nil, err
	}

	// Store refresh token in Redis (7 days)
	err = s.redis.Set(ctx, "refresh:"+refreshToken, user.ID.String(), 7*24*time.Hour).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.AuthResponse{
		Token:        accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    900,
		User:         user,
	}, nil
}

func generateToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func validatePassword(pw string) error {
	if len(pw) < 8 {
		return fmt.Errorf("Password must be at least 8 characters")
	}
	hasNumber := false
	for _, ch := range pw {
		if unicode.IsDigit(ch) {
			hasNumber = true
			break
		}
	}
	if !hasNumber {
		return fmt.Errorf("Password must contain at least one number")
	}
	return nil
}
