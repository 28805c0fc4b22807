package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/minitoco/minitoco/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour
)

// TokenData is the pair of JWTs issued on registration, login, or refresh.
type TokenData struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64
}

// AuthService handles user registration, credential verification, and JWT
// token operations. It also acts as the user directory for the rest of the
// application.
type AuthService struct {
	users          domain.UserRepository
	jwtSecret      []byte
	bcryptCost     int
	initialBalance decimal.Decimal
}

// NewAuthService creates a new AuthService. New users are granted
// initialBalance tocos at registration.
func NewAuthService(users domain.UserRepository, jwtSecret string, bcryptCost int, initialBalance decimal.Decimal) *AuthService {
	return &AuthService{
		users:          users,
		jwtSecret:      []byte(jwtSecret),
		bcryptCost:     bcryptCost,
		initialBalance: initialBalance,
	}
}

// Register creates a new user account with the initial toco grant.
func (s *AuthService) Register(ctx context.Context, email, firstName, lastName, password string) (*domain.User, error) {
	if email == "" || firstName == "" || lastName == "" || password == "" {
		return nil, fmt.Errorf("%w: email, first name, last name, and password are required", domain.ErrInvalidInput)
	}

	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        strings.ToLower(email),
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, user, s.initialBalance); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// IssueToken verifies credentials and returns a fresh access/refresh pair.
func (s *AuthService) IssueToken(ctx context.Context, email, password string) (*TokenData, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	return s.tokenDataFor(user)
}

// RefreshToken validates a refresh token and issues a fresh pair.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*TokenData, error) {
	claims, err := s.parseToken(refreshToken)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if use, _ := claims["token_use"].(string); use != "refresh" {
		return nil, domain.ErrUnauthorized
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, sub)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return s.tokenDataFor(user)
}

// ValidateToken parses and validates an access token.
// Returns the user ID from the sub claim.
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return "", domain.ErrUnauthorized
	}

	// Refresh tokens must not pass as access tokens.
	if use, _ := claims["token_use"].(string); use == "refresh" {
		return "", domain.ErrUnauthorized
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", domain.ErrUnauthorized
	}
	return sub, nil
}

// GetUserByID retrieves a user by their ID.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// GetUserByEmail retrieves a user by their email address.
func (s *AuthService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.users.GetByEmail(ctx, strings.ToLower(email))
}

// GetUserDetail retrieves a user together with their current balance.
func (s *AuthService) GetUserDetail(ctx context.Context, id string) (*domain.UserDetail, error) {
	return s.users.GetDetailByID(ctx, id)
}

func (s *AuthService) tokenDataFor(user *domain.User) (*TokenData, error) {
	now := time.Now()

	access, err := s.signToken(jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(accessTokenTTL).Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := s.signToken(jwt.MapClaims{
		"sub":       user.ID,
		"token_use": "refresh",
		"iat":       now.Unix(),
		"exp":       now.Add(refreshTokenTTL).Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &TokenData{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(accessTokenTTL.Seconds()),
	}, nil
}

func (s *AuthService) signToken(claims jwt.MapClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func (s *AuthService) parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
