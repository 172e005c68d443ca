package services

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/campuslink/campuslink/internal/app/models"
	"github.com/campuslink/campuslink/internal/app/models/dto"
	"github.com/campuslink/campuslink/internal/app/repositories"
	"github.com/campuslink/campuslink/internal/pkg/apperrors"
	"github.com/campuslink/campuslink/internal/pkg/auth"
	"github.com/campuslink/campuslink/internal/pkg/logger"
	"github.com/campuslink/campuslink/internal/pkg/validation"
)

// AuthService handles registration, login and token lifecycle
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	userStore  repositories.UserStore
	tokenStore repositories.TokenStore
	jwtService *auth.JWTService
}

// NewAuthService creates a new AuthService
func NewAuthService(userStore repositories.UserStore, tokenStore repositories.TokenStore, jwtService *auth.JWTService) AuthService {
	return &authService{
		userStore:  userStore,
		tokenStore: tokenStore,
		jwtService: jwtService,
	}
}

// capitalize uppercases the first rune and lowercases the rest, so stored
// names render consistently regardless of how they were typed.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func validationError(errs *validation.Errors) error {
	details := make(map[string]interface{}, len(errs.Fields()))
	for _, f := range errs.Fields() {
		details[f.Field] = f.Message
	}
	return apperrors.NewCustomError(apperrors.ErrValidationFailed, "validation failed").WithDetails(details)
}

// Register validates the submitted profile, checks for duplicates and
// creates the account. All field failures are reported together.
func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	netID := strings.TrimSpace(req.NetID)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	role := strings.ToLower(strings.TrimSpace(req.Role))

	errs := &validation.Errors{}
	errs.Check(validation.NotEmpty(firstName), "firstName", "first name is required")
	errs.Check(validation.NotEmpty(lastName), "lastName", "last name is required")
	errs.Check(validation.NetID(netID), "netId", "net ID must be exactly 9 alphanumeric characters")
	errs.Check(validation.Email(email), "email", "email address is not valid")
	errs.Check(validation.Password(req.Password), "password", "password must be at least 6 characters")
	errs.Check(validation.Role(role), "role", "role must be student or faculty")
	if errs.HasErrors() {
		return nil, validationError(errs)
	}

	if existing, err := s.userStore.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperrors.ErrEmailExists
	}
	if existing, err := s.userStore.GetByNetID(ctx, netID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperrors.ErrNetIDExists
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName: capitalize(firstName),
		LastName:  capitalize(lastName),
		NetID:     netID,
		Email:     email,
		Password:  hashed,
		Role:      models.RoleType(role),
	}

	id, err := s.userStore.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id

	logger.Info().Int64("userID", id).Str("role", role).Msg("User registered")

	return s.issueTokens(ctx, user)
}

// Login verifies credentials. Unknown email and wrong password produce the
// same error so responses do not reveal which accounts exist.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	logger.Info().Int64("userID", user.ID).Msg("User logged in")

	return s.issueTokens(ctx, user)
}

// RefreshToken rotates a refresh token: the old one is revoked and a fresh
// pair is issued in its place.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	userID, expiryDate, isRevoked, err := s.tokenStore.GetTokenByValue(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if isRevoked {
		return nil, apperrors.ErrTokenRevoked
	}
	if time.Now().After(expiryDate) {
		return nil, apperrors.ErrTokenExpired
	}

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}

	if err := s.tokenStore.RevokeToken(ctx, refreshToken); err != nil {
		return nil, err
	}

	access, refresh, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	if err := s.tokenStore.CreateToken(ctx, refresh, user.ID, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:           access,
		TokenType:             "Bearer",
		ExpiresIn:             expiresIn,
		RefreshToken:          refresh,
		RefreshTokenExpiresIn: refreshExpiresIn,
	}, nil
}

// Logout revokes the presented refresh token
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	return s.tokenStore.RevokeToken(ctx, refreshToken)
}

func (s *authService) issueTokens(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	access, refresh, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	if err := s.tokenStore.CreateToken(ctx, refresh, user.ID, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken:           access,
			TokenType:             "Bearer",
			ExpiresIn:             expiresIn,
			RefreshToken:          refresh,
			RefreshTokenExpiresIn: refreshExpiresIn,
		},
		User: dto.UserResponse{
			ID:        user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			NetID:     user.NetID,
			Email:     user.Email,
			Role:      string(user.Role),
		},
	}, nil
}
