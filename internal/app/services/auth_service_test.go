package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/campuslink/internal/app/models/dto"
	"github.com/campuslink/campuslink/internal/pkg/apperrors"
	"github.com/campuslink/campuslink/internal/pkg/auth"
)

func newAuthFixture() (AuthService, *memUserStore, *memTokenStore) {
	userStore := newMemUserStore()
	tokenStore := newMemTokenStore()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "campuslink.test",
	})
	return NewAuthService(userStore, tokenStore, jwtService), userStore, tokenStore
}

func validRegisterRequest() dto.RegisterRequest {
	return dto.RegisterRequest{
		FirstName: "ada",
		LastName:  "LOVELACE",
		NetID:     "abc123456",
		Email:     "Ada.Lovelace@University.edu",
		Password:  "s3cret-pass",
		Role:      "Student",
	}
}

func TestRegister(t *testing.T) {
	svc, userStore, _ := newAuthFixture()

	resp, err := svc.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	// Names are normalized, emails and roles lowercased.
	assert.Equal(t, "Ada", resp.User.FirstName)
	assert.Equal(t, "Lovelace", resp.User.LastName)
	assert.Equal(t, "ada.lovelace@university.edu", resp.User.Email)
	assert.Equal(t, "student", resp.User.Role)
	assert.NotEmpty(t, resp.Token.AccessToken)
	assert.NotEmpty(t, resp.Token.RefreshToken)

	stored, err := userStore.GetByEmail(context.Background(), "ada.lovelace@university.edu")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "s3cret-pass", stored.Password)
	assert.True(t, auth.CheckPassword(stored.Password, "s3cret-pass"))
}

func TestRegisterReportsAllFieldFailures(t *testing.T) {
	svc, _, _ := newAuthFixture()

	req := dto.RegisterRequest{
		FirstName: "",
		LastName:  "Lovelace",
		NetID:     "short",
		Email:     "not-an-email",
		Password:  "123",
		Role:      "professor",
	}
	_, err := svc.Register(context.Background(), req)
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)

	var customErr *apperrors.CustomError
	require.True(t, errors.As(err, &customErr))
	for _, field := range []string{"firstName", "netId", "email", "password", "role"} {
		assert.Contains(t, customErr.Details, field)
	}
}

func TestRegisterDuplicates(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	sameEmail := validRegisterRequest()
	sameEmail.NetID = "xyz987654"
	_, err = svc.Register(context.Background(), sameEmail)
	assert.ErrorIs(t, err, apperrors.ErrEmailExists)

	sameNetID := validRegisterRequest()
	sameNetID.Email = "other@university.edu"
	_, err = svc.Register(context.Background(), sameNetID)
	assert.ErrorIs(t, err, apperrors.ErrNetIDExists)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "ada.lovelace@university.edu",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token.AccessToken)
}

// Unknown account and wrong password must be indistinguishable.
func TestLoginDoesNotRevealAccounts(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	_, wrongPassword := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "ada.lovelace@university.edu",
		Password: "wrong",
	})
	_, unknownEmail := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "nobody@university.edu",
		Password: "whatever",
	})

	assert.ErrorIs(t, wrongPassword, apperrors.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, apperrors.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestRefreshTokenRotation(t *testing.T) {
	svc, _, tokenStore := newAuthFixture()

	registered, err := svc.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)
	oldRefresh := registered.Token.RefreshToken

	refreshed, err := svc.RefreshToken(context.Background(), oldRefresh)
	require.NoError(t, err)
	assert.NotEqual(t, oldRefresh, refreshed.RefreshToken)

	// The old token is revoked and cannot be replayed.
	_, _, revoked, err := tokenStore.GetTokenByValue(context.Background(), oldRefresh)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = svc.RefreshToken(context.Background(), oldRefresh)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}

func TestRefreshTokenUnknown(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.RefreshToken(context.Background(), "never-issued")
	assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)
}

func TestLogout(t *testing.T) {
	svc, _, _ := newAuthFixture()

	registered, err := svc.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), registered.Token.RefreshToken))

	_, err = svc.RefreshToken(context.Background(), registered.Token.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Ada", capitalize("ada"))
	assert.Equal(t, "Ada", capitalize("ADA"))
	assert.Equal(t, "A", capitalize("a"))
	assert.Equal(t, "", capitalize(""))
}
