package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"handicapper/internal/models"
	"handicapper/internal/utils"
	"handicapper/pkg/apperrors"
	"handicapper/pkg/firebaseauth"
	"handicapper/pkg/logger"
	"handicapper/pkg/oauth"
)

type stubOAuth struct {
	name    string
	info    *oauth.UserInfo
	codeErr error
}

func (s *stubOAuth) Name() string { return s.name }

func (s *stubOAuth) GetAuthURL(state string) string { return "https://auth.example/" + state }

func (s *stubOAuth) ExchangeCode(_ context.Context, code string) (*oauth.TokenResponse, error) {
	if s.codeErr != nil {
		return nil, s.codeErr
	}
	return &oauth.TokenResponse{AccessToken: "at-" + code}, nil
}

func (s *stubOAuth) GetUserInfo(_ context.Context, _ *oauth.TokenResponse) (*oauth.UserInfo, error) {
	return s.info, nil
}

func newTestIssuer() *utils.TokenIssuer {
	return utils.NewTokenIssuer("test-secret", time.Hour, 24*time.Hour)
}

func TestAuthService_SignInWithGoogle_NewUser(t *testing.T) {
	ctx := context.Background()
	users := &mockUserRepo{}
	analytics := &fakeAnalytics{}
	google := &stubOAuth{name: oauth.ProviderGoogle, info: &oauth.UserInfo{
		ID: "g-123", Email: "sam@example.com", Name: "Sam", Picture: "https://img/sam.png",
	}}

	users.On("Upsert", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.ID == "google:g-123" && u.Username == "sam" && u.AuthProvider == models.AuthProviderGoogle && u.LastLoginAt != nil
	})).Return(true, nil)
	users.On("GetByID", ctx, "google:g-123").Return(&models.User{
		ID: "google:g-123", Username: "sam", DisplayName: "Sam", Email: "sam@example.com", UserType: models.UserTypeMember,
	}, nil)

	svc := NewAuthService(users, []oauth.OAuthProvider{google}, nil, newTestIssuer(), analytics, logger.NewNop())

	result, err := svc.SignInWithGoogle(ctx, "code")

	require.NoError(t, err)
	assert.True(t, result.IsNewUser)
	assert.Equal(t, "google:g-123", result.User.ID)
	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.NotEmpty(t, result.Tokens.RefreshToken)

	events := analytics.Events()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventSignUp, events[0].Name)
	assert.Equal(t, "google", events[0].Params["method"])

	principal, err := svc.VerifyToken(ctx, result.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "google:g-123", principal.UserID)
	assert.Equal(t, string(models.UserTypeMember), principal.UserType)
}

func TestAuthService_SignInWithApple_UsesClientName(t *testing.T) {
	ctx := context.Background()
	users := &mockUserRepo{}
	analytics := &fakeAnalytics{}
	apple := &stubOAuth{name: oauth.ProviderApple, info: &oauth.UserInfo{ID: "a-1", Email: "relay@privaterelay.appleid.com"}}

	users.On("Upsert", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.DisplayName == "Pat Lee"
	})).Return(false, nil)
	users.On("GetByID", ctx, "apple:a-1").Return(nil, errStore)

	svc := NewAuthService(users, []oauth.OAuthProvider{apple}, nil, newTestIssuer(), analytics, logger.NewNop())

	result, err := svc.SignInWithApple(ctx, "code", "Pat Lee")

	require.NoError(t, err)
	assert.False(t, result.IsNewUser)
	assert.Equal(t, "Pat Lee", result.User.DisplayName)
	require.Len(t, analytics.Events(), 1)
	assert.Equal(t, models.EventLogin, analytics.Events()[0].Name)
}

func TestAuthService_SignIn_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("provider not configured", func(t *testing.T) {
		svc := NewAuthService(&mockUserRepo{}, nil, nil, newTestIssuer(), &fakeAnalytics{}, logger.NewNop())
		_, err := svc.SignInWithGoogle(ctx, "code")
		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	})

	t.Run("bad code", func(t *testing.T) {
		google := &stubOAuth{name: oauth.ProviderGoogle, codeErr: errors.New("invalid_grant")}
		users := &mockUserRepo{}
		svc := NewAuthService(users, []oauth.OAuthProvider{google}, nil, newTestIssuer(), &fakeAnalytics{}, logger.NewNop())

		_, err := svc.SignInWithGoogle(ctx, "code")

		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
		users.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("firebase not configured", func(t *testing.T) {
		svc := NewAuthService(&mockUserRepo{}, nil, nil, newTestIssuer(), &fakeAnalytics{}, logger.NewNop())
		_, err := svc.SignInWithFirebase(ctx, "id-token")
		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	})

	t.Run("firebase token rejected", func(t *testing.T) {
		verifier := &stubVerifier{err: errors.New("expired")}
		svc := NewAuthService(&mockUserRepo{}, nil, verifier, newTestIssuer(), &fakeAnalytics{}, logger.NewNop())
		_, err := svc.SignInWithFirebase(ctx, "id-token")
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}

func TestAuthService_SignInWithFirebase(t *testing.T) {
	ctx := context.Background()
	users := &mockUserRepo{}
	verifier := &stubVerifier{identity: &firebaseauth.Identity{UID: "fb-uid", Email: "jo@example.com", Name: "Jo"}}

	users.On("Upsert", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.ID == "fb-uid" && u.AuthProvider == models.AuthProviderFirebase
	})).Return(true, nil)
	users.On("GetByID", ctx, "fb-uid").Return(&models.User{ID: "fb-uid", UserType: models.UserTypeHandicapper}, nil)

	svc := NewAuthService(users, nil, verifier, newTestIssuer(), &fakeAnalytics{}, logger.NewNop())

	result, err := svc.SignInWithFirebase(ctx, "id-token")

	require.NoError(t, err)
	assert.Equal(t, "fb-uid", result.User.ID)
	assert.True(t, result.IsNewUser)
}

func TestAuthService_VerifyToken(t *testing.T) {
	ctx := context.Background()
	issuer := newTestIssuer()

	t.Run("falls back to firebase", func(t *testing.T) {
		verifier := &stubVerifier{identity: &firebaseauth.Identity{UID: "fb-uid", Email: "jo@example.com"}}
		svc := NewAuthService(&mockUserRepo{}, nil, verifier, issuer, &fakeAnalytics{}, logger.NewNop())

		principal, err := svc.VerifyToken(ctx, "firebase-id-token")

		require.NoError(t, err)
		assert.Equal(t, "fb-uid", principal.UserID)
		assert.Equal(t, string(models.UserTypeMember), principal.UserType)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		svc := NewAuthService(&mockUserRepo{}, nil, nil, issuer, &fakeAnalytics{}, logger.NewNop())
		pair, err := issuer.GenerateTokenPair("u1", "member", "")
		require.NoError(t, err)

		_, err = svc.VerifyToken(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("refresh issues a new pair", func(t *testing.T) {
		svc := NewAuthService(&mockUserRepo{}, nil, nil, issuer, &fakeAnalytics{}, logger.NewNop())
		pair, err := issuer.GenerateTokenPair("u1", "member", "")
		require.NoError(t, err)

		next, err := svc.RefreshToken(ctx, pair.RefreshToken)
		require.NoError(t, err)

		principal, err := svc.VerifyToken(ctx, next.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "u1", principal.UserID)
	})
}
