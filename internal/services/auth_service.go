package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"handicapper/internal/models"
	"handicapper/internal/repositories/interfaces"
	"handicapper/internal/utils"
	"handicapper/pkg/apperrors"
	"handicapper/pkg/firebaseauth"
	"handicapper/pkg/logger"
	"handicapper/pkg/oauth"
)

type AuthService interface {
	// Sign-in
	SignInWithGoogle(ctx context.Context, code string) (*AuthResult, error)
	SignInWithApple(ctx context.Context, code, name string) (*AuthResult, error)
	SignInWithFirebase(ctx context.Context, idToken string) (*AuthResult, error)

	// Session
	RefreshToken(ctx context.Context, refreshToken string) (*utils.TokenPair, error)
	VerifyToken(ctx context.Context, token string) (*Principal, error)
}

// IdentityVerifier checks ID tokens minted by the mobile app's auth
// provider.
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Identity, error)
}

type AuthResult struct {
	User      *models.User     `json:"user"`
	Tokens    *utils.TokenPair `json:"tokens"`
	IsNewUser bool             `json:"is_new_user"`
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID   string
	UserType string
	Email    string
}

type authService struct {
	userRepo         interfaces.UserRepository
	providers        map[string]oauth.OAuthProvider
	verifier         IdentityVerifier
	tokens           *utils.TokenIssuer
	analyticsService AnalyticsService
	logger           *logger.Logger
}

// NewAuthService wires the sign-in providers. verifier may be nil, in which
// case only session tokens are accepted.
func NewAuthService(
	userRepo interfaces.UserRepository,
	providers []oauth.OAuthProvider,
	verifier IdentityVerifier,
	tokens *utils.TokenIssuer,
	analyticsService AnalyticsService,
	log *logger.Logger,
) AuthService {
	byName := make(map[string]oauth.OAuthProvider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}

	return &authService{
		userRepo:         userRepo,
		providers:        byName,
		verifier:         verifier,
		tokens:           tokens,
		analyticsService: analyticsService,
		logger:           log,
	}
}

func (s *authService) SignInWithGoogle(ctx context.Context, code string) (*AuthResult, error) {
	return s.signInWithCode(ctx, oauth.ProviderGoogle, code, "")
}

// SignInWithApple accepts the user's name separately because Apple only
// returns it to the client, and only on the first sign-in.
func (s *authService) SignInWithApple(ctx context.Context, code, name string) (*AuthResult, error) {
	return s.signInWithCode(ctx, oauth.ProviderApple, code, name)
}

func (s *authService) signInWithCode(ctx context.Context, provider, code, name string) (*AuthResult, error) {
	p, ok := s.providers[provider]
	if !ok {
		return nil, apperrors.Unavailable(provider + " sign-in is not configured")
	}

	token, err := p.ExchangeCode(ctx, code)
	if err != nil {
		s.logger.LogSecurityEvent("oauth_exchange_failed", "low", map[string]interface{}{
			"provider": provider,
			"error":    err.Error(),
		})
		return nil, apperrors.Unauthorized("Sign-in failed")
	}

	info, err := p.GetUserInfo(ctx, token)
	if err != nil {
		return nil, apperrors.Unauthorized("Sign-in failed")
	}
	if info.Name == "" {
		info.Name = name
	}

	user := &models.User{
		ID:           provider + ":" + info.ID,
		Email:        info.Email,
		DisplayName:  info.Name,
		AvatarURL:    info.Picture,
		AuthProvider: models.AuthProvider(provider),
	}
	return s.completeSignIn(ctx, user, provider)
}

// SignInWithFirebase exchanges a Firebase ID token for a session.
func (s *authService) SignInWithFirebase(ctx context.Context, idToken string) (*AuthResult, error) {
	if s.verifier == nil {
		return nil, apperrors.Unavailable("Firebase sign-in is not configured")
	}

	identity, err := s.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.logger.LogSecurityEvent("firebase_token_rejected", "low", map[string]interface{}{"error": err.Error()})
		return nil, apperrors.Unauthorized("Invalid ID token")
	}

	user := &models.User{
		ID:           identity.UID,
		Email:        identity.Email,
		DisplayName:  identity.Name,
		AvatarURL:    identity.Picture,
		AuthProvider: models.AuthProviderFirebase,
	}
	return s.completeSignIn(ctx, user, string(models.AuthProviderFirebase))
}

func (s *authService) completeSignIn(ctx context.Context, user *models.User, method string) (*AuthResult, error) {
	now := time.Now().UTC()
	user.LastLoginAt = &now
	user.Username = usernameFromEmail(user.Email)
	user.Normalize()

	created, err := s.userRepo.Upsert(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	// The stored profile may carry edits the provider does not know about.
	stored, err := s.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		s.logger.WithError(err).WithUserID(user.ID).Warn("Failed to reload user after sign-in")
		stored = user
	}

	pair, err := s.tokens.GenerateTokenPair(stored.ID, string(stored.UserType), stored.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	if created {
		s.analyticsService.LogSignUp(ctx, stored.ID, method)
	} else {
		s.analyticsService.LogLogin(ctx, stored.ID, method)
	}
	s.logger.LogUserAction(stored.ID, "sign_in", map[string]interface{}{
		"method":   method,
		"new_user": created,
	})

	return &AuthResult{User: stored, Tokens: pair, IsNewUser: created}, nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*utils.TokenPair, error) {
	pair, err := s.tokens.RefreshAccessToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("Invalid refresh token")
	}
	return pair, nil
}

// VerifyToken accepts a session access token and, when a verifier is
// configured, a Firebase ID token.
func (s *authService) VerifyToken(ctx context.Context, token string) (*Principal, error) {
	claims, err := s.tokens.ValidateAccessToken(token)
	if err == nil {
		return &Principal{UserID: claims.UserID, UserType: claims.UserType, Email: claims.Email}, nil
	}

	if s.verifier != nil {
		identity, ferr := s.verifier.VerifyIDToken(ctx, token)
		if ferr == nil {
			return &Principal{UserID: identity.UID, UserType: string(models.UserTypeMember), Email: identity.Email}, nil
		}
	}

	return nil, apperrors.Unauthorized(utils.ErrInvalidToken)
}

func usernameFromEmail(email string) string {
	local, _, ok := strings.Cut(email, "@")
	if !ok {
		return ""
	}
	return local
}
