package oauth

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	appleAuthURL  = "https://appleid.apple.com/auth/authorize"
	appleTokenURL = "https://appleid.apple.com/auth/token"
	appleAudience = "https://appleid.apple.com"
)

type AppleOAuthProvider struct {
	clientID    string
	teamID      string
	keyID       string
	privateKey  *ecdsa.PrivateKey
	redirectURL string
	tokenURL    string
	httpClient  *http.Client
}

func NewAppleOAuthProvider(clientID, teamID, keyID, keyFile, redirectURL string) (*AppleOAuthProvider, error) {
	keyData, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	privateKey, err := jwt.ParseECPrivateKeyFromPEM(keyData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return NewAppleOAuthProviderWithKey(clientID, teamID, keyID, privateKey, redirectURL), nil
}

func NewAppleOAuthProviderWithKey(clientID, teamID, keyID string, key *ecdsa.PrivateKey, redirectURL string) *AppleOAuthProvider {
	return &AppleOAuthProvider{
		clientID:    clientID,
		teamID:      teamID,
		keyID:       keyID,
		privateKey:  key,
		redirectURL: redirectURL,
		tokenURL:    appleTokenURL,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (a *AppleOAuthProvider) Name() string {
	return ProviderApple
}

func (a *AppleOAuthProvider) GetAuthURL(state string) string {
	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", a.clientID)
	params.Set("redirect_uri", a.redirectURL)
	params.Set("scope", "name email")
	params.Set("state", state)
	params.Set("response_mode", "form_post")

	return appleAuthURL + "?" + params.Encode()
}

func (a *AppleOAuthProvider) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	clientSecret, err := a.generateClientSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate client secret: %w", err)
	}

	data := url.Values{}
	data.Set("client_id", a.clientID)
	data.Set("client_secret", clientSecret)
	data.Set("code", code)
	data.Set("grant_type", "authorization_code")
	if a.redirectURL != "" {
		data.Set("redirect_uri", a.redirectURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("apple API error: %s", string(body))
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &tokenResp, nil
}

// GetUserInfo reads the identity out of the id_token returned by the token
// endpoint. Apple has no user info endpoint. The token was received directly
// from Apple over TLS, so its signature is not re-verified here.
func (a *AppleOAuthProvider) GetUserInfo(ctx context.Context, token *TokenResponse) (*UserInfo, error) {
	if token.IDToken == "" {
		return nil, fmt.Errorf("apple token response has no id_token")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token.IDToken, claims); err != nil {
		return nil, fmt.Errorf("failed to parse id_token: %w", err)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("apple id_token has no subject")
	}
	email, _ := claims["email"].(string)

	return &UserInfo{
		ID:            sub,
		Email:         email,
		EmailVerified: claimBool(claims["email_verified"]),
		Provider:      ProviderApple,
	}, nil
}

func (a *AppleOAuthProvider) generateClientSecret() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": a.teamID,
		"iat": now.Unix(),
		"exp": now.Add(5 * time.Minute).Unix(),
		"aud": appleAudience,
		"sub": a.clientID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	token.Header["kid"] = a.keyID

	return token.SignedString(a.privateKey)
}

// Apple sends email_verified as either a bool or the string "true".
func claimBool(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	}
	return false
}
