package oauth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newAppleProvider(t *testing.T) (*AppleOAuthProvider, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return NewAppleOAuthProviderWithKey("com.handicapper.app", "TEAM123", "KEY123", key, ""), key
}

func TestAppleOAuthProvider_ExchangeAndUserInfo(t *testing.T) {
	provider, key := newAppleProvider(t)

	idToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":            "apple-user-1",
		"email":          "pat@privaterelay.appleid.com",
		"email_verified": "true",
	}).SignedString([]byte("unused"))
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "auth-code", r.PostForm.Get("code"))
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))

		secret, err := jwt.Parse(r.PostForm.Get("client_secret"), func(*jwt.Token) (interface{}, error) {
			return &key.PublicKey, nil
		}, jwt.WithValidMethods([]string{"ES256"}))
		if assert.NoError(t, err) {
			assert.Equal(t, "KEY123", secret.Header["kid"])
		}

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "at",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"id_token":     idToken,
		})
	}))
	defer server.Close()
	provider.tokenURL = server.URL

	token, err := provider.ExchangeCode(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "at", token.AccessToken)

	info, err := provider.GetUserInfo(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "apple-user-1", info.ID)
	assert.True(t, info.EmailVerified)
	assert.Equal(t, ProviderApple, info.Provider)
}

func TestAppleOAuthProvider_ExchangeError(t *testing.T) {
	provider, _ := newAppleProvider(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer server.Close()
	provider.tokenURL = server.URL

	_, err := provider.ExchangeCode(context.Background(), "expired")

	assert.ErrorContains(t, err, "invalid_grant")
}

func TestAppleOAuthProvider_MissingIDToken(t *testing.T) {
	provider, _ := newAppleProvider(t)

	_, err := provider.GetUserInfo(context.Background(), &TokenResponse{AccessToken: "at"})

	assert.Error(t, err)
}

func TestGoogleOAuthProvider_ExchangeAndUserInfo(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"goog-at","token_type":"Bearer","expires_in":3600,"id_token":"idt"}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer goog-at", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":"g-1","email":"pat@example.com","verified_email":true,"name":"Pat","picture":"https://img/p.png"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	provider := NewGoogleOAuthProvider("client", "secret", "https://app/callback", nil)
	provider.config.Endpoint = oauth2.Endpoint{TokenURL: server.URL + "/token", AuthURL: server.URL + "/auth"}
	provider.userInfoURL = server.URL + "/userinfo"

	token, err := provider.ExchangeCode(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, "idt", token.IDToken)

	info, err := provider.GetUserInfo(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "g-1", info.ID)
	assert.Equal(t, "Pat", info.Name)
	assert.Equal(t, ProviderGoogle, info.Provider)
}

func TestClaimBool(t *testing.T) {
	assert.True(t, claimBool(true))
	assert.True(t, claimBool("true"))
	assert.False(t, claimBool("false"))
	assert.False(t, claimBool(nil))
}
