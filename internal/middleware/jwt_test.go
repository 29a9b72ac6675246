package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"swapmeet/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func resetSecret(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { SetSecret("swapmeet_secret_change_me") })
}

func TestTokenRoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateToken(userID)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "swapmeet-api", claims.Issuer)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestConfiguredSecretSignsTokens(t *testing.T) {
	resetSecret(t)
	t.Setenv("DB_TYPE", "memory")
	t.Setenv("JWT_SECRET", "secret-from-config")

	cfg, err := config.LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "secret-from-config", cfg.JWTSecret)

	SetSecret(cfg.JWTSecret)

	token, err := GenerateToken(uuid.New())
	assert.NoError(t, err)

	// The token must verify against the configured secret itself, not
	// just against whatever the package happens to hold internally.
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	assert.NoError(t, err)
	assert.True(t, parsed.Valid)
}

func TestSetSecretRotatesSigningKey(t *testing.T) {
	resetSecret(t)

	userID := uuid.New()
	oldToken, err := GenerateToken(userID)
	assert.NoError(t, err)

	SetSecret("rotated-secret")

	// Tokens signed under the previous secret stop verifying.
	_, err = ValidateToken(oldToken)
	assert.Error(t, err)

	// New tokens round-trip under the new secret.
	newToken, err := GenerateToken(userID)
	assert.NoError(t, err)
	claims, err := ValidateToken(newToken)
	assert.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)

	// The empty string never clears an installed secret.
	SetSecret("")
	_, err = ValidateToken(newToken)
	assert.NoError(t, err)
}

func TestJWTMiddlewareRejectsTokenWithoutExpiry(t *testing.T) {
	// Correctly signed, but carrying no exp claim at all.
	claims := &Claims{UserID: uuid.New()}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret)
	assert.NoError(t, err)

	handler := ApplyJWTMiddleware(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for a token without expiry")
	}, "/messages/send", nil)

	req := httptest.NewRequest(http.MethodPost, "/messages/send", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	recorder := httptest.NewRecorder()
	handler(recorder, req)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestJWTMiddlewareProtectedRoute(t *testing.T) {
	userID := uuid.New()
	token, err := GenerateToken(userID)
	assert.NoError(t, err)

	var touched []uuid.UUID
	var seenCtxID uuid.UUID
	handler := ApplyJWTMiddleware(func(w http.ResponseWriter, r *http.Request) {
		seenCtxID, _ = GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}, "/messages/send", func(id uuid.UUID) {
		touched = append(touched, id)
	})

	// Missing header.
	recorder := httptest.NewRecorder()
	handler(recorder, httptest.NewRequest(http.MethodPost, "/messages/send", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Empty(t, touched)

	// Wrong scheme.
	req := httptest.NewRequest(http.MethodPost, "/messages/send", nil)
	req.Header.Set("Authorization", "Basic abc")
	recorder = httptest.NewRecorder()
	handler(recorder, req)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	// Bad token.
	req = httptest.NewRequest(http.MethodPost, "/messages/send", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	recorder = httptest.NewRecorder()
	handler(recorder, req)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Empty(t, touched)

	// Valid token: request passes, context carries the caller, and the
	// activity callback fires.
	req = httptest.NewRequest(http.MethodPost, "/messages/send", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	recorder = httptest.NewRecorder()
	handler(recorder, req)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, userID, seenCtxID)
	assert.Equal(t, []uuid.UUID{userID}, touched)
}

func TestJWTMiddlewareUnprotectedRoute(t *testing.T) {
	called := false
	handler := ApplyJWTMiddleware(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}, "/user/login", func(uuid.UUID) {
		t.Fatal("activity callback must not fire on unprotected routes")
	})

	recorder := httptest.NewRecorder()
	handler(recorder, httptest.NewRequest(http.MethodPost, "/user/login", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, called)
}
