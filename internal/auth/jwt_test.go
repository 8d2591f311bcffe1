package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-key"

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testKey))
	require.NoError(t, err)
	return token
}

func TestDecode(t *testing.T) {
	future := time.Now().Add(time.Hour).Unix()
	past := time.Now().Add(-time.Hour).Unix()

	tests := []struct {
		name      string
		token     string
		wantErr   error
		wantCheck error
		wantID    string
	}{
		{name: "garbage", token: "not-a-token", wantErr: ErrMalformed},
		{name: "bad segments", token: "a.b.c", wantErr: ErrMalformed},
		{name: "sub only", token: sign(t, jwt.MapClaims{"sub": "t1", "exp": future}), wantID: "t1"},
		{name: "userId wins", token: sign(t, jwt.MapClaims{"sub": "t1", "userId": "u9", "exp": future}), wantID: "u9"},
		{name: "expired", token: sign(t, jwt.MapClaims{"sub": "t1", "exp": past}), wantID: "t1", wantCheck: ErrExpired},
		{name: "no exp", token: sign(t, jwt.MapClaims{"sub": "t1"}), wantID: "t1", wantCheck: ErrNoExpiry},
		{name: "no subject", token: sign(t, jwt.MapClaims{"exp": future}), wantCheck: ErrNoSubject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := Decode(tt.token)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, claims.Identity())
			assert.Equal(t, tt.wantCheck, claims.Check(time.Now()))
		})
	}
}

func TestClaims_DisplayName(t *testing.T) {
	assert.Equal(t, "Aziz Karimov", Claims{Name: "Aziz", Lastname: "Karimov"}.DisplayName("O'qituvchi"))
	assert.Equal(t, "Aziz", Claims{Name: "Aziz"}.DisplayName("O'qituvchi"))
	assert.Equal(t, "O'qituvchi", Claims{}.DisplayName("O'qituvchi"))
}

func TestIssueParse(t *testing.T) {
	token, exp, err := Issue("t1", "Aziz", "Karimov", testKey, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := Parse(token, testKey)
	require.NoError(t, err)
	assert.Equal(t, "t1", claims.Identity())
	assert.Equal(t, "Aziz Karimov", claims.DisplayName(""))

	_, err = Parse(token, "other-key")
	assert.Error(t, err)

	decoded, err := Decode(token)
	require.NoError(t, err)
	assert.NoError(t, decoded.Check(time.Now()))
}

func TestBearerAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", BearerAuth(testKey), func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		require.True(t, ok)
		c.String(http.StatusOK, claims.Identity())
	})
	token, _, err := Issue("t1", "", "", testKey, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{name: "missing", wantCode: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", wantCode: http.StatusUnauthorized},
		{name: "invalid", header: "Bearer abc.def.ghi", wantCode: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + token, wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
