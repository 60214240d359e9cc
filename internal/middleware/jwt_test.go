package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rahi-Raushan/stu-mag-api/internal/models"
	"github.com/Rahi-Raushan/stu-mag-api/internal/service"
)

const jwtTestSecret = "middleware-test-secret"

func signTestToken(t *testing.T, secret string, expiresIn time.Duration) string {
	t.Helper()
	now := time.Now().UTC()
	claims := &models.JWTClaims{
		AccountID: "acc-1",
		Role:      models.RoleStudent,
		Email:     "rahul@example.com",
		Name:      "Rahul Sharma",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "acc-1",
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func runJWT(t *testing.T, authorization string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/students/profile", nil)
	if authorization != "" {
		c.Request.Header.Set("Authorization", authorization)
	}

	authService := service.NewAuthService(nil, nil, nil, service.AuthConfig{
		TokenSecret: jwtTestSecret,
		TokenExpiry: time.Hour,
	})

	handlers := gin.HandlersChain{JWT(authService), func(c *gin.Context) {
		c.Status(http.StatusOK)
	}}
	for _, h := range handlers {
		if c.IsAborted() {
			break
		}
		h(c)
	}
	return rec, c
}

func TestJWTRejectsMissingHeader(t *testing.T) {
	rec, _ := runJWT(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTRejectsMalformedHeader(t *testing.T) {
	rec, _ := runJWT(t, "Token abc.def.ghi")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTRejectsForgedToken(t *testing.T) {
	rec, _ := runJWT(t, "Bearer "+signTestToken(t, "other-secret", time.Hour))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	rec, _ := runJWT(t, "Bearer "+signTestToken(t, jwtTestSecret, -time.Minute))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTStoresClaimsInContext(t *testing.T) {
	rec, c := runJWT(t, "Bearer "+signTestToken(t, jwtTestSecret, time.Hour))
	require.Equal(t, http.StatusOK, rec.Code)

	value, ok := c.Get(ContextUserKey)
	require.True(t, ok)
	claims, ok := value.(*models.JWTClaims)
	require.True(t, ok)
	assert.Equal(t, "acc-1", claims.AccountID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}
