package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type fakeToken struct {
	claims map[string]interface{}
}

func (f *fakeToken) Claims(v interface{}) error {
	m, ok := v.(*map[string]interface{})
	if !ok {
		return errors.New("unsupported claims target")
	}
	*m = f.claims
	return nil
}

type fakeVerifier struct {
	token Token
	err   error
}

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (Token, error) {
	return f.token, f.err
}

func newAuthRouter(ver Verifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthMiddleware(ver), func(c *gin.Context) {
		claims, _ := c.Get("claims")
		cm := claims.(map[string]interface{})
		c.JSON(http.StatusOK, gin.H{"sub": cm["sub"]})
	})
	return r
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	r := newAuthRouter(&fakeVerifier{token: &fakeToken{}})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	r := newAuthRouter(&fakeVerifier{token: &fakeToken{}})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_VerifierRejects(t *testing.T) {
	r := newAuthRouter(&fakeVerifier{err: errors.New("expired")})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "invalid token")
}

func TestAuthMiddleware_ValidTokenSetsClaims(t *testing.T) {
	ver := &fakeVerifier{token: &fakeToken{claims: map[string]interface{}{"sub": "ana"}}}
	r := newAuthRouter(ver)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"sub":"ana"`)
}
