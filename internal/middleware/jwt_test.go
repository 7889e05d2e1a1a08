package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func protectedRouter(requiredRole string, handlerRan *bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", RequireAuthWithRole(requiredRole), func(c *gin.Context) {
		*handlerRan = true
		c.JSON(http.StatusOK, gin.H{"data": "ok"})
	})
	return r
}

func doGet(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoleGateBlocksWrongRoleBeforeHandler(t *testing.T) {
	var handlerRan bool
	r := protectedRouter("admin", &handlerRan)

	token, err := GenerateToken(7, "class")
	require.NoError(t, err)

	w := doGet(r, token)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "Insufficient permissions")
	require.False(t, handlerRan)
}

func TestRoleGateAdmitsMatchingRole(t *testing.T) {
	var handlerRan bool
	r := protectedRouter("admin", &handlerRan)

	token, err := GenerateToken(7, "admin")
	require.NoError(t, err)

	w := doGet(r, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, handlerRan)
}

func TestRoleGateRejectsMissingAndBadTokens(t *testing.T) {
	var handlerRan bool
	r := protectedRouter("admin", &handlerRan)

	w := doGet(r, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doGet(r, "not-a-token")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.False(t, handlerRan)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42, "class")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, uint(42), claims.UserID)
	require.Equal(t, "class", claims.Role)
}
