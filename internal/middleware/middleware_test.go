package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"goride-ledger/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/check", append(handlers, func(c *gin.Context) {
		userID, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID.Hex(), "user_type": c.GetString("user_type")})
	})...)
	return router
}

func get(router *gin.Engine, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/check", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func bearer(t *testing.T, userID primitive.ObjectID, userType string, ttl time.Duration) map[string]string {
	t.Helper()
	token, err := utils.GenerateAccessToken(userID, userType, testSecret, ttl)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestAuthRequired(t *testing.T) {
	router := newRouter(AuthRequired(testSecret))
	userID := primitive.NewObjectID()

	w := get(router, bearer(t, userID, UserTypePassenger, time.Hour))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.Hex())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	assert.Equal(t, http.StatusUnauthorized, get(router, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, map[string]string{"Authorization": "Token abc"}).Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, bearer(t, userID, UserTypePassenger, -time.Minute)).Code)

	forged, err := utils.GenerateAccessToken(userID, UserTypeAdmin, "other-secret", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(router, map[string]string{"Authorization": "Bearer " + forged}).Code)
}

func TestUserTypeGuards(t *testing.T) {
	driverOnly := newRouter(AuthRequired(testSecret), DriverRequired())
	adminOnly := newRouter(AuthRequired(testSecret), AdminRequired())
	userID := primitive.NewObjectID()

	assert.Equal(t, http.StatusOK, get(driverOnly, bearer(t, userID, UserTypeDriver, time.Hour)).Code)
	assert.Equal(t, http.StatusForbidden, get(driverOnly, bearer(t, userID, UserTypePassenger, time.Hour)).Code)
	assert.Equal(t, http.StatusOK, get(adminOnly, bearer(t, userID, UserTypeAdmin, time.Hour)).Code)
	assert.Equal(t, http.StatusForbidden, get(adminOnly, bearer(t, userID, UserTypeDriver, time.Hour)).Code)
}

func TestRequestIDIsPropagated(t *testing.T) {
	router := newRouter()
	w := get(router, map[string]string{"X-Request-ID": "req-42"})
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}

func TestCORSMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(CORSMiddleware([]string{"https://app.goride.mn"}))
	router.GET("/check", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/check", nil)
	req.Header.Set("Origin", "https://app.goride.mn")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.goride.mn", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/check", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
