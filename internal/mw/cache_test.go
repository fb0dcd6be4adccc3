package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCachedRouter(handlerCalls *int, status int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	store := cache.New(time.Minute, time.Minute)

	r := gin.New()
	r.Use(Cache(store, time.Minute))
	handler := func(c *gin.Context) {
		*handlerCalls++
		c.Header("X-Handler", "fresh")
		c.JSON(status, gin.H{"calls": *handlerCalls})
	}
	r.GET("/cached", handler)
	r.POST("/cached", handler)
	return r
}

func get(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestCache_ReplaysSuccessfulGets(t *testing.T) {
	calls := 0
	r := newCachedRouter(&calls, http.StatusOK)

	first := get(r, http.MethodGet, "/cached")
	second := get(r, http.MethodGet, "/cached")

	assert.Equal(t, 1, calls, "second request must be served from the cache")
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "fresh", second.Header().Get("X-Handler"))
}

func TestCache_KeysByRequestURI(t *testing.T) {
	calls := 0
	r := newCachedRouter(&calls, http.StatusOK)

	require.Equal(t, http.StatusOK, get(r, http.MethodGet, "/cached?a=1").Code)
	require.Equal(t, http.StatusOK, get(r, http.MethodGet, "/cached?a=2").Code)
	assert.Equal(t, 2, calls)
}

func TestCache_SkipsNonGetRequests(t *testing.T) {
	calls := 0
	r := newCachedRouter(&calls, http.StatusOK)

	get(r, http.MethodPost, "/cached")
	get(r, http.MethodPost, "/cached")
	assert.Equal(t, 2, calls)
}

func TestCache_DoesNotStoreFailures(t *testing.T) {
	calls := 0
	r := newCachedRouter(&calls, http.StatusBadGateway)

	get(r, http.MethodGet, "/cached")
	get(r, http.MethodGet, "/cached")
	assert.Equal(t, 2, calls)
}
