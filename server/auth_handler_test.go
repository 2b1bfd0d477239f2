package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"tezbeat/core/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddress = "tz1VSUr8wwNhLAzempoch5d6hLRiTh8Cjcjb"

func protectedEcho(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		address, err := GetAddressFromContext(r.Context())
		require.NoError(t, err)
		w.Write([]byte(address))
	}
}

func TestAuthMiddleware(t *testing.T) {
	auth.SetSecret("test-secret")
	h := &APIHandler{}
	handler := h.AuthMiddleware(protectedEcho(t))

	token, err := auth.GenerateToken(testAddress)
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/library", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, testAddress, w.Body.String())
	})

	t.Run("missing header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/library", nil)
		w := httptest.NewRecorder()
		handler(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/library", nil)
		r.Header.Set("Authorization", token)
		w := httptest.NewRecorder()
		handler(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/library", nil)
		r.Header.Set("Authorization", "Bearer nope")
		w := httptest.NewRecorder()
		handler(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestQueryAuthMiddleware(t *testing.T) {
	auth.SetSecret("test-secret")
	h := &APIHandler{}
	handler := h.QueryAuthMiddleware(protectedEcho(t))

	token, err := auth.GenerateToken(testAddress)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/ws/player?token="+token, nil)
	w := httptest.NewRecorder()
	handler(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testAddress, w.Body.String())

	r = httptest.NewRequest(http.MethodGet, "/ws/player", nil)
	w = httptest.NewRecorder()
	handler(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshGuard_StaleGenerationLoses(t *testing.T) {
	g := newRefreshGuard()

	first := g.begin(testAddress)
	second := g.begin(testAddress)

	assert.NotEqual(t, first, g.current(testAddress))
	assert.Equal(t, second, g.current(testAddress))
}
