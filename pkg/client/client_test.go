package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{"code": code, "message": message, "status": status},
	})
}

func TestClientLoginInitializesSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "rahul@example.com", body["email"])

		writeEnvelope(w, http.StatusOK, AuthResult{
			Token:   "token-1",
			Account: Identity{ID: "acc-1", Name: "Rahul Sharma", Role: "student"},
		})
	}))
	defer server.Close()

	session := NewSession()
	api := New(server.URL, session)

	result, err := api.Login(context.Background(), "rahul@example.com", "password")
	require.NoError(t, err)
	assert.Equal(t, "token-1", result.Token)

	assert.True(t, session.Authenticated())
	assert.Equal(t, "token-1", session.Token())
	identity, ok := session.Identity()
	require.True(t, ok)
	assert.Equal(t, "acc-1", identity.ID)
}

func TestClientAttachesBearerToken(t *testing.T) {
	var seenAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAuth = r.Header.Get("Authorization")
		writeEnvelope(w, http.StatusOK, []Course{{ID: "c1", Title: "Algorithms"}})
	}))
	defer server.Close()

	session := NewSession()
	session.Set("token-1", Identity{ID: "acc-1"})
	api := New(server.URL, session)

	courses, err := api.Courses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Bearer token-1", seenAuth)
}

func TestClientUnauthorizedClearsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
	}))
	defer server.Close()

	session := NewSession()
	session.Set("stale", Identity{ID: "acc-1"})
	api := New(server.URL, session)

	_, err := api.Profile(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsUnauthorized())
	assert.False(t, session.Authenticated())
}

func TestClientSurfacesServerMessageVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusConflict, "CONFLICT", "request already pending for this course")
	}))
	defer server.Close()

	api := New(server.URL, NewSession())

	_, err := api.SubmitRequest(context.Background(), "course-1")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "request already pending for this course", apiErr.Message)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
}

func TestClientFallbackMessageWhenEnvelopeMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	api := New(server.URL, NewSession())

	_, err := api.Courses(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "failed to load courses", apiErr.Message)
}

func TestClientDeleteHandlesNoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	api := New(server.URL, NewSession())

	require.NoError(t, api.DeleteCourse(context.Background(), "c1"))
}

func TestClientLogoutTearsDownSession(t *testing.T) {
	session := NewSession()
	session.Set("token-1", Identity{ID: "acc-1"})
	api := New("http://unused", session)

	api.Logout()
	assert.False(t, session.Authenticated())
	_, ok := session.Identity()
	assert.False(t, ok)
}
