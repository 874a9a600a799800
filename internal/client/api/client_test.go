package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CapturesSessionCookie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			http.SetCookie(w, &http.Cookie{Name: "jwt", Value: "tok-42", HttpOnly: true})
			json.NewEncoder(w).Encode(User{ID: "u-1", Email: "jane@x.com"})
		case "/api/auth/check":
			ck, err := r.Cookie("jwt")
			if err != nil || ck.Value != "tok-42" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"message": "unauthenticated"})
				return
			}
			json.NewEncoder(w).Encode(User{ID: "u-1", Email: "jane@x.com"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	_, err := c.Check(ctx)
	require.Error(t, err, "no token yet")

	user, err := c.Login(ctx, "jane@x.com", "Passw0rd1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, "tok-42", c.Token(), "cookie must be captured from the login response")

	// The captured cookie is replayed on protected calls.
	user, err = c.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
}

func TestClient_DecodesErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "User already exists"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Signup(context.Background(), "Jane Doe", "jane@x.com", "Passw0rd1")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "error should carry the HTTP status")
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "User already exists", apiErr.Message)
}

func TestClient_LogoutDropsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "jwt", Value: "", MaxAge: -1})
		json.NewEncoder(w).Encode(map[string]string{"message": "Logged out successfully"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetToken("tok-42")

	require.NoError(t, c.Logout(context.Background()))
	assert.Empty(t, c.Token())
}

func TestClient_NonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.ListUsers(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream exploded", apiErr.Message)
}
