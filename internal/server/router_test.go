package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/auth"
	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/config"
	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/models"
)

type fakeUploader struct {
	fail bool
}

func (f *fakeUploader) Upload(ctx context.Context, data []byte, contentType, folder string) (string, error) {
	if f.fail {
		return "", errors.New("object storage unavailable")
	}
	return "https://cdn.test/" + folder + "/obj", nil
}

func testConfig() config.Config {
	return config.Config{
		Port:         "0",
		DatabaseDSN:  ":memory:",
		JWTSecret:    "test-secret",
		Env:          "dev",
		ClientOrigin: "http://localhost:5173",
		TokenTTLDays: 7,
	}
}

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&models.User{}, &models.Message{}))
	return SetupRouter(testConfig(), gdb, &fakeUploader{}), gdb
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), into))
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range w.Result().Cookies() {
		if ck.Name == auth.CookieName {
			return ck
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func signup(t *testing.T, r *gin.Engine, fullName, email, password string) (map[string]any, *http.Cookie) {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/auth/signup", gin.H{
		"fullName": fullName, "email": email, "password": password,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp map[string]any
	decode(t, w, &resp)
	return resp, sessionCookie(t, w)
}

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSignup(t *testing.T) {
	r, _ := newTestRouter(t)

	resp, ck := signup(t, r, "Jane Doe", "jane@x.com", "Passw0rd1")

	assert.True(t, ck.HttpOnly, "session cookie must be HTTP-only")
	assert.NotEmpty(t, ck.Value)
	assert.NotEmpty(t, resp["token"])

	user, ok := resp["user"].(map[string]any)
	require.True(t, ok, "signup response must carry a user projection")
	assert.Equal(t, "Jane Doe", user["fullName"])
	assert.Equal(t, "jane@x.com", user["email"])
	assert.NotEmpty(t, user["id"])
	// The projection must never include the secret in any spelling.
	for k := range user {
		assert.NotContains(t, []string{"password", "passwordHash", "PasswordHash"}, k)
	}
}

func TestSignup_Duplicate(t *testing.T) {
	r, gdb := newTestRouter(t)
	signup(t, r, "Jane Doe", "jane@x.com", "Passw0rd1")

	w := doJSON(t, r, http.MethodPost, "/api/auth/signup", gin.H{
		"fullName": "Jane Again", "email": "jane@x.com", "password": "Passw0rd1",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]any
	decode(t, w, &body)
	assert.Equal(t, "User already exists", body["message"])

	var count int64
	require.NoError(t, gdb.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSignup_InvalidPayload(t *testing.T) {
	r, _ := newTestRouter(t)
	for name, payload := range map[string]gin.H{
		"missing fullName": {"email": "a@x.com", "password": "Passw0rd1"},
		"missing email":    {"fullName": "A", "password": "Passw0rd1"},
		"missing password": {"fullName": "A", "email": "a@x.com"},
		"short password":   {"fullName": "A", "email": "a@x.com", "password": "abc"},
	} {
		t.Run(name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/auth/signup", payload, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestLogin_SameShapeForBothFailures(t *testing.T) {
	r, _ := newTestRouter(t)
	signup(t, r, "Jane Doe", "jane@x.com", "Passw0rd1")

	wrongPass := doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{"email": "jane@x.com", "password": "wrong"}, nil)
	noUser := doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{"email": "nobody@x.com", "password": "Passw0rd1"}, nil)

	assert.Equal(t, http.StatusBadRequest, wrongPass.Code)
	assert.Equal(t, http.StatusBadRequest, noUser.Code)
	assert.JSONEq(t, wrongPass.Body.String(), noUser.Body.String(),
		"wrong password and unknown email must be indistinguishable")
}

func TestLogin_Success(t *testing.T) {
	r, _ := newTestRouter(t)
	signup(t, r, "Jane Doe", "jane@x.com", "Passw0rd1")

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{"email": "jane@x.com", "password": "Passw0rd1"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	ck := sessionCookie(t, w)
	assert.True(t, ck.HttpOnly)
	assert.NotEmpty(t, ck.Value)

	var user map[string]any
	decode(t, w, &user)
	assert.Equal(t, "jane@x.com", user["email"])
	assert.Contains(t, user, "profilePic")
}

func TestCheck(t *testing.T) {
	r, _ := newTestRouter(t)
	resp, ck := signup(t, r, "Jane Doe", "jane@x.com", "Passw0rd1")
	created := resp["user"].(map[string]any)

	w := doJSON(t, r, http.MethodGet, "/api/auth/check", nil, []*http.Cookie{ck})
	require.Equal(t, http.StatusOK, w.Code)

	var user map[string]any
	decode(t, w, &user)
	assert.Equal(t, created["id"], user["id"], "check must return the token's bound identity")
}

func TestCheck_Unauthenticated(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"no cookie", nil},
		{"garbage token", &http.Cookie{Name: auth.CookieName, Value: "garbage"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cookies []*http.Cookie
			if tt.cookie != nil {
				cookies = append(cookies, tt.cookie)
			}
			w := doJSON(t, r, http.MethodGet, "/api/auth/check", nil, cookies)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestCheck_TamperedAndExpiredTokens(t *testing.T) {
	r, _ := newTestRouter(t)
	_, ck := signup(t, r, "Jane Doe", "jane@x.com", "Passw0rd1")

	tampered := &http.Cookie{Name: auth.CookieName, Value: ck.Value + "x"}
	w := doJSON(t, r, http.MethodGet, "/api/auth/check", nil, []*http.Cookie{tampered})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	expired, err := auth.GenerateToken("some-id", testConfig().JWTSecret, -1)
	require.NoError(t, err)
	w = doJSON(t, r, http.MethodGet, "/api/auth/check", nil, []*http.Cookie{{Name: auth.CookieName, Value: expired}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCheck_UserDeletedOutOfBand(t *testing.T) {
	r, gdb := newTestRouter(t)
	resp, ck := signup(t, r, "Jane Doe", "jane@x.com", "Passw0rd1")
	created := resp["user"].(map[string]any)

	require.NoError(t, gdb.Delete(&models.User{}, "id = ?", created["id"]).Error)

	// The gate itself rejects: the identity no longer resolves.
	w := doJSON(t, r, http.MethodGet, "/api/auth/check", nil, []*http.Cookie{ck})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_ClearsCookie(t *testing.T) {
	r, _ := newTestRouter(t)
	_, _ = signup(t, r, "Jane Doe", "jane@x.com", "Passw0rd1")

	w := doJSON(t, r, http.MethodPost, "/api/auth/logout", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	ck := sessionCookie(t, w)
	assert.Empty(t, ck.Value)
	assert.Negative(t, ck.MaxAge, "logout must expire the cookie immediately")

	// The cleared cookie no longer authenticates.
	w = doJSON(t, r, http.MethodGet, "/api/auth/check", nil, []*http.Cookie{ck})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateProfile(t *testing.T) {
	r, _ := newTestRouter(t)
	_, ck := signup(t, r, "Jane Doe", "jane@x.com", "Passw0rd1")

	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte{0x89, 'P', 'N', 'G'})
	w := doJSON(t, r, http.MethodPut, "/api/auth/update-profile", gin.H{"profilePic": payload}, []*http.Cookie{ck})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var user map[string]any
	decode(t, w, &user)
	assert.Equal(t, "https://cdn.test/chat-app/avatars/obj", user["profilePic"])
}

func TestUpdateProfile_MissingPayload(t *testing.T) {
	r, _ := newTestRouter(t)
	_, ck := signup(t, r, "Jane Doe", "jane@x.com", "Passw0rd1")

	w := doJSON(t, r, http.MethodPut, "/api/auth/update-profile", gin.H{}, []*http.Cookie{ck})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListUsers_ExcludesSelf(t *testing.T) {
	r, _ := newTestRouter(t)
	respA, ckA := signup(t, r, "Alice", "alice@x.com", "Passw0rd1")
	signup(t, r, "Bob", "bob@x.com", "Passw0rd1")
	aliceID := respA["user"].(map[string]any)["id"]

	w := doJSON(t, r, http.MethodGet, "/api/auth/users", nil, []*http.Cookie{ckA})
	require.Equal(t, http.StatusOK, w.Code)

	var users []map[string]any
	decode(t, w, &users)
	require.Len(t, users, 1)
	assert.NotEqual(t, aliceID, users[0]["id"])
	assert.Equal(t, "Bob", users[0]["fullName"])
}

func TestSendAndListMessages(t *testing.T) {
	r, _ := newTestRouter(t)
	respA, ckA := signup(t, r, "Alice", "alice@x.com", "Passw0rd1")
	respB, ckB := signup(t, r, "Bob", "bob@x.com", "Passw0rd1")
	aliceID := respA["user"].(map[string]any)["id"].(string)
	bobID := respB["user"].(map[string]any)["id"].(string)

	w := doJSON(t, r, http.MethodPost, "/api/auth/send/"+bobID, gin.H{"content": "hi bob"}, []*http.Cookie{ckA})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var sent map[string]any
	decode(t, w, &sent)
	assert.Equal(t, aliceID, sent["senderId"])
	assert.Equal(t, bobID, sent["receiverId"])

	w = doJSON(t, r, http.MethodPost, "/api/auth/send/"+aliceID, gin.H{"content": "hi alice"}, []*http.Cookie{ckB})
	require.Equal(t, http.StatusCreated, w.Code)

	// Both participants see the same conversation, oldest first.
	for _, ck := range []*http.Cookie{ckA, ckB} {
		other := bobID
		if ck == ckB {
			other = aliceID
		}
		w = doJSON(t, r, http.MethodGet, "/api/auth/"+other, nil, []*http.Cookie{ck})
		require.Equal(t, http.StatusOK, w.Code)
		var msgs []map[string]any
		decode(t, w, &msgs)
		require.Len(t, msgs, 2)
		assert.Equal(t, "hi bob", msgs[0]["content"])
		assert.Equal(t, "hi alice", msgs[1]["content"])
	}
}

func TestSendMessage_Empty(t *testing.T) {
	r, _ := newTestRouter(t)
	_, ckA := signup(t, r, "Alice", "alice@x.com", "Passw0rd1")
	respB, _ := signup(t, r, "Bob", "bob@x.com", "Passw0rd1")
	bobID := respB["user"].(map[string]any)["id"].(string)

	w := doJSON(t, r, http.MethodPost, "/api/auth/send/"+bobID, gin.H{}, []*http.Cookie{ckA})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendMessage_ImageOnly(t *testing.T) {
	r, _ := newTestRouter(t)
	_, ckA := signup(t, r, "Alice", "alice@x.com", "Passw0rd1")
	respB, _ := signup(t, r, "Bob", "bob@x.com", "Passw0rd1")
	bobID := respB["user"].(map[string]any)["id"].(string)

	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte{0x89, 'P', 'N', 'G'})
	w := doJSON(t, r, http.MethodPost, "/api/auth/send/"+bobID, gin.H{"image": payload}, []*http.Cookie{ckA})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var sent map[string]any
	decode(t, w, &sent)
	assert.Equal(t, "https://cdn.test/chat-app/messages/obj", sent["image"])
}

// TestFullScenario walks the signup → duplicate → bad login → login →
// logout sequence end to end.
func TestFullScenario(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/signup", gin.H{
		"fullName": "Jane Doe", "email": "jane@x.com", "password": "Passw0rd1",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]any
	decode(t, w, &resp)
	assert.Equal(t, "jane@x.com", resp["user"].(map[string]any)["email"])
	sessionCookie(t, w)

	w = doJSON(t, r, http.MethodPost, "/api/auth/signup", gin.H{
		"fullName": "Jane Doe", "email": "jane@x.com", "password": "Passw0rd1",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var dup map[string]any
	decode(t, w, &dup)
	assert.Equal(t, "User already exists", dup["message"])

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{"email": "jane@x.com", "password": "wrong"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{"email": "jane@x.com", "password": "Passw0rd1"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	loginCk := sessionCookie(t, w)

	w = doJSON(t, r, http.MethodPost, "/api/auth/logout", nil, []*http.Cookie{loginCk})
	require.Equal(t, http.StatusOK, w.Code)
	cleared := sessionCookie(t, w)
	assert.Empty(t, cleared.Value)

	w = doJSON(t, r, http.MethodGet, "/api/auth/check", nil, []*http.Cookie{cleared})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCORS_ConfiguredOrigin(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
