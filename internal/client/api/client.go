// Package api is the HTTP client for the chat server. Authentication
// rides on the server's HTTP-only "jwt" cookie: the client captures it
// from signup/login responses and replays it on protected calls.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const sessionCookieName = "jwt"

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// User mirrors the server's public user projection.
type User struct {
	ID         string    `json:"id"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	ProfilePic string    `json:"profilePic"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Message mirrors the server's message shape.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	Image      string    `json:"image"`
	CreatedAt  time.Time `json:"createdAt"`
}

type signupResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
	Token   string `json:"token"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetToken installs a previously persisted session token.
func (c *Client) SetToken(token string) { c.token = token }

// Token returns the current session token, empty when logged out.
func (c *Client) Token() string { return c.token }

// Signup registers a new account and stores the returned session cookie.
func (c *Client) Signup(ctx context.Context, fullName, email, password string) (*User, error) {
	var resp signupResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/auth/signup", map[string]string{
		"fullName": fullName,
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("signup request failed: %w", err)
	}
	return &resp.User, nil
}

// Login authenticates and stores the returned session cookie.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var user User
	err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &user)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &user, nil
}

// Logout tells the server to expire the cookie and drops the local token.
func (c *Client) Logout(ctx context.Context) error {
	err := c.doRequest(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	c.token = ""
	if err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// Check asks the server who the session token belongs to.
func (c *Client) Check(ctx context.Context) (*User, error) {
	var user User
	if err := c.doRequest(ctx, http.MethodGet, "/api/auth/check", nil, &user); err != nil {
		return nil, fmt.Errorf("check request failed: %w", err)
	}
	return &user, nil
}

// UpdateProfile uploads a new profile picture payload (base64 data URL).
func (c *Client) UpdateProfile(ctx context.Context, picturePayload string) (*User, error) {
	var user User
	err := c.doRequest(ctx, http.MethodPut, "/api/auth/update-profile", map[string]string{
		"profilePic": picturePayload,
	}, &user)
	if err != nil {
		return nil, fmt.Errorf("update profile request failed: %w", err)
	}
	return &user, nil
}

// ListUsers fetches conversation candidates (everyone but the caller).
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.doRequest(ctx, http.MethodGet, "/api/auth/users", nil, &users); err != nil {
		return nil, fmt.Errorf("list users request failed: %w", err)
	}
	return users, nil
}

// ListMessages fetches the conversation with the other user, oldest first.
func (c *Client) ListMessages(ctx context.Context, otherID string) ([]Message, error) {
	var msgs []Message
	if err := c.doRequest(ctx, http.MethodGet, "/api/auth/"+otherID, nil, &msgs); err != nil {
		return nil, fmt.Errorf("list messages request failed: %w", err)
	}
	return msgs, nil
}

// SendMessage sends content and/or an image payload to the other user.
func (c *Client) SendMessage(ctx context.Context, otherID, content, imagePayload string) (*Message, error) {
	var msg Message
	err := c.doRequest(ctx, http.MethodPost, "/api/auth/send/"+otherID, map[string]string{
		"content": content,
		"image":   imagePayload,
	}, &msg)
	if err != nil {
		return nil, fmt.Errorf("send message request failed: %w", err)
	}
	return &msg, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body, result interface{}) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: c.token})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Pick up a fresh or cleared session cookie when the server sets one.
	for _, ck := range resp.Cookies() {
		if ck.Name == sessionCookieName {
			c.token = ck.Value
		}
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Message string `json:"message"`
		}
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			apiErr.Message = errResp.Message
		}
		return apiErr
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
