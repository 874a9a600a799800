package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/auth"
	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/config"
	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/metrics"
	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/service"
)

// Handler aggregates the HTTP handlers with their injected services.
type Handler struct {
	cfg     config.Config
	userSvc *service.UserService
	msgSvc  *service.MessageService
}

func NewHandler(cfg config.Config, userSvc *service.UserService, msgSvc *service.MessageService) *Handler {
	return &Handler{cfg: cfg, userSvc: userSvc, msgSvc: msgSvc}
}

// errorBody is the uniform failure shape: human-readable message plus
// the underlying error text where one exists.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// signupResponse carries the token explicitly next to the cookie; every
// other endpoint relies on the cookie alone.
type signupResponse struct {
	Message string          `json:"message"`
	User    service.UserDTO `json:"user"`
	Token   string          `json:"token"`
}

func fail(c *gin.Context, status int, msg string, err error) {
	body := errorBody{Message: msg}
	if err != nil {
		body.Error = err.Error()
	}
	c.JSON(status, body)
}

// Signup handles POST /api/auth/signup.
func (h *Handler) Signup(c *gin.Context) {
	var req struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", nil)
		return
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.FullName == "" || req.Email == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "fullName, email and password are required", nil)
		return
	}
	if len(req.Password) < 6 || len(req.Password) > 128 {
		fail(c, http.StatusBadRequest, "password must be between 6 and 128 characters", nil)
		return
	}
	user, err := h.userSvc.Signup(c.Request.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			fail(c, http.StatusBadRequest, "User already exists", nil)
			return
		}
		log.Error().Err(err).Str("email", req.Email).Msg("signup")
		fail(c, http.StatusInternalServerError, "Something went wrong", err)
		return
	}
	token, err := auth.GenerateToken(user.ID, h.cfg.JWTSecret, h.cfg.TokenTTLDays)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("signup generate token")
		fail(c, http.StatusInternalServerError, "Something went wrong", err)
		return
	}
	auth.SetSessionCookie(c, token, h.cfg.TokenTTLDays, h.cfg.Env)
	metrics.SignupsTotal.Inc()
	c.JSON(http.StatusCreated, signupResponse{Message: "User created successfully", User: *user, Token: token})
}

// Login handles POST /api/auth/login. Unknown email and wrong password
// produce the same response.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", nil)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "email and password are required", nil)
		return
	}
	user, err := h.userSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			fail(c, http.StatusBadRequest, "Invalid credentials", nil)
			return
		}
		log.Error().Err(err).Str("email", req.Email).Msg("login")
		fail(c, http.StatusInternalServerError, "Something went wrong", err)
		return
	}
	token, err := auth.GenerateToken(user.ID, h.cfg.JWTSecret, h.cfg.TokenTTLDays)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("login generate token")
		fail(c, http.StatusInternalServerError, "Something went wrong", err)
		return
	}
	auth.SetSessionCookie(c, token, h.cfg.TokenTTLDays, h.cfg.Env)
	c.JSON(http.StatusOK, user)
}

// Logout handles POST /api/auth/logout. Idempotent: it only overwrites
// the cookie with an expired empty value.
func (h *Handler) Logout(c *gin.Context) {
	auth.ClearSessionCookie(c, h.cfg.Env)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Check handles GET /api/auth/check: re-fetch the projection for the
// identity the session gate resolved.
func (h *Handler) Check(c *gin.Context) {
	me, ok := auth.CurrentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "unauthenticated", nil)
		return
	}
	user, err := h.userSvc.CheckAuth(c.Request.Context(), me.ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			fail(c, http.StatusNotFound, "User not found", nil)
			return
		}
		log.Error().Err(err).Str("user_id", me.ID).Msg("check auth")
		fail(c, http.StatusInternalServerError, "Something went wrong", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PUT /api/auth/update-profile.
func (h *Handler) UpdateProfile(c *gin.Context) {
	me, ok := auth.CurrentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "unauthenticated", nil)
		return
	}
	var req struct {
		ProfilePic string `json:"profilePic"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", nil)
		return
	}
	user, err := h.userSvc.UpdateProfile(c.Request.Context(), me.ID, req.ProfilePic)
	if err != nil {
		if errors.Is(err, service.ErrMissingProfilePic) {
			fail(c, http.StatusBadRequest, "profile picture is required", nil)
			return
		}
		log.Error().Err(err).Str("user_id", me.ID).Msg("update profile")
		fail(c, http.StatusInternalServerError, "Failed to update profile", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers handles GET /api/auth/users: conversation candidates,
// caller excluded.
func (h *Handler) ListUsers(c *gin.Context) {
	me, ok := auth.CurrentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "unauthenticated", nil)
		return
	}
	users, err := h.msgSvc.ListContacts(c.Request.Context(), me.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", me.ID).Msg("list users")
		fail(c, http.StatusInternalServerError, "Failed to fetch users", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// ListMessages handles GET /api/auth/:id, the conversation with the
// other user, oldest first.
func (h *Handler) ListMessages(c *gin.Context) {
	me, ok := auth.CurrentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "unauthenticated", nil)
		return
	}
	otherID := c.Param("id")
	if otherID == "" {
		fail(c, http.StatusBadRequest, "invalid user id", nil)
		return
	}
	msgs, err := h.msgSvc.ListBetween(c.Request.Context(), me.ID, otherID)
	if err != nil {
		log.Error().Err(err).Str("user_id", me.ID).Str("other_id", otherID).Msg("list messages")
		fail(c, http.StatusInternalServerError, "Failed to fetch messages", err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// SendMessage handles POST /api/auth/send/:id.
func (h *Handler) SendMessage(c *gin.Context) {
	me, ok := auth.CurrentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "unauthenticated", nil)
		return
	}
	otherID := c.Param("id")
	if otherID == "" {
		fail(c, http.StatusBadRequest, "invalid user id", nil)
		return
	}
	var req struct {
		Content string `json:"content"`
		Image   string `json:"image"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", nil)
		return
	}
	msg, err := h.msgSvc.Send(c.Request.Context(), me.ID, otherID, req.Content, req.Image)
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			fail(c, http.StatusBadRequest, "Message content or image is required", nil)
			return
		}
		log.Error().Err(err).Str("user_id", me.ID).Str("other_id", otherID).Msg("send message")
		fail(c, http.StatusInternalServerError, "Failed to send message", err)
		return
	}
	metrics.MessagesSentTotal.Inc()
	c.JSON(http.StatusCreated, msg)
}
