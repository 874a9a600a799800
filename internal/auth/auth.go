package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/config"
	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CookieName is the session cookie carrying the signed token.
const CookieName = "jwt"

const ctxUserKey = "user"

type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func VerifyPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// GenerateToken signs an HS256 token binding userID for ttlDays.
func GenerateToken(userID, secret string, ttlDays int) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ttlDays) * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// SetSessionCookie attaches the token as an HTTP-only cookie. Secure is
// left to the deployment's TLS terminator outside dev.
func SetSessionCookie(c *gin.Context, token string, ttlDays int, env string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, ttlDays*24*60*60, "/", "", env != "dev", true)
}

// ClearSessionCookie overwrites the session cookie with an already
// expired empty value. Idempotent.
func ClearSessionCookie(c *gin.Context, env string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", env != "dev", true)
}

// Middleware is the session gate: it extracts the cookie, verifies the
// token, confirms the bound user still exists and attaches it to the
// context. It performs no business logic.
func Middleware(cfg config.Config, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(CookieName)
		if err != nil || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthenticated"})
			return
		}
		claims, err := ParseToken(tokenStr, cfg.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthenticated"})
			return
		}
		var user models.User
		if err := db.Where("id = ?", claims.UserID).First(&user).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthenticated"})
			return
		}
		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user attached by Middleware. The bool is false
// on routes that are not behind the gate.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}
