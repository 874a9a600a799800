package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/auth"
	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/config"
	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/metrics"
	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/mw"
	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/service"
	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/upload"
)

// SetupRouter wires middleware and the full API surface. The message
// routes live under the /api/auth mount as well; the original frontend
// depends on that path, so it is preserved.
func SetupRouter(cfg config.Config, db *gorm.DB, uploader upload.Uploader) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.GinMiddleware())
	r.Use(mw.CORS(cfg.ClientOrigin))
	r.Use(mw.RateLimit(rate.Every(time.Second/20), 40))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	userSvc := service.NewUserService(db, uploader)
	msgSvc := service.NewMessageService(db, uploader)
	h := NewHandler(cfg, userSvc, msgSvc)

	api := r.Group("/api/auth")

	api.POST("/signup", h.Signup)
	api.POST("/login", h.Login)
	api.POST("/logout", h.Logout)

	authed := api.Group("")
	authed.Use(auth.Middleware(cfg, db))

	authed.GET("/check", h.Check)
	authed.PUT("/update-profile", h.UpdateProfile)
	authed.GET("/users", h.ListUsers)
	authed.GET("/:id", h.ListMessages)
	authed.POST("/send/:id", h.SendMessage)

	return r
}
