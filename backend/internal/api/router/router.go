package router

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/config"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/api/handler"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/api/middleware"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/model"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/jwt"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/redis"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/response"
)

// Setup builds the gin engine. db and rdb are only used for the health check; rdb may be nil.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders(cfg.Auth.Cookie.Secure))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── health ──
	r.GET("/health", func(c *gin.Context) {
		status := gin.H{"status": "ok", "db": "ok"}
		code := http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status["status"], status["db"] = "degraded", "unreachable"
			code = http.StatusServiceUnavailable
		}
		if rdb == nil {
			status["redis"] = "disabled"
		} else if err := rdb.Ping(c.Request.Context()); err != nil {
			status["redis"] = "unreachable"
		} else {
			status["redis"] = "ok"
		}
		c.JSON(code, status)
	})

	api := r.Group("/api")
	{
		// no session required
		api.POST("/auth",
			middleware.RateLimit(rdb, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow),
			h.Auth.Login,
		)

		authorized := api.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			authorized.GET("/users", middleware.RoleAuth(model.RoleAdmin), h.User.ListUsers)

			// distribution and review queues
			authorized.POST("/cutoff", middleware.RoleAuth(model.RoleAdmin), h.Cutoff.Distribute)
			authorized.GET("/cutoff", h.Cutoff.ListCutoff)
			authorized.GET("/cutoff/history", middleware.RoleAuth(model.RoleAdmin), h.Cutoff.History)
			authorized.GET("/fetch-bapp-list", h.Cutoff.Queue)

			// Skylink proxy
			authorized.GET("/fetch-data", h.Shipment.FetchData)
			authorized.POST("/update-status", h.Shipment.UpdateStatus)
			authorized.GET("/proxy-file", h.Shipment.ProxyFile)

			// decisions
			authorized.POST("/insert-log", h.Verification.InsertLog)
			authorized.POST("/verify", h.Verification.Verify)

			authorized.GET("/master/clusters", h.Cluster.ListClusters)
			authorized.GET("/dashboard", h.Dashboard.GetDashboard)

			authorized.GET("/export/logs", middleware.RoleAuth(model.RoleAdmin), h.Export.ExportLogs)
		}
	}

	if cfg.Server.StaticDir != "" {
		r.NoRoute(middleware.PageGuard(jwtMgr), spaHandler(cfg.Server.StaticDir))
	}

	return r
}

// spaHandler serves files from dir and falls back to index.html for client-side routes.
func spaHandler(dir string) gin.HandlerFunc {
	index := filepath.Join(dir, "index.html")
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Status(http.StatusNotFound)
			return
		}
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			response.NotFound(c, 10006, "route not found")
			return
		}

		name := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+c.Request.URL.Path)))
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			c.File(name)
			return
		}
		c.File(index)
	}
}
