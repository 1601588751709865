package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"yatube-api/config"
	"yatube-api/controllers"
	"yatube-api/middleware"
	"yatube-api/utils"
)

// SetupRouter wires routes, middlewares, and controllers. The page cache is
// injected so deployments and tests choose their own backend.
func SetupRouter(db *gorm.DB, cache utils.PageCache) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Access and recovery logs go through zap into a rolling file, apart from
	// application logs.
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.GinLogger(gl))
		r.Use(utils.GinRecovery(gl))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Uploaded post images are served straight from disk.
	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	postController := controllers.NewPostController(db)
	followController := controllers.NewFollowController(db)
	authController := controllers.NewAuthController(db)
	aboutController := controllers.NewAboutController()

	authRequired := middleware.AuthRequired()
	optionalAuth := middleware.OptionalAuth()
	rateLimited := middleware.RateLimit()

	cacheTTL := time.Duration(cfg.PageCacheTTLSeconds) * time.Second
	r.GET("/", middleware.CachePage(cache, cacheTTL), postController.Index)

	r.GET("/group/:slug/", postController.GroupPosts)
	r.GET("/profile/:username/", optionalAuth, postController.Profile)

	// The legacy feed alias /posts/follow/ shares a segment with /posts/:id/,
	// so both are dispatched from the wildcard route.
	r.GET("/posts/:id/", optionalAuth, func(ctx *gin.Context) {
		if ctx.Param("id") == "follow" {
			authRequired(ctx)
			if ctx.IsAborted() {
				return
			}
			followController.Feed(ctx)
			return
		}
		postController.Detail(ctx)
	})

	r.GET("/create/", authRequired, postController.CreateForm)
	r.POST("/create/", rateLimited, authRequired, postController.Create)
	r.GET("/posts/:id/edit/", authRequired, postController.EditForm)
	r.POST("/posts/:id/edit/", rateLimited, authRequired, postController.Edit)
	r.GET("/posts/:id/comment/", authRequired, postController.CommentRedirect)
	r.POST("/posts/:id/comment/", rateLimited, authRequired, postController.AddComment)

	r.GET("/follow/", authRequired, followController.Feed)
	r.GET("/profile/:username/follow/", authRequired, followController.Follow)
	r.GET("/profile/:username/unfollow/", authRequired, followController.Unfollow)

	auth := r.Group("/auth")
	auth.Use(rateLimited)
	auth.GET("/login/", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{
			"title": "Log in",
			"next":  ctx.Query("next"),
			"form":  gin.H{"username": "", "password": ""},
		})
	})
	auth.POST("/signup/", authController.Signup)
	auth.POST("/login/", authController.Login)
	auth.POST("/logout/", authRequired, authController.Logout)
	auth.GET("/me/", authRequired, authController.Me)
	auth.POST("/password_change/", authRequired, authController.PasswordChange)
	auth.POST("/password_reset/", authController.PasswordReset)
	auth.POST("/reset/confirm/", authController.PasswordResetConfirm)

	r.GET("/about/author/", aboutController.Author)
	r.GET("/about/tech/", aboutController.Tech)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "page not found")
	})

	return r
}
