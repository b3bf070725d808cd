package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/getlocalbuddy/backend/internal/cache"
	"github.com/getlocalbuddy/backend/internal/config"
	"github.com/getlocalbuddy/backend/internal/http/handlers"
	"github.com/getlocalbuddy/backend/internal/http/middlewares"
	"github.com/getlocalbuddy/backend/internal/observability"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20

// UserRepository is everything the user facing handlers need from storage.
type UserRepository interface {
	handlers.UserStore
	handlers.ProfileStore
}

// Dependencies are built once in main and shared by every request.
type Dependencies struct {
	Users   UserRepository
	Posts   handlers.PostStore
	Ready   handlers.Pinger
	Cache   cache.Store
	Prom    *observability.Prom
	Tokens  TokenService
	Metrics http.Handler
}

type TokenService interface {
	handlers.TokenIssuer
	middlewares.TokenVerifier
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Dependencies) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware(observability.ServiceName))
	r.Use(middlewares.RequestLogger(log))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	r.Use(middlewares.SecurityHeaders())
	// before routing so preflights and unknown paths are covered
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))

	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	api := r.Group("/api")

	// health
	h := handlers.NewHealthHandler(deps.Ready)
	api.GET("/status", h.Status)
	api.GET("/ready", h.Ready)

	// docs
	api.GET("/docs", handlers.SwaggerUI)
	api.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	// auth
	authHandler := handlers.NewAuthHandler(deps.Users, deps.Tokens, cfg.AvatarTemplate)
	authMW := middlewares.NewAuthMiddleware(deps.Tokens)
	limiter := middlewares.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)

	api.POST("/register", limiter.RateLimiterMiddleware(middlewares.KeyByIP), middlewares.RequireJSON(), authHandler.Register)
	api.POST("/login", limiter.RateLimiterMiddleware(middlewares.KeyByIP), middlewares.RequireJSON(), authHandler.Login)
	api.GET("/me", authMW.RequireAuth(), authHandler.Me)

	// posts
	postsHandler := handlers.NewPostsHandler(deps.Posts, deps.Cache, deps.Prom)
	api.GET("/posts", postsHandler.ListPosts)
	api.POST("/posts", middlewares.RequireJSON(), postsHandler.CreatePost)

	// profiles
	usersHandler := handlers.NewUsersHandler(deps.Users, deps.Cache, cfg.AvatarTemplate)
	api.GET("/users/:id", usersHandler.GetUser)
	api.PUT("/users/:id", middlewares.RequireJSON(), usersHandler.UpdateUser)

	r.NoRoute(func(ctx *gin.Context) {
		handlers.RespondNotFound(ctx, "Route not found.")
	})

	return r
}
