package router // package router defines how HTTP routes are registered for the API

import (
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/allclear/internal/config"
	"github.com/iliyamo/allclear/internal/handler"
	"github.com/iliyamo/allclear/internal/middleware"
	"github.com/iliyamo/allclear/internal/repository"
	"github.com/iliyamo/allclear/internal/service"
)

// Deps is everything the HTTP layer needs.  Redis may be nil.
type Deps struct {
	Config    config.Config
	Log       zerolog.Logger
	Store     repository.Store
	Sessions  *service.Sessions
	Accounts  *service.Accounts
	Friends   *service.Friends
	Locations *service.Locations
	Redis     *redis.Client
}

// New builds the Echo instance with the global middleware chain and every
// route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = handler.JSONSerializer{}

	e.Use(echomw.Recover())
	if d.Config.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	}
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(middleware.Metrics())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: d.Config.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	RegisterRoutes(e, d.Store)
	RegisterAuth(e, handler.NewAuthHandler(d.Accounts, d.Log))

	auth := middleware.SessionAuth(d.Sessions, d.Log)
	RegisterUser(e, handler.NewUserHandler(d.Accounts, d.Log), auth,
		middleware.NewCacheInvalidator(d.Config.Cache, d.Redis, d.Log))

	cache := middleware.NewRedisCache(d.Config.Cache, d.Redis, d.Log)
	RegisterFriends(e, handler.NewFriendHandler(d.Friends, d.Log), auth, cache)
	RegisterLocations(e, handler.NewLocationHandler(d.Locations, d.Log), auth, cache)
	return e
}

// RegisterRoutes registers routes that do not require authentication:
// the health check and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo, store handler.Pinger) {
	e.GET("/api/health", handler.Health(store))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers sign-up and sign-in.  Both are public; they are
// how a client obtains a session token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/api/auth")
	g.POST("/signup", a.SignUp)
	g.POST("/signin", a.SignIn)
}

// RegisterUser registers the caller's own account endpoints.  mw runs in
// order; the first one must authenticate.
func RegisterUser(e *echo.Echo, u *handler.UserHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/api/user", mw...)
	g.GET("/profile", u.Profile)
	g.PUT("/profile", u.UpdateProfile)
	g.PUT("/change-password", u.ChangePassword)
	g.DELETE("/delete-account", u.DeleteAccount)
}
