package api

import (
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/quickgram/auth-service/internal/api/handler"
	"github.com/quickgram/auth-service/internal/api/middleware"
	"github.com/quickgram/auth-service/internal/core/ports"

	_ "github.com/quickgram/auth-service/docs"
)

// RouterDeps carries everything NewRouter needs to build the HTTP surface.
type RouterDeps struct {
	AuthService ports.AuthService
	// RateLimiter guards signup, login and refresh. Nil disables limiting.
	RateLimiter *middleware.RateLimiter
	// Readiness lists the dependencies pinged by GET /health/ready.
	Readiness map[string]handler.Pinger
	// TrustedProxies are the peers whose X-Forwarded-For is believed. When
	// empty the client IP is always the socket peer.
	TrustedProxies []*net.IPNet
	// CORSOrigins enables CORS for the listed origins. Empty disables it.
	CORSOrigins []string
	Logger      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)
	e.Validator = handler.NewValidator()
	e.IPExtractor = ipExtractor(deps.TrustedProxies)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	if len(deps.CORSOrigins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins: deps.CORSOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
		}))
	}
	e.Use(requestLogger(deps.Logger))
	e.Use(middleware.Metrics())

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.AuthService)

	var limited []echo.MiddlewareFunc
	if deps.RateLimiter != nil {
		limited = append(limited, deps.RateLimiter.Middleware())
	}

	auth := e.Group("/auth")
	auth.POST("/signup", authHandler.Signup, limited...)
	auth.POST("/login", authHandler.Login, limited...)
	auth.POST("/refresh", authHandler.Refresh, limited...)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", authHandler.Me, middleware.Auth(deps.AuthService))

	// --- Ops ---
	healthHandler := handler.NewHealthHandler(deps.Readiness)
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// ipExtractor decides where c.RealIP comes from, and with it the rate
// limiter key. Forwarding headers are only honoured from trusted peers.
func ipExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, n := range trusted {
		opts = append(opts, echo.TrustIPRange(n))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

// requestLogger emits one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
