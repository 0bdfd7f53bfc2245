package web

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	webauth "thirdcoast.systems/fetchtube/cmd/web/auth"
	"thirdcoast.systems/fetchtube/cmd/web/handlers/api/download_api"
	"thirdcoast.systems/fetchtube/cmd/web/handlers/api/transcript_api"
	authhandlers "thirdcoast.systems/fetchtube/cmd/web/handlers/auth"
	"thirdcoast.systems/fetchtube/cmd/web/handlers/settings"
	"thirdcoast.systems/fetchtube/internal/config"
	"thirdcoast.systems/fetchtube/internal/db"
	"thirdcoast.systems/fetchtube/internal/downloader"
	"thirdcoast.systems/fetchtube/pkg/encryption"
)

type Webserver struct {
	*echo.Echo
	cfg               *config.Config
	sessionManager    *webauth.SessionManager
	encryptionManager *encryption.Manager
	dbc               *db.DatabaseConnection
	svc               *downloader.Service
}

func NewWebserver(cfg *config.Config, dbc *db.DatabaseConnection, encryptionManager *encryption.Manager, sessionManager *webauth.SessionManager, svc *downloader.Service) (*Webserver, error) {
	webserver := &Webserver{
		Echo:              echo.New(),
		cfg:               cfg,
		sessionManager:    sessionManager,
		encryptionManager: encryptionManager,
		dbc:               dbc,
		svc:               svc,
	}

	webserver.setupMiddleware()
	webserver.registerRoutes()

	return webserver, nil
}

func (s *Webserver) setupMiddleware() {
	s.HideBanner = true
	s.HidePort = true
	s.Use(middleware.BodyLimit("2M"))
	s.Use(middleware.Recover())
	s.Use(middleware.RequestID())
	s.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
	}))
	s.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/healthz"
		},
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(s.cfg.RateLimitPerMinute) / 60.0),
			Burst:     s.cfg.RateLimitPerMinute,
			ExpiresIn: 3 * time.Minute,
		}),
	}))
	s.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  false,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				fields = append(fields, "error", v.Error)
			}
			slog.Info("request", fields...)
			return nil
		},
	}))
}

func (s *Webserver) registerRoutes() {
	s.POST("/auth/register", authhandlers.HandleRegister(s.sessionManager, s.dbc))
	s.POST("/auth/login", authhandlers.HandleLogin(s.sessionManager, s.dbc))
	s.POST("/auth/logout", authhandlers.HandleLogout(s.sessionManager))

	apiGroup := s.Group("/api")

	apiGroup.POST("/downloads", download_api.HandleCreate(s.sessionManager, s.dbc, s.encryptionManager, s.svc))
	apiGroup.POST("/downloads/async", download_api.HandleCreateAsync(s.sessionManager, s.dbc))
	apiGroup.GET("/downloads", download_api.HandleIndex(s.sessionManager, s.dbc))
	apiGroup.GET("/downloads/:id", download_api.HandleStatus(s.sessionManager, s.dbc))
	apiGroup.GET("/downloads/:id/result", download_api.HandleResult(s.sessionManager, s.dbc))
	apiGroup.POST("/downloads/:id/cancel", download_api.HandleCancel(s.sessionManager, s.dbc))

	apiGroup.GET("/transcripts/tracks", transcript_api.HandleTracks(s.sessionManager, s.dbc, s.encryptionManager, s.svc))
	apiGroup.GET("/transcripts/preview", transcript_api.HandlePreview(s.sessionManager, s.dbc, s.encryptionManager, s.svc))
	apiGroup.POST("/transcripts", transcript_api.HandleDownload(s.sessionManager, s.dbc, s.encryptionManager, s.svc))

	apiGroup.POST("/settings/cookies", settings.HandleCookiesUpload(s.sessionManager, s.dbc, s.encryptionManager))
	apiGroup.GET("/settings/cookies", settings.HandleCookiesStatus(s.sessionManager, s.dbc))
	apiGroup.DELETE("/settings/cookies", settings.HandleCookiesDelete(s.sessionManager, s.dbc))

	s.GET("/healthz", func(c echo.Context) error {
		return c.String(200, "ok")
	})
}
