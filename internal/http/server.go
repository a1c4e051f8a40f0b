package http

import (
	"context"
	stdhttp "net/http"

	"sharelink-service/internal/auth"
	"sharelink-service/internal/config"
	"sharelink-service/internal/http/handler"
	"sharelink-service/internal/http/middleware"
	"sharelink-service/internal/quota"
	"sharelink-service/internal/sharing"
	"sharelink-service/pkg/metrics"
	"sharelink-service/pkg/profiling"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

const (
	jsonKeyStatus    = "status"
	statusOK         = "ok"
	requestBodyLimit = "1M"
)

type ServerDependencies struct {
	Config         *config.Config
	SharingService *sharing.Service
	QuotaService   *quota.Service
	AuthMiddleware *auth.Middleware
}

type Server struct {
	echo *echo.Echo
	deps *ServerDependencies
}

func NewServer(deps *ServerDependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = CustomHTTPErrorHandler

	e.Server.ReadTimeout = deps.Config.Server.ReadTimeout
	e.Server.WriteTimeout = deps.Config.Server.WriteTimeout

	// Request ID middleware (first, so all logs have request ID)
	e.Use(middleware.RequestID())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.BodyLimit(requestBodyLimit))

	globalRateLimiter := middleware.NewGlobalRateLimiter()
	e.Use(globalRateLimiter.Middleware())

	collector := metrics.NewCollector()
	e.Use(collector.Middleware())
	collector.Register(e)

	if profiling.Enabled() {
		profiling.RegisterPprofRoutes(e)
	}

	// Stricter limit on the mutating endpoints
	strictRateLimiter := middleware.NewStrictRateLimiter()

	linkHandler := handler.NewLinkHandler(deps.SharingService)
	quotaHandler := handler.NewQuotaHandler(deps.QuotaService)

	e.GET("/health", healthCheck)

	sharingGroup := e.Group("/sharing")
	// Metadata lookup is reachable anonymously; the resolved visibility
	// of the link decides whether the caller gets through.
	sharingGroup.POST("/get_shared_link_metadata", linkHandler.GetSharedLinkMetadata, deps.AuthMiddleware.OptionalJWT())

	sharingAuthed := sharingGroup.Group("")
	sharingAuthed.Use(deps.AuthMiddleware.RequireJWT())
	sharingAuthed.POST("/list_shared_links", linkHandler.ListSharedLinks)
	sharingAuthed.POST("/create_shared_link_with_settings", linkHandler.CreateSharedLinkWithSettings, strictRateLimiter.Middleware())
	sharingAuthed.POST("/modify_shared_link_settings", linkHandler.ModifySharedLinkSettings, strictRateLimiter.Middleware())
	sharingAuthed.POST("/revoke_shared_link", linkHandler.RevokeSharedLink, strictRateLimiter.Middleware())

	quotaGroup := e.Group("/team/member_space_limits")
	quotaGroup.Use(deps.AuthMiddleware.RequireJWT())
	quotaGroup.POST("/set_custom_quota", quotaHandler.SetCustomQuota, strictRateLimiter.Middleware())
	quotaGroup.POST("/remove_custom_quota", quotaHandler.RemoveCustomQuota, strictRateLimiter.Middleware())
	quotaGroup.POST("/get_custom_quota", quotaHandler.GetCustomQuota)

	return &Server{
		echo: e,
		deps: deps,
	}
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func healthCheck(c echo.Context) error {
	return c.JSON(stdhttp.StatusOK, map[string]string{
		jsonKeyStatus: statusOK,
	})
}
