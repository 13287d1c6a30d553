package router

import (
	"net/url"

	consoleapp "github.com/britrip/hotelier/internal/application/console"
	"github.com/britrip/hotelier/internal/infrastructure/auth"
	"github.com/britrip/hotelier/internal/infrastructure/logger"
	"github.com/britrip/hotelier/internal/interfaces/http/handler"
	"github.com/britrip/hotelier/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EngineConfig configures the gin engine
type EngineConfig struct {
	ServiceName      string
	Version          string
	TracingEnabled   bool
	CORSAllowOrigins []string
	TrustedProxies   []string
	MaxBodySize      int64
	Logger           *zap.Logger
}

// Deps are the services behind the console API
type Deps struct {
	Console *consoleapp.Service
	Tokens  *auth.JWTService
}

// NewEngine builds the engine with the global middleware chain and mounts the
// console API under /api/v1
func NewEngine(cfg EngineConfig, deps Deps) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	middleware.SetupValidator()

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Tracing(cfg.ServiceName, cfg.TracingEnabled),
		middleware.SpanAttributes(),
		middleware.CORS(cfg.CORSAllowOrigins),
	)
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	system := handler.NewSystemHandler(deps.Console, cfg.ServiceName, cfg.Version)
	engine.GET("/health", system.Health)

	NewRouter(engine).
		Register(ConsoleRoutes(deps, system, websocketOrigins(cfg.CORSAllowOrigins), log)...).
		Setup()
	return engine, nil
}

// ConsoleRoutes returns the route groups of the console API. Everything but
// session creation and system info requires a session token.
func ConsoleRoutes(deps Deps, system *handler.SystemHandler, wsOrigins []string, log *zap.Logger) []RouteRegistrar {
	sessions := handler.NewSessionHandler(deps.Console, deps.Tokens)
	nav := handler.NewNavigationHandler(deps.Console)
	authH := handler.NewAuthHandler(deps.Console)
	wiz := handler.NewWizardHandler(deps.Console)
	manage := handler.NewManageHandler(deps.Console)
	assistant := handler.NewAssistantHandler(deps.Console, wsOrigins)

	public := NewDomainGroup("public", "")
	public.POST("/sessions", sessions.Create)
	public.GET("/system/info", system.Info)

	console := NewDomainGroup("console", "").Use(middleware.SessionAuth(middleware.SessionAuthConfig{
		JWTService:      deps.Tokens,
		Sessions:        deps.Console,
		AllowQueryToken: true,
		Logger:          log,
	}))

	console.GET("/session", sessions.Get).
		DELETE("/session", sessions.Delete)

	console.POST("/nav/:action", nav.Navigate).
		GET("/marketplace", nav.Marketplace).
		GET("/catalog", nav.Catalog).
		GET("/portfolio", nav.Portfolio)

	console.Group("listings", "/listings/:id").
		POST("/view", nav.ViewListing).
		POST("/claim", nav.Claim).
		POST("/manage-from-detail", nav.ManageFromDetail).
		POST("/analytics-from-detail", nav.AnalyticsFromDetail)

	console.Group("records", "/records/:id").
		POST("/manage", nav.ManageRecord).
		POST("/analytics", nav.RecordAnalytics).
		GET("/analytics", assistant.Analytics).
		GET("/analytics/report.pdf", assistant.Report)

	console.Group("auth", "/auth").
		POST("/submit", authH.Submit).
		POST("/otp", authH.OTP).
		POST("/cancel", authH.Cancel).
		POST("/mode", authH.Mode)
	console.POST("/logout", authH.Logout)

	console.Group("wizard", "/wizard").
		POST("/start", wiz.Start).
		POST("/phase", wiz.Phase).
		POST("/basic/next", wiz.NextBasic).
		POST("/rooms/new", wiz.NewRoom).
		POST("/rooms/next", wiz.NextRoom).
		POST("/rooms/:index/edit", wiz.EditRoom).
		DELETE("/rooms/:index", wiz.DeleteRoom).
		POST("/final/next", wiz.NextFinal).
		PATCH("/draft", wiz.PatchDraft).
		PATCH("/room", wiz.PatchRoom).
		POST("/photos", wiz.AddPhoto).
		DELETE("/photos/:index", wiz.RemovePhoto).
		POST("/enhance", wiz.Enhance).
		POST("/finish", wiz.Finish).
		POST("/cancel", wiz.Cancel)

	console.Group("manage", "/manage").
		POST("/sections/:section/edit", manage.EditSection).
		PATCH("/draft", manage.PatchDraft).
		POST("/rooms", manage.AddRoom).
		DELETE("/rooms/:roomId", manage.RemoveRoom).
		POST("/save", manage.Save).
		POST("/cancel", manage.Cancel)

	console.Group("assistant", "/assistant").
		POST("/messages", assistant.Send).
		GET("/messages", assistant.List).
		GET("/ws", assistant.Stream)

	return []RouteRegistrar{public, console}
}

// websocketOrigins turns the CORS origins into host patterns for the websocket
// origin check. Same-host upgrades are always accepted.
func websocketOrigins(origins []string) []string {
	var patterns []string
	for _, o := range origins {
		if o == "*" {
			return []string{"*"}
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
		}
	}
	return patterns
}
