package router

import (
	"github.com/erp/pos/internal/infrastructure/logger"
	"github.com/erp/pos/internal/interfaces/http/handler"
	"github.com/erp/pos/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers bundles the HTTP handlers served by the engine
type Handlers struct {
	Shift        *handler.ShiftHandler
	CashRegister *handler.CashRegisterHandler
	Health       *handler.HealthHandler
}

// EngineConfig configures the gin engine and its middleware chain
type EngineConfig struct {
	ServiceName    string
	TracingEnabled bool
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	TrustedProxies []string
	Validator      middleware.TokenValidator
	Logger         *zap.Logger
}

// NewEngine builds the gin engine with the full middleware stack and every
// route registered. Middleware order:
//  1. RequestID
//  2. Tracing (otelgin server span)
//  3. Request logger
//  4. SpanErrorMarker
//  5. Recovery
//  6. CORS, security headers, body limit
//  7. JWT and span identity, on /api/v1 only
func NewEngine(cfg EngineConfig, h Handlers) (*gin.Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			return nil, err
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.ServiceName,
		Enabled:     cfg.TracingEnabled,
	}))
	engine.Use(logger.GinMiddleware(cfg.Logger))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.Recovery(cfg.Logger))
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	engine.Use(middleware.Secure())
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	if h.Health != nil {
		engine.GET("/health", h.Health.Live)
		engine.GET("/health/ready", h.Health.Ready)
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Use(
		middleware.JWTAuthMiddleware(middleware.DefaultJWTConfig(cfg.Validator, cfg.Logger)),
		middleware.SpanIdentity(),
	)
	if h.Shift != nil {
		r.Register(ShiftRoutes(h.Shift))
	}
	if h.CashRegister != nil {
		r.Register(CashRegisterRoutes(h.CashRegister))
	}
	r.Setup()

	return engine, nil
}

// ShiftRoutes registers the shift lifecycle endpoints
func ShiftRoutes(h *handler.ShiftHandler) *DomainGroup {
	g := NewDomainGroup("shifts", "/shifts")
	g.POST("/open", h.Open)
	g.POST("/close", h.Close)
	g.GET("/current", h.GetCurrent)
	g.GET("/warnings", h.GetWarnings)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.GET("/:id/audit-logs", h.GetAuditLogs)
	g.POST("/:id/force-close", middleware.RequireRole(middleware.SupervisorRoles...), h.ForceClose)
	g.POST("/:id/handover", h.Handover)
	g.POST("/:id/activity", h.UpdateActivity)
	g.DELETE("/:id", h.Delete)
	return g
}

// CashRegisterRoutes registers the branch ledger endpoints
func CashRegisterRoutes(h *handler.CashRegisterHandler) *DomainGroup {
	g := NewDomainGroup("cash-register", "/cash-register")
	g.POST("/transactions", h.RecordTransaction)
	g.POST("/settlements", h.RecordSettlement)
	g.GET("/transactions", h.ListTransactions)
	g.GET("/transactions/:id", h.GetTransaction)
	g.GET("/balance", h.GetBalance)
	g.GET("/verify", h.VerifyChain)
	return g
}
