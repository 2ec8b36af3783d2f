package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/agritrace/produce-chain/internal/api/handler"
	"github.com/agritrace/produce-chain/internal/api/middleware"
	"github.com/agritrace/produce-chain/internal/core/domain"
	"github.com/agritrace/produce-chain/internal/core/ports"
)

// Dependencies carries the wired services the router exposes.
type Dependencies struct {
	AuthService    ports.AuthService
	OTPService     ports.OTPService
	CustodyService ports.CustodyService
	Tokens         ports.TokenIssuer
	Mongo          *mongo.Database
	Redis          *redis.Client
	Logger         zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("produce_chain"))

	authHandler := handler.NewAuthHandler(deps.AuthService, deps.OTPService)
	custodyHandler := handler.NewCustodyHandler(deps.CustodyService)
	authMW := middleware.Auth(deps.Tokens)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)
	e.POST("/auth/otp/send", authHandler.SendOTP)
	e.POST("/auth/otp/verify", authHandler.VerifyOTP)

	// --- Custody routes ---
	produce := e.Group("/produce", authMW)
	produce.POST("", custodyHandler.RegisterProduce,
		middleware.RBAC(domain.RoleFarmer))
	produce.POST("/transfer", custodyHandler.TransferProduce,
		middleware.RBAC(domain.RoleFarmer, domain.RoleDistributor))
	produce.GET("", custodyHandler.ListProduces)
	produce.GET("/transferred", custodyHandler.TransferredTraces,
		middleware.RBAC(domain.RoleFarmer))
	produce.POST("/index/rebuild", custodyHandler.RebuildIndex,
		middleware.RBAC(domain.RoleFarmer))
	produce.GET("/:id/trace", custodyHandler.Trace)
	produce.GET("/:id/stakeholders/:phone", custodyHandler.VerifyStakeholder)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
