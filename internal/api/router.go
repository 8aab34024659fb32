package api

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"

	_ "github.com/baketrak/order-system/docs"
	"github.com/baketrak/order-system/internal/api/handler"
	"github.com/baketrak/order-system/internal/api/middleware"
	"github.com/baketrak/order-system/internal/core/ports"
	"github.com/baketrak/order-system/internal/core/service"
	"github.com/baketrak/order-system/internal/infrastructure/token"
)

// Dependencies carries everything the router needs. Repositories are
// interfaces so tests can wire in-memory fakes; Pool and Redis are only
// used by the readiness probe and may be nil in tests.
type Dependencies struct {
	AuthRepo    ports.AuthRepository
	OrderRepo   ports.OrderRepository
	ProductRepo ports.ProductRepository
	Cache       ports.CatalogCache
	Tokens      *token.Manager
	Verifier    service.PasswordVerifier
	Logger      zerolog.Logger
	Pool        *pgxpool.Pool
	Redis       *redis.Client
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
	e.Use(echoprometheus.NewMiddleware("baketrak"))

	// --- Services ---
	authService := service.NewAuthService(deps.AuthRepo, deps.Verifier, deps.Tokens, deps.Logger)
	orderService := service.NewOrderService(deps.OrderRepo, deps.ProductRepo, deps.AuthRepo, deps.Logger)
	catalogService := service.NewCatalogService(deps.ProductRepo, deps.Cache, deps.Logger)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	orderHandler := handler.NewOrderHandler(orderService)
	productHandler := handler.NewProductHandler(catalogService)
	userHandler := handler.NewUserHandler(authService, deps.AuthRepo)

	registerRoutes(e, routeTable(authHandler, orderHandler, productHandler, userHandler), middleware.Auth(deps.Tokens))

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	healthHandler := handler.NewHealthHandler()
	e.GET("/health", healthHandler.Liveness)
	if deps.Pool != nil {
		e.GET("/health/ready", handler.NewReadinessHandler(deps.Pool, deps.Redis).Readiness)
	}

	return e
}
