package router

import (
	"time"

	"github.com/fumiakihyodo/meiwaproducts/internal/config"
	"github.com/fumiakihyodo/meiwaproducts/internal/handler"
	"github.com/fumiakihyodo/meiwaproducts/internal/infra"
	"github.com/fumiakihyodo/meiwaproducts/internal/middleware"
	"github.com/fumiakihyodo/meiwaproducts/internal/repository"
	"github.com/fumiakihyodo/meiwaproducts/internal/service"
	"github.com/fumiakihyodo/meiwaproducts/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis/Storage
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, store *infra.QuoteStore, cb *infra.CircuitBreaker, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	partRepo := repository.NewPartRepository(db)
	priceRepo := repository.NewPriceHistoryRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	priceCache := infra.NewPriceCache(rdb)

	authSvc := service.NewAuthService(userRepo, cfg)
	productSvc := service.NewProductService(productRepo, partRepo)
	supplierSvc := service.NewSupplierService(supplierRepo, partRepo)
	partSvc := service.NewPartService(partRepo, priceRepo, cfg)
	priceSvc := service.NewPriceHistoryService(priceRepo, partRepo, store, cb, priceCache, dispatcher, cfg)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	suppliersH := handler.NewSuppliersHandler(supplierSvc)
	partsH := handler.NewPartsHandler(partSvc)
	pricesH := handler.NewPriceHistoriesHandler(priceSvc)
	lookupH := handler.NewPriceLookupHandler(priceSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, cb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes. Deletion and user management additionally require
	// administrator capability; the services enforce it on the explicit actor,
	// the admin middleware just fails fast.
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.GET("/auth/me", authH.Me)
		v1.POST("/auth/change-password", authH.ChangePassword)

		users := v1.Group("/users", middleware.RequireAdmin())
		{
			users.POST("", authH.CreateUser)
			users.GET("", authH.ListUsers)
			users.GET("/:id", authH.GetUser)
			users.PATCH("/:id", authH.UpdateUser)
			users.DELETE("/:id", authH.DeactivateUser)
			users.PATCH("/:id/reactivate", authH.ReactivateUser)
		}

		products := v1.Group("/products")
		{
			products.POST("", productsH.Create)
			products.GET("", productsH.List)
			products.GET("/:id", productsH.Get)
			products.PATCH("/:id", productsH.Update)
			products.DELETE("/:id", middleware.RequireAdmin(), productsH.Delete)
		}

		suppliers := v1.Group("/suppliers")
		{
			suppliers.POST("", suppliersH.Create)
			suppliers.GET("", suppliersH.List)
			suppliers.GET("/:id", suppliersH.Get)
			suppliers.PATCH("/:id", suppliersH.Update)
			suppliers.DELETE("/:id", middleware.RequireAdmin(), suppliersH.Delete)
		}

		branches := v1.Group("/supplier-branches")
		{
			branches.POST("", suppliersH.CreateBranch)
			branches.GET("", suppliersH.ListBranches)
			branches.GET("/:id", suppliersH.GetBranch)
			branches.PATCH("/:id", suppliersH.UpdateBranch)
			branches.DELETE("/:id", middleware.RequireAdmin(), suppliersH.DeleteBranch)
		}

		contacts := v1.Group("/supplier-contacts")
		{
			contacts.POST("", suppliersH.CreateContact)
			contacts.GET("", suppliersH.ListContacts)
			contacts.GET("/:id", suppliersH.GetContact)
			contacts.PATCH("/:id", suppliersH.UpdateContact)
			contacts.DELETE("/:id", middleware.RequireAdmin(), suppliersH.DeleteContact)
		}

		parts := v1.Group("/parts")
		{
			parts.POST("", partsH.Create)
			parts.GET("", partsH.List)
			parts.GET("/:id", partsH.Get)
			parts.PATCH("/:id", partsH.Update)
			parts.DELETE("/:id", middleware.RequireAdmin(), partsH.Delete)
			parts.GET("/:id/current-price", lookupH.CurrentPrice)
			parts.GET("/:id/current-prices", partsH.CurrentPrices)
			parts.GET("/:id/price-report", partsH.ExportPriceReport)
		}

		prices := v1.Group("/price-histories")
		{
			prices.POST("", pricesH.Create)
			prices.GET("", pricesH.List)
			prices.GET("/:id", pricesH.Get)
			prices.PATCH("/:id", pricesH.Update)
			prices.DELETE("/:id", middleware.RequireAdmin(), pricesH.Delete)
			prices.POST("/:id/quote", pricesH.UploadQuote)
			prices.GET("/:id/quote", pricesH.DownloadQuote)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
