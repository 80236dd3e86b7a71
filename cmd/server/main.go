package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	analyticsapp "github.com/adfinitum/backend/internal/application/analytics"
	cartapp "github.com/adfinitum/backend/internal/application/cart"
	catalogapp "github.com/adfinitum/backend/internal/application/catalog"
	identityapp "github.com/adfinitum/backend/internal/application/identity"
	marketingapp "github.com/adfinitum/backend/internal/application/marketing"
	orderapp "github.com/adfinitum/backend/internal/application/order"
	paymentapp "github.com/adfinitum/backend/internal/application/payment"
	printingapp "github.com/adfinitum/backend/internal/application/printing"
	appshared "github.com/adfinitum/backend/internal/application/shared"
	shippingapp "github.com/adfinitum/backend/internal/application/shipping"
	"github.com/adfinitum/backend/internal/domain/payment"
	"github.com/adfinitum/backend/internal/infrastructure/auth"
	"github.com/adfinitum/backend/internal/infrastructure/cache"
	"github.com/adfinitum/backend/internal/infrastructure/config"
	"github.com/adfinitum/backend/internal/infrastructure/event"
	"github.com/adfinitum/backend/internal/infrastructure/logger"
	"github.com/adfinitum/backend/internal/infrastructure/mail"
	"github.com/adfinitum/backend/internal/infrastructure/migration"
	paymentinfra "github.com/adfinitum/backend/internal/infrastructure/payment"
	"github.com/adfinitum/backend/internal/infrastructure/persistence"
	printinginfra "github.com/adfinitum/backend/internal/infrastructure/printing"
	"github.com/adfinitum/backend/internal/infrastructure/storage"
	"github.com/adfinitum/backend/internal/infrastructure/telemetry"
	"github.com/adfinitum/backend/internal/interfaces/http/handler"
	"github.com/adfinitum/backend/internal/interfaces/http/middleware"
	"github.com/adfinitum/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/adfinitum/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Adfinitum Commerce API
//	@version		1.0
//	@description	Storefront backend: catalog, cart, checkout, shipping, M-Pesa and bank payments.

//	@contact.name	API Support
//	@contact.email	support@adfinitum.co.ke

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	ctx := context.Background()

	providers, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Error("Telemetry shutdown failed", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled {
		log = providers.BridgeLogger(log, logger.ParseLevel(cfg.Log.Level))
	}

	log.Info("Starting Adfinitum Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithBoundValues(cfg.Telemetry.DBLogFullSQL),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
	)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}, log); err != nil {
			log.Warn("Database tracing unavailable", zap.Error(err))
		}
	}

	if cfg.Database.MigrateOnStart {
		runMigrations(db, log)
	}

	// Redis-backed stores, in-memory when Redis is down
	cacheFactory, err := cache.NewFactory(cfg.Redis, cache.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize cache", zap.Error(err))
	}
	defer func() {
		if err := cacheFactory.Close(); err != nil {
			log.Error("Error closing Redis client", zap.Error(err))
		}
	}()

	var blacklist auth.TokenBlacklist
	if client := cacheFactory.Client(); client != nil {
		blacklist = auth.NewRedisTokenBlacklist(client)
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}

	objects := newObjectStorage(ctx, cfg, log)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log,
		event.WithAsync(cfg.Event.Async),
		event.WithHandlerTimeout(cfg.Event.HandlerTimeout),
	)
	eventBus.Subscribe(event.NewLoggingSubscriber(log))
	businessMetrics, err := telemetry.NewBusinessMetrics(providers.Meter("adfinitum-backend"))
	if err != nil {
		log.Warn("Business metrics unavailable", zap.Error(err))
	} else {
		eventBus.Subscribe(event.NewMetricsSubscriber(businessMetrics))
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := eventBus.Stop(stopCtx); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	brandRepo := persistence.NewGormBrandRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB)
	bannerRepo := persistence.NewGormHeroBannerRepository(db.DB)
	slideRepo := persistence.NewGormHeroSlideRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	couponRepo := persistence.NewGormCouponRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	addressRepo := persistence.NewGormAddressRepository(db.DB)
	methodRepo := persistence.NewGormShippingMethodRepository(db.DB)
	shipmentRepo := persistence.NewGormShipmentRepository(db.DB)
	analyticsRepo := persistence.NewGormAnalyticsRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// JWT
	jwtService := auth.NewJWTService(cfg.JWT)
	resetTokens := auth.NewPasswordResetTokens(cfg.JWT.Secret, cfg.JWT.PasswordResetTTL)

	// M-Pesa
	var gateway payment.MobileMoneyGateway
	daraja, err := paymentinfra.NewDarajaAdapter(cfg.Mpesa, cacheFactory.TokenCache(), paymentinfra.WithDarajaLogger(log))
	if err != nil {
		log.Warn("M-Pesa disabled", zap.Error(err))
	} else {
		gateway = daraja
	}

	// Invoices
	var invoiceRenderer printingapp.InvoiceRenderer
	if cfg.Printing.Enabled {
		pdf, err := printinginfra.NewChromedpRenderer(&printinginfra.ChromedpConfig{
			DefaultTimeout: cfg.Printing.Timeout,
			ExecPath:       cfg.Printing.ChromePath,
			NoSandbox:      true,
			Logger:         log,
		})
		if err != nil {
			log.Warn("Invoice rendering disabled", zap.Error(err))
		} else {
			renderer := printinginfra.NewInvoiceRenderer(
				printinginfra.NewTemplateEngine(printinginfra.WithCurrency("KES")),
				pdf,
				cfg.Printing.CompanyName,
			)
			defer func() { _ = renderer.Close() }()
			invoiceRenderer = renderer
		}
	}

	// Application services
	authService := identityapp.NewAuthService(
		userRepo,
		jwtService,
		blacklist,
		resetTokens,
		mail.New(cfg.Mail, log),
		eventBus,
		identityapp.AuthServiceConfig{FrontendURL: cfg.Frontend.URL},
		log,
	)
	userService := identityapp.NewUserService(userRepo, log)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, brandRepo, objects, eventBus, log)
	reviewService := catalogapp.NewReviewService(reviewRepo, productRepo, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo, log)
	brandService := catalogapp.NewBrandService(brandRepo, log)
	bannerService := catalogapp.NewHeroBannerService(bannerRepo, objects, log)
	slideService := marketingapp.NewHeroSlideService(slideRepo, objects, log)
	cartService := cartapp.NewCartService(cartRepo, couponRepo, productRepo, objects, log)
	couponService := cartapp.NewCouponService(couponRepo, log)
	orderService := orderapp.NewOrderService(txScope, orderRepo, addressRepo, methodRepo, couponRepo, productRepo, objects, eventBus, log)
	invoiceService := printingapp.NewInvoiceService(invoiceRenderer, orderRepo, objects, cfg.Storage.PresignExpiration, log)
	addressService := shippingapp.NewAddressService(addressRepo, log)
	methodService := shippingapp.NewMethodService(methodRepo, log)
	shipmentService := shippingapp.NewShipmentService(txScope, shipmentRepo, orderRepo, addressRepo, methodRepo, eventBus, log)
	paymentService := paymentapp.NewPaymentService(txScope, paymentRepo, orderRepo, gateway, objects,
		cacheFactory.IdempotencyStore(), eventBus, log)
	analyticsService := analyticsapp.NewAnalyticsService(analyticsRepo, log)

	if cfg.App.AdminEmail != "" && cfg.App.AdminPassword != "" {
		created, err := userService.EnsureSuperuser(ctx, cfg.App.AdminEmail, "Administrator", cfg.App.AdminPassword)
		if err != nil {
			log.Fatal("Failed to seed superuser", zap.Error(err))
		}
		if created {
			log.Info("Superuser created", zap.String("email", cfg.App.AdminEmail))
		}
	}

	// Handlers
	systemHandler := handler.NewSystemHandler(db, version)
	handlers := router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Users:      handler.NewUserHandler(userService),
		Products:   handler.NewProductHandler(productService, reviewService),
		Categories: handler.NewCategoryHandler(categoryService),
		Brands:     handler.NewBrandHandler(brandService),
		Banners:    handler.NewHeroBannerHandler(bannerService),
		Slides:     handler.NewHeroSlideHandler(slideService),
		Cart:       handler.NewCartHandler(cartService, couponService),
		Orders:     handler.NewOrderHandler(orderService, invoiceService),
		Shipping:   handler.NewShippingHandler(addressService, methodService, shipmentService),
		Payments:   handler.NewPaymentHandler(paymentService),
		Analytics:  handler.NewAnalyticsHandler(analyticsService),
		System:     systemHandler,
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order: request id, panics, tracing, access log, headers,
	// body size, rate limit, metrics, then optional authentication.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.SpanErrorMarker())
		engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{Providers: providers, Enabled: true}))
	}
	engine.Use(logger.GinMiddleware(log))
	security := middleware.DefaultSecurityConfig()
	security.HSTSMaxAge = cfg.HTTP.HSTSMaxAge
	security.HSTSIncludeSubdomains = true
	engine.Use(middleware.SecureWithConfig(security))

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(cors))
	engine.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))
	engine.Use(middleware.BodyLimitWithUploads(cfg.HTTP.MaxBodySize, cfg.HTTP.MaxUploadSize))

	if cfg.HTTP.RateLimitEnabled {
		limiter := newLimiter(cacheFactory, "adf:ratelimit", cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimitWithConfig(middleware.RateLimitConfig{Limiter: limiter, Logger: log}))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	if cfg.HTTP.MetricsEnabled {
		httpMetrics := telemetry.NewHTTPMetrics()
		if sqlDB, err := db.SQL(); err == nil {
			httpMetrics.WatchDB(sqlDB, cfg.Database.DBName)
		}
		engine.Use(middleware.PrometheusMetrics(httpMetrics, "/metrics"))
		scrapers, rejected := middleware.ParseIPAllowList(cfg.HTTP.MetricsAllowedIPs)
		if len(rejected) > 0 {
			log.Warn("Ignoring invalid metrics allow-list entries", zap.Strings("entries", rejected))
		}
		engine.GET("/metrics",
			middleware.RestrictToIPs(scrapers, "Metrics are restricted"),
			gin.WrapH(httpMetrics.Handler()),
		)
	}

	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Logger:         log,
	}

	// Outside API versioning
	engine.GET("/health", systemHandler.Health)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, middleware.JWTAuthMiddlewareWithConfig(jwtConfig)),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	engine.Use(middleware.OptionalJWTAuthMiddleware(jwtConfig))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingAttributeInjector())
		if cfg.Telemetry.ProfilingEnabled {
			engine.Use(middleware.ProfilingAttributeInjector())
		}
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	for _, group := range router.APIGroups(handlers, middleware.PermissionConfig{Logger: log}) {
		if group.Name() == "auth" && cfg.HTTP.AuthRateLimitEnabled {
			limiter := newLimiter(cacheFactory, "adf:ratelimit:auth", cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
			group.Use(middleware.RateLimitWithConfig(middleware.RateLimitConfig{Limiter: limiter, Logger: log}))
		}
		r.Register(group)
	}
	routes := r.Setup()
	log.Info("API routes registered", zap.String("base", r.BasePath()), zap.Int("count", len(routes)))
	for _, rt := range routes {
		log.Debug("Route", zap.String("group", rt.Group), zap.String("method", rt.Method), zap.String("path", rt.Path))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// runMigrations applies the embedded schema. The migrator is left open:
// closing it would close the shared *sql.DB.
func runMigrations(db *persistence.Database, log *zap.Logger) {
	sqlDB, err := db.SQL()
	if err != nil {
		log.Fatal("Failed to get database handle", zap.Error(err))
	}
	m, err := migration.NewEmbedded(sqlDB, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := m.Up(); err != nil {
		log.Fatal("Failed to apply migrations", zap.Error(err))
	}
}

func newObjectStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) appshared.ObjectStorage {
	if !cfg.Storage.Enabled {
		log.Warn("Object storage disabled, media is kept in memory")
		return storage.NewStubObjectStorage(cfg.Storage.PublicURL)
	}
	s3, err := storage.NewS3ObjectStorage(&cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
	)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		log.Fatal("Failed to prepare storage bucket", zap.Error(err), zap.String("bucket", s3.Bucket()))
	}
	return s3
}

func newLimiter(f *cache.Factory, prefix string, limit int, window time.Duration) middleware.Limiter {
	if client := f.Client(); client != nil {
		return middleware.NewRedisRateLimiter(client, prefix, limit, window)
	}
	return middleware.NewRateLimiter(limit, window)
}
