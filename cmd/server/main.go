package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	catalogapp "github.com/salesdesk/backend/internal/application/catalog"
	identityapp "github.com/salesdesk/backend/internal/application/identity"
	orderapp "github.com/salesdesk/backend/internal/application/order"
	partnerapp "github.com/salesdesk/backend/internal/application/partner"
	"github.com/salesdesk/backend/internal/infrastructure/auth"
	"github.com/salesdesk/backend/internal/infrastructure/config"
	"github.com/salesdesk/backend/internal/infrastructure/logger"
	"github.com/salesdesk/backend/internal/infrastructure/persistence"
	"github.com/salesdesk/backend/internal/interfaces/http/handler"
	"github.com/salesdesk/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	log.Info("starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	sqlLevel := gormlogger.Warn
	if cfg.App.Env != "production" {
		sqlLevel = gormlogger.Info
	}
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, sqlLevel)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	users := persistence.NewGormUserRepository(db.DB)
	groups := persistence.NewGormUserGroupRepository(db.DB)
	tenants := persistence.NewGormTenantRepository(db.DB)
	partners := persistence.NewGormPartnerRepository(db.DB)
	products := persistence.NewGormProductRepository(db.DB)
	categories := persistence.NewGormCategoryRepository(db.DB)
	orders := persistence.NewGormSalesOrderRepository(db.DB)
	orderUow := persistence.NewOrderUnitOfWork(db.DB)

	// Services
	jwtService := auth.NewJWTService(cfg.JWT)
	notifier := orderapp.NewLogTokenNotifier(log)

	authService := identityapp.NewAuthService(users, jwtService)
	userService := identityapp.NewUserService(users, groups)
	groupService := identityapp.NewGroupService(groups)
	tenantService := identityapp.NewTenantService(tenants)
	userCSV := identityapp.NewCSVService(users, cfg.CSV.MaxFileSize, cfg.CSV.MaxExportRows)

	partnerService := partnerapp.NewService(partners)
	partnerCSV := partnerapp.NewCSVService(partners, cfg.CSV.MaxFileSize, cfg.CSV.MaxExportRows)

	productService := catalogapp.NewProductService(products, categories)
	categoryService := catalogapp.NewCategoryService(categories)
	productCSV := catalogapp.NewCSVService(products, categories, cfg.CSV.MaxFileSize, cfg.CSV.MaxExportRows)

	orderService := orderapp.NewService(orders, orderUow, partners, products, notifier)
	orderCSV := orderapp.NewCSVService(orders, partners, products, cfg.CSV.MaxFileSize, cfg.CSV.MaxExportRows)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, userService)
	userHandler := handler.NewUserHandler(userService, userCSV)
	groupHandler := handler.NewGroupHandler(groupService)
	tenantHandler := handler.NewTenantHandler(tenantService)
	partnerHandler := handler.NewPartnerHandler(partnerService, partnerCSV)
	productHandler := handler.NewProductHandler(productService, productCSV)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	orderHandler := handler.NewOrderHandler(orderService, orderCSV)

	r := router.New(cfg, log)
	r.Public(authHandler, orderHandler)
	r.Authed(
		authHandler,
		userHandler,
		groupHandler,
		tenantHandler,
		partnerHandler,
		productHandler,
		categoryHandler,
		orderHandler,
	)
	r.Setup(jwtService, users)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        r.Engine(),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}
