package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/martialcamp/enrollment-api/api/swagger"
	"github.com/martialcamp/enrollment-api/internal/gateway"
	"github.com/martialcamp/enrollment-api/internal/handler"
	"github.com/martialcamp/enrollment-api/internal/middleware"
	"github.com/martialcamp/enrollment-api/internal/models"
	"github.com/martialcamp/enrollment-api/internal/repository"
	"github.com/martialcamp/enrollment-api/internal/service"
	"github.com/martialcamp/enrollment-api/pkg/cache"
	"github.com/martialcamp/enrollment-api/pkg/config"
	"github.com/martialcamp/enrollment-api/pkg/database"
	"github.com/martialcamp/enrollment-api/pkg/export"
	"github.com/martialcamp/enrollment-api/pkg/logger"
	corsmiddleware "github.com/martialcamp/enrollment-api/pkg/middleware/cors"
	reqidmiddleware "github.com/martialcamp/enrollment-api/pkg/middleware/requestid"
)

// @title Martial Academy Enrollment API
// @version 1.0.0
// @description Class enrollment backend: catalog, moderation, carts, payments
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, class listing cache disabled", zap.Error(err))
			redisClient = nil
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	cartRepo := repository.NewCartRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	authSvc := service.NewAuthService(validate, logr, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
		Issuer: cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	classSvc := service.NewClassService(classRepo, cacheRepo, cfg.Cache.ClassTTL, validate, logr)
	cartSvc := service.NewCartService(cartRepo, validate, logr)
	paymentSvc := service.NewPaymentService(
		paymentRepo,
		classRepo,
		gateway.NewStripeGateway(cfg.Stripe.SecretKey, logr),
		export.NewReceiptExporter(),
		cfg.Stripe.Currency,
		validate,
		logr,
	)
	metricsSvc := service.NewMetricsService()

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	classHandler := handler.NewClassHandler(classSvc)
	cartHandler := handler.NewCartHandler(cartSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc, metricsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authRequired := middleware.JWT(authSvc)
	adminOnly := middleware.RequireRole(userRepo, models.RoleAdmin)
	instructorOnly := middleware.RequireRole(userRepo, models.RoleInstructor)
	studentOnly := middleware.RequireRole(userRepo, models.RoleStudent)

	api := r.Group(cfg.APIPrefix)

	api.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "server running")
	})

	api.POST("/jwt", authHandler.IssueToken)

	api.GET("/classes", classHandler.ListPublic)
	api.GET("/my-classes", authRequired, instructorOnly, classHandler.ListMine)
	api.POST("/my-classes", authRequired, instructorOnly, classHandler.Create)
	api.GET("/my-classes/:id", authRequired, instructorOnly, classHandler.GetMine)
	api.PATCH("/my-classes/:id", authRequired, instructorOnly, classHandler.UpdateMine)

	api.POST("/users", userHandler.Register)
	api.GET("/users", authRequired, adminOnly, userHandler.List)
	api.GET("/users/role/:email", authRequired, userHandler.Role)
	api.PATCH("/users/:id", authRequired, adminOnly, userHandler.SetRole)
	api.GET("/instructors", userHandler.Instructors)

	api.GET("/pending-classes", authRequired, adminOnly, classHandler.ListPending)
	api.PATCH("/pending-classes/:id", authRequired, adminOnly, classHandler.SetStatus)
	api.PATCH("/feedback/:id", authRequired, adminOnly, classHandler.SetFeedback)

	api.POST("/selectedClass", authRequired, cartHandler.Add)
	api.GET("/selectedClass", authRequired, cartHandler.List)
	api.DELETE("/selectedClass/:id", authRequired, cartHandler.Remove)

	api.POST("/create-payment-intent", authRequired, studentOnly, paymentHandler.CreateIntent)
	api.GET("/payments", authRequired, studentOnly, paymentHandler.Enrolled)
	api.PATCH("/payments", authRequired, studentOnly, paymentHandler.ConfirmSeats)
	api.POST("/payments", authRequired, studentOnly, paymentHandler.Checkout)
	api.GET("/payment-history", authRequired, studentOnly, paymentHandler.History)
	api.GET("/payment-history/:id/receipt", authRequired, studentOnly, paymentHandler.Receipt)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
