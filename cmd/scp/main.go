package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yanmengling/dip-for-supply-chain-sub001/internal/config"
	"github.com/yanmengling/dip-for-supply-chain-sub001/internal/forecast"
	"github.com/yanmengling/dip-for-supply-chain-sub001/internal/middleware"
	"github.com/yanmengling/dip-for-supply-chain-sub001/internal/ontology"
	"github.com/yanmengling/dip-for-supply-chain-sub001/internal/scp/entity"
	"github.com/yanmengling/dip-for-supply-chain-sub001/internal/scp/handler"
	"github.com/yanmengling/dip-for-supply-chain-sub001/internal/scp/repository"
	"github.com/yanmengling/dip-for-supply-chain-sub001/internal/scp/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting scp service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库（可选：未配置时以降级模式运行，不保存排产历史）
	var planRunRepo *repository.PlanRunRepository
	if cfg.Database.Host != "" {
		db, err := initDatabase(cfg.Database)
		if err != nil {
			zapLogger.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err := db.AutoMigrate(&entity.PlanRun{}); err != nil {
			zapLogger.Warn("AutoMigrate plan_runs warning", zap.Error(err))
		}
		planRunRepo = repository.NewPlanRunRepository(db)
	} else {
		zapLogger.Warn("Database not configured, plan history disabled")
	}

	// 初始化Redis（可选：未配置时不缓存快照）
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = initRedis(cfg.Redis)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			zapLogger.Warn("Redis not reachable, snapshot cache disabled", zap.Error(err))
			redisClient = nil
		}
	}

	// 知识网络客户端与快照加载器
	ontologyClient := ontology.NewClient(
		cfg.Ontology.BaseURL,
		cfg.Ontology.NetworkID,
		cfg.Ontology.PageSize,
		cfg.Ontology.Timeout,
		zapLogger,
	)
	loader := ontology.NewLoader(ontologyClient, ontology.LoaderConfig{
		MaterialTypeID:  cfg.Ontology.MaterialTypeID,
		BOMTypeID:       cfg.Ontology.BOMTypeID,
		InventoryTypeID: cfg.Ontology.InventoryTypeID,
	}, zapLogger)

	// 服务
	planSvc := service.NewPlanService(
		loader,
		planRunRepo,
		redisClient,
		cfg.Ontology.SnapshotTTL,
		cfg.Ontology.NetworkID,
		zapLogger,
	)
	exportSvc := service.NewExportService()

	// 预测服务客户端（可选）
	var forecastClient *forecast.Client
	if cfg.Forecast.BaseURL != "" {
		forecastClient = forecast.NewClient(cfg.Forecast.BaseURL, cfg.Forecast.Timeout)
	}

	handlers := handler.NewHandlers(planSvc, exportSvc, forecastClient)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// API v1：访问令牌透传给知识网络，本服务不做鉴权
	api := r.Group("/api/v1", middleware.AccessToken())
	{
		plan := api.Group("/plan")
		{
			plan.POST("/schedule", h.Plan.Schedule)
			plan.POST("/schedule/export", h.Plan.Export)
			plan.POST("/tasks/flatten", h.Plan.FlattenTasks)
			plan.GET("/runs", h.Plan.ListRuns)
			plan.GET("/runs/:id", h.Plan.GetRun)
		}

		bom := api.Group("/bom")
		{
			bom.GET("/products", h.BOM.ListProducts)
			bom.GET("/tree/:productCode", h.BOM.GetTree)
		}

		if h.Forecast != nil {
			api.POST("/forecast", h.Forecast.Forecast)
		}
	}
}
