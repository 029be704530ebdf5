package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	pgadapter "github.com/halcyonworks/identity/internal/adapters/db/postgres"
	redisadapter "github.com/halcyonworks/identity/internal/adapters/db/redis"
	transporthttp "github.com/halcyonworks/identity/internal/adapters/transport/http"
	httpmw "github.com/halcyonworks/identity/internal/adapters/transport/http/middleware"
	appjwt "github.com/halcyonworks/identity/internal/app/identity/jwt"
	"github.com/halcyonworks/identity/internal/app/identity/session"
	appsvc "github.com/halcyonworks/identity/internal/app/identity/service"
	"github.com/halcyonworks/identity/internal/infra/config"
	lg "github.com/halcyonworks/identity/internal/infra/log"
	"github.com/halcyonworks/identity/internal/infra/migrate"
	"github.com/halcyonworks/identity/internal/infra/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	zapLog := lg.Must(os.Getenv("LOG_LEVEL"))
	defer zapLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("failed to load config", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	redisCli := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisCli.Close()

	validate := validator.New()

	userRepo := pgadapter.NewUserRepo(db)
	sessionRepo := redisadapter.NewSessionRepo(redisCli)

	jwtUtil, err := appjwt.NewJWTUtil(cfg)
	if err != nil {
		zapLog.Fatal("failed to init JWT util", zap.Error(err))
	}

	mgr := session.NewManager(userRepo, sessionRepo, jwtUtil, cfg.SessionTTL)
	svc := appsvc.New(userRepo, mgr, cfg.PasswordPepper, validate)
	handler := transporthttp.NewHandler(svc, redisCli, validate, zapLog, cfg.CookieDomain, cfg.CookieSecure)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpmw.RequestLogger(zapLog))
	router.Use(httpmw.Metrics())
	router.Use(httpmw.NewRateLimitPerIP(50, 100, 10_000, time.Hour))

	corsConfig := cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			"Authorization",
			"X-Requested-With",
		},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	transporthttp.RegisterRoutes(router, handler, mgr)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rootCtx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		return server.StartHTTPServer(ctx, cfg.HTTPAddress, router, zapLog)
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLog.Info("shutdown signal received")
	cancel()

	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
	}
}
