package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"complaintportal/internal/auth"
	"complaintportal/internal/complaint"
	"complaintportal/internal/config"
	"complaintportal/internal/directory"
	"complaintportal/internal/handler"
	"complaintportal/internal/httpmiddleware"
	"complaintportal/internal/logger"
	"complaintportal/internal/notify"
	"complaintportal/internal/profile"
	"complaintportal/internal/storage"
	"complaintportal/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	log, err := logger.New(cfg.LogLevel, "complaint-api")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := runHTTP(cfg, log); err != nil {
		log.Fatal("http server failed", zap.Error(err))
	}
}

func runHTTP(cfg config.App, log *zap.Logger) error {
	if err := store.Migrate(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		return err
	}

	db, err := store.NewDB(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr, cfg.RedisPassword)

	var q notify.Queue
	if cfg.QueueBackend == "memory" {
		q = notify.NewInMemory(64)
	} else {
		q = notify.NewRedisQueue(redisClient.Client, cfg.QueueKey)
	}

	dir := directory.New(directory.Config{
		URL:          cfg.LDAPURL,
		BindDN:       cfg.LDAPBindDN,
		BindPassword: cfg.LDAPBindPass,
		BaseDN:       cfg.LDAPBaseDN,
		StudentOU:    cfg.LDAPStudentOU,
	}, log)
	defer dir.Close()

	// Object storage is optional in dev; without it uploads are rejected and
	// attachment references fall back to path URLs.
	var objects storage.ObjectStore
	if cfg.MinioAccessKey != "" && cfg.MinioSecretKey != "" {
		startup, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		m, merr := storage.NewMinIO(startup, storage.Config{
			Endpoint:      cfg.MinioEndpoint,
			AccessKey:     cfg.MinioAccessKey,
			SecretKey:     cfg.MinioSecretKey,
			Bucket:        cfg.MinioBucket,
			UseSSL:        cfg.MinioUseSSL,
			PresignExpiry: cfg.PresignExpiry,
		})
		cancel()
		if merr != nil {
			log.Warn("object storage unavailable, attachments disabled", zap.Error(merr))
		} else {
			objects = m
			log.Info("object storage ready", zap.String("bucket", cfg.MinioBucket))
		}
	} else {
		log.Info("object storage not configured (MINIO_ACCESS_KEY / MINIO_SECRET_KEY not set)")
	}

	repo := complaint.NewRepository(db.Client)
	dispatcher := notify.NewDispatcher(q, cfg.FeedbackTo, log)
	engine := complaint.NewService(repo, dispatcher, log)
	profiles := profile.NewService(dir, engine)
	h := handler.New(cfg, engine, profiles, dir, objects, dispatcher, log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewLimiter(cfg.RateLimitPerMin).RateLimit())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		ldapHealthy := dir.Healthy(c.Request.Context())
		status := http.StatusOK
		if !redisHealthy || !dbHealthy || !ldapHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy, "ldap": ldapHealthy})
	})

	h.Register(r, auth.Middleware(cfg.JWTSigningKey, cfg.JWTIssuer))

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server forced shutdown", zap.Error(err))
	}

	log.Info("server exited")
	return nil
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
