package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/padloom/padloom/handlers"
	"github.com/padloom/padloom/internal/accounts"
	"github.com/padloom/padloom/internal/bookmarks"
	"github.com/padloom/padloom/internal/config"
	"github.com/padloom/padloom/internal/database"
	docrepo "github.com/padloom/padloom/internal/document/repository"
	"github.com/padloom/padloom/internal/hub"
	"github.com/padloom/padloom/internal/storage"
	"github.com/padloom/padloom/internal/sweeper"
	"github.com/padloom/padloom/internal/tokens"
	"github.com/padloom/padloom/internal/ws"
	"github.com/padloom/padloom/pkg/logger"
	"github.com/padloom/padloom/pkg/metrics"
	"github.com/padloom/padloom/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v jwt_secret_set=%v", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.JWT.Secret != "")

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple; production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	ctx := context.Background()

	// Connect to Redis early so the rate-limiter can use it when configured
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			logger.Infof("Connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Durable stores: Mongo-backed when configured, in-memory otherwise so the
	// engine can run without any database in development.
	var (
		docs        docrepo.Repository = docrepo.NewMemoryRepo()
		accountRepo accounts.Repository = accounts.NewMemoryRepository()
		marks       bookmarks.Repository = bookmarks.NewMemoryRepository()
		mongoUp     bool
	)
	if cfg.MongoDB.URI != "" {
		// Retry/backoff when connecting to MongoDB to tolerate startup races
		const maxAttempts = 5
		backoff := time.Second
		var client *mongo.Client
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			client, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Warnf("could not connect to MongoDB after %d attempts, using in-memory stores: %v", maxAttempts, errConn)
		} else {
			defer func() { _ = client.Disconnect(ctx) }()
			db := client.Database(cfg.MongoDB.Database)
			docs = docrepo.NewMongoRepo(db.Collection("documents"))
			accountRepo = accounts.NewMongoRepository(db.Collection("accounts"))
			marks = bookmarks.NewMongoRepository(db.Collection("bookmarks"))
			mongoUp = true
		}
	}

	var issuer *tokens.Issuer
	if cfg.JWT.Secret != "" {
		issuer = tokens.NewIssuer(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)
	}

	accountsSvc := accounts.NewService(accountRepo)
	h := hub.New(docs, accountsSvc, marks, issuer)
	go h.Run(ctx)

	// Optional object-storage archive for reclaimed documents
	var archive sweeper.Archiver
	if mcfg := storage.LoadMinIOConfig(); mcfg.Endpoint != "" {
		if a, err := storage.NewArchiveStore(mcfg); err != nil {
			logger.Warnf("archive store unavailable: %v", err)
		} else {
			archive = a
			logger.Infof("reclaimed documents will be archived to bucket %s", mcfg.Bucket)
		}
	}
	sw := sweeper.New(cfg.Sweep.Interval, docs, marks, h, archive)
	go sw.Run(ctx)

	// Basic health endpoint
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness endpoint: report dependency states; in-memory fallbacks keep
	// the engine serviceable without Mongo, so readiness only fails when a
	// configured dependency is down.
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}
		if cfg.MongoDB.URI != "" {
			deps["mongodb"] = mongoUp
			if !mongoUp {
				ready = false
			}
		} else {
			deps["mongodb"] = true
		}
		if cfg.Redis.Host != "" && cfg.RateLimit.UseRedis {
			deps["redis"] = redisClient != nil
			if !deps["redis"] {
				ready = false
			}
		} else {
			deps["redis"] = true
		}
		status := http.StatusOK
		state := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			state = "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "uptime": fmt.Sprintf("%s", time.Since(startTime))})
	})

	// websocket endpoint carrying the room protocol
	r.GET("/ws", ws.Handler(h))

	// read-only HTTP API + docs
	api := handlers.NewAPIHandler(docs, marks)
	var verifier middleware.Verifier
	if issuer != nil {
		verifier = issuer
	}
	api.Register(r, verifier)
	handlers.RegisterSwagger(r)

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting padloom on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
