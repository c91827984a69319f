package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"homefinder/internal/ai"
	"homefinder/internal/catalog"
	"homefinder/internal/config"
	"homefinder/internal/handler"
	"homefinder/internal/repository"
	"homefinder/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting homefinder",
		zap.String("version", Version),
		zap.String("buildTime", BuildTime),
		zap.String("gitCommit", GitCommit))

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Load the listing catalog
	cat := catalog.Load(cfg.Catalog.ListingsFile, logger)
	logger.Info("catalog loaded", zap.Int("listings", cat.Size()))

	// Connect the vector store
	store, err := repository.NewPgVectorStore(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
		cfg.OpenAI.EmbeddingDimensions,
	)
	if err != nil {
		logger.Fatal("failed to connect to vector store", zap.Error(err))
	}
	defer store.Close()
	logger.Info("connected to pgvector store")

	// Initialize OpenAI client
	aiClient := ai.NewClient(&cfg.OpenAI, logger)
	if aiClient.IsEnabled() {
		logger.Info("ai client initialized",
			zap.String("apiBase", cfg.OpenAI.APIBase),
			zap.String("chatModel", cfg.OpenAI.ChatModel),
			zap.String("embeddingModel", cfg.OpenAI.EmbeddingModel))
	} else {
		logger.Warn("ai client disabled, falling back to pattern-based query parsing",
			zap.String("hint", "set OPENAI_API_KEY to enable"))
	}

	// Initialize services
	retriever := service.NewSemanticRetriever(aiClient, store, logger)
	interpreter := service.NewQueryInterpreter(aiClient, logger)
	ranker := service.NewHybridRanker(cfg.Ranking, logger)
	searchService := service.NewSearchService(cat, retriever, interpreter, ranker, cfg.Search, cfg.Timeouts, logger)
	indexer := service.NewIndexer(retriever, cfg.Indexing, cfg.Timeouts.Indexing, logger)

	// Initialize handlers
	searchHandler := handler.NewSearchHandler(searchService)
	indexHandler := handler.NewIndexHandler(indexer, cat)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":          "healthy",
			"service":         "homefinder",
			"version":         Version,
			"catalog_size":    cat.Size(),
			"active_sessions": searchService.ActiveSessions(),
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/search", searchHandler.Search)
		apiV1.GET("/listings", searchHandler.Listings)
		apiV1.GET("/listings/:id", searchHandler.GetListing)
		apiV1.POST("/index", indexHandler.Index)
	}

	// Index the catalog in the background on startup
	if cfg.Indexing.IndexOnStart {
		go func() {
			logger.Info("startup indexing began", zap.Int("listings", cat.Size()))
			indexer.Index(cat.Listings())
		}()
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("server listening", zap.String("addr", addr))

	go func() {
		if err := router.Run(addr); err != nil {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
}

func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
