package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mktu/recipe-app/internal/api/handlers/health"
	recipeHandler "github.com/mktu/recipe-app/internal/api/handlers/recipe"
	"github.com/mktu/recipe-app/internal/api/middleware"
	"github.com/mktu/recipe-app/internal/core/ai"
	"github.com/mktu/recipe-app/internal/core/recipe"
	"github.com/mktu/recipe-app/internal/core/scraper"
	"github.com/mktu/recipe-app/internal/infrastructure/config"
	"github.com/mktu/recipe-app/internal/infrastructure/store"
	"github.com/mktu/recipe-app/internal/pkg/common"
)

const (
	timeoutDuration = 120 * time.Second
	// 1MB is plenty: the API carries URLs and ingredient lists, never
	// page content or images.
	maxBodySize = 1 << 20

	dedupWindow = 2 * time.Second
)

// SetupRouter wires the services and registers the routes.
func SetupRouter(cfg *config.Config, st *store.Store, draftCache recipe.DraftCache) (*gin.Engine, error) {
	common.LogInfo("starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(maxBodySize))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  common.ErrCodeRequestTimeout,
			})
			c.Abort()
		}
	})

	common.LogInfo("initializing services",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("model", cfg.OpenRouter.Model),
		zap.String("embedding_model", cfg.Embedding.Model),
	)

	llmClient := ai.NewClient(&cfg.OpenRouter)
	embedder := ai.NewEmbeddingClient(&cfg.Embedding)
	fetcher := scraper.NewFetcher(&cfg.Scraper)
	reader := scraper.NewReader(&cfg.Reader)

	matcher := recipe.NewMatcher(st)
	extractor := recipe.NewLLMExtractor(llmClient, cfg.Scraper.ContentMaxLength)
	parseSvc := recipe.NewParseService(fetcher, reader, extractor, matcher, draftCache)
	recipeSvc := recipe.NewService(st, embedder, fetcher, cfg.Embedding.MaxRetries)
	searchSvc := recipe.NewSearchService(st, recipe.NewQueryResolver(st), embedder, &cfg.Search)
	aliasJob := recipe.NewAliasJob(st, llmClient, cfg.AliasJob.BatchLimit)

	healthHandler := health.NewHandler(cfg, st)
	handler := recipeHandler.NewHandler(parseSvc, recipeSvc, searchSvc, aliasJob, st)

	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	apiGroup := router.Group("/api")
	{
		recipes := apiGroup.Group("/recipes")
		{
			recipes.POST("/parse", middleware.Deduplication(dedupWindow), handler.HandleParse)
			recipes.POST("", handler.HandleCreate)
			recipes.GET("", handler.HandleList)
			recipes.POST("/:id/view", handler.HandleView)
		}

		apiGroup.GET("/ingredients", handler.HandleIngredients)
		apiGroup.POST("/aliases/generate", handler.HandleGenerateAliases)
	}

	common.LogInfo("router setup completed",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
