package api

import (
	"context"
	"time"

	draftHandler "recipe-keeper/internal/api/handlers/draft"
	"recipe-keeper/internal/api/handlers/health"
	normalizeHandler "recipe-keeper/internal/api/handlers/normalize"
	recipeHandler "recipe-keeper/internal/api/handlers/recipe"
	"recipe-keeper/internal/api/middleware"
	"recipe-keeper/internal/core/ai"
	"recipe-keeper/internal/core/normalize"
	"recipe-keeper/internal/core/ocr"
	coreRecipe "recipe-keeper/internal/core/recipe"
	"recipe-keeper/internal/core/scratch"
	"recipe-keeper/internal/infrastructure/config"
	"recipe-keeper/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 超時設置
	timeoutDuration = 120 * time.Second
	// 請求體大小限制 (20MB，照片上傳需要較大空間)
	maxBodySize = 20 << 20
)

// SetupRouter 設置路由
func SetupRouter(
	cfg *config.Config,
	store coreRecipe.Store,
	scratchStore *scratch.Store,
	generator ai.TextGenerator,
	ocrEngine ocr.Engine,
) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New()) // 自動生成請求 ID

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "X-User-ID", "X-Session-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(maxBodySize))

	// 限流
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// 初始化服務
	normalizer := normalize.NewNormalizer(generator)
	extractor := normalize.NewKeywordExtractor(generator)
	ocrService := ocr.NewService(ocrEngine)

	common.LogInfo("Services initialized",
		zap.Bool("scratch_enabled", scratchStore != nil),
		zap.String("model", cfg.AI.Model),
		zap.Duration("timeout", timeoutDuration),
	)

	// 初始化處理程序
	recipes := recipeHandler.NewHandler(store)
	normalization := normalizeHandler.NewHandler(normalizer, extractor, ocrService, store, scratchStore, cfg.OCR.MaxImages)
	drafts := draftHandler.NewHandler(scratchStore)

	// 全局中間件：設置超時和配置
	router.Use(func(c *gin.Context) {
		// 設置請求超時
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Set("config", cfg)
		c.Next()
	})

	// 健康檢查
	router.GET("/health", health.HealthCheck)

	// API 路由，全部以擁有者身份為範圍
	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth())
	{
		v1.POST("/recipes", recipes.HandleCreate)
		v1.GET("/recipes", recipes.HandleList)
		v1.PUT("/recipes/:id", recipes.HandleUpdate)
		v1.DELETE("/recipes/:id", recipes.HandleDelete)
		v1.GET("/recipes/search", recipes.HandleSearch)

		v1.POST("/parse/text", normalization.HandleParseText)
		v1.POST("/parse/photo", normalization.HandleParsePhoto)
		v1.POST("/search/ai", normalization.HandleAISearch)

		v1.POST("/drafts", drafts.HandlePut)
		v1.GET("/drafts", drafts.HandleTake)
	}

	common.LogInfo("Router setup complete")

	return router, nil
}
