package config

import (
	"math/rand"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/pastpaper/pastpaper-be/internal/delivery/http/handler"
	"github.com/pastpaper/pastpaper-be/internal/delivery/http/middleware"
	"github.com/pastpaper/pastpaper-be/internal/delivery/http/repository"
	"github.com/pastpaper/pastpaper-be/internal/delivery/http/route"
	"github.com/pastpaper/pastpaper-be/internal/delivery/http/usecase"
	"github.com/pastpaper/pastpaper-be/internal/pkg/llm"
	"github.com/pastpaper/pastpaper-be/internal/pkg/rag"
	"github.com/pastpaper/pastpaper-be/internal/pkg/validate"
)

type BootstrapConfig struct {
	Api       *fiber.App
	Config    *viper.Viper
	DB        *gorm.DB
	Redis     *redis.Client
	Log       *logrus.Logger
	Validator *validate.Validator
}

func Bootstrap(config *BootstrapConfig) {

	mid := middleware.NewMiddleware(&middleware.MiddlewareConfig{
		Log:    config.Log,
		Config: config.Config,
	})

	var llmClient *llm.Client
	if apiKey := config.Config.GetString("llm.api_key"); apiKey != "" {
		llmClient = llm.NewClient(
			apiKey,
			config.Config.GetString("llm.model"),
			config.Config.GetString("llm.base_url"),
		)
	}

	cache := rag.NewCache(
		config.Redis,
		config.Config.GetDuration("rag.cache.ttl"),
		config.Config.GetBool("rag.cache.enabled"),
		config.Log,
	)
	limiter := rag.NewLimiter(
		config.Redis,
		config.Config.GetInt("ratelimit.rpm"),
		config.Config.GetInt("ratelimit.burst"),
		config.Log,
	)
	ragClient := rag.NewClient(
		config.Config.GetString("rag.base_url"),
		config.Config.GetDuration("rag.timeout"),
		cache,
		llmClient,
		config.Log,
	)

	practiceRepo := repository.NewPracticeRepository(config.DB)
	progressRepo := repository.NewProgressRepository(config.DB)
	chatRepo := repository.NewChatRepository(config.DB)

	grader := usecase.NewGrader(usecase.GraderConfig{
		Rag:        ragClient,
		Limiter:    limiter,
		Repository: practiceRepo,
		Logger:     config.Log,
		TopK:       config.Config.GetInt("rag.grading_top_k"),
	})

	practiceUsecase := usecase.NewPracticeUsecase(usecase.PracticeConfig{
		DB:           config.DB,
		Repository:   practiceRepo,
		ProgressRepo: progressRepo,
		Grader:       grader,
		Rag:          ragClient,
		Limiter:      limiter,
		Logger:       config.Log,
		Rand:         rand.New(rand.NewSource(time.Now().UnixNano())),
	})
	progressUsecase := usecase.NewProgressUsecase(usecase.ProgressConfig{
		Repository: progressRepo,
		Logger:     config.Log,
	})
	chatUsecase := usecase.NewChatUsecase(usecase.ChatConfig{
		Repository: chatRepo,
		Rag:        ragClient,
		Limiter:    limiter,
		Logger:     config.Log,
		TopK:       config.Config.GetInt("rag.chat_top_k"),
	})
	ragUsecase := usecase.NewRagUsecase(usecase.RagConfig{
		Rag:     ragClient,
		Limiter: limiter,
		Logger:  config.Log,
	})

	practiceHandler := handler.NewPracticeHandler(config.Validator, config.Log, practiceUsecase)
	progressHandler := handler.NewProgressHandler(config.Log, progressUsecase)
	chatHandler := handler.NewChatHandler(config.Validator, config.Log, chatUsecase)
	ragHandler := handler.NewRagHandler(config.Validator, config.Log, ragUsecase)

	route.Setup(&route.RouteConfig{
		Api:             config.Api,
		Middleware:      mid,
		PracticeHandler: practiceHandler,
		ProgressHandler: progressHandler,
		ChatHandler:     chatHandler,
		RagHandler:      ragHandler,
	})

}
