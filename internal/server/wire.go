package server

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/Rol3ert99/CookbookAPP-backend/config"
	"github.com/Rol3ert99/CookbookAPP-backend/internal/api"
	"github.com/Rol3ert99/CookbookAPP-backend/internal/database"
	"github.com/Rol3ert99/CookbookAPP-backend/internal/logger"
	"github.com/Rol3ert99/CookbookAPP-backend/internal/prompt"
	"github.com/Rol3ert99/CookbookAPP-backend/internal/recipe"
	"github.com/Rol3ert99/CookbookAPP-backend/internal/router"
	"github.com/Rol3ert99/CookbookAPP-backend/internal/service"
	"github.com/Rol3ert99/CookbookAPP-backend/internal/vocabulary"
)

const serviceName = "cookbook-api"

// Collaborators lets callers replace the upstream clients, e.g. with stubs
// in tests. Nil fields are built from the configuration.
type Collaborators struct {
	Completer service.Completer
	Images    recipe.ImageGenerator
	Cache     service.Cache
}

// Build assembles the whole application from cfg
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger, deps Collaborators) (*Server, error) {
	vocab := vocabulary.Default()
	if cfg.VocabularyFile != "" {
		loaded, err := vocabulary.Load(cfg.VocabularyFile)
		if err != nil {
			return nil, err
		}
		vocab = loaded
		log.Info("loaded vocabulary file", "path", cfg.VocabularyFile,
			"cuisines", len(vocab.Cuisines()), "categories", len(vocab.Categories()))
	}

	builder, err := prompt.NewBuilder(vocab)
	if err != nil {
		return nil, err
	}
	validator, err := recipe.NewValidator(vocab, recipe.Policy(cfg.VocabularyPolicy))
	if err != nil {
		return nil, err
	}

	var openai *service.OpenAIClient
	if deps.Completer == nil || (cfg.ImagesEnabled && deps.Images == nil) {
		openai = service.NewOpenAIClient(service.OpenAIConfig{
			APIKey:       cfg.OpenAIAPIKey,
			BaseURL:      cfg.OpenAIBaseURL,
			ChatModel:    cfg.ChatModel,
			ImageModel:   cfg.ImageModel,
			ImageSize:    cfg.ImageSize,
			ImageQuality: cfg.ImageQuality,
			Timeout:      cfg.OpenAITimeout,
		}, log)
	}
	if deps.Completer == nil {
		deps.Completer = openai
	}

	srv := New(cfg.ServerHost, cfg.ServerPort, nil, log)

	var opts []service.IdeasOption
	if cfg.ImagesEnabled {
		images, err := buildImages(ctx, cfg, log, deps.Images, openai)
		if err != nil {
			return nil, err
		}
		opts = append(opts, service.WithImages(images))
	}

	if deps.Cache == nil && cfg.CacheEnabled() {
		client, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		srv.OnShutdown(client.Close)
		deps.Cache = service.NewRedisCache(client, "cookbook:", cfg.CacheTTL)
	}
	if deps.Cache != nil {
		opts = append(opts, service.WithCache(deps.Cache))
	}

	ideas, err := service.NewIdeasService(builder, deps.Completer, validator, log, opts...)
	if err != nil {
		return nil, err
	}

	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	srv.http.Handler = router.SetupRouter(api.NewIdeasHandler(ideas, log), log, router.Options{
		ServiceName:    serviceName,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Tracing:        cfg.OtelEnabled,
	})

	log.Info("application assembled",
		"env", cfg.Environment,
		"policy", validator.Policy(),
		"images", ideas.ImagesEnabled(),
		"cache", deps.Cache != nil,
		"chat_model", cfg.ChatModel,
	)
	return srv, nil
}

func buildImages(ctx context.Context, cfg *config.Config, log *logger.Logger, gen recipe.ImageGenerator, openai *service.OpenAIClient) (recipe.ImageGenerator, error) {
	if gen == nil {
		gen = openai
	}
	if cfg.S3BucketName == "" {
		return gen, nil
	}

	s3cfg, err := config.NewS3Config(ctx, cfg.S3BucketName, cfg.AWSRegion, cfg.S3URLTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize image storage: %w", err)
	}
	log.Info("mirroring generated images to S3", "bucket", cfg.S3BucketName)
	return service.NewImageService(gen, s3cfg, log), nil
}
