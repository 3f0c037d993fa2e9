// Package di wires the application together with explicit provider functions.
package di

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"snipetrack-backend/application/identity"
	appportfolio "snipetrack-backend/application/portfolio"
	"snipetrack-backend/application/transactions"
	"snipetrack-backend/application/valuation"
	"snipetrack-backend/infrastructure/config"
	"snipetrack-backend/infrastructure/persistence/jsonfile"
	"snipetrack-backend/infrastructure/upstream/roblox"
	"snipetrack-backend/infrastructure/upstream/rolimons"
	"snipetrack-backend/pkg/auth"
	"snipetrack-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Metrics     *observability.Metrics
	RateLimiter auth.RateLimiter

	MarketCache *valuation.MarketCache
	Resolver    *valuation.Resolver
	Scanner     *transactions.Scanner
	Identity    *identity.Validator
	Portfolio   *appportfolio.Reconciler
}

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	httpClient := observability.NewHTTPClient(cfg.UpstreamTimeout, cfg.EnableTracing)

	metrics, rateLimiter, err := provideAWSDependencies(ctx, cfg)
	if err != nil {
		return nil, err
	}

	rolimonsClient := rolimons.NewClient(httpClient, cfg.RolimonsBaseURL, logger)
	robloxClient := roblox.NewClient(httpClient, roblox.Config{
		UsersBaseURL:      cfg.RobloxUsersBaseURL,
		EconomyBaseURL:    cfg.RobloxEconomyBaseURL,
		ThumbnailsBaseURL: cfg.RobloxThumbnailsBaseURL,
	})

	marketCache := valuation.NewMarketCache(rolimonsClient, logger,
		valuation.WithFreshness(cfg.CatalogFreshness),
		valuation.WithMetrics(metrics),
	)
	resolver := valuation.NewResolver(marketCache, robloxClient, robloxClient, logger)
	scanner := transactions.NewScanner(marketCache, robloxClient, robloxClient, logger, metrics)
	validator := identity.NewValidator(robloxClient, robloxClient, robloxClient, logger)

	container := &Container{
		Config:      cfg,
		Logger:      logger,
		Metrics:     metrics,
		RateLimiter: rateLimiter,
		MarketCache: marketCache,
		Resolver:    resolver,
		Scanner:     scanner,
		Identity:    validator,
	}

	// Portfolio routes exist only where state can stay client-local.
	if cfg.PortfolioFile != "" {
		store := jsonfile.NewPortfolioStore(cfg.PortfolioFile)
		container.Portfolio = appportfolio.NewReconciler(store, &resolverAdapter{resolver}, logger)
	}

	return container, nil
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// provideAWSDependencies builds the CloudWatch metrics recorder and the
// distributed rate limiter when the deployment asks for them. Local runs get
// a no-op metrics recorder and an in-process limiter.
func provideAWSDependencies(ctx context.Context, cfg *config.Config) (*observability.Metrics, auth.RateLimiter, error) {
	if !cfg.EnableMetrics && cfg.RateLimitTable == "" {
		limiter := auth.NewSlidingWindowLimiter(cfg.RateLimitPerMinute, time.Minute)
		return observability.NewMetrics("", nil), limiter, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, nil, fmt.Errorf("load aws config: %w", err)
	}

	var metrics *observability.Metrics
	if cfg.EnableMetrics {
		namespace := fmt.Sprintf("SnipeTrack/%s", cfg.Environment)
		metrics = observability.NewMetrics(namespace, awscloudwatch.NewFromConfig(awsCfg))
	} else {
		metrics = observability.NewMetrics("", nil)
	}

	var limiter auth.RateLimiter
	if cfg.RateLimitTable != "" {
		limiter = auth.NewDistributedRateLimiter(
			awsdynamodb.NewFromConfig(awsCfg),
			cfg.RateLimitTable,
			cfg.RateLimitPerMinute,
			time.Minute,
			"API",
		)
	} else {
		limiter = auth.NewSlidingWindowLimiter(cfg.RateLimitPerMinute, time.Minute)
	}

	return metrics, limiter, nil
}

// resolverAdapter narrows the valuation resolver to what the reconciler needs.
type resolverAdapter struct {
	resolver *valuation.Resolver
}

func (a *resolverAdapter) Resolve(ctx context.Context, assetID int64) (appportfolio.Valuation, error) {
	result, err := a.resolver.Resolve(ctx, assetID)
	if err != nil {
		return appportfolio.Valuation{}, err
	}
	return appportfolio.Valuation{
		Name:               result.Name,
		RecentAveragePrice: result.RecentAveragePrice,
		IsLimited:          result.IsLimited,
		ThumbnailURL:       result.ThumbnailURL,
	}, nil
}
