// Package di wires the application graph with google/wire.
package di

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"bookcrawl-backend/infrastructure/config"
	"bookcrawl-backend/infrastructure/messaging/eventbridge"
	"bookcrawl-backend/infrastructure/persistence/dynamodb"
	"bookcrawl-backend/interfaces/http/rest"
	"bookcrawl-backend/interfaces/http/rest/handlers"
	"bookcrawl-backend/pkg/auth"
	"bookcrawl-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	Store        *dynamodb.Store
	Publisher    *eventbridge.Publisher
	JWTValidator *auth.JWTValidator
	Router       *rest.Router
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideStore creates the bookshop record store, with CloudWatch operation
// metrics attached when enabled.
func ProvideStore(
	client *awsdynamodb.Client,
	cwClient *awscloudwatch.Client,
	cfg *config.Config,
	logger *zap.Logger,
) *dynamodb.Store {
	store := dynamodb.NewStore(
		client,
		cfg.DynamoDBTable,
		cfg.ApprovalIndexName,
		cfg.CategoryIndexName,
		logger,
	)
	if cfg.EnableMetrics {
		store.SetMetrics(observability.NewMetrics(cwClient, cfg.MetricsNamespace, logger))
	}
	return store
}

// ProvidePublisher creates the audit event publisher
func ProvidePublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) *eventbridge.Publisher {
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideJWTValidator creates the token validator from configuration
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	secret := cfg.JWTSecret
	if secret == "" && cfg.IsDevelopment() {
		secret = "development-secret-change-in-production"
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: cfg.JWTSigningMethod,
		PublicKey:     cfg.JWTPublicKey,
		SecretKey:     secret,
		Issuer:        cfg.JWTIssuer,
	})
}

// ProvideBookshopHandler creates the bookshop handler
func ProvideBookshopHandler(store *dynamodb.Store, publisher *eventbridge.Publisher, logger *zap.Logger) *handlers.BookshopHandler {
	return handlers.NewBookshopHandler(store, publisher, logger)
}

// ProvideEventHandler creates the events calendar handler
func ProvideEventHandler(store *dynamodb.Store, logger *zap.Logger) *handlers.EventHandler {
	return handlers.NewEventHandler(store, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	cfg *config.Config,
	bookshops *handlers.BookshopHandler,
	events *handlers.EventHandler,
	validator *auth.JWTValidator,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(cfg, bookshops, events, validator, logger)
}
