package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/donor-resolver/app/config"
	"github.com/donor-resolver/app/controllers"
	"github.com/donor-resolver/app/services"
	"github.com/donor-resolver/internal/matcher"
	"github.com/donor-resolver/internal/nickname"
	"github.com/donor-resolver/internal/normalizer"
	"github.com/donor-resolver/internal/report"
	"github.com/donor-resolver/internal/search"
	"github.com/donor-resolver/routes"
)

func main() {
	// 1. Load configuration
	loadConfig()
	if err := config.Load(viper.GetString("engine.config_path")); err != nil {
		log.Fatalf("failed to load engine config: %v", err)
	}

	// 2. Logger
	logger := initLogger()
	defer logger.Sync()

	logger.Info("starting donor resolver service")

	// 3. MongoDB
	mongoDB := initMongoDB(logger)
	defer func() {
		if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
			logger.Error("error disconnecting MongoDB", zap.Error(err))
		}
	}()
	store := services.NewMongoStoreService(mongoDB, logger)

	// 4. Redis run registry
	registry, err := services.NewRedisRunRegistry(viper.GetString("redis.url"), logger)
	if err != nil {
		logger.Fatal("failed to initialize run registry", zap.Error(err))
	}
	defer registry.Close()

	// 5. Pipeline components
	table := loadNicknameTable(logger)
	norm, err := normalizer.New(config.C.CityCacheSize, logger)
	if err != nil {
		logger.Fatal("failed to initialize normalizer", zap.Error(err))
	}
	runner := matcher.NewRunner(table, matcher.Options{
		EnableStateFallback: config.C.Stages.EnableStateFallback,
		MiddleNameMinLength: config.C.Stages.MiddleNameMinLength,
		Workers:             config.C.Workers,
	}, logger)
	assembler := report.NewAssembler(logger)
	auditor := report.NewAuditor(config.C.NearMissLimit, logger)

	// 6. Review search index (optional)
	var reviewIndexer *search.ReviewIndexer
	if viper.GetBool("meilisearch.enabled") {
		reviewIndexer, err = search.NewReviewIndexer(search.ReviewConfig{
			Host:      viper.GetString("meilisearch.url"),
			APIKey:    viper.GetString("meilisearch.master_key"),
			IndexName: viper.GetString("meilisearch.index"),
			Timeout:   30 * time.Second,
		}, logger)
		if err != nil {
			logger.Fatal("failed to initialize review indexer", zap.Error(err))
		}
		if err := reviewIndexer.BuildIndex(); err != nil {
			logger.Warn("failed to apply review index settings", zap.Error(err))
		}
	}

	// 7. Services and controllers
	matchService := services.NewMatchService(norm, runner, assembler, auditor,
		store, store, registry, reviewIndexer, logger)
	matchController := controllers.NewMatchController(matchService, logger)
	adminController := controllers.NewAdminController(store, reviewIndexer, logger)

	// 8. Router
	router := gin.Default()
	router.Use(gin.Recovery())
	routes.SetupAllRoutes(router, matchController, adminController)

	// 9. Serve
	port := viper.GetString("app.port")
	logger.Info("donor resolver service listening", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

// loadConfig loads infra configuration from file and env vars.
func loadConfig() {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("engine.config_path", "config/engine.yaml")
	viper.SetDefault("mongo.url", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "donor_resolver")
	viper.SetDefault("redis.url", "redis://localhost:6379")
	viper.SetDefault("meilisearch.enabled", false)
	viper.SetDefault("meilisearch.url", "http://localhost:7700")
	viper.SetDefault("meilisearch.master_key", "")
	viper.SetDefault("meilisearch.index", "unmatched_review")

	viper.SetEnvPrefix("RESOLVER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("no config file found, using defaults: %v", err)
	}
}

func initLogger() *zap.Logger {
	var logger *zap.Logger
	var err error
	if viper.GetString("app.env") == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	return logger
}

func initMongoDB(logger *zap.Logger) *mongo.Database {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(viper.GetString("mongo.url")))
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Fatal("failed to ping MongoDB", zap.Error(err))
	}
	return client.Database(viper.GetString("mongo.database"))
}

func loadNicknameTable(logger *zap.Logger) *nickname.Table {
	path := config.C.NicknameTable
	if path == "" {
		return nickname.Default()
	}
	table, err := nickname.Load(path)
	if err != nil {
		logger.Fatal("failed to load nickname table", zap.String("path", path), zap.Error(err))
	}
	logger.Info("loaded nickname table override",
		zap.String("path", path),
		zap.Int("names", table.Len()))
	return table
}
