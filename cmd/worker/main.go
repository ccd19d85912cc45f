// The worker runs one full batch: load snapshots, match, replace the
// result table, print the verification report. It is the production entry
// point; the API server exists for interactive operator use.
package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/donor-resolver/app/config"
	"github.com/donor-resolver/app/models"
	"github.com/donor-resolver/app/services"
	"github.com/donor-resolver/internal/matcher"
	"github.com/donor-resolver/internal/nickname"
	"github.com/donor-resolver/internal/normalizer"
	"github.com/donor-resolver/internal/report"
	"github.com/donor-resolver/internal/search"
)

func main() {
	loadConfig()
	if err := config.Load(viper.GetString("engine.config_path")); err != nil {
		log.Fatalf("failed to load engine config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mongoCtx, mongoCancel := context.WithTimeout(ctx, 10*time.Second)
	client, err := mongo.Connect(mongoCtx, options.Client().ApplyURI(viper.GetString("mongo.url")))
	mongoCancel()
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error("error disconnecting MongoDB", zap.Error(err))
		}
	}()
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Fatal("failed to ping MongoDB", zap.Error(err))
	}
	store := services.NewMongoStoreService(client.Database(viper.GetString("mongo.database")), logger)

	registry, err := services.NewRedisRunRegistry(viper.GetString("redis.url"), logger)
	if err != nil {
		logger.Fatal("failed to initialize run registry", zap.Error(err))
	}
	defer registry.Close()

	table := nickname.Default()
	if path := config.C.NicknameTable; path != "" {
		if table, err = nickname.Load(path); err != nil {
			logger.Fatal("failed to load nickname table", zap.Error(err))
		}
	}

	norm, err := normalizer.New(config.C.CityCacheSize, logger)
	if err != nil {
		logger.Fatal("failed to initialize normalizer", zap.Error(err))
	}
	runner := matcher.NewRunner(table, matcher.Options{
		EnableStateFallback: config.C.Stages.EnableStateFallback,
		MiddleNameMinLength: config.C.Stages.MiddleNameMinLength,
		Workers:             config.C.Workers,
	}, logger)

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
	}

	matchService := services.NewMatchService(norm, runner,
		report.NewAssembler(logger), report.NewAuditor(config.C.NearMissLimit, logger),
		store, store, registry, reviewIndexer, logger)

	run, err := matchService.RunBatch(ctx)
	if err != nil {
		logger.Fatal("batch run failed", zap.Error(err))
	}

	printReport(run)
}

func printReport(run *models.MatchRun) {
	stats := run.Stats
	fmt.Printf("run %s: %s\n", run.RunID, run.Status)
	fmt.Printf("  input fingerprint:  %s\n", run.InputFingerprint)
	fmt.Printf("  output fingerprint: %s\n", run.OutputFingerprint)
	if stats == nil {
		return
	}
	fmt.Printf("  donations: %d  matched: %d (%.2f%%)  avg confidence: %.3f\n",
		stats.TotalDonations, stats.MatchedCount, stats.MatchRate*100, stats.AvgConfidence)
	for _, m := range stats.ByMethod {
		fmt.Printf("    %-18s %8d  %6.2f%%  avg %.2f\n",
			m.Method, m.Count, m.Percent, m.AvgConfidence)
	}
	if stats.StateFallbackMatches > 0 {
		fmt.Printf("  state-only fallback matches (cross-city hazard): %d\n",
			stats.StateFallbackMatches)
	}
	if stats.AmbiguousMatches > 0 {
		fmt.Printf("  ambiguous (tie-broken) matches: %d\n", stats.AmbiguousMatches)
	}
	if n := len(stats.NearMisses); n > 0 {
		fmt.Printf("  near misses reported for review: %d\n", n)
	}
}

func loadConfig() {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

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
