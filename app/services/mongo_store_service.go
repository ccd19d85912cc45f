package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/donor-resolver/app/models"
)

// Collection names. Staging is per-run so concurrent reruns cannot clobber
// each other's output before promotion.
const (
	collDonations  = "donations"
	collIdentities = "identities"
	collResults    = "match_results"
	collRuns       = "match_runs"
)

// MongoStoreService is the warehouse adapter: it reads the donation and
// identity snapshots and writes the match result table and run summaries.
// Implements ISnapshotSource and IResultStore.
type MongoStoreService struct {
	db     *mongo.Database
	logger *zap.Logger
}

// NewMongoStoreService wires the adapter over an open database handle.
func NewMongoStoreService(db *mongo.Database, logger *zap.Logger) *MongoStoreService {
	return &MongoStoreService{db: db, logger: logger}
}

// LoadDonations reads the full donation batch, sorted by donation_id so the
// engine always sees the same input order.
func (mss *MongoStoreService) LoadDonations(ctx context.Context) ([]models.DonationRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "donation_id", Value: 1}})
	cursor, err := mss.db.Collection(collDonations).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("query donations: %w", err)
	}
	var donations []models.DonationRecord
	if err := cursor.All(ctx, &donations); err != nil {
		// A decode failure is a structural contract violation: the engine
		// fails the run here, before any output is written.
		return nil, fmt.Errorf("decode donations: %w", err)
	}
	return donations, nil
}

// LoadIdentities reads the full identity snapshot, sorted by identity_id.
func (mss *MongoStoreService) LoadIdentities(ctx context.Context) ([]models.IdentityRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "identity_id", Value: 1}})
	cursor, err := mss.db.Collection(collIdentities).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("query identities: %w", err)
	}
	var identities []models.IdentityRecord
	if err := cursor.All(ctx, &identities); err != nil {
		return nil, fmt.Errorf("decode identities: %w", err)
	}
	return identities, nil
}

func stagingName(runID string) string {
	return collResults + "_staging_" + runID
}

// WriteStaging writes the complete result set into the run's staging
// collection and builds the indexes the CRM/reporting layer queries by.
// Indexes travel with the collection through the rename in Promote.
func (mss *MongoStoreService) WriteStaging(ctx context.Context, runID string, results []models.MatchResult) error {
	staging := mss.db.Collection(stagingName(runID))
	if err := staging.Drop(ctx); err != nil {
		return fmt.Errorf("drop stale staging: %w", err)
	}

	const batchSize = 1000
	for i := 0; i < len(results); i += batchSize {
		end := i + batchSize
		if end > len(results) {
			end = len(results)
		}
		docs := make([]interface{}, 0, end-i)
		for j := i; j < end; j++ {
			docs = append(docs, &results[j])
		}
		if _, err := staging.InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("insert staging batch %d-%d: %w", i, end, err)
		}
	}

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "donation_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "identity_id", Value: 1}}},
		{Keys: bson.D{{Key: "election_year", Value: 1}}},
		{Keys: bson.D{{Key: "method", Value: 1}}},
	}
	if _, err := staging.Indexes().CreateMany(ctx, indexModels); err != nil {
		mss.logger.Warn("failed to create staging indexes", zap.Error(err))
	}

	mss.logger.Info("results staged",
		zap.String("run_id", runID),
		zap.Int("rows", len(results)))
	return nil
}

// Promote renames the staging collection over the live result table,
// dropping the previous table in the same server-side operation. This is
// the full-rebuild swap: readers only ever see the prior complete table or
// the new complete table.
func (mss *MongoStoreService) Promote(ctx context.Context, runID string) error {
	dbName := mss.db.Name()
	cmd := bson.D{
		{Key: "renameCollection", Value: dbName + "." + stagingName(runID)},
		{Key: "to", Value: dbName + "." + collResults},
		{Key: "dropTarget", Value: true},
	}
	if err := mss.db.Client().Database("admin").RunCommand(ctx, cmd).Err(); err != nil {
		return fmt.Errorf("promote staging: %w", err)
	}
	mss.logger.Info("result table promoted", zap.String("run_id", runID))
	return nil
}

// DiscardStaging drops a failed run's staged results, leaving the prior
// live table untouched.
func (mss *MongoStoreService) DiscardStaging(ctx context.Context, runID string) error {
	if err := mss.db.Collection(stagingName(runID)).Drop(ctx); err != nil {
		return fmt.Errorf("discard staging: %w", err)
	}
	return nil
}

// SaveRun upserts the run summary.
func (mss *MongoStoreService) SaveRun(ctx context.Context, run *models.MatchRun) error {
	opts := options.Replace().SetUpsert(true)
	filter := bson.M{"run_id": run.RunID}
	if _, err := mss.db.Collection(collRuns).ReplaceOne(ctx, filter, run, opts); err != nil {
		return fmt.Errorf("save run %s: %w", run.RunID, err)
	}
	return nil
}

// GetRun fetches a persisted run summary.
func (mss *MongoStoreService) GetRun(ctx context.Context, runID string) (*models.MatchRun, bool, error) {
	var run models.MatchRun
	err := mss.db.Collection(collRuns).FindOne(ctx, bson.M{"run_id": runID}).Decode(&run)
	if err == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get run %s: %w", runID, err)
	}
	return &run, true, nil
}

// CountResults returns the live result table size.
func (mss *MongoStoreService) CountResults(ctx context.Context) (int64, error) {
	n, err := mss.db.Collection(collResults).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count results: %w", err)
	}
	return n, nil
}

// Close disconnects the underlying client.
func (mss *MongoStoreService) Close(ctx context.Context) error {
	return mss.db.Client().Disconnect(ctx)
}
