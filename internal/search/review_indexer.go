// Package search maintains the operator review index: unmatched match
// results pushed to Meilisearch so the review UI can search them by donor
// name, city, or committee.
package search

import (
	"fmt"
	"time"

	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"

	"github.com/donor-resolver/app/models"
)

// ReviewConfig configures the Meilisearch connection.
type ReviewConfig struct {
	Host      string
	APIKey    string
	IndexName string
	Timeout   time.Duration
}

// reviewDoc is the indexed shape of an unmatched result.
type reviewDoc struct {
	DonationID    string  `json:"donation_id"`
	RunID         string  `json:"run_id"`
	DonorName     string  `json:"donor_name"`
	City          string  `json:"city"`
	State         string  `json:"state"`
	CommitteeName string  `json:"committee_name"`
	Amount        float64 `json:"amount"`
	ElectionYear  int     `json:"election_year"`
}

// ReviewIndexer pushes unmatched results into Meilisearch after a run.
type ReviewIndexer struct {
	client    meilisearch.ServiceManager
	indexName string
	logger    *zap.Logger
}

// NewReviewIndexer connects to Meilisearch and verifies health.
func NewReviewIndexer(cfg ReviewConfig, logger *zap.Logger) (*ReviewIndexer, error) {
	client := meilisearch.New(cfg.Host, meilisearch.WithAPIKey(cfg.APIKey))
	if _, err := client.Health(); err != nil {
		return nil, fmt.Errorf("meilisearch health check: %w", err)
	}
	return &ReviewIndexer{
		client:    client,
		indexName: cfg.IndexName,
		logger:    logger,
	}, nil
}

// BuildIndex applies index settings: searchable donor fields, filterable
// run/state/year for the review UI's facets.
func (ri *ReviewIndexer) BuildIndex() error {
	index := ri.client.Index(ri.indexName)
	task, err := index.UpdateSettings(&meilisearch.Settings{
		SearchableAttributes: []string{"donor_name", "city", "committee_name"},
		FilterableAttributes: []string{"run_id", "state", "election_year"},
		SortableAttributes:   []string{"amount", "election_year"},
	})
	if err != nil {
		return fmt.Errorf("update review index settings: %w", err)
	}
	ri.logger.Info("review index settings updated", zap.Int64("task_uid", task.TaskUID))
	return nil
}

// IndexUnmatched replaces the review index content with the unmatched rows
// of the given run. Each run fully rebuilds the review set, mirroring the
// full-rebuild semantics of the result table itself.
func (ri *ReviewIndexer) IndexUnmatched(runID string, results []models.MatchResult) error {
	index := ri.client.Index(ri.indexName)

	if _, err := index.DeleteAllDocuments(); err != nil {
		return fmt.Errorf("clear review index: %w", err)
	}

	docs := make([]reviewDoc, 0, len(results))
	for i := range results {
		r := &results[i]
		if r.Matched() {
			continue
		}
		docs = append(docs, reviewDoc{
			DonationID:    r.DonationID,
			RunID:         runID,
			DonorName:     r.FullName,
			City:          r.City,
			State:         r.State,
			CommitteeName: r.CommitteeName,
			Amount:        r.Amount,
			ElectionYear:  r.ElectionYear,
		})
	}

	const batchSize = 5000
	for i := 0; i < len(docs); i += batchSize {
		end := i + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		task, err := index.AddDocuments(docs[i:end], "donation_id")
		if err != nil {
			return fmt.Errorf("index review batch %d-%d: %w", i, end, err)
		}
		ri.logger.Debug("review batch indexed",
			zap.Int("from", i),
			zap.Int("to", end),
			zap.Int64("task_uid", task.TaskUID))
	}

	ri.logger.Info("review index rebuilt",
		zap.String("run_id", runID),
		zap.Int("unmatched", len(docs)))
	return nil
}
