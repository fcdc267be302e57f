package mongodb

import (
	"context"
	"fmt"
	"time"

	"tabwise_server/core/port/out"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// =============================================================================
// MongoDB Report Adapter
// =============================================================================

const (
	collectionReports = "organize_reports"

	// Reports expire after 90 days; nobody inspects a run older than that.
	reportRetention = 90 * 24 * time.Hour
)

// ReportAdapter implements out.ReportRepository using MongoDB.
type ReportAdapter struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewReportAdapter creates a new MongoDB report adapter.
func NewReportAdapter(db *mongo.Database) *ReportAdapter {
	return &ReportAdapter{
		db:         db,
		collection: db.Collection(collectionReports),
	}
}

// EnsureIndexes creates necessary indexes for the collection.
func (a *ReportAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "started_at", Value: -1}},
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0), // TTL index
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// reportDoc wraps the report with the TTL expiry field.
type reportDoc struct {
	out.OrganizeReport `bson:",inline"`
	ExpiresAt          time.Time `bson:"expires_at"`
}

// SaveReport stores one run report.
func (a *ReportAdapter) SaveReport(ctx context.Context, report *out.OrganizeReport) error {
	doc := reportDoc{
		OrganizeReport: *report,
		ExpiresAt:      report.StartedAt.Add(reportRetention),
	}
	if _, err := a.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// ListReports returns the most recent reports, newest first.
func (a *ReportAdapter) ListReports(ctx context.Context, limit int) ([]out.OrganizeReport, error) {
	if limit <= 0 {
		limit = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := a.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []reportDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode reports: %w", err)
	}

	reports := make([]out.OrganizeReport, 0, len(docs))
	for _, d := range docs {
		reports = append(reports, d.OrganizeReport)
	}
	return reports, nil
}
