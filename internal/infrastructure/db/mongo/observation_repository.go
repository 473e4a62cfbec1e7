package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/domain"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/ports"
)

const collectionObservations = "weather_observations"

// ObservationRepository is the landing store for collected weather
// observations. Documents are keyed by the (city, timestamp) identity, so
// re-collecting a date overwrites rather than duplicates.
type ObservationRepository struct {
	col *mongo.Collection
}

var (
	_ ports.ObservationSink = (*ObservationRepository)(nil)
	_ ports.WeatherSource   = (*ObservationRepository)(nil)
)

func NewObservationRepository(db *mongo.Database) *ObservationRepository {
	return &ObservationRepository{col: db.Collection(collectionObservations)}
}

// UpsertObservations replaces or inserts each observation by identity.
func (r *ObservationRepository) UpsertObservations(ctx context.Context, obs []domain.WeatherObservation) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if len(obs) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(obs))
	for _, o := range obs {
		filter := bson.M{"city": o.City, "timestamp": o.Timestamp}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(filter).
			SetReplacement(o).
			SetUpsert(true))
	}

	if _, err := r.col.BulkWrite(ctx, models); err != nil {
		return fmt.Errorf("upsert observations: %w", err)
	}
	return nil
}

// ListObservations returns the full observation snapshot ordered by city
// then timestamp.
func (r *ObservationRepository) ListObservations(ctx context.Context) ([]domain.WeatherObservation, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "city", Value: 1}, {Key: "timestamp", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find observations: %w", err)
	}
	defer cur.Close(ctx)

	var obs []domain.WeatherObservation
	if err := cur.All(ctx, &obs); err != nil {
		return nil, fmt.Errorf("decode observations: %w", err)
	}
	return obs, nil
}

// EnsureIndexes creates the unique identity index on the collection.
func (r *ObservationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "city", Value: 1}, {Key: "timestamp", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
