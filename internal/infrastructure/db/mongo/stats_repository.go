package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/reel2bits/accounts-api/internal/core/domain"
	"github.com/reel2bits/accounts-api/internal/core/ports"
)

const (
	followsCollection  = "follows"
	statusesCollection = "statuses"
)

var _ ports.AccountStats = (*StatsRepository)(nil)

// StatsRepository counts follow relations and statuses owned by an actor.
// The collections are written by other services; an absent collection counts
// as zero.
type StatsRepository struct {
	follows  *mongo.Collection
	statuses *mongo.Collection
}

func NewStatsRepository(db *mongo.Database) *StatsRepository {
	return &StatsRepository{
		follows:  db.Collection(followsCollection),
		statuses: db.Collection(statusesCollection),
	}
}

func (r *StatsRepository) Counts(ctx context.Context, actorID string) (domain.AccountCounts, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var counts domain.AccountCounts
	var err error

	if counts.Followers, err = r.follows.CountDocuments(ctx, bson.M{"target_id": actorID, "accepted": true}); err != nil {
		return domain.AccountCounts{}, fmt.Errorf("count followers: %w", err)
	}
	if counts.Following, err = r.follows.CountDocuments(ctx, bson.M{"actor_id": actorID, "accepted": true}); err != nil {
		return domain.AccountCounts{}, fmt.Errorf("count following: %w", err)
	}
	if counts.Statuses, err = r.statuses.CountDocuments(ctx, bson.M{"actor_id": actorID}); err != nil {
		return domain.AccountCounts{}, fmt.Errorf("count statuses: %w", err)
	}
	return counts, nil
}
