package mongostore

import (
	"context"
	"time"

	"github.com/schoolfleet/schoolfleet/pkg/database"
	"github.com/schoolfleet/schoolfleet/pkg/fleet"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RouteLogRepository struct{}

func (r *RouteLogRepository) Insert(ctx context.Context, routeLog *fleet.RouteLog) error {
	if routeLog.CreationDateTime.IsZero() {
		routeLog.CreationDateTime = time.Now()
	}

	_, err := database.GetCollection("route_logs").InsertOne(ctx, routeLog)
	if err != nil {
		return &fleet.ExternalServiceError{Operation: "insert route_logs", Err: err}
	}
	return nil
}

func (r *RouteLogRepository) FindByRoute(ctx context.Context, routeRef string, limit int64) ([]fleet.RouteLog, error) {
	var records []fleet.RouteLog

	opts := options.Find().
		SetSort(bson.D{{Key: "creationdatetime", Value: -1}}).
		SetLimit(limit)

	err := withReadRetry(ctx, func() error {
		cursor, err := database.GetCollection("route_logs").Find(ctx, bson.M{"routeref": routeRef}, opts)
		if err != nil {
			return err
		}
		records = nil
		return cursor.All(ctx, &records)
	})
	if err != nil {
		return nil, &fleet.ExternalServiceError{Operation: "find route_logs", Err: err}
	}

	return records, nil
}

type IncidentRepository struct{}

func (r *IncidentRepository) FindSince(ctx context.Context, since time.Time) ([]fleet.Incident, error) {
	return findMany[fleet.Incident](ctx, database.GetCollection("incidents"), "incidents",
		bson.M{"creationdatetime": bson.M{"$gte": since}})
}
