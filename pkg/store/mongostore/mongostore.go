// Package mongostore implements the store repositories on top of the shared
// MongoDB instance.
package mongostore

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/schoolfleet/schoolfleet/pkg/fleet"
	"github.com/schoolfleet/schoolfleet/pkg/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoStore struct {
	routes        *RouteRepository
	buses         *BusRepository
	drivers       *DriverRepository
	studentRoutes *StudentRouteRepository
	routeLogs     *RouteLogRepository
	incidents     *IncidentRepository
	sagaLogs      *SagaLogRepository
}

func NewMongoStore() *MongoStore {
	return &MongoStore{
		routes:        &RouteRepository{},
		buses:         &BusRepository{},
		drivers:       &DriverRepository{},
		studentRoutes: &StudentRouteRepository{},
		routeLogs:     &RouteLogRepository{},
		incidents:     &IncidentRepository{},
		sagaLogs:      &SagaLogRepository{},
	}
}

func (s *MongoStore) Routes() store.RouteRepository               { return s.routes }
func (s *MongoStore) Buses() store.BusRepository                  { return s.buses }
func (s *MongoStore) Drivers() store.DriverRepository             { return s.drivers }
func (s *MongoStore) StudentRoutes() store.StudentRouteRepository { return s.studentRoutes }
func (s *MongoStore) RouteLogs() store.RouteLogRepository         { return s.routeLogs }
func (s *MongoStore) Incidents() store.IncidentRepository         { return s.incidents }
func (s *MongoStore) SagaLogs() store.SagaLogRepository           { return s.sagaLogs }

const maxReadRetries = 3

// withReadRetry retries transient read failures with exponential backoff.
// Writes are never retried here; the caller owns retry of the whole operation.
func withReadRetry(ctx context.Context, operation func() error) error {
	retryPolicy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxReadRetries), ctx)

	return backoff.Retry(operation, retryPolicy)
}

func findOne[T any](ctx context.Context, collection *mongo.Collection, collectionName string, identifier string) (*T, error) {
	var record *T

	err := withReadRetry(ctx, func() error {
		result := collection.FindOne(ctx, bson.M{"primaryidentifier": identifier})
		if err := result.Err(); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return backoff.Permanent(err)
			}
			return err
		}
		return backoff.Permanent(result.Decode(&record))
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &fleet.NotFoundError{Collection: collectionName, Identifier: identifier}
		}
		return nil, &fleet.ExternalServiceError{Operation: "get " + collectionName, Err: err}
	}

	return record, nil
}

func findMany[T any](ctx context.Context, collection *mongo.Collection, collectionName string, filter bson.M) ([]T, error) {
	var records []T

	err := withReadRetry(ctx, func() error {
		cursor, err := collection.Find(ctx, filter)
		if err != nil {
			return err
		}
		records = nil
		return backoff.Permanent(cursor.All(ctx, &records))
	})
	if err != nil {
		return nil, &fleet.ExternalServiceError{Operation: "find " + collectionName, Err: err}
	}

	return records, nil
}

// replaceVersioned performs the conditional replace behind every Update: the
// filter includes the version the caller read so a lost race surfaces as a
// StaleVersionError instead of silently clobbering the concurrent write.
func replaceVersioned(ctx context.Context, collection *mongo.Collection, collectionName string, identifier string, expectedVersion int64, record interface{}) error {
	filter := bson.M{"primaryidentifier": identifier, "version": expectedVersion}

	result, err := collection.ReplaceOne(ctx, filter, record)
	if err != nil {
		return &fleet.ExternalServiceError{Operation: "update " + collectionName, Err: err}
	}

	if result.MatchedCount == 0 {
		count, err := collection.CountDocuments(ctx, bson.M{"primaryidentifier": identifier})
		if err != nil {
			return &fleet.ExternalServiceError{Operation: "update " + collectionName, Err: err}
		}
		if count == 0 {
			return &fleet.NotFoundError{Collection: collectionName, Identifier: identifier}
		}
		return &fleet.StaleVersionError{Collection: collectionName, Identifier: identifier}
	}

	return nil
}

func deleteOne(ctx context.Context, collection *mongo.Collection, collectionName string, identifier string) error {
	result, err := collection.DeleteOne(ctx, bson.M{"primaryidentifier": identifier})
	if err != nil {
		return &fleet.ExternalServiceError{Operation: "delete " + collectionName, Err: err}
	}
	if result.DeletedCount == 0 {
		return &fleet.NotFoundError{Collection: collectionName, Identifier: identifier}
	}
	return nil
}

func stampInsert(creation *time.Time, modification *time.Time, version *int64) {
	now := time.Now()
	*creation = now
	*modification = now
	*version = 1
}

func stampUpdate(modification *time.Time, version *int64) {
	*modification = time.Now()
	*version++
}
