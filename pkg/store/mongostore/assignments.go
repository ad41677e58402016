package mongostore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/schoolfleet/schoolfleet/pkg/database"
	"github.com/schoolfleet/schoolfleet/pkg/fleet"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type StudentRouteRepository struct{}

func (r *StudentRouteRepository) FindByRoute(ctx context.Context, routeRef string) ([]fleet.StudentRouteAssignment, error) {
	return findMany[fleet.StudentRouteAssignment](ctx, database.GetCollection("student_routes"),
		"student_routes", bson.M{"routeref": routeRef})
}

// ReplaceForRoute swaps a route's full student-assignment set inside a single
// transaction. This is the only multi-document write with atomicity; every
// other sequence goes through the assignment saga.
func (r *StudentRouteRepository) ReplaceForRoute(ctx context.Context, routeRef string, assignments []fleet.StudentRouteAssignment) error {
	session, err := database.MongoGlobalInstance.Client.StartSession()
	if err != nil {
		return &fleet.ExternalServiceError{Operation: "replace student_routes", Err: err}
	}
	defer session.EndSession(ctx)

	collection := database.GetCollection("student_routes")

	_, err = session.WithTransaction(ctx, func(sessionContext mongo.SessionContext) (interface{}, error) {
		if _, err := collection.DeleteMany(sessionContext, bson.M{"routeref": routeRef}); err != nil {
			return nil, err
		}

		if len(assignments) == 0 {
			return nil, nil
		}

		now := time.Now()
		documents := make([]interface{}, 0, len(assignments))
		for index := range assignments {
			if assignments[index].PrimaryIdentifier == "" {
				assignments[index].PrimaryIdentifier = uuid.NewString()
			}
			assignments[index].RouteRef = routeRef
			assignments[index].CreationDateTime = now
			assignments[index].ModificationDateTime = now

			documents = append(documents, assignments[index])
		}

		_, err := collection.InsertMany(sessionContext, documents)
		return nil, err
	})
	if err != nil {
		return &fleet.ExternalServiceError{Operation: "replace student_routes", Err: err}
	}

	return nil
}

type SagaLogRepository struct{}

func (r *SagaLogRepository) Insert(ctx context.Context, sagaLog *fleet.SagaLog) error {
	now := time.Now()
	sagaLog.CreationDateTime = now
	sagaLog.ModificationDateTime = now

	_, err := database.GetCollection("saga_logs").InsertOne(ctx, sagaLog)
	if err != nil {
		return &fleet.ExternalServiceError{Operation: "insert saga_logs", Err: err}
	}
	return nil
}

func (r *SagaLogRepository) Update(ctx context.Context, sagaLog *fleet.SagaLog) error {
	sagaLog.ModificationDateTime = time.Now()

	opts := options.Update().SetUpsert(true)
	_, err := database.GetCollection("saga_logs").UpdateOne(ctx,
		bson.M{"primaryidentifier": sagaLog.PrimaryIdentifier},
		bson.M{"$set": sagaLog}, opts)
	if err != nil {
		return &fleet.ExternalServiceError{Operation: "update saga_logs", Err: err}
	}
	return nil
}

func (r *SagaLogRepository) FindRunning(ctx context.Context) ([]fleet.SagaLog, error) {
	return findMany[fleet.SagaLog](ctx, database.GetCollection("saga_logs"), "saga_logs",
		bson.M{"state": fleet.SagaStateRunning})
}
