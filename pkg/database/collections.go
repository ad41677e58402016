package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createIndexes() {
	createRoutesIndexes()
	createFleetIndexes()
	createAssignmentIndexes()
	createAuditIndexes()
}

func createRoutesIndexes() {
	routesCollection := GetCollection("routes")
	routesIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "busref", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "driverref", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "schoolref", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "stops.location.coordinates", Value: "2d"}},
		},
	}

	opts := options.CreateIndexes()
	_, err := routesCollection.Indexes().CreateMany(context.Background(), routesIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createFleetIndexes() {
	busesCollection := GetCollection("buses")
	busesIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "driverref", Value: 1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := busesCollection.Indexes().CreateMany(context.Background(), busesIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}

	driversCollection := GetCollection("drivers")
	driversIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "assignedbusref", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "schoolrefs", Value: 1}},
		},
	}

	opts = options.CreateIndexes()
	_, err = driversCollection.Indexes().CreateMany(context.Background(), driversIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createAssignmentIndexes() {
	studentRoutesCollection := GetCollection("student_routes")
	_, err := studentRoutesCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "routeref", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "studentref", Value: 1}},
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}

	sagaLogsCollection := GetCollection("saga_logs")
	_, err = sagaLogsCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "state", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "creationdatetime", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(30 * 24 * 3600), // Expire after 30 days
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createAuditIndexes() {
	routeLogsCollection := GetCollection("route_logs")
	_, err := routeLogsCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "routeref", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "creationdatetime", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 3600), // Expire after 90 days
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}

	incidentsCollection := GetCollection("incidents")
	_, err = incidentsCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "creationdatetime", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "schoolref", Value: 1}},
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
