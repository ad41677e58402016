package mongostore

import (
	"context"

	"github.com/schoolfleet/schoolfleet/pkg/database"
	"github.com/schoolfleet/schoolfleet/pkg/fleet"
	"go.mongodb.org/mongo-driver/bson"
)

type RouteRepository struct{}

func (r *RouteRepository) Get(ctx context.Context, identifier string) (*fleet.Route, error) {
	return findOne[fleet.Route](ctx, database.GetCollection("routes"), "routes", identifier)
}

func (r *RouteRepository) FindByDriver(ctx context.Context, driverRef string, status fleet.RouteStatus) ([]fleet.Route, error) {
	return findMany[fleet.Route](ctx, database.GetCollection("routes"), "routes",
		bson.M{"driverref": driverRef, "status": status})
}

func (r *RouteRepository) FindByBus(ctx context.Context, busRef string, status fleet.RouteStatus) ([]fleet.Route, error) {
	return findMany[fleet.Route](ctx, database.GetCollection("routes"), "routes",
		bson.M{"busref": busRef, "status": status})
}

func (r *RouteRepository) FindBySchool(ctx context.Context, schoolRef string) ([]fleet.Route, error) {
	return findMany[fleet.Route](ctx, database.GetCollection("routes"), "routes",
		bson.M{"schoolref": schoolRef})
}

func (r *RouteRepository) All(ctx context.Context) ([]fleet.Route, error) {
	return findMany[fleet.Route](ctx, database.GetCollection("routes"), "routes", bson.M{})
}

func (r *RouteRepository) Insert(ctx context.Context, route *fleet.Route) error {
	stampInsert(&route.CreationDateTime, &route.ModificationDateTime, &route.Version)

	_, err := database.GetCollection("routes").InsertOne(ctx, route)
	if err != nil {
		return &fleet.ExternalServiceError{Operation: "insert routes", Err: err}
	}
	return nil
}

func (r *RouteRepository) Update(ctx context.Context, route *fleet.Route) error {
	expectedVersion := route.Version
	stampUpdate(&route.ModificationDateTime, &route.Version)

	err := replaceVersioned(ctx, database.GetCollection("routes"), "routes",
		route.PrimaryIdentifier, expectedVersion, route)
	if err != nil {
		route.Version = expectedVersion
		return err
	}
	return nil
}

func (r *RouteRepository) Delete(ctx context.Context, identifier string) error {
	return deleteOne(ctx, database.GetCollection("routes"), "routes", identifier)
}
