package mongostore

import (
	"context"

	"github.com/schoolfleet/schoolfleet/pkg/database"
	"github.com/schoolfleet/schoolfleet/pkg/fleet"
	"go.mongodb.org/mongo-driver/bson"
)

type BusRepository struct{}

func (r *BusRepository) Get(ctx context.Context, identifier string) (*fleet.Bus, error) {
	return findOne[fleet.Bus](ctx, database.GetCollection("buses"), "buses", identifier)
}

func (r *BusRepository) All(ctx context.Context) ([]fleet.Bus, error) {
	return findMany[fleet.Bus](ctx, database.GetCollection("buses"), "buses", bson.M{})
}

func (r *BusRepository) Insert(ctx context.Context, bus *fleet.Bus) error {
	stampInsert(&bus.CreationDateTime, &bus.ModificationDateTime, &bus.Version)

	_, err := database.GetCollection("buses").InsertOne(ctx, bus)
	if err != nil {
		return &fleet.ExternalServiceError{Operation: "insert buses", Err: err}
	}
	return nil
}

func (r *BusRepository) Update(ctx context.Context, bus *fleet.Bus) error {
	expectedVersion := bus.Version
	stampUpdate(&bus.ModificationDateTime, &bus.Version)

	err := replaceVersioned(ctx, database.GetCollection("buses"), "buses",
		bus.PrimaryIdentifier, expectedVersion, bus)
	if err != nil {
		bus.Version = expectedVersion
		return err
	}
	return nil
}

func (r *BusRepository) Delete(ctx context.Context, identifier string) error {
	return deleteOne(ctx, database.GetCollection("buses"), "buses", identifier)
}

type DriverRepository struct{}

func (r *DriverRepository) Get(ctx context.Context, identifier string) (*fleet.Driver, error) {
	return findOne[fleet.Driver](ctx, database.GetCollection("drivers"), "drivers", identifier)
}

func (r *DriverRepository) All(ctx context.Context) ([]fleet.Driver, error) {
	return findMany[fleet.Driver](ctx, database.GetCollection("drivers"), "drivers", bson.M{})
}

func (r *DriverRepository) Insert(ctx context.Context, driver *fleet.Driver) error {
	stampInsert(&driver.CreationDateTime, &driver.ModificationDateTime, &driver.Version)

	_, err := database.GetCollection("drivers").InsertOne(ctx, driver)
	if err != nil {
		return &fleet.ExternalServiceError{Operation: "insert drivers", Err: err}
	}
	return nil
}

func (r *DriverRepository) Update(ctx context.Context, driver *fleet.Driver) error {
	expectedVersion := driver.Version
	stampUpdate(&driver.ModificationDateTime, &driver.Version)

	err := replaceVersioned(ctx, database.GetCollection("drivers"), "drivers",
		driver.PrimaryIdentifier, expectedVersion, driver)
	if err != nil {
		driver.Version = expectedVersion
		return err
	}
	return nil
}

func (r *DriverRepository) Delete(ctx context.Context, identifier string) error {
	return deleteOne(ctx, database.GetCollection("drivers"), "drivers", identifier)
}
