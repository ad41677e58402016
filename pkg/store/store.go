// Package store defines the typed repositories the scheduling engine reads
// and writes through. The Mongo-backed implementation lives in mongostore;
// memstore provides the in-memory double used by tests.
package store

import (
	"context"
	"time"

	"github.com/schoolfleet/schoolfleet/pkg/fleet"
)

type Store interface {
	Routes() RouteRepository
	Buses() BusRepository
	Drivers() DriverRepository
	StudentRoutes() StudentRouteRepository
	RouteLogs() RouteLogRepository
	Incidents() IncidentRepository
	SagaLogs() SagaLogRepository
}

// RouteRepository queries are all equality-filter finds; Update is
// conditional on the Version the caller read and bumps it on success,
// returning fleet.StaleVersionError when a concurrent writer got there first.
type RouteRepository interface {
	Get(ctx context.Context, identifier string) (*fleet.Route, error)
	FindByDriver(ctx context.Context, driverRef string, status fleet.RouteStatus) ([]fleet.Route, error)
	FindByBus(ctx context.Context, busRef string, status fleet.RouteStatus) ([]fleet.Route, error)
	FindBySchool(ctx context.Context, schoolRef string) ([]fleet.Route, error)
	All(ctx context.Context) ([]fleet.Route, error)
	Insert(ctx context.Context, route *fleet.Route) error
	Update(ctx context.Context, route *fleet.Route) error
	Delete(ctx context.Context, identifier string) error
}

type BusRepository interface {
	Get(ctx context.Context, identifier string) (*fleet.Bus, error)
	All(ctx context.Context) ([]fleet.Bus, error)
	Insert(ctx context.Context, bus *fleet.Bus) error
	Update(ctx context.Context, bus *fleet.Bus) error
	Delete(ctx context.Context, identifier string) error
}

type DriverRepository interface {
	Get(ctx context.Context, identifier string) (*fleet.Driver, error)
	All(ctx context.Context) ([]fleet.Driver, error)
	Insert(ctx context.Context, driver *fleet.Driver) error
	Update(ctx context.Context, driver *fleet.Driver) error
	Delete(ctx context.Context, identifier string) error
}

// StudentRouteRepository carries the one atomic multi-document path: replacing
// a route's full assignment set in a single batch.
type StudentRouteRepository interface {
	FindByRoute(ctx context.Context, routeRef string) ([]fleet.StudentRouteAssignment, error)
	ReplaceForRoute(ctx context.Context, routeRef string, assignments []fleet.StudentRouteAssignment) error
}

type RouteLogRepository interface {
	Insert(ctx context.Context, routeLog *fleet.RouteLog) error
	FindByRoute(ctx context.Context, routeRef string, limit int64) ([]fleet.RouteLog, error)
}

type IncidentRepository interface {
	FindSince(ctx context.Context, since time.Time) ([]fleet.Incident, error)
}

type SagaLogRepository interface {
	Insert(ctx context.Context, sagaLog *fleet.SagaLog) error
	Update(ctx context.Context, sagaLog *fleet.SagaLog) error
	FindRunning(ctx context.Context) ([]fleet.SagaLog, error)
}
