// Package memstore is a mutex-guarded in-memory implementation of the store
// repositories, used by the test suites in place of a live MongoDB.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/jinzhu/copier"
	"github.com/schoolfleet/schoolfleet/pkg/fleet"
	"github.com/schoolfleet/schoolfleet/pkg/store"
)

type MemoryStore struct {
	mutex sync.Mutex

	routes        map[string]*fleet.Route
	buses         map[string]*fleet.Bus
	drivers       map[string]*fleet.Driver
	studentRoutes map[string][]fleet.StudentRouteAssignment
	routeLogs     []fleet.RouteLog
	incidents     []fleet.Incident
	sagaLogs      map[string]*fleet.SagaLog

	// FailNextUpdate makes the next route/bus/driver update fail with the
	// given error; FailUpdateFor targets a single record by identifier.
	// Both are one-shot, for exercising saga compensation.
	FailNextUpdate error
	FailUpdateFor  map[string]error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		routes:        map[string]*fleet.Route{},
		buses:         map[string]*fleet.Bus{},
		drivers:       map[string]*fleet.Driver{},
		studentRoutes: map[string][]fleet.StudentRouteAssignment{},
		sagaLogs:      map[string]*fleet.SagaLog{},
	}
}

func (s *MemoryStore) Routes() store.RouteRepository               { return &routeRepository{store: s} }
func (s *MemoryStore) Buses() store.BusRepository                  { return &busRepository{store: s} }
func (s *MemoryStore) Drivers() store.DriverRepository             { return &driverRepository{store: s} }
func (s *MemoryStore) StudentRoutes() store.StudentRouteRepository { return &studentRouteRepository{store: s} }
func (s *MemoryStore) RouteLogs() store.RouteLogRepository         { return &routeLogRepository{store: s} }
func (s *MemoryStore) Incidents() store.IncidentRepository         { return &incidentRepository{store: s} }
func (s *MemoryStore) SagaLogs() store.SagaLogRepository           { return &sagaLogRepository{store: s} }

// SeedIncident loads an incident record, standing in for the incident-entry
// screens that normally write the collection.
func (s *MemoryStore) SeedIncident(incident fleet.Incident) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.incidents = append(s.incidents, incident)
}

func (s *MemoryStore) RouteLogCount() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.routeLogs)
}

func (s *MemoryStore) SagaLog(identifier string) *fleet.SagaLog {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.sagaLogs[identifier]
}

func (s *MemoryStore) AllSagaLogs() []fleet.SagaLog {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var results []fleet.SagaLog
	for _, sagaLog := range s.sagaLogs {
		results = append(results, *clone(sagaLog))
	}
	return results
}

func (s *MemoryStore) takeUpdateFailure(identifier string) error {
	if err := s.FailNextUpdate; err != nil {
		s.FailNextUpdate = nil
		return err
	}
	if err := s.FailUpdateFor[identifier]; err != nil {
		delete(s.FailUpdateFor, identifier)
		return err
	}
	return nil
}

func clone[T any](source *T) *T {
	copied := new(T)
	copier.CopyWithOption(copied, source, copier.Option{DeepCopy: true})
	return copied
}

type routeRepository struct {
	store *MemoryStore
}

func (r *routeRepository) Get(ctx context.Context, identifier string) (*fleet.Route, error) {
	r.store.mutex.Lock()
	defer r.store.mutex.Unlock()

	route, ok := r.store.routes[identifier]
	if !ok {
		return nil, &fleet.NotFoundError{Collection: "routes", Identifier: identifier}
	}
	return clone(route), nil
}

func (r *routeRepository) FindByDriver(ctx context.Context, driverRef string, status fleet.RouteStatus) ([]fleet.Route, error) {
	return r.find(func(route *fleet.Route) bool {
		return route.DriverRef == driverRef && route.Status == status
	})
}

func (r *routeRepository) FindByBus(ctx context.Context, busRef string, status fleet.RouteStatus) ([]fleet.Route, error) {
	return r.find(func(route *fleet.Route) bool {
		return route.BusRef == busRef && route.Status == status
	})
}

func (r *routeRepository) FindBySchool(ctx context.Context, schoolRef string) ([]fleet.Route, error) {
	return r.find(func(route *fleet.Route) bool {
		return route.SchoolRef == schoolRef
	})
}

func (r *routeRepository) All(ctx context.Context) ([]fleet.Route, error) {
	return r.find(func(route *fleet.Route) bool { return true })
}

func (r *routeRepository) find(match func(*fleet.Route) bool) ([]fleet.Route, error) {
	r.store.mutex.Lock()
	defer r.store.mutex.Unlock()

	var results []fleet.Route
	for _, route := range r.store.routes {
		if match(route) {
			results = append(results, *clone(route))
		}
	}
	return results, nil
}

func (r *routeRepository) Insert(ctx context.Context, route *fleet.Route) error {
	r.store.mutex.Lock()
	defer r.store.mutex.Unlock()

	now := time.Now()
	route.CreationDateTime = now
	route.ModificationDateTime = now
	route.Version = 1

	r.store.routes[route.PrimaryIdentifier] = clone(route)
	return nil
}

func (r *routeRepository) Update(ctx context.Context, route *fleet.Route) error {
	r.store.mutex.Lock()
	defer r.store.mutex.Unlock()

	if err := r.store.takeUpdateFailure(route.PrimaryIdentifier); err != nil {
		return err
	}

	existing, ok := r.store.routes[route.PrimaryIdentifier]
	if !ok {
		return &fleet.NotFoundError{Collection: "routes", Identifier: route.PrimaryIdentifier}
	}
	if existing.Version != route.Version {
		return &fleet.StaleVersionError{Collection: "routes", Identifier: route.PrimaryIdentifier}
	}

	route.Version++
	route.ModificationDateTime = time.Now()
	r.store.routes[route.PrimaryIdentifier] = clone(route)
	return nil
}

func (r *routeRepository) Delete(ctx context.Context, identifier string) error {
	r.store.mutex.Lock()
	defer r.store.mutex.Unlock()

	if _, ok := r.store.routes[identifier]; !ok {
		return &fleet.NotFoundError{Collection: "routes", Identifier: identifier}
	}
	delete(r.store.routes, identifier)
	return nil
}

type busRepository struct {
	store *MemoryStore
}

func (r *busRepository) Get(ctx context.Context, identifier string) (*fleet.Bus, error) {
	r.store.mutex.Lock()
	defer r.store.mutex.Unlock()

	bus, ok := r.store.buses[identifier]
	if !ok {
		return nil, &fleet.NotFoundError{Collection: "buses", Identifier: identifier}
	}
	return clone(bus), nil
}

func (r *busRepository) All(ctx context.Context) ([]fleet.Bus, error) {
	r.store.mutex.Lock()
	defer r.store.mutex.Unlock()

	var results []fleet.Bus
	for _, bus := range r.store.buses {
		results = append(results, *clone(bus))
	}
	return results, nil
}

func (r *busRepository) Insert(ctx context.Context, bus *fleet.Bus) error {
	r.store.mutex.Lock()
	defer r.store.mutex.Unlock()

	now := time.Now()
	bus.CreationDateTime = now
	bus.ModificationDateTime = now
	bus.Version = 1

	r.store.buses[bus.PrimaryIdentifier] = clone(bus)
	return nil
}

func (r *busRepository) Update(ctx context.Context, bus *fleet.Bus) error {
	r.store.mutex.Lock()
	defer r.store.mutex.Unlock()

	if err := r.store.takeUpdateFailure(bus.PrimaryIdentifier); err != nil {
		return err
	}

	existing, ok := r.store.buses[bus.PrimaryIdentifier]
	if !ok {
		return &fleet.NotFoundError{Collection: "buses", Identifier: bus.PrimaryIdentifier}
	}
	if existing.Version != bus.Version {
		return &fleet.StaleVersionError{Collection: "buses", Identifier: bus.PrimaryIdentifier}
	}

	bus.Version++
	bus.ModificationDateTime = time.Now()
	r.store.buses[bus.PrimaryIdentifier] = clone(bus)
	return nil
}

func (r *busRepository) Delete(ctx context.Context, identifier string) error {
	r.store.mutex.Lock()
	defer r.store.mutex.Unlock()

	if _, ok := r.store.buses[identifier]; !ok {
		return &fleet.NotFoundError{Collection: "buses", Identifier: identifier}
	}
	delete(r.store.buses, identifier)
	return nil
}

type driverRepository struct {
	store *MemoryStore
}

func (r *driverRepository) Get(ctx context.Context, identifier string) (*fleet.Driver, error) {
	r.store.mutex.Lock()
	defer r.store.mutex.Unlock()

	driver, ok := r.store.drivers[identifier]
	if !ok {
		return nil, &fleet.NotFoundError{Collection: "drivers", Identifier: identifier}
	}
	return clone(driver), nil
}

func (r *driverRepository) All(ctx context.Context) ([]fleet.Driver, error) {
	r.store.mutex.Lock()
	defer r.store.mutex.Unlock()

	var results []fleet.Driver
	for _, driver := range r.store.drivers {
		results = append(results, *clone(driver))
	}
	return results, nil
}

func (r *driverRepository) Insert(ctx context.Context, driver *fleet.Driver) error {
	r.store.mutex.Lock()
	defer r.store.mutex.Unlock()

	now := time.Now()
	driver.CreationDateTime = now
	driver.ModificationDateTime = now
	driver.Version = 1

	r.store.drivers[driver.PrimaryIdentifier] = clone(driver)
	return nil
}

func (r *driverRepository) Update(ctx context.Context, driver *fleet.Driver) error {
	r.store.mutex.Lock()
	defer r.store.mutex.Unlock()

	if err := r.store.takeUpdateFailure(driver.PrimaryIdentifier); err != nil {
		return err
	}

	existing, ok := r.store.drivers[driver.PrimaryIdentifier]
	if !ok {
		return &fleet.NotFoundError{Collection: "drivers", Identifier: driver.PrimaryIdentifier}
	}
	if existing.Version != driver.Version {
		return &fleet.StaleVersionError{Collection: "drivers", Identifier: driver.PrimaryIdentifier}
	}

	driver.Version++
	driver.ModificationDateTime = time.Now()
	r.store.drivers[driver.PrimaryIdentifier] = clone(driver)
	return nil
}

func (r *driverRepository) Delete(ctx context.Context, identifier string) error {
	r.store.mutex.Lock()
	defer r.store.mutex.Unlock()

	if _, ok := r.store.drivers[identifier]; !ok {
		return &fleet.NotFoundError{Collection: "drivers", Identifier: identifier}
	}
	delete(r.store.drivers, identifier)
	return nil
}

type studentRouteRepository struct {
	store *MemoryStore
}

func (r *studentRouteRepository) FindByRoute(ctx context.Context, routeRef string) ([]fleet.StudentRouteAssignment, error) {
	r.store.mutex.Lock()
	defer r.store.mutex.Unlock()

	assignments := make([]fleet.StudentRouteAssignment, len(r.store.studentRoutes[routeRef]))
	copy(assignments, r.store.studentRoutes[routeRef])
	return assignments, nil
}

func (r *studentRouteRepository) ReplaceForRoute(ctx context.Context, routeRef string, assignments []fleet.StudentRouteAssignment) error {
	r.store.mutex.Lock()
	defer r.store.mutex.Unlock()

	now := time.Now()
	replacement := make([]fleet.StudentRouteAssignment, len(assignments))
	copy(replacement, assignments)
	for index := range replacement {
		replacement[index].RouteRef = routeRef
		replacement[index].CreationDateTime = now
		replacement[index].ModificationDateTime = now
	}

	r.store.studentRoutes[routeRef] = replacement
	return nil
}

type routeLogRepository struct {
	store *MemoryStore
}

func (r *routeLogRepository) Insert(ctx context.Context, routeLog *fleet.RouteLog) error {
	r.store.mutex.Lock()
	defer r.store.mutex.Unlock()

	if routeLog.CreationDateTime.IsZero() {
		routeLog.CreationDateTime = time.Now()
	}
	r.store.routeLogs = append(r.store.routeLogs, *routeLog)
	return nil
}

func (r *routeLogRepository) FindByRoute(ctx context.Context, routeRef string, limit int64) ([]fleet.RouteLog, error) {
	r.store.mutex.Lock()
	defer r.store.mutex.Unlock()

	var results []fleet.RouteLog
	for _, routeLog := range r.store.routeLogs {
		if routeLog.RouteRef == routeRef {
			results = append(results, routeLog)
		}
		if limit > 0 && int64(len(results)) == limit {
			break
		}
	}
	return results, nil
}

type incidentRepository struct {
	store *MemoryStore
}

func (r *incidentRepository) FindSince(ctx context.Context, since time.Time) ([]fleet.Incident, error) {
	r.store.mutex.Lock()
	defer r.store.mutex.Unlock()

	var results []fleet.Incident
	for _, incident := range r.store.incidents {
		if !incident.CreationDateTime.Before(since) {
			results = append(results, incident)
		}
	}
	return results, nil
}

type sagaLogRepository struct {
	store *MemoryStore
}

func (r *sagaLogRepository) Insert(ctx context.Context, sagaLog *fleet.SagaLog) error {
	r.store.mutex.Lock()
	defer r.store.mutex.Unlock()

	now := time.Now()
	sagaLog.CreationDateTime = now
	sagaLog.ModificationDateTime = now
	r.store.sagaLogs[sagaLog.PrimaryIdentifier] = clone(sagaLog)
	return nil
}

func (r *sagaLogRepository) Update(ctx context.Context, sagaLog *fleet.SagaLog) error {
	r.store.mutex.Lock()
	defer r.store.mutex.Unlock()

	sagaLog.ModificationDateTime = time.Now()
	r.store.sagaLogs[sagaLog.PrimaryIdentifier] = clone(sagaLog)
	return nil
}

func (r *sagaLogRepository) FindRunning(ctx context.Context) ([]fleet.SagaLog, error) {
	r.store.mutex.Lock()
	defer r.store.mutex.Unlock()

	var results []fleet.SagaLog
	for _, sagaLog := range r.store.sagaLogs {
		if sagaLog.State == fleet.SagaStateRunning {
			results = append(results, *clone(sagaLog))
		}
	}
	return results, nil
}
