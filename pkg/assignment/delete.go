package assignment

import (
	"context"

	"github.com/schoolfleet/schoolfleet/pkg/fleet"
)

// DeleteBus removes a bus and reverses every link into it: the assigned
// driver is released and any route bound to the bus is unlinked and
// deactivated.
func (c *Coordinator) DeleteBus(ctx context.Context, busRef string) error {
	bus, err := c.store.Buses().Get(ctx, busRef)
	if err != nil {
		return err
	}

	boundRoutes, err := c.store.Routes().FindByBus(ctx, busRef, fleet.RouteStatusActive)
	if err != nil {
		return err
	}

	saga := NewSaga("delete-bus", c.store.SagaLogs())
	saga.BusRef = busRef
	saga.DriverRef = bus.DriverRef

	if bus.DriverRef != "" {
		driver, err := c.store.Drivers().Get(ctx, bus.DriverRef)
		if err == nil {
			snapshot := *driver
			saga.AddStep(Step{
				Name: "release-driver",
				Forward: func(ctx context.Context) error {
					driver.AssignedBusRef = ""
					return c.store.Drivers().Update(ctx, driver)
				},
				Compensate: c.restoreDriverLinks(snapshot),
			})
		}
	}

	c.addDeactivateRoutesStep(saga, boundRoutes)

	saga.AddStep(Step{
		Name: "delete-bus-record",
		Forward: func(ctx context.Context) error {
			return c.store.Buses().Delete(ctx, busRef)
		},
	})

	return saga.Execute(ctx)
}

// DeleteDriver removes a driver, releasing the bus that pointed back at them
// and deactivating the driver's active routes.
func (c *Coordinator) DeleteDriver(ctx context.Context, driverRef string) error {
	driver, err := c.store.Drivers().Get(ctx, driverRef)
	if err != nil {
		return err
	}

	boundRoutes, err := c.store.Routes().FindByDriver(ctx, driverRef, fleet.RouteStatusActive)
	if err != nil {
		return err
	}

	saga := NewSaga("delete-driver", c.store.SagaLogs())
	saga.DriverRef = driverRef
	saga.BusRef = driver.AssignedBusRef

	if driver.AssignedBusRef != "" {
		bus, err := c.store.Buses().Get(ctx, driver.AssignedBusRef)
		if err == nil {
			snapshot := *bus
			saga.AddStep(Step{
				Name: "release-bus",
				Forward: func(ctx context.Context) error {
					bus.DriverRef = ""
					return c.store.Buses().Update(ctx, bus)
				},
				Compensate: c.restoreBusLinks(snapshot),
			})
		}
	}

	c.addDeactivateRoutesStep(saga, boundRoutes)

	saga.AddStep(Step{
		Name: "delete-driver-record",
		Forward: func(ctx context.Context) error {
			return c.store.Drivers().Delete(ctx, driverRef)
		},
	})

	return saga.Execute(ctx)
}

// DeleteRoute removes a route along with its student-assignment set. The bus
// and driver links the route held disappear with the record.
func (c *Coordinator) DeleteRoute(ctx context.Context, routeRef string) error {
	if _, err := c.store.Routes().Get(ctx, routeRef); err != nil {
		return err
	}

	previousAssignments, err := c.store.StudentRoutes().FindByRoute(ctx, routeRef)
	if err != nil {
		return err
	}

	saga := NewSaga("delete-route", c.store.SagaLogs())
	saga.RouteRef = routeRef

	saga.AddStep(Step{
		Name: "clear-student-assignments",
		Forward: func(ctx context.Context) error {
			return c.store.StudentRoutes().ReplaceForRoute(ctx, routeRef, nil)
		},
		Compensate: func(ctx context.Context) error {
			return c.store.StudentRoutes().ReplaceForRoute(ctx, routeRef, previousAssignments)
		},
	})

	saga.AddStep(Step{
		Name: "delete-route-record",
		Forward: func(ctx context.Context) error {
			return c.store.Routes().Delete(ctx, routeRef)
		},
	})

	return saga.Execute(ctx)
}

func (c *Coordinator) addDeactivateRoutesStep(saga *Saga, boundRoutes []fleet.Route) {
	if len(boundRoutes) == 0 {
		return
	}

	snapshots := make([]fleet.Route, len(boundRoutes))
	copy(snapshots, boundRoutes)

	saga.AddStep(Step{
		Name: "deactivate-routes",
		Forward: func(ctx context.Context) error {
			for index := range boundRoutes {
				boundRoutes[index].BusRef = ""
				boundRoutes[index].DriverRef = ""
				boundRoutes[index].Schedule = fleet.ScheduleWindow{}
				boundRoutes[index].Status = fleet.RouteStatusInactive

				if err := c.store.Routes().Update(ctx, &boundRoutes[index]); err != nil {
					return err
				}
			}
			return nil
		},
		Compensate: func(ctx context.Context) error {
			var compensationError error
			for _, snapshot := range snapshots {
				if err := c.restoreRouteLinks(snapshot)(ctx); err != nil {
					compensationError = err
				}
			}
			return compensationError
		},
	})
}
