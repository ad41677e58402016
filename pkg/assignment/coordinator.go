// Package assignment keeps the bus/driver/route triad consistent: mutually
// referencing links, a single active route per bus, and no double-booked
// driver start times.
package assignment

import (
	"context"
	"errors"

	"github.com/jinzhu/copier"
	"github.com/schoolfleet/schoolfleet/pkg/fleet"
	"github.com/schoolfleet/schoolfleet/pkg/store"
	"github.com/schoolfleet/schoolfleet/pkg/util"
	"golang.org/x/exp/slices"
)

type Coordinator struct {
	store store.Store
}

func NewCoordinator(entityStore store.Store) *Coordinator {
	return &Coordinator{store: entityStore}
}

type AssignInput struct {
	BusRef    string
	DriverRef string
	RouteRef  string

	Schedule fleet.ScheduleWindow
}

// Assign binds the bus, driver and route together. Validation, resolution and
// the schedule-conflict check all run before any write; the mutation sequence
// itself runs as a saga so a mid-sequence failure rolls the triad back.
func (c *Coordinator) Assign(ctx context.Context, input AssignInput) error {
	if input.BusRef == "" {
		return fleet.NewValidationError("a bus must be selected")
	}
	if input.RouteRef == "" {
		return fleet.NewValidationError("a route must be selected")
	}
	if err := input.Schedule.Validate(); err != nil {
		return err
	}

	bus, err := c.store.Buses().Get(ctx, input.BusRef)
	if err != nil {
		return err
	}

	route, err := c.store.Routes().Get(ctx, input.RouteRef)
	if err != nil {
		return err
	}

	var driver *fleet.Driver
	if input.DriverRef != "" {
		driver, err = c.store.Drivers().Get(ctx, input.DriverRef)
		if err != nil {
			return err
		}
	}

	if err := c.checkScheduleConflicts(ctx, input); err != nil {
		return err
	}

	otherRoutes, err := c.otherActiveRoutesForBus(ctx, input.BusRef, input.RouteRef)
	if err != nil {
		return err
	}

	saga := NewSaga("assign-route", c.store.SagaLogs())
	saga.BusRef = input.BusRef
	saga.DriverRef = input.DriverRef
	saga.RouteRef = input.RouteRef

	// A bus being handed to a new driver releases its previous one first.
	if bus.DriverRef != "" && bus.DriverRef != input.DriverRef {
		previousDriver, err := c.store.Drivers().Get(ctx, bus.DriverRef)
		if err != nil {
			var notFound *fleet.NotFoundError
			if !errors.As(err, &notFound) {
				return err
			}
			// Dangling driver link; the reconciliation pass reports these.
		} else {
			snapshot := *previousDriver
			saga.AddStep(Step{
				Name: "release-previous-driver",
				Forward: func(ctx context.Context) error {
					previousDriver.AssignedBusRef = ""
					return c.store.Drivers().Update(ctx, previousDriver)
				},
				Compensate: c.restoreDriverLinks(snapshot),
			})
		}
	}

	busSnapshot := *bus
	saga.AddStep(Step{
		Name: "bind-bus",
		Forward: func(ctx context.Context) error {
			bus.DriverRef = input.DriverRef
			bus.Status = fleet.BusStatusActive
			return c.store.Buses().Update(ctx, bus)
		},
		Compensate: c.restoreBusLinks(busSnapshot),
	})

	if driver != nil {
		driverSnapshot := *driver
		saga.AddStep(Step{
			Name: "bind-driver",
			Forward: func(ctx context.Context) error {
				driver.AssignedBusRef = input.BusRef
				return c.store.Drivers().Update(ctx, driver)
			},
			Compensate: c.restoreDriverLinks(driverSnapshot),
		})
	}

	// A bus runs at most one active route, so any other route still bound to
	// it gets unlinked and deactivated.
	if len(otherRoutes) > 0 {
		snapshots := make([]fleet.Route, len(otherRoutes))
		for index := range otherRoutes {
			copier.CopyWithOption(&snapshots[index], &otherRoutes[index], copier.Option{DeepCopy: true})
		}

		saga.AddStep(Step{
			Name: "deactivate-other-routes",
			Forward: func(ctx context.Context) error {
				for index := range otherRoutes {
					otherRoutes[index].BusRef = ""
					otherRoutes[index].DriverRef = ""
					otherRoutes[index].Schedule = fleet.ScheduleWindow{}
					otherRoutes[index].Status = fleet.RouteStatusInactive

					if err := c.store.Routes().Update(ctx, &otherRoutes[index]); err != nil {
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

	routeSnapshot := fleet.Route{}
	copier.CopyWithOption(&routeSnapshot, route, copier.Option{DeepCopy: true})
	saga.AddStep(Step{
		Name: "bind-route",
		Forward: func(ctx context.Context) error {
			route.BusRef = input.BusRef
			route.DriverRef = input.DriverRef
			route.Schedule = input.Schedule
			route.Status = fleet.RouteStatusActive
			return c.store.Routes().Update(ctx, route)
		},
		Compensate: c.restoreRouteLinks(routeSnapshot),
	})

	return saga.Execute(ctx)
}

// checkScheduleConflicts is the pure pre-write check: the driver's other
// active routes may not share an exact morning or afternoon start time with
// the requested schedule.
func (c *Coordinator) checkScheduleConflicts(ctx context.Context, input AssignInput) error {
	if input.DriverRef == "" || input.Schedule.Empty() {
		return nil
	}

	activeRoutes, err := c.store.Routes().FindByDriver(ctx, input.DriverRef, fleet.RouteStatusActive)
	if err != nil {
		return err
	}

	var conflicting []string
	for _, activeRoute := range activeRoutes {
		if activeRoute.PrimaryIdentifier == input.RouteRef {
			continue
		}
		if activeRoute.Schedule.SharesStartTime(input.Schedule) {
			conflicting = append(conflicting, activeRoute.PrimaryIdentifier)
		}
	}

	if len(conflicting) > 0 {
		slices.Sort(conflicting)
		return &fleet.ConflictError{
			DriverRef:         input.DriverRef,
			ConflictingRoutes: conflicting,
		}
	}

	return nil
}

func (c *Coordinator) otherActiveRoutesForBus(ctx context.Context, busRef string, routeRef string) ([]fleet.Route, error) {
	activeRoutes, err := c.store.Routes().FindByBus(ctx, busRef, fleet.RouteStatusActive)
	if err != nil {
		return nil, err
	}

	util.InPlaceFilter(&activeRoutes, func(route fleet.Route) bool {
		return route.PrimaryIdentifier != routeRef
	})
	return activeRoutes, nil
}

// The restore closures re-read the record and put the snapshot's triad fields
// back, so compensation works against whatever version the record is at now.

func (c *Coordinator) restoreBusLinks(snapshot fleet.Bus) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		bus, err := c.store.Buses().Get(ctx, snapshot.PrimaryIdentifier)
		if err != nil {
			return err
		}
		bus.DriverRef = snapshot.DriverRef
		bus.Status = snapshot.Status
		return c.store.Buses().Update(ctx, bus)
	}
}

func (c *Coordinator) restoreDriverLinks(snapshot fleet.Driver) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		driver, err := c.store.Drivers().Get(ctx, snapshot.PrimaryIdentifier)
		if err != nil {
			return err
		}
		driver.AssignedBusRef = snapshot.AssignedBusRef
		return c.store.Drivers().Update(ctx, driver)
	}
}

func (c *Coordinator) restoreRouteLinks(snapshot fleet.Route) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		route, err := c.store.Routes().Get(ctx, snapshot.PrimaryIdentifier)
		if err != nil {
			return err
		}
		route.BusRef = snapshot.BusRef
		route.DriverRef = snapshot.DriverRef
		route.Schedule = snapshot.Schedule
		route.Status = snapshot.Status
		return c.store.Routes().Update(ctx, route)
	}
}
