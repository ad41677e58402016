package assignment

import (
	"context"
	"fmt"

	"github.com/schoolfleet/schoolfleet/pkg/fleet"
)

// Reconcile is the read-only integrity pass: it walks the current fleet and
// reports every violated triad invariant without touching any record.
//
// Checks: bidirectional bus/driver links, a single active route per bus, and
// no driver with two active routes sharing a start time.
func (c *Coordinator) Reconcile(ctx context.Context) ([]fleet.IntegrityError, error) {
	buses, err := c.store.Buses().All(ctx)
	if err != nil {
		return nil, err
	}
	drivers, err := c.store.Drivers().All(ctx)
	if err != nil {
		return nil, err
	}
	routes, err := c.store.Routes().All(ctx)
	if err != nil {
		return nil, err
	}

	var findings []fleet.IntegrityError

	driversByRef := map[string]fleet.Driver{}
	for _, driver := range drivers {
		driversByRef[driver.PrimaryIdentifier] = driver
	}
	busesByRef := map[string]fleet.Bus{}
	for _, bus := range buses {
		busesByRef[bus.PrimaryIdentifier] = bus
	}

	// Bidirectional bus/driver consistency.
	for _, bus := range buses {
		if bus.DriverRef == "" {
			continue
		}
		driver, ok := driversByRef[bus.DriverRef]
		if !ok {
			findings = append(findings, fleet.IntegrityError{
				Invariant: "bus-driver-bijection",
				Detail:    fmt.Sprintf("bus %s references missing driver %s", bus.PrimaryIdentifier, bus.DriverRef),
			})
			continue
		}
		if driver.AssignedBusRef != bus.PrimaryIdentifier {
			findings = append(findings, fleet.IntegrityError{
				Invariant: "bus-driver-bijection",
				Detail: fmt.Sprintf("bus %s references driver %s but the driver is assigned bus %q",
					bus.PrimaryIdentifier, bus.DriverRef, driver.AssignedBusRef),
			})
		}
	}
	for _, driver := range drivers {
		if driver.AssignedBusRef == "" {
			continue
		}
		bus, ok := busesByRef[driver.AssignedBusRef]
		if !ok {
			findings = append(findings, fleet.IntegrityError{
				Invariant: "bus-driver-bijection",
				Detail:    fmt.Sprintf("driver %s references missing bus %s", driver.PrimaryIdentifier, driver.AssignedBusRef),
			})
			continue
		}
		if bus.DriverRef != driver.PrimaryIdentifier {
			findings = append(findings, fleet.IntegrityError{
				Invariant: "bus-driver-bijection",
				Detail: fmt.Sprintf("driver %s references bus %s but the bus is assigned driver %q",
					driver.PrimaryIdentifier, driver.AssignedBusRef, bus.DriverRef),
			})
		}
	}

	// A single active route per bus.
	activeRoutesByBus := map[string][]string{}
	for _, route := range routes {
		if route.Status == fleet.RouteStatusActive && route.BusRef != "" {
			activeRoutesByBus[route.BusRef] = append(activeRoutesByBus[route.BusRef], route.PrimaryIdentifier)
		}
	}
	for busRef, routeRefs := range activeRoutesByBus {
		if len(routeRefs) > 1 {
			findings = append(findings, fleet.IntegrityError{
				Invariant: "single-active-route-per-bus",
				Detail:    fmt.Sprintf("bus %s has %d active routes: %v", busRef, len(routeRefs), routeRefs),
			})
		}
	}

	// No double-booked driver start times.
	activeRoutesByDriver := map[string][]fleet.Route{}
	for _, route := range routes {
		if route.Status == fleet.RouteStatusActive && route.DriverRef != "" {
			activeRoutesByDriver[route.DriverRef] = append(activeRoutesByDriver[route.DriverRef], route)
		}
	}
	for driverRef, driverRoutes := range activeRoutesByDriver {
		for first := 0; first < len(driverRoutes); first++ {
			for second := first + 1; second < len(driverRoutes); second++ {
				if driverRoutes[first].Schedule.SharesStartTime(driverRoutes[second].Schedule) {
					findings = append(findings, fleet.IntegrityError{
						Invariant: "driver-schedule-exclusive",
						Detail: fmt.Sprintf("driver %s has routes %s and %s sharing a start time",
							driverRef, driverRoutes[first].PrimaryIdentifier, driverRoutes[second].PrimaryIdentifier),
					})
				}
			}
		}
	}

	return findings, nil
}
