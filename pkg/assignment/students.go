package assignment

import (
	"context"
	"fmt"

	"github.com/schoolfleet/schoolfleet/pkg/fleet"
)

// ReplaceStudentAssignments swaps a route's full student-assignment set in
// one atomic batch and mirrors the per-stop student references onto the route
// record itself.
func (c *Coordinator) ReplaceStudentAssignments(ctx context.Context, routeRef string, assignments []fleet.StudentRouteAssignment) error {
	route, err := c.store.Routes().Get(ctx, routeRef)
	if err != nil {
		return err
	}

	for _, studentAssignment := range assignments {
		if studentAssignment.StudentRef == "" {
			return fleet.NewValidationError("a student assignment is missing its student reference")
		}
		if studentAssignment.StopIndex < 0 || studentAssignment.StopIndex >= len(route.Stops) {
			return fleet.NewValidationError(fmt.Sprintf("stop index %d is outside the route's %d stops",
				studentAssignment.StopIndex, len(route.Stops)))
		}
	}

	if err := c.store.StudentRoutes().ReplaceForRoute(ctx, routeRef, assignments); err != nil {
		return err
	}

	for index := range route.Stops {
		route.Stops[index].StudentRefs = nil
	}
	for _, studentAssignment := range assignments {
		stop := &route.Stops[studentAssignment.StopIndex]
		stop.StudentRefs = append(stop.StudentRefs, studentAssignment.StudentRef)
	}
	route.ReindexStops()

	return c.store.Routes().Update(ctx, route)
}
