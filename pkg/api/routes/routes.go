package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/schoolfleet/schoolfleet/pkg/fleet"
	"github.com/schoolfleet/schoolfleet/pkg/optimizer"
	"github.com/schoolfleet/schoolfleet/pkg/simulation"
	"github.com/schoolfleet/schoolfleet/pkg/util"
)

func RoutesRouter(router fiber.Router, dependencies *Dependencies) {
	router.Get("/:identifier", func(c *fiber.Ctx) error {
		return getRoute(c, dependencies)
	})
	router.Delete("/:identifier", func(c *fiber.Ctx) error {
		return deleteRoute(c, dependencies)
	})
	router.Get("/:identifier/optimized", func(c *fiber.Ctx) error {
		return getOptimizedRoute(c, dependencies)
	})
	router.Post("/:identifier/simulate", func(c *fiber.Ctx) error {
		return simulateRoute(c, dependencies)
	})
	router.Put("/:identifier/students", func(c *fiber.Ctx) error {
		return replaceRouteStudents(c, dependencies)
	})
	router.Get("/:identifier/logs", func(c *fiber.Ctx) error {
		return getRouteLogs(c, dependencies)
	})
}

func getRoute(c *fiber.Ctx, dependencies *Dependencies) error {
	route, err := dependencies.Store.Routes().Get(c.Context(), c.Params("identifier"))
	if err != nil {
		return sendError(c, err)
	}

	routeReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, route)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Route",
		})
	}

	return c.JSON(routeReduced)
}

func deleteRoute(c *fiber.Ctx, dependencies *Dependencies) error {
	if err := dependencies.Coordinator.DeleteRoute(c.Context(), c.Params("identifier")); err != nil {
		return sendError(c, err)
	}

	return c.JSON(fiber.Map{
		"status": "deleted",
	})
}

func getOptimizedRoute(c *fiber.Ctx, dependencies *Dependencies) error {
	route, err := dependencies.Store.Routes().Get(c.Context(), c.Params("identifier"))
	if err != nil {
		return sendError(c, err)
	}

	routeStart := time.Now()
	if route.Schedule.MorningStart != "" {
		if startTime, parseErr := util.ParseClockTime(route.Schedule.MorningStart); parseErr == nil {
			routeStart = util.AddTimeToDate(routeStart, startTime)
		}
	}

	orderedStops := optimizer.Optimize(route.Stops, routeStart)

	orderedStopsReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, orderedStops)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce OrderedStops",
		})
	}

	return c.JSON(orderedStopsReduced)
}

type simulateRequest struct {
	Weather           string `json:"weather"`
	TrafficConditions string `json:"trafficConditions"`
	DriverExperience  string `json:"driverExperience"`
	BusType           string `json:"busType"`
	TimeOfDay         string `json:"timeOfDay"`
}

func simulateRoute(c *fiber.Ctx, dependencies *Dependencies) error {
	var request simulateRequest
	if err := c.BodyParser(&request); err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Request body must be a valid set of conditions",
		})
	}

	route, err := dependencies.Store.Routes().Get(c.Context(), c.Params("identifier"))
	if err != nil {
		return sendError(c, err)
	}

	result, err := dependencies.Simulator.Simulate(c.Context(), route, simulation.Conditions{
		Weather:           simulation.Weather(request.Weather),
		TrafficConditions: simulation.TrafficConditions(request.TrafficConditions),
		DriverExperience:  simulation.DriverExperience(request.DriverExperience),
		BusType:           simulation.BusType(request.BusType),
		TimeOfDay:         simulation.TimeOfDay(request.TimeOfDay),
	})
	if err != nil {
		return sendError(c, err)
	}

	resultReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, result)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce SimulationResult",
		})
	}

	return c.JSON(resultReduced)
}

type studentAssignmentRequest struct {
	StudentRef   string `json:"studentRef"`
	StopIndex    int    `json:"stopIndex"`
	StudentName  string `json:"studentName"`
	StudentGrade string `json:"studentGrade"`
}

func replaceRouteStudents(c *fiber.Ctx, dependencies *Dependencies) error {
	var request []studentAssignmentRequest
	if err := c.BodyParser(&request); err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Request body must be a list of student assignments",
		})
	}

	assignments := make([]fleet.StudentRouteAssignment, 0, len(request))
	for _, requestAssignment := range request {
		assignments = append(assignments, fleet.StudentRouteAssignment{
			StudentRef:   requestAssignment.StudentRef,
			StopIndex:    requestAssignment.StopIndex,
			StudentName:  requestAssignment.StudentName,
			StudentGrade: requestAssignment.StudentGrade,
		})
	}

	routeRef := c.Params("identifier")
	if err := dependencies.Coordinator.ReplaceStudentAssignments(c.Context(), routeRef, assignments); err != nil {
		return sendError(c, err)
	}

	return c.JSON(fiber.Map{
		"routeRef": routeRef,
		"students": len(assignments),
		"status":   "replaced",
	})
}

func getRouteLogs(c *fiber.Ctx, dependencies *Dependencies) error {
	routeLogs, err := dependencies.Store.RouteLogs().FindByRoute(c.Context(), c.Params("identifier"), 25)
	if err != nil {
		return sendError(c, err)
	}

	return c.JSON(routeLogs)
}
