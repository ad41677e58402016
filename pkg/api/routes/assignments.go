package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/schoolfleet/schoolfleet/pkg/assignment"
	"github.com/schoolfleet/schoolfleet/pkg/fleet"
)

func AssignmentsRouter(router fiber.Router, dependencies *Dependencies) {
	router.Post("/", func(c *fiber.Ctx) error {
		return assignTriad(c, dependencies)
	})
}

type assignRequest struct {
	BusRef    string `json:"busRef"`
	DriverRef string `json:"driverRef"`
	RouteRef  string `json:"routeRef"`

	MorningStart   string `json:"morningStart"`
	AfternoonStart string `json:"afternoonStart"`
}

func assignTriad(c *fiber.Ctx, dependencies *Dependencies) error {
	var request assignRequest
	if err := c.BodyParser(&request); err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Request body must be a valid assignment",
		})
	}

	err := dependencies.Coordinator.Assign(c.Context(), assignment.AssignInput{
		BusRef:    request.BusRef,
		DriverRef: request.DriverRef,
		RouteRef:  request.RouteRef,
		Schedule: fleet.ScheduleWindow{
			MorningStart:   request.MorningStart,
			AfternoonStart: request.AfternoonStart,
		},
	})
	if err != nil {
		return sendError(c, err)
	}

	return c.JSON(fiber.Map{
		"busRef":    request.BusRef,
		"driverRef": request.DriverRef,
		"routeRef":  request.RouteRef,
		"status":    "assigned",
	})
}
