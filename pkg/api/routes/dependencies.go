package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/schoolfleet/schoolfleet/pkg/assignment"
	"github.com/schoolfleet/schoolfleet/pkg/fleet"
	"github.com/schoolfleet/schoolfleet/pkg/scoring"
	"github.com/schoolfleet/schoolfleet/pkg/simulation"
	"github.com/schoolfleet/schoolfleet/pkg/store"
)

type Dependencies struct {
	Store       store.Store
	Coordinator *assignment.Coordinator
	Simulator   *simulation.Simulator
	Aggregator  *scoring.Aggregator
}

// sendError maps the error taxonomy onto HTTP statuses.
func sendError(c *fiber.Ctx, err error) error {
	var validationError *fleet.ValidationError
	var conflictError *fleet.ConflictError
	var staleVersionError *fleet.StaleVersionError
	var notFoundError *fleet.NotFoundError
	var externalServiceError *fleet.ExternalServiceError

	switch {
	case errors.As(err, &validationError):
		c.SendStatus(fiber.StatusBadRequest)
	case errors.As(err, &conflictError), errors.As(err, &staleVersionError):
		c.SendStatus(fiber.StatusConflict)
	case errors.As(err, &notFoundError):
		c.SendStatus(fiber.StatusNotFound)
	case errors.As(err, &externalServiceError):
		c.SendStatus(fiber.StatusBadGateway)
	default:
		c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.JSON(fiber.Map{
		"error": err.Error(),
	})
}
