package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
)

func BusesRouter(router fiber.Router, dependencies *Dependencies) {
	router.Get("/:identifier", func(c *fiber.Ctx) error {
		return getBus(c, dependencies)
	})
	router.Delete("/:identifier", func(c *fiber.Ctx) error {
		return deleteBus(c, dependencies)
	})
}

func getBus(c *fiber.Ctx, dependencies *Dependencies) error {
	bus, err := dependencies.Store.Buses().Get(c.Context(), c.Params("identifier"))
	if err != nil {
		return sendError(c, err)
	}

	busReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, bus)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Bus",
		})
	}

	return c.JSON(busReduced)
}

// Deleting a bus reverses the links into it, releasing the driver and
// deactivating bound routes before the record goes.
func deleteBus(c *fiber.Ctx, dependencies *Dependencies) error {
	if err := dependencies.Coordinator.DeleteBus(c.Context(), c.Params("identifier")); err != nil {
		return sendError(c, err)
	}

	return c.JSON(fiber.Map{
		"status": "deleted",
	})
}
