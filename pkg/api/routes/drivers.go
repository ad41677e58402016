package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
)

func DriversRouter(router fiber.Router, dependencies *Dependencies) {
	router.Get("/:identifier", func(c *fiber.Ctx) error {
		return getDriver(c, dependencies)
	})
	router.Delete("/:identifier", func(c *fiber.Ctx) error {
		return deleteDriver(c, dependencies)
	})
}

func getDriver(c *fiber.Ctx, dependencies *Dependencies) error {
	driver, err := dependencies.Store.Drivers().Get(c.Context(), c.Params("identifier"))
	if err != nil {
		return sendError(c, err)
	}

	driverReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, driver)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Driver",
		})
	}

	return c.JSON(driverReduced)
}

func deleteDriver(c *fiber.Ctx, dependencies *Dependencies) error {
	if err := dependencies.Coordinator.DeleteDriver(c.Context(), c.Params("identifier")); err != nil {
		return sendError(c, err)
	}

	return c.JSON(fiber.Map{
		"status": "deleted",
	})
}
