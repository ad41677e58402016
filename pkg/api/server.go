package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/schoolfleet/schoolfleet/pkg/api/routes"
)

func NewServer(dependencies *routes.Dependencies) *fiber.App {
	webApp := fiber.New()
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.AssignmentsRouter(group.Group("/assignments"), dependencies)
	routes.RoutesRouter(group.Group("/routes"), dependencies)
	routes.BusesRouter(group.Group("/buses"), dependencies)
	routes.DriversRouter(group.Group("/drivers"), dependencies)
	routes.ScoringRouter(group.Group("/safety-score"), dependencies)
	routes.IntegrityRouter(group.Group("/integrity"), dependencies)

	return webApp
}

func SetupServer(listen string, dependencies *routes.Dependencies) error {
	return NewServer(dependencies).Listen(listen)
}
