package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
)

func ScoringRouter(router fiber.Router, dependencies *Dependencies) {
	router.Get("/", func(c *fiber.Ctx) error {
		return getSafetyScore(c, dependencies)
	})
}

func getSafetyScore(c *fiber.Ctx, dependencies *Dependencies) error {
	score, err := dependencies.Aggregator.CompositeScore(c.Context())
	if err != nil {
		return sendError(c, err)
	}

	scoreReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, score)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Score",
		})
	}

	return c.JSON(scoreReduced)
}

func IntegrityRouter(router fiber.Router, dependencies *Dependencies) {
	router.Get("/", func(c *fiber.Ctx) error {
		return getIntegrityFindings(c, dependencies)
	})
}

func getIntegrityFindings(c *fiber.Ctx, dependencies *Dependencies) error {
	findings, err := dependencies.Coordinator.Reconcile(c.Context())
	if err != nil {
		return sendError(c, err)
	}

	response := make([]fiber.Map, 0, len(findings))
	for _, finding := range findings {
		response = append(response, fiber.Map{
			"invariant": finding.Invariant,
			"detail":    finding.Detail,
		})
	}

	return c.JSON(response)
}
