package candidateauth

import (
	"strings"

	"github.com/applyflow/applyflow/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

// Middleware validates candidate bearer tokens on protected routes.
func Middleware(tokenService *TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing authorization header")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid authorization format")
		}

		claims, err := tokenService.ValidateCandidateToken(parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
		}

		c.Locals("candidate_id", claims.CandidateID)
		return c.Next()
	}
}

// GetCandidateID extracts the authenticated candidate ID from the context.
func GetCandidateID(c *fiber.Ctx) (kernel.CandidateID, bool) {
	candidateID, ok := c.Locals("candidate_id").(kernel.CandidateID)
	return candidateID, ok
}
