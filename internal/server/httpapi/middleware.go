package httpapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/weathermood/weathermood/internal/server/auth"
)

const claimsKey = "claims"

// authRequired verifies the Bearer token and stashes the claims on the
// request context. Record routes additionally require the token's uid to
// match the path's user id, so one account can never touch another's data.
func authRequired(secretKey []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		claims, err := auth.ParseToken(token, secretKey)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

func userMatches(c *fiber.Ctx) error {
	claims, ok := c.Locals(claimsKey).(*auth.Claims)
	if !ok || claims.UserID != c.Params("uid") {
		return fiber.NewError(fiber.StatusForbidden, "token does not match user")
	}
	return c.Next()
}
