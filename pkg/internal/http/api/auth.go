package api

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/nexocrm/messaging/pkg/internal/models"
	"github.com/nexocrm/messaging/pkg/internal/services"
	"github.com/spf13/viper"
)

// authMiddleware resolves the caller from a bearer token (or the token query
// parameter, for websocket upgrades) and stores the account in locals.
// Session issuance itself lives in the identity service, not here.
func authMiddleware(c *fiber.Ctx) error {
	token := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	if len(token) == 0 {
		token = c.Query("token")
	}
	if len(token) == 0 {
		return fiber.NewError(fiber.StatusUnauthorized, "missing credentials")
	}

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(viper.GetString("secret")), nil
	}); err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}

	sub, err := claims.GetSubject()
	if err != nil || len(sub) == 0 {
		return fiber.NewError(fiber.StatusUnauthorized, "malformed claims")
	}

	user, err := services.GetAccount(sub)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}

	c.Locals("user", user)
	return c.Next()
}

func currentUser(c *fiber.Ctx) models.Account {
	return c.Locals("user").(models.Account)
}
