package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nexocrm/messaging/pkg/internal/http/exts"
	"github.com/nexocrm/messaging/pkg/internal/services"
)

func createDirectChannel(c *fiber.Ctx) error {
	user := currentUser(c)

	var data struct {
		TargetID string `json:"target_id" validate:"required"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	target, err := services.GetAccount(data.TargetID)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	channel, err := services.GetOrCreateDirectChannel(user, target)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(channel)
}
