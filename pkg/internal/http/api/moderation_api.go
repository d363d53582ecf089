package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nexocrm/messaging/pkg/internal/http/exts"
	"github.com/nexocrm/messaging/pkg/internal/services"
)

func getMyBanInfo(c *fiber.Ctx) error {
	user := currentUser(c)
	channelId := c.Params("channelId")

	if _, _, err := services.GetChannelIdentity(channelId, user.ID); err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	ban, err := services.GetActiveBan(channelId, user.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if ban == nil {
		return c.JSON(fiber.Map{"banned_until": nil})
	}

	return c.JSON(fiber.Map{
		"banned_until": ban.ExpiresAt,
		"reason":       ban.Reason,
	})
}

func banUser(c *fiber.Ctx) error {
	user := currentUser(c)
	channelId := c.Params("channelId")

	var data struct {
		TargetID string `json:"target_id" validate:"required"`
		Minutes  int    `json:"minutes" validate:"required,min=1"`
		Reason   string `json:"reason" validate:"max=256"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	channel, _, err := services.GetChannelIdentity(channelId, user.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	target, err := services.GetAccount(data.TargetID)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	ban, err := services.BanAccount(user, target, channel, data.Minutes, data.Reason)
	if err != nil {
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	}

	return c.JSON(ban)
}
