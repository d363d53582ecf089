package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nexocrm/messaging/pkg/internal/http/exts"
	"github.com/nexocrm/messaging/pkg/internal/services"
)

func listChannelMeta(c *fiber.Ctx) error {
	user := currentUser(c)

	metas, err := services.ListChannelMeta(user)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(metas)
}

func getChannel(c *fiber.Ctx) error {
	user := currentUser(c)
	channelId := c.Params("channelId")

	channel, _, err := services.GetChannelIdentity(channelId, user.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	return c.JSON(channel)
}

func createTeamChannel(c *fiber.Ctx) error {
	user := currentUser(c)

	var data struct {
		Name string `json:"name" validate:"required,max=64"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	channel, err := services.NewTeamChannel(user, data.Name)
	if err != nil {
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	}

	return c.JSON(channel)
}

func markChannelRead(c *fiber.Ctx) error {
	user := currentUser(c)
	channelId := c.Params("channelId")

	_, member, err := services.GetChannelIdentity(channelId, user.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	if err := services.MarkChannelRead(member); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.SendStatus(fiber.StatusOK)
}

func clearHistory(c *fiber.Ctx) error {
	user := currentUser(c)
	channelId := c.Params("channelId")

	_, member, err := services.GetChannelIdentity(channelId, user.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	if err := services.ClearHistory(member); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.SendStatus(fiber.StatusOK)
}
