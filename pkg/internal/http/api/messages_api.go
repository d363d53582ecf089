package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nexocrm/messaging/pkg/internal/http/exts"
	"github.com/nexocrm/messaging/pkg/internal/services"
)

func listMessage(c *fiber.Ctx) error {
	user := currentUser(c)
	channelId := c.Params("channelId")
	take := c.QueryInt("take", 100)
	offset := c.QueryInt("offset", 0)

	channel, member, err := services.GetChannelIdentity(channelId, user.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	messages, err := services.ListMessage(member, take, offset)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"count": services.CountMessage(channel),
		"data":  messages,
	})
}

func newMessage(c *fiber.Ctx) error {
	user := currentUser(c)
	channelId := c.Params("channelId")

	var data struct {
		Content string `json:"content" validate:"required,max=4096"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	channel, _, err := services.GetChannelIdentity(channelId, user.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	message, err := services.NewTextMessage(data.Content, user, channel)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(message)
}

func recallMessage(c *fiber.Ctx) error {
	user := currentUser(c)
	channelId := c.Params("channelId")
	messageId := c.Params("messageId")

	channel, _, err := services.GetChannelIdentity(channelId, user.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	message, err := services.GetMessage(channel, messageId)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	message, err = services.RecallMessage(message, user, channel)
	if err != nil {
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	}

	return c.JSON(message)
}

func deleteMessage(c *fiber.Ctx) error {
	user := currentUser(c)
	channelId := c.Params("channelId")
	messageId := c.Params("messageId")

	channel, _, err := services.GetChannelIdentity(channelId, user.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	message, err := services.GetMessage(channel, messageId)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	if err := services.DeleteMessage(message, user, channel); err != nil {
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	}

	return c.SendStatus(fiber.StatusOK)
}
