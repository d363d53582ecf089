package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nexocrm/messaging/pkg/internal/database"
	"github.com/nexocrm/messaging/pkg/internal/http/exts"
	"github.com/nexocrm/messaging/pkg/internal/models"
	"github.com/nexocrm/messaging/pkg/internal/services"
)

func listChannelMembers(c *fiber.Ctx) error {
	user := currentUser(c)
	channelId := c.Params("channelId")
	take := c.QueryInt("take", 100)
	offset := c.QueryInt("offset", 0)

	if _, _, err := services.GetChannelIdentity(channelId, user.ID); err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	count, err := services.CountChannelMember(channelId)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	members, err := services.ListChannelMember(channelId, take, offset)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"count": count,
		"data":  members,
	})
}

func addChannelMember(c *fiber.Ctx) error {
	user := currentUser(c)
	channelId := c.Params("channelId")

	var data struct {
		TargetID string `json:"target_id" validate:"required"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	channel, _, err := services.GetChannelIdentity(channelId, user.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	if channel.Type == models.ChannelTypeDirect {
		return fiber.NewError(fiber.StatusBadRequest, "direct channels are limited to two participants")
	}

	target, err := services.GetAccount(data.TargetID)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	if err := services.AddChannelMemberWithCheck(target, user, channel); err != nil {
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	}

	return c.SendStatus(fiber.StatusOK)
}

func removeChannelMember(c *fiber.Ctx) error {
	user := currentUser(c)
	channelId := c.Params("channelId")
	memberId := c.Params("memberId")

	channel, _, err := services.GetChannelIdentity(channelId, user.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	var member models.ChannelMember
	if err := database.C.Where("id = ? AND channel_id = ?", memberId, channel.ID).
		First(&member).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	if err := services.RemoveChannelMemberWithCheck(member, user, channel); err != nil {
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	}

	return c.SendStatus(fiber.StatusOK)
}
