package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nexocrm/messaging/pkg/internal/http/exts"
	"github.com/nexocrm/messaging/pkg/internal/services"
)

func getUserinfo(c *fiber.Ctx) error {
	return c.JSON(currentUser(c))
}

func getOthersInfo(c *fiber.Ctx) error {
	userId := c.Params("userId")

	account, err := services.GetAccount(userId)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	return c.JSON(fiber.Map{
		"account":        account,
		"is_online":      services.CheckOnlineAccount(account.ID),
		"last_seen_text": services.FormatLastSeen(account.LastSeenAt, time.Now()),
	})
}

func heartbeatPresence(c *fiber.Ctx) error {
	user := currentUser(c)

	if err := services.HeartbeatPresence(user.ID); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	online, err := services.ListOnlineAccounts()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{"online": online})
}

func addPushSubscription(c *fiber.Ctx) error {
	user := currentUser(c)

	var data struct {
		Endpoint string `json:"endpoint" validate:"required,url"`
		P256dh   string `json:"p256dh" validate:"required"`
		Auth     string `json:"auth" validate:"required"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	if err := services.AddPushSubscription(user, data.Endpoint, data.P256dh, data.Auth); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.SendStatus(fiber.StatusOK)
}
