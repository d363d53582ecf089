package api

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func MapAPIs(app *fiber.App, baseURL string) {
	api := app.Group(baseURL).Name("API").Use(authMiddleware)
	{
		api.Get("/users/me", getUserinfo)
		api.Get("/users/:userId", getOthersInfo)
		api.Post("/users/me/heartbeat", heartbeatPresence)
		api.Post("/users/me/push-subscriptions", addPushSubscription)

		api.Post("/avatars", uploadAvatar)

		channels := api.Group("/channels").Name("Channels API")
		{
			channels.Get("/", listChannelMeta)
			channels.Post("/", createTeamChannel)
			channels.Post("/dm", createDirectChannel)
			channels.Get("/:channelId", getChannel)

			channels.Get("/:channelId/members", listChannelMembers)
			channels.Post("/:channelId/members", addChannelMember)
			channels.Delete("/:channelId/members/:memberId", removeChannelMember)

			channels.Post("/:channelId/read", markChannelRead)
			channels.Delete("/:channelId/history", clearHistory)

			channels.Get("/:channelId/messages", listMessage)
			channels.Post("/:channelId/messages", newMessage)
			channels.Post("/:channelId/messages/:messageId/recall", recallMessage)
			channels.Delete("/:channelId/messages/:messageId", deleteMessage)

			channels.Get("/:channelId/bans/me", getMyBanInfo)
			channels.Post("/:channelId/bans", banUser)
		}

		api.Get("/ws", websocket.New(messageGateway))
	}
}
