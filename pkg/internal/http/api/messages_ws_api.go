package api

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/nexocrm/messaging/pkg/internal/hub"
	"github.com/nexocrm/messaging/pkg/internal/models"
	"github.com/nexocrm/messaging/pkg/internal/services"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

func messageGateway(c *websocket.Conn) {
	user := c.Locals("user").(models.Account)
	clientId := uuid.NewString()

	// Push connection
	hub.ClientRegister(user, c)
	if err := services.HeartbeatPresence(user.ID); err != nil {
		log.Warn().Err(err).Msg("An error occurred when tracking presence...")
	}

	// Event loop
	for {
		messageType, packet, err := c.ReadMessage()
		if err != nil {
			break
		}

		task, err := decodePacket(packet)
		if err != nil {
			_ = c.WriteMessage(messageType, models.UnifiedCommand{
				Action:  models.CommandError,
				Message: "unable to unmarshal your command, requires json request",
			}.Marshal())
			continue
		}

		_ = services.HeartbeatPresence(user.ID)

		message := dealCommand(task, user, clientId)

		if message != nil {
			if err = c.WriteMessage(messageType, message.Marshal()); err != nil {
				break
			}
		}
	}

	// Pop connection
	hub.ClientUnregister(user, c)
	hub.UnsubscribeAllWithClient(clientId)
}

// decodePacket parses an inbound frame into a fresh command, so fields a
// client omits never inherit values from an earlier packet.
func decodePacket(raw []byte) (models.UnifiedCommand, error) {
	var task models.UnifiedCommand
	err := jsoniter.Unmarshal(raw, &task)
	return task, err
}

func dealCommand(task models.UnifiedCommand, user models.Account, clientId string) *models.UnifiedCommand {
	switch task.Action {
	case "messages.send.text":
		var req struct {
			ChannelID string `json:"channel_id"`
			Content   string `json:"content"`
		}
		models.FitStruct(task.Payload, &req)

		if channel, _, err := services.GetChannelIdentity(req.ChannelID, user.ID); err != nil {
			return lo.ToPtr(models.UnifiedCommandFromError(err))
		} else if _, err = services.NewTextMessage(req.Content, user, channel); err != nil {
			return lo.ToPtr(models.UnifiedCommandFromError(err))
		}
		return nil
	case "status.typing":
		var req struct {
			ChannelID string `json:"channel_id"`
		}
		models.FitStruct(task.Payload, &req)

		if err := services.SetTypingStatus(req.ChannelID, user); err != nil {
			return lo.ToPtr(models.UnifiedCommandFromError(err))
		}
		return nil
	case "channels.subscribe":
		var req struct {
			ChannelID string `json:"channel_id"`
		}
		models.FitStruct(task.Payload, &req)

		if _, member, err := services.GetChannelIdentity(req.ChannelID, user.ID); err != nil {
			return lo.ToPtr(models.UnifiedCommandFromError(err))
		} else {
			hub.SubscribeChannel(user.ID, req.ChannelID, clientId)
			// Viewing a channel reads it
			if err := services.MarkChannelRead(member); err != nil {
				return lo.ToPtr(models.UnifiedCommandFromError(err))
			}
		}
		return nil
	case "channels.unsubscribe":
		var req struct {
			ChannelID string `json:"channel_id"`
		}
		models.FitStruct(task.Payload, &req)

		hub.UnsubscribeChannel(user.ID, req.ChannelID)
		return nil
	default:
		return &models.UnifiedCommand{
			Action:  models.CommandError,
			Message: "command not found",
		}
	}
}
