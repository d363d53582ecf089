package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nexocrm/messaging/pkg/internal/database"
	"github.com/nexocrm/messaging/pkg/internal/hub"
	"github.com/nexocrm/messaging/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func CountMessage(channel models.Channel) int64 {
	var count int64
	if err := database.C.Where(models.Message{
		ChannelID: channel.ID,
	}).Model(&models.Message{}).Count(&count).Error; err != nil {
		return 0
	}
	return count
}

// ListMessage returns the most recent page of a channel's history in
// ascending order, hiding everything at or below the viewer's clear-history
// watermark.
func ListMessage(member models.ChannelMember, take int, offset int) ([]models.Message, error) {
	if take <= 0 || take > 100 {
		take = 100
	}

	tx := database.C.
		Where("channel_id = ?", member.ChannelID).
		Limit(take).Offset(offset).
		Order("created_at DESC").
		Preload("Sender")
	if member.ClearedHistoryAt != nil {
		tx = tx.Where("created_at > ?", *member.ClearedHistoryAt)
	}

	var messages []models.Message
	if err := tx.Find(&messages).Error; err != nil {
		return messages, err
	}

	return lo.Reverse(messages), nil
}

// GetLastMessage fetches the newest message visible to the membership's
// viewer, or nil when the channel has none.
func GetLastMessage(member models.ChannelMember) (*models.Message, error) {
	tx := database.C.Where("channel_id = ?", member.ChannelID).
		Order("created_at DESC")
	if member.ClearedHistoryAt != nil {
		tx = tx.Where("created_at > ?", *member.ClearedHistoryAt)
	}

	var message models.Message
	if err := tx.First(&message).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &message, nil
}

func GetMessage(channel models.Channel, id string) (models.Message, error) {
	var message models.Message
	if err := database.C.
		Where("id = ? AND channel_id = ?", id, channel.ID).
		Preload("Sender").
		First(&message).Error; err != nil {
		return message, err
	}
	return message, nil
}

// NewTextMessage persists a user message and fans it out. The sender gets
// their copy through the same realtime path as everyone else, so there is no
// local echo to reconcile.
func NewTextMessage(content string, sender models.Account, channel models.Channel) (models.Message, error) {
	var message models.Message

	content = strings.TrimSpace(content)
	if len(content) == 0 {
		return message, fmt.Errorf("empty message was not allowed")
	}

	if ban, err := GetActiveBan(channel.ID, sender.ID); err != nil {
		return message, fmt.Errorf("unable to check ban status: %v", err)
	} else if ban != nil {
		return message, fmt.Errorf("you are banned in this channel until %s", ban.ExpiresAt.Format(time.RFC3339))
	}

	message = models.Message{
		Content:   content,
		ChannelID: channel.ID,
		SenderID:  &sender.ID,
		Sender:    &sender,
	}

	if err := database.C.Save(&message).Error; err != nil {
		return message, err
	}

	deliverMessageEvent(channel, message, models.CommandMessageNew)

	return message, nil
}

// NewSystemMessage records a moderation or audit notice in the channel.
func NewSystemMessage(channel models.Channel, content string, metadata map[string]any) (models.Message, error) {
	message := models.Message{
		Content:   content,
		IsSystem:  true,
		ChannelID: channel.ID,
		Metadata:  datatypes.JSONMap(metadata),
	}

	if err := database.C.Save(&message).Error; err != nil {
		return message, err
	}

	deliverMessageEvent(channel, message, models.CommandMessageNew)

	return message, nil
}

// deliverMessageEvent pushes a packet to every channel member. Members who
// are actively viewing the channel get their read marker advanced right
// away; everyone else may get a push notification.
func deliverMessageEvent(channel models.Channel, message models.Message, action string) {
	var members []models.ChannelMember
	if err := database.C.Where(models.ChannelMember{
		ChannelID: channel.ID,
	}).Preload("Account").Find(&members).Error; err != nil {
		log.Warn().Err(err).Msg("An error occurred when fetching members, skip notifying...")
		return
	}

	idxList := lo.Map(members, func(item models.ChannelMember, index int) string {
		return item.AccountID
	})
	hub.PushCommandBatch(idxList, models.UnifiedCommand{
		ID:      fmt.Sprintf("%s:%s", action, message.ID),
		Action:  action,
		Payload: message,
	})

	if action != models.CommandMessageNew {
		return
	}

	for _, member := range members {
		if hub.CheckSubscribed(member.AccountID, channel.ID) {
			if err := MarkChannelRead(member); err != nil {
				log.Warn().Err(err).Msg("An error occurred when advancing a read marker...")
			}
		}
	}

	go NotifyMessageOffline(channel, message, members)
}

// RecallMessage soft-deletes the content: the row survives with the fixed
// recalled marker, and the metadata records who pulled it.
func RecallMessage(message models.Message, actor models.Account, channel models.Channel) (models.Message, error) {
	if !CanRemoveMessage(actor, channel, message) {
		return message, fmt.Errorf("unable to recall this message, access denied")
	}

	message.Content = models.RecalledMessageContent
	message.Metadata = datatypes.JSONMap{
		"recalled_by": actor.ID,
		"recalled_at": time.Now().Format(time.RFC3339),
	}
	if err := database.C.Save(&message).Error; err != nil {
		return message, err
	}

	deliverMessageEvent(channel, message, models.CommandMessageRecall)

	return message, nil
}

func DeleteMessage(message models.Message, actor models.Account, channel models.Channel) error {
	if !CanRemoveMessage(actor, channel, message) {
		return fmt.Errorf("unable to delete this message, access denied")
	}

	if err := database.C.Delete(&message).Error; err != nil {
		return err
	}

	deliverMessageEvent(channel, message, models.CommandMessageDelete)

	return nil
}
