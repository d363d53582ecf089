package services

import (
	"fmt"

	"github.com/nexocrm/messaging/pkg/internal/database"
	"github.com/nexocrm/messaging/pkg/internal/hub"
	"github.com/nexocrm/messaging/pkg/internal/models"
)

// SetTypingStatus tells the other members of a channel that someone is
// typing. Transient, never persisted.
func SetTypingStatus(channelId string, user models.Account) error {
	var member models.ChannelMember
	if err := database.C.
		Where("account_id = ? AND channel_id = ?", user.ID, channelId).
		First(&member).Error; err != nil {
		return fmt.Errorf("channel member not found: %v", err)
	}

	var channel models.Channel
	if err := database.C.
		Preload("Members").
		Where("id = ?", channelId).
		First(&channel).Error; err != nil {
		return fmt.Errorf("channel not found: %v", err)
	}

	var broadcastTarget []string
	for _, item := range channel.Members {
		if item.AccountID == user.ID {
			continue
		}
		broadcastTarget = append(broadcastTarget, item.AccountID)
	}

	hub.PushCommandBatch(broadcastTarget, models.UnifiedCommand{
		Action: models.CommandStatusTyping,
		Payload: map[string]any{
			"user_id":    user.ID,
			"user_name":  user.DisplayName(),
			"channel_id": channelId,
		},
	})

	return nil
}
