package services

import (
	"errors"
	"fmt"

	"github.com/nexocrm/messaging/pkg/internal/database"
	"github.com/nexocrm/messaging/pkg/internal/models"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

// GetDirectChannel looks up the direct channel keyed by the unordered pair
// of the two participants.
func GetDirectChannel(user models.Account, other models.Account) (models.Channel, error) {
	prefix := viper.GetString("database.prefix")
	memberTable := prefix + "channel_members"
	channelTable := prefix + "channels"

	var channel models.Channel
	if err := database.C.Preload("Members").
		Where("type = ?", models.ChannelTypeDirect).
		Joins(fmt.Sprintf("JOIN %s cm1 ON cm1.channel_id = %s.id AND cm1.account_id = ?", memberTable, channelTable), user.ID).
		Joins(fmt.Sprintf("JOIN %s cm2 ON cm2.channel_id = %s.id AND cm2.account_id = ?", memberTable, channelTable), other.ID).
		First(&channel).Error; err != nil {
		return channel, err
	}

	return channel, nil
}

// GetOrCreateDirectChannel resolves the DM between two users, creating it on
// first message intent. Idempotent: the same unordered pair always yields the
// same channel.
func GetOrCreateDirectChannel(user models.Account, other models.Account) (models.Channel, error) {
	if user.ID == other.ID {
		return models.Channel{}, fmt.Errorf("unable to start a direct channel with yourself")
	}

	channel, err := GetDirectChannel(user, other)
	if err == nil {
		return channel, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return channel, fmt.Errorf("unable to lookup direct channel: %v", err)
	}

	channel = models.Channel{
		Type:      models.ChannelTypeDirect,
		Name:      fmt.Sprintf("DM %s & %s", user.Name, other.Name),
		AccountID: &user.ID,
	}

	err = database.C.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&channel).Error; err != nil {
			return err
		}
		members := []models.ChannelMember{
			{ChannelID: channel.ID, AccountID: user.ID},
			{ChannelID: channel.ID, AccountID: other.ID},
		}
		return tx.Create(&members).Error
	})

	return channel, err
}

// GetDirectCounterpart returns the profile of the other participant.
func GetDirectCounterpart(channelId string, userId string) (models.Account, error) {
	var member models.ChannelMember
	if err := database.C.Where("channel_id = ? AND account_id <> ?", channelId, userId).
		Preload("Account").
		First(&member).Error; err != nil {
		return models.Account{}, fmt.Errorf("counterpart not found: %v", err)
	}

	return member.Account, nil
}
