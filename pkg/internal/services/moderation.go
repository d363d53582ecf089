package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/nexocrm/messaging/pkg/internal/database"
	"github.com/nexocrm/messaging/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// MaxBanMinutes caps a single ban at seven days, the longest preset the
// client offers.
const MaxBanMinutes = 7 * 24 * 60

// GetActiveBan returns the unexpired ban of a user in a channel, or nil.
func GetActiveBan(channelId string, accountId string) (*models.Ban, error) {
	var ban models.Ban
	if err := database.C.
		Where("channel_id = ? AND account_id = ? AND expires_at > ?", channelId, accountId, time.Now()).
		Order("expires_at DESC").
		First(&ban).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &ban, nil
}

// BanAccount records a timed ban and drops a system notice into the channel.
// There is no unban action; the record simply expires.
func BanAccount(actor models.Account, target models.Account, channel models.Channel, minutes int, reason string) (models.Ban, error) {
	var ban models.Ban

	if !CanModerate(actor, channel) {
		return ban, fmt.Errorf("unable to ban user, access denied")
	}
	if minutes <= 0 || minutes > MaxBanMinutes {
		return ban, fmt.Errorf("ban duration must be between 1 minute and 7 days")
	}
	if _, err := GetChannelMember(target, channel.ID); err != nil {
		return ban, fmt.Errorf("target is not a member of this channel: %v", err)
	}
	if target.Role == models.RoleAdmin {
		return ban, fmt.Errorf("unable to ban an administrator")
	}

	ban = models.Ban{
		ChannelID:   channel.ID,
		AccountID:   target.ID,
		ModeratorID: actor.ID,
		Reason:      reason,
		ExpiresAt:   time.Now().Add(time.Duration(minutes) * time.Minute),
	}

	if err := database.C.Save(&ban).Error; err != nil {
		return ban, err
	}

	notice := fmt.Sprintf("%s was muted for %d minutes", target.DisplayName(), minutes)
	if _, err := NewSystemMessage(channel, notice, map[string]any{
		"ban_id":   ban.ID,
		"target":   target.ID,
		"by":       actor.ID,
		"reason":   reason,
		"duration": minutes,
	}); err != nil {
		log.Warn().Err(err).Msg("An error occurred when recording the ban notice...")
	}

	return ban, nil
}
