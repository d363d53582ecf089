package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/nexocrm/messaging/pkg/internal/database"
	"github.com/nexocrm/messaging/pkg/internal/models"
	"gorm.io/gorm"
)

func CountChannelMember(channelId string) (int64, error) {
	var count int64
	if err := database.C.Where(&models.ChannelMember{
		ChannelID: channelId,
	}).Model(&models.ChannelMember{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func ListChannelMember(channelId string, take int, offset int) ([]models.ChannelMember, error) {
	var members []models.ChannelMember

	if err := database.C.
		Limit(take).Offset(offset).
		Where(&models.ChannelMember{ChannelID: channelId}).
		Preload("Account").
		Find(&members).Error; err != nil {
		return members, err
	}

	return members, nil
}

func GetChannelMember(user models.Account, channelId string) (models.ChannelMember, error) {
	var member models.ChannelMember

	if err := database.C.
		Where(&models.ChannelMember{AccountID: user.ID, ChannelID: channelId}).
		First(&member).Error; err != nil {
		return member, err
	}

	return member, nil
}

func AddChannelMemberWithCheck(user, op models.Account, target models.Channel) error {
	if user.ID != op.ID && !CanManageChannel(op, target) {
		return fmt.Errorf("unable to add user into this channel due to access denied")
	}

	return AddChannelMember(user, target)
}

func AddChannelMember(user models.Account, target models.Channel) error {
	var member models.ChannelMember
	if err := database.C.Where(&models.ChannelMember{
		AccountID: user.ID,
		ChannelID: target.ID,
	}).First(&member).Error; err == nil || !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	member = models.ChannelMember{
		ChannelID: target.ID,
		AccountID: user.ID,
	}

	err := database.C.Save(&member).Error
	if err == nil {
		InvalidateChannelIdentity(target.ID, user.ID)
	}

	return err
}

func RemoveChannelMemberWithCheck(member models.ChannelMember, op models.Account, target models.Channel) error {
	if member.AccountID != op.ID && !CanModerate(op, target) {
		return fmt.Errorf("unable to remove member due to access denied")
	}
	if target.Type == models.ChannelTypeGlobal {
		return fmt.Errorf("nobody can be removed from the global channel")
	}

	return RemoveChannelMember(member, target)
}

func RemoveChannelMember(member models.ChannelMember, target models.Channel) error {
	if err := database.C.Delete(&member).Error; err != nil {
		return err
	}

	InvalidateChannelIdentity(target.ID, member.AccountID)
	return nil
}

// MarkChannelRead moves the membership's read marker to now. The directory
// recomputes the unread flag from this marker on the next listing.
func MarkChannelRead(member models.ChannelMember) error {
	now := time.Now()
	if err := database.C.Model(&models.ChannelMember{}).
		Where("id = ?", member.ID).
		Update("last_read_at", now).Error; err != nil {
		return fmt.Errorf("unable to mark channel read: %v", err)
	}

	InvalidateChannelIdentity(member.ChannelID, member.AccountID)
	return nil
}

// ClearHistory raises the viewer's personal watermark: messages at or below
// it disappear from their history loads only. Nothing is deleted for other
// participants.
func ClearHistory(member models.ChannelMember) error {
	now := time.Now()
	if err := database.C.Model(&models.ChannelMember{}).
		Where("id = ?", member.ID).
		Update("cleared_history_at", now).Error; err != nil {
		return fmt.Errorf("unable to clear history: %v", err)
	}

	InvalidateChannelIdentity(member.ChannelID, member.AccountID)
	return nil
}
