package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	localCache "github.com/nexocrm/messaging/pkg/internal/cache"
	"github.com/nexocrm/messaging/pkg/internal/database"
	"github.com/nexocrm/messaging/pkg/internal/models"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/marshaler"
	"github.com/eko/gocache/lib/v4/store"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

type channelIdentityCacheEntry struct {
	Channel       models.Channel
	ChannelMember models.ChannelMember
}

func GetChannelIdentityCacheKey(channelId string, userId string) string {
	return fmt.Sprintf("channel-identity-%s#%s", channelId, userId)
}

func CacheChannelIdentity(channel models.Channel, member models.ChannelMember, userId string) {
	key := GetChannelIdentityCacheKey(channel.ID, userId)

	cacheManager := cache.New[any](localCache.S)
	marshal := marshaler.New(cacheManager)
	contx := context.Background()

	_ = marshal.Set(
		contx,
		key,
		channelIdentityCacheEntry{channel, member},
		store.WithTags([]string{"channel-identity", fmt.Sprintf("channel#%s", channel.ID), fmt.Sprintf("user#%s", userId)}),
	)
}

func InvalidateChannelIdentity(channelId string, userId string) {
	cacheManager := cache.New[any](localCache.S)
	marshal := marshaler.New(cacheManager)
	contx := context.Background()

	_ = marshal.Invalidate(
		contx,
		store.WithInvalidateTags([]string{fmt.Sprintf("channel#%s", channelId), fmt.Sprintf("user#%s", userId)}),
	)
}

// GetChannelIdentity resolves the channel and the caller's membership in it,
// consulting the cache first.
func GetChannelIdentity(channelId string, userId string) (models.Channel, models.ChannelMember, error) {
	cacheManager := cache.New[any](localCache.S)
	marshal := marshaler.New(cacheManager)
	contx := context.Background()

	if val, err := marshal.Get(contx, GetChannelIdentityCacheKey(channelId, userId), new(channelIdentityCacheEntry)); err == nil {
		entry := val.(*channelIdentityCacheEntry)
		return entry.Channel, entry.ChannelMember, nil
	}

	channel, member, err := GetAvailableChannel(channelId, userId)
	if err == nil {
		CacheChannelIdentity(channel, member, userId)
	}

	return channel, member, err
}

func GetChannel(id string) (models.Channel, error) {
	var channel models.Channel
	if err := database.C.Where("id = ?", id).
		Preload("Members").Preload("Members.Account").
		First(&channel).Error; err != nil {
		return channel, err
	}

	return channel, nil
}

func GetAvailableChannel(id string, userId string) (models.Channel, models.ChannelMember, error) {
	var err error
	var member models.ChannelMember
	var channel models.Channel
	if channel, err = GetChannel(id); err != nil {
		return channel, member, err
	}

	if err := database.C.Where(models.ChannelMember{
		AccountID: userId,
		ChannelID: channel.ID,
	}).First(&member).Error; err != nil {
		return channel, member, fmt.Errorf("channel principal not found: %v", err.Error())
	}

	return channel, member, nil
}

// NewTeamChannel creates a team-scoped channel and enrolls the creator.
func NewTeamChannel(creator models.Account, name string) (models.Channel, error) {
	if creator.Role != models.RoleAdmin {
		return models.Channel{}, fmt.Errorf("only managers can create team channels")
	}

	channel := models.Channel{
		Type:      models.ChannelTypeTeam,
		Name:      name,
		AccountID: &creator.ID,
	}

	err := database.C.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&channel).Error; err != nil {
			return err
		}
		return tx.Save(&models.ChannelMember{
			ChannelID: channel.ID,
			AccountID: creator.ID,
		}).Error
	})

	return channel, err
}

// EnsureGlobalChannel provisions the single broadcast channel under its
// well-known identifier. Ran once at startup.
func EnsureGlobalChannel() error {
	var channel models.Channel
	err := database.C.Where("id = ?", models.GlobalChannelID).First(&channel).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	channel = models.Channel{
		BaseModel: models.BaseModel{ID: models.GlobalChannelID},
		Type:      models.ChannelTypeGlobal,
		Name:      viper.GetString("global_channel_name"),
	}
	if len(channel.Name) == 0 {
		channel.Name = "General"
	}

	return database.C.Save(&channel).Error
}

// ListChannelMeta builds the channel directory for one viewer: every channel
// they belong to (the global channel is joined on first listing), enriched
// with last-message preview, the unread flag and the DM counterpart profile,
// sorted by recency. A channel whose enrichment fails is dropped rather than
// failing the whole listing.
func ListChannelMeta(user models.Account) ([]models.ChannelMeta, error) {
	if err := ensureGlobalMembership(user); err != nil {
		log.Warn().Err(err).Msg("An error occurred when joining the global channel, listing may be incomplete...")
	}

	var memberships []models.ChannelMember
	if err := database.C.Where("account_id = ?", user.ID).
		Preload("Channel").
		Find(&memberships).Error; err != nil {
		return nil, fmt.Errorf("unable to get identities: %v", err)
	}

	metas := make([]models.ChannelMeta, 0, len(memberships))
	for _, membership := range memberships {
		meta, err := enrichChannelMeta(user, membership)
		if err != nil {
			log.Warn().Err(err).
				Str("channel", membership.ChannelID).
				Msg("An error occurred when enriching a directory entry, dropping it...")
			continue
		}
		metas = append(metas, meta)
	}

	sort.Slice(metas, func(i, j int) bool {
		var ti, tj time.Time
		if metas[i].LastMessageAt != nil {
			ti = *metas[i].LastMessageAt
		}
		if metas[j].LastMessageAt != nil {
			tj = *metas[j].LastMessageAt
		}
		return ti.After(tj)
	})

	return metas, nil
}

func ensureGlobalMembership(user models.Account) error {
	var channel models.Channel
	if err := database.C.Where("id = ?", models.GlobalChannelID).First(&channel).Error; err != nil {
		return err
	}
	return AddChannelMember(user, channel)
}

func enrichChannelMeta(user models.Account, membership models.ChannelMember) (models.ChannelMeta, error) {
	meta := models.ChannelMeta{
		Channel:          membership.Channel,
		ClearedHistoryAt: membership.ClearedHistoryAt,
	}

	lastMessage, err := GetLastMessage(membership)
	if err != nil {
		return meta, err
	}
	if lastMessage != nil {
		meta.LastMessageAt = &lastMessage.CreatedAt
		meta.LastMessagePreview = &lastMessage.Content
		meta.Unread = isUnread(user, membership, *lastMessage)
	}

	if membership.Channel.Type == models.ChannelTypeDirect {
		if other, err := GetDirectCounterpart(membership.Channel.ID, user.ID); err == nil {
			meta.OtherID = &other.ID
			name := other.DisplayName()
			meta.OtherName = &name
			meta.OtherAvatar = other.Avatar
			meta.OtherLastSeen = other.LastSeenAt
		} else {
			return meta, err
		}
	}

	return meta, nil
}

// isUnread keeps the deliberately cheap unread signal: the newest message
// postdates both the read marker and the clear watermark, and someone else
// wrote it.
func isUnread(user models.Account, membership models.ChannelMember, last models.Message) bool {
	if last.SenderID != nil && *last.SenderID == user.ID {
		return false
	}
	if membership.LastReadAt != nil && !last.CreatedAt.After(*membership.LastReadAt) {
		return false
	}
	if membership.ClearedHistoryAt != nil && !last.CreatedAt.After(*membership.ClearedHistoryAt) {
		return false
	}
	return true
}
