package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/nexocrm/messaging/pkg/internal/database"
	"github.com/nexocrm/messaging/pkg/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateDirectChannelIdempotent(t *testing.T) {
	alice := newTestAccount(t, models.RoleMember)
	bob := newTestAccount(t, models.RoleMember)

	first, err := GetOrCreateDirectChannel(alice, bob)
	require.NoError(t, err)
	require.Equal(t, models.ChannelTypeDirect, first.Type)

	// Same unordered pair, both orders
	second, err := GetOrCreateDirectChannel(bob, alice)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	third, err := GetOrCreateDirectChannel(alice, bob)
	require.NoError(t, err)
	assert.Equal(t, first.ID, third.ID)

	_, err = GetOrCreateDirectChannel(alice, alice)
	assert.Error(t, err)
}

func TestDirectoryOrderingByRecency(t *testing.T) {
	admin := newTestAccount(t, models.RoleAdmin)

	oldest := newTestTeamChannel(t, admin)
	middle := newTestTeamChannel(t, admin)
	newest := newTestTeamChannel(t, admin)
	silent := newTestTeamChannel(t, admin)

	base := time.Now().Add(-time.Hour)
	seedMessage(t, oldest, admin, "first", base)
	seedMessage(t, middle, admin, "second", base.Add(10*time.Minute))
	seedMessage(t, newest, admin, "third", base.Add(20*time.Minute))

	metas, err := ListChannelMeta(admin)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(metas), 5) // four teams plus the global channel

	require.Equal(t, newest.ID, metas[0].ID)
	require.Equal(t, middle.ID, metas[1].ID)
	require.Equal(t, oldest.ID, metas[2].ID)

	// Channels without messages sort last
	for _, meta := range metas[3:] {
		assert.Nil(t, meta.LastMessageAt)
	}
	ids := make([]string, 0, len(metas))
	for _, meta := range metas {
		ids = append(ids, meta.ID)
	}
	assert.Contains(t, ids, silent.ID)
	assert.Contains(t, ids, models.GlobalChannelID)
}

func TestUnreadFlagLifecycle(t *testing.T) {
	admin := newTestAccount(t, models.RoleAdmin)
	reader := newTestAccount(t, models.RoleMember)
	channel := newTestTeamChannel(t, admin, reader)

	_, err := NewTextMessage("hello", admin, channel)
	require.NoError(t, err)

	// The sender never sees their own message as unread
	metas, err := ListChannelMeta(admin)
	require.NoError(t, err)
	assert.False(t, findMeta(t, metas, channel.ID).Unread)

	metas, err = ListChannelMeta(reader)
	require.NoError(t, err)
	meta := findMeta(t, metas, channel.ID)
	assert.True(t, meta.Unread)
	require.NotNil(t, meta.LastMessagePreview)
	assert.Equal(t, "hello", *meta.LastMessagePreview)

	member, err := GetChannelMember(reader, channel.ID)
	require.NoError(t, err)
	require.NoError(t, MarkChannelRead(member))

	metas, err = ListChannelMeta(reader)
	require.NoError(t, err)
	assert.False(t, findMeta(t, metas, channel.ID).Unread)
}

func TestDirectChannelDirectoryScenario(t *testing.T) {
	alice := newTestAccount(t, models.RoleMember)
	bob := newTestAccount(t, models.RoleMember)

	channel, err := GetOrCreateDirectChannel(alice, bob)
	require.NoError(t, err)

	_, err = NewTextMessage("hello", alice, channel)
	require.NoError(t, err)

	metas, err := ListChannelMeta(alice)
	require.NoError(t, err)
	meta := findMeta(t, metas, channel.ID)
	assert.False(t, meta.Unread)
	require.NotNil(t, meta.OtherID)
	assert.Equal(t, bob.ID, *meta.OtherID)

	metas, err = ListChannelMeta(bob)
	require.NoError(t, err)
	meta = findMeta(t, metas, channel.ID)
	assert.True(t, meta.Unread)
	require.NotNil(t, meta.OtherID)
	assert.Equal(t, alice.ID, *meta.OtherID)
	require.NotNil(t, meta.LastMessagePreview)
	assert.Equal(t, "hello", *meta.LastMessagePreview)
}

func TestDirectoryDropsBrokenEntries(t *testing.T) {
	alice := newTestAccount(t, models.RoleMember)
	bob := newTestAccount(t, models.RoleMember)
	carol := newTestAccount(t, models.RoleMember)

	broken, err := GetOrCreateDirectChannel(alice, bob)
	require.NoError(t, err)
	healthy, err := GetOrCreateDirectChannel(alice, carol)
	require.NoError(t, err)

	// Orphan one DM so its counterpart lookup fails during enrichment
	require.NoError(t, database.C.Unscoped().
		Where("channel_id = ? AND account_id = ?", broken.ID, bob.ID).
		Delete(&models.ChannelMember{}).Error)

	metas, err := ListChannelMeta(alice)
	require.NoError(t, err)

	ids := make([]string, 0, len(metas))
	for _, meta := range metas {
		ids = append(ids, meta.ID)
	}
	assert.NotContains(t, ids, broken.ID)
	assert.Contains(t, ids, healthy.ID)
	assert.Contains(t, ids, models.GlobalChannelID)
}

func TestListMessagePaging(t *testing.T) {
	admin := newTestAccount(t, models.RoleAdmin)
	channel := newTestTeamChannel(t, admin)

	base := time.Now().Add(-2 * time.Hour)
	for i := 0; i < 105; i++ {
		seedMessage(t, channel, admin, fmt.Sprintf("m%d", i), base.Add(time.Duration(i)*time.Second))
	}
	assert.EqualValues(t, 105, CountMessage(channel))

	member, err := GetChannelMember(admin, channel.ID)
	require.NoError(t, err)

	// Out-of-range page sizes fall back to the fixed page
	for _, take := range []int{-1, 0, 500} {
		messages, err := ListMessage(member, take, 0)
		require.NoError(t, err)
		assert.Len(t, messages, 100)
	}

	// Newest page, ascending
	messages, err := ListMessage(member, 100, 0)
	require.NoError(t, err)
	assert.Equal(t, "m5", messages[0].Content)
	assert.Equal(t, "m104", messages[len(messages)-1].Content)
}

func TestClearHistoryWatermark(t *testing.T) {
	admin := newTestAccount(t, models.RoleAdmin)
	channel := newTestTeamChannel(t, admin)

	base := time.Now().Add(-time.Hour)
	seedMessage(t, channel, admin, "one", base)
	seedMessage(t, channel, admin, "two", base.Add(time.Minute))

	member, err := GetChannelMember(admin, channel.ID)
	require.NoError(t, err)
	require.NoError(t, ClearHistory(member))

	member, err = GetChannelMember(admin, channel.ID)
	require.NoError(t, err)
	require.NotNil(t, member.ClearedHistoryAt)

	messages, err := ListMessage(member, 100, 0)
	require.NoError(t, err)
	assert.Empty(t, messages)

	last, err := GetLastMessage(member)
	require.NoError(t, err)
	assert.Nil(t, last)

	// Only messages strictly above the watermark come back
	seedMessage(t, channel, admin, "after", time.Now().Add(time.Second))
	messages, err = ListMessage(member, 100, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "after", messages[0].Content)
}

func TestSendRejectsEmptyContent(t *testing.T) {
	admin := newTestAccount(t, models.RoleAdmin)
	channel := newTestTeamChannel(t, admin)

	_, err := NewTextMessage("   \n\t ", admin, channel)
	assert.Error(t, err)
}

func TestBanGateAndExpiry(t *testing.T) {
	admin := newTestAccount(t, models.RoleAdmin)
	moderator := newTestAccount(t, models.RoleModerator)
	target := newTestAccount(t, models.RoleMember)
	channel := newTestTeamChannel(t, admin, moderator, target)

	// A plain member cannot ban
	_, err := BanAccount(target, moderator, channel, 15, "nope")
	assert.Error(t, err)

	ban, err := BanAccount(moderator, target, channel, 15, "spam")
	require.NoError(t, err)
	assert.True(t, ban.IsActive(time.Now()))
	assert.Equal(t, "spam", ban.Reason)

	_, err = NewTextMessage("let me in", target, channel)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "banned")

	// The ban notice lands in the channel as a system message
	member, err := GetChannelMember(target, channel.ID)
	require.NoError(t, err)
	last, err := GetLastMessage(member)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, last.IsSystem)

	// Expiry elapsing is the only lift, no unban call exists
	require.NoError(t, database.C.Model(&models.Ban{}).
		Where("id = ?", ban.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	_, err = NewTextMessage("back again", target, channel)
	assert.NoError(t, err)
}

func TestBanDeniedOutsideModeratorScope(t *testing.T) {
	admin := newTestAccount(t, models.RoleAdmin)
	moderator := newTestAccount(t, models.RoleModerator)
	target := newTestAccount(t, models.RoleMember)

	dm, err := GetOrCreateDirectChannel(moderator, target)
	require.NoError(t, err)
	_, err = BanAccount(moderator, target, dm, 15, "")
	assert.Error(t, err)

	_, err = BanAccount(admin, target, dm, 15, "")
	assert.Error(t, err)

	// Duration is capped at the seven day preset
	channel := newTestTeamChannel(t, admin, moderator, target)
	_, err = BanAccount(moderator, target, channel, MaxBanMinutes+1, "")
	assert.Error(t, err)
}

func TestRecallAuthorization(t *testing.T) {
	admin := newTestAccount(t, models.RoleAdmin)
	owner := newTestAccount(t, models.RoleMember)
	bystander := newTestAccount(t, models.RoleMember)
	channel := newTestTeamChannel(t, admin, owner, bystander)

	message, err := NewTextMessage("my words", owner, channel)
	require.NoError(t, err)

	// Non-owner non-moderator is rejected, the message survives untouched
	_, err = RecallMessage(message, bystander, channel)
	require.Error(t, err)
	kept, err := GetMessage(channel, message.ID)
	require.NoError(t, err)
	assert.Equal(t, "my words", kept.Content)

	recalled, err := RecallMessage(message, owner, channel)
	require.NoError(t, err)
	assert.Equal(t, models.RecalledMessageContent, recalled.Content)
	assert.Equal(t, owner.ID, recalled.Metadata["recalled_by"])
}

func TestDeleteMessageAuthorization(t *testing.T) {
	admin := newTestAccount(t, models.RoleAdmin)
	owner := newTestAccount(t, models.RoleMember)
	bystander := newTestAccount(t, models.RoleMember)
	channel := newTestTeamChannel(t, admin, owner, bystander)

	message, err := NewTextMessage("short lived", owner, channel)
	require.NoError(t, err)

	require.Error(t, DeleteMessage(message, bystander, channel))
	require.NoError(t, DeleteMessage(message, admin, channel))

	_, err = GetMessage(channel, message.ID)
	assert.Error(t, err)
}

func TestChannelIdentityCacheInvalidation(t *testing.T) {
	admin := newTestAccount(t, models.RoleAdmin)
	member := newTestAccount(t, models.RoleMember)
	channel := newTestTeamChannel(t, admin, member)

	// Prime the cache
	_, identity, err := GetChannelIdentity(channel.ID, member.ID)
	require.NoError(t, err)

	require.NoError(t, RemoveChannelMember(identity, channel))

	_, _, err = GetChannelIdentity(channel.ID, member.ID)
	assert.Error(t, err)
}

func findMeta(t *testing.T, metas []models.ChannelMeta, channelId string) models.ChannelMeta {
	t.Helper()
	for _, meta := range metas {
		if meta.ID == channelId {
			return meta
		}
	}
	t.Fatalf("channel %s not present in directory", channelId)
	return models.ChannelMeta{}
}
