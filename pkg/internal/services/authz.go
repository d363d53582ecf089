package services

import (
	"github.com/nexocrm/messaging/pkg/internal/models"
)

// Every moderation-ish decision in the codebase goes through these three
// checks, so the rules live in exactly one place.

// CanModerate reports whether the actor may take moderation actions (ban,
// kick, remove foreign messages) inside the given channel. Admins moderate
// every shared channel, moderators only the team channel. Direct channels
// have no moderators.
func CanModerate(actor models.Account, channel models.Channel) bool {
	if channel.Type == models.ChannelTypeDirect {
		return false
	}
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleModerator:
		return channel.Type == models.ChannelTypeTeam
	default:
		return false
	}
}

// CanRemoveMessage covers both recall and hard delete: the author may always
// remove their own message, everyone else needs moderation rights.
func CanRemoveMessage(actor models.Account, channel models.Channel, message models.Message) bool {
	if message.SenderID != nil && *message.SenderID == actor.ID {
		return true
	}
	return CanModerate(actor, channel)
}

// CanManageChannel gates channel administration: creating team channels,
// adding and removing members.
func CanManageChannel(actor models.Account, channel models.Channel) bool {
	if channel.AccountID != nil && *channel.AccountID == actor.ID {
		return true
	}
	return actor.Role == models.RoleAdmin
}
