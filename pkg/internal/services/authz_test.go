package services

import (
	"testing"

	"github.com/nexocrm/messaging/pkg/internal/models"
)

func TestCanModerate(t *testing.T) {
	cases := []struct {
		name    string
		role    models.AccountRole
		channel models.ChannelType
		allow   bool
	}{
		{name: "admin in global", role: models.RoleAdmin, channel: models.ChannelTypeGlobal, allow: true},
		{name: "admin in team", role: models.RoleAdmin, channel: models.ChannelTypeTeam, allow: true},
		{name: "admin in dm", role: models.RoleAdmin, channel: models.ChannelTypeDirect, allow: false},
		{name: "moderator in team", role: models.RoleModerator, channel: models.ChannelTypeTeam, allow: true},
		{name: "moderator in global", role: models.RoleModerator, channel: models.ChannelTypeGlobal, allow: false},
		{name: "moderator in dm", role: models.RoleModerator, channel: models.ChannelTypeDirect, allow: false},
		{name: "member in team", role: models.RoleMember, channel: models.ChannelTypeTeam, allow: false},
		{name: "member in global", role: models.RoleMember, channel: models.ChannelTypeGlobal, allow: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			actor := models.Account{Role: tc.role}
			channel := models.Channel{Type: tc.channel}
			if got := CanModerate(actor, channel); got != tc.allow {
				t.Fatalf("CanModerate(%q, %q) = %v, want %v", tc.role, tc.channel, got, tc.allow)
			}
		})
	}
}

func TestCanRemoveMessage(t *testing.T) {
	owner := models.Account{BaseModel: models.BaseModel{ID: "owner"}, Role: models.RoleMember}
	other := models.Account{BaseModel: models.BaseModel{ID: "other"}, Role: models.RoleMember}
	moderator := models.Account{BaseModel: models.BaseModel{ID: "mod"}, Role: models.RoleModerator}

	team := models.Channel{Type: models.ChannelTypeTeam}
	message := models.Message{SenderID: &owner.ID}

	if !CanRemoveMessage(owner, team, message) {
		t.Fatal("authors must be able to remove their own messages")
	}
	if CanRemoveMessage(other, team, message) {
		t.Fatal("a plain member must not remove foreign messages")
	}
	if !CanRemoveMessage(moderator, team, message) {
		t.Fatal("a moderator must be able to remove messages in a team channel")
	}

	system := models.Message{}
	if CanRemoveMessage(other, team, system) {
		t.Fatal("system notices have no author to match")
	}
}
