package models

import "time"

type ChannelType = string

const (
	ChannelTypeGlobal = ChannelType("global")
	ChannelTypeTeam   = ChannelType("team")
	ChannelTypeDirect = ChannelType("direct")
)

// GlobalChannelID is the well-known identifier of the single broadcast
// channel every deployment carries.
const GlobalChannelID = "00000000-0000-0000-0000-000000000001"

type Channel struct {
	BaseModel

	Type      ChannelType     `json:"type"`
	Name      string          `json:"name"`
	Avatar    *string         `json:"avatar"`
	AccountID *string         `json:"account_id"`
	Members   []ChannelMember `json:"members"`
	Messages  []Message       `json:"messages"`
}

func (v Channel) DisplayText() string {
	if v.Type == ChannelTypeDirect {
		return "DM"
	}
	return v.Name
}

type ChannelMember struct {
	BaseModel

	ChannelID string  `json:"channel_id" gorm:"uniqueIndex:idx_channel_account"`
	AccountID string  `json:"account_id" gorm:"uniqueIndex:idx_channel_account"`
	Channel   Channel `json:"channel"`
	Account   Account `json:"account"`

	LastReadAt       *time.Time `json:"last_read_at"`
	ClearedHistoryAt *time.Time `json:"cleared_history_at"`
}

// ChannelMeta is a directory row: a channel enriched with everything the
// sidebar needs for one viewer. Never persisted.
type ChannelMeta struct {
	Channel

	LastMessageAt      *time.Time `json:"last_message_at"`
	LastMessagePreview *string    `json:"last_message_preview"`
	Unread             bool       `json:"unread"`
	ClearedHistoryAt   *time.Time `json:"cleared_history_at"`

	// Counterpart profile, direct channels only
	OtherID       *string    `json:"other_id,omitempty"`
	OtherName     *string    `json:"other_name,omitempty"`
	OtherAvatar   *string    `json:"other_avatar,omitempty"`
	OtherLastSeen *time.Time `json:"other_last_seen,omitempty"`
}
