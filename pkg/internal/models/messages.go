package models

import "gorm.io/datatypes"

// RecalledMessageContent replaces the body of a recalled message.
const RecalledMessageContent = "[message recalled]"

type Message struct {
	BaseModel

	Content  string            `json:"content"`
	IsSystem bool              `json:"is_system"`
	Metadata datatypes.JSONMap `json:"metadata"`

	Channel   Channel  `json:"channel"`
	ChannelID string   `json:"channel_id"`
	Sender    *Account `json:"sender"`
	SenderID  *string  `json:"sender_id"`
}
