package models

import "time"

type Ban struct {
	BaseModel

	ChannelID   string    `json:"channel_id" gorm:"index"`
	AccountID   string    `json:"account_id" gorm:"index"`
	ModeratorID string    `json:"moderator_id"`
	Reason      string    `json:"reason"`
	ExpiresAt   time.Time `json:"expires_at"`

	Channel Channel `json:"channel"`
	Account Account `json:"account"`
}

// Lifting is purely expiry based, there is no revocation transition.
func (v Ban) IsActive(now time.Time) bool {
	return v.ExpiresAt.After(now)
}
