package models

import "time"

type AccountRole = string

const (
	RoleAdmin     = AccountRole("admin")
	RoleModerator = AccountRole("moderator")
	RoleMember    = AccountRole("member")
)

type Account struct {
	BaseModel

	Name       string      `json:"name" gorm:"uniqueIndex"`
	Nick       string      `json:"nick"`
	Avatar     *string     `json:"avatar"`
	Role       AccountRole `json:"role"`
	LastSeenAt *time.Time  `json:"last_seen_at"`

	Channels []ChannelMember `json:"channels" gorm:"foreignKey:AccountID"`
}

func (v Account) DisplayName() string {
	if len(v.Nick) > 0 {
		return v.Nick
	}
	return v.Name
}

type PushSubscription struct {
	BaseModel

	AccountID string `json:"account_id"`
	Endpoint  string `json:"endpoint" gorm:"uniqueIndex"`
	P256dh    string `json:"p256dh"`
	Auth      string `json:"auth"`
}
