package models

import jsoniter "github.com/json-iterator/go"

const (
	CommandMessageNew    = "messages.new"
	CommandMessageRecall = "messages.recall"
	CommandMessageDelete = "messages.delete"
	CommandStatusTyping  = "status.typing"
	CommandError         = "error"
)

// UnifiedCommand is the packet exchanged over the realtime gateway, in both
// directions. ID carries a delivery idempotency key on pushes.
type UnifiedCommand struct {
	ID      string `json:"id,omitempty"`
	Action  string `json:"action"`
	Message string `json:"message,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

func (v UnifiedCommand) Marshal() []byte {
	data, _ := jsoniter.Marshal(v)
	return data
}

func UnifiedCommandFromError(err error) UnifiedCommand {
	return UnifiedCommand{
		Action:  CommandError,
		Message: err.Error(),
	}
}
