package models

// Slack event and callback payloads. Each inbound shape gets its own type so
// handlers never work on untyped maps.

const (
	EventTypeURLVerification = "url_verification"
	EventTypeCallback        = "event_callback"

	EventFileShared   = "file_shared"
	EventFileUnshared = "file_unshared"
	EventFileDeleted  = "file_deleted"

	InteractionTypeMessage = "interactive_message"
)

// Confirmation actions carried by the buttons of the confirmation message.
const (
	ActionAllow           = "allow"
	ActionDisallow        = "disallow"
	ActionDisallowForever = "disallow_forever"
)

// EventEnvelope is the outer body of every Events API request.
type EventEnvelope struct {
	Token     string     `json:"token"`
	Type      string     `json:"type"`
	Challenge string     `json:"challenge,omitempty"`
	TeamID    string     `json:"team_id,omitempty"`
	EventID   string     `json:"event_id,omitempty"`
	Event     InnerEvent `json:"event"`
}

// InnerEvent covers the fields of the file_* events we subscribe to.
type InnerEvent struct {
	Type      string `json:"type"`
	UserID    string `json:"user_id,omitempty"`
	FileID    string `json:"file_id"`
	ChannelID string `json:"channel_id,omitempty"`
}

// FileSharedEvent is a validated file_shared callback.
type FileSharedEvent struct {
	Token  string
	UserID string
	FileID string
}

// FileRemovedEvent is a validated file_unshared or file_deleted callback.
type FileRemovedEvent struct {
	Token  string
	Type   string
	FileID string
}

// InteractionPayload is the JSON carried in the "payload" form field of an
// interactive message callback.
type InteractionPayload struct {
	Token      string              `json:"token"`
	Type       string              `json:"type"`
	CallbackID string              `json:"callback_id"`
	User       InteractionUser     `json:"user"`
	Channel    InteractionChannel  `json:"channel"`
	Actions    []InteractionAction `json:"actions"`
}

type InteractionUser struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type InteractionChannel struct {
	ID string `json:"id"`
}

type InteractionAction struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// InteractiveActionEvent is a validated button click on a confirmation message.
type InteractiveActionEvent struct {
	Token      string
	CallbackID string
	UserID     string
	ChannelID  string
	Action     string
	Value      string
}
