package notification

import (
	"encoding/json"
)

type EmailConfig struct {
	EditorAlerts  bool `json:"editorAlerts"`
	ManagerAlerts bool `json:"managerAlerts"`
	DigestHour    int  `json:"digestHour" validate:"min=0,max=23"`
}

type SlackConfig struct {
	WebhookURL  string `json:"webhookUrl" validate:"omitempty,url,max=2048"`
	MentionRole string `json:"mentionRole" validate:"max=50"`
}

func DefaultEmailConfig() EmailConfig {
	return EmailConfig{EditorAlerts: true, ManagerAlerts: true, DigestHour: 8}
}

func DefaultSlackConfig() SlackConfig {
	return SlackConfig{WebhookURL: "", MentionRole: "here"}
}

// ParseEmailConfig overlays the stored keys on the defaults; unreadable blobs yield the defaults.
func ParseEmailConfig(raw []byte) EmailConfig {
	cfg := DefaultEmailConfig()
	if len(raw) > 0 {
		out := cfg
		if err := json.Unmarshal(raw, &out); err == nil {
			cfg = out
		}
	}
	return cfg
}

func ParseSlackConfig(raw []byte) SlackConfig {
	cfg := DefaultSlackConfig()
	if len(raw) > 0 {
		out := cfg
		if err := json.Unmarshal(raw, &out); err == nil {
			cfg = out
		}
	}
	return cfg
}

// DefaultConfig returns the seed blob for a channel kind.
func DefaultConfig(kind ChannelKind) []byte {
	var v any
	switch kind {
	case ChannelEmail:
		v = DefaultEmailConfig()
	case ChannelSlack:
		v = DefaultSlackConfig()
	default:
		return []byte("{}")
	}
	b, _ := json.Marshal(v)
	return b
}
