package notification

import (
	"time"

	"gorm.io/datatypes"
)

type ChannelKind string

const (
	ChannelEmail ChannelKind = "EMAIL"
	ChannelSlack ChannelKind = "SLACK"
)

func (k ChannelKind) Valid() bool { return k == ChannelEmail || k == ChannelSlack }

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusSent       Status = "SENT"
	StatusFailed     Status = "FAILED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusSent, StatusFailed:
		return true
	}
	return false
}

type Payload struct {
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	ActionURL string `json:"actionUrl,omitempty"`
}

// Table: notification_settings. Config holds EmailConfig or SlackConfig depending on Channel.
type Setting struct {
	ID          string         `gorm:"column:id;type:char(32);primaryKey" json:"id"`
	WorkspaceID string         `gorm:"column:workspace_id;type:varchar(64);not null;uniqueIndex:ux_notification_settings_ws_channel,priority:1" json:"workspace_id"`
	Channel     ChannelKind    `gorm:"column:channel;type:varchar(10);not null;uniqueIndex:ux_notification_settings_ws_channel,priority:2" json:"channel"`
	Config      datatypes.JSON `gorm:"column:config" json:"config"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Setting) TableName() string { return "notification_settings" }

// Table: workflow_notifications. The row exists before any send is attempted.
type Notification struct {
	ID                string                      `gorm:"column:id;type:char(32);primaryKey" json:"id"`
	WorkspaceID       string                      `gorm:"column:workspace_id;type:varchar(64);not null;index:idx_workflow_notifications_ws_status,priority:1" json:"workspace_id"`
	ApprovalRequestID *string                     `gorm:"column:approval_request_id;type:char(32);index" json:"approval_request_id,omitempty"`
	RecipientID       *string                     `gorm:"column:recipient_id;type:varchar(64)" json:"recipient_id,omitempty"`
	Channel           ChannelKind                 `gorm:"column:channel;type:varchar(10);not null" json:"channel"`
	Payload           datatypes.JSONType[Payload] `gorm:"column:payload" json:"payload"`
	Status            Status                      `gorm:"column:status;type:varchar(12);not null;default:PENDING;index:idx_workflow_notifications_ws_status,priority:2;index:idx_workflow_notifications_status_claimed,priority:1" json:"status"`
	Attempts          int                         `gorm:"column:attempts;not null;default:0" json:"attempts"`
	ClaimedAt         *time.Time                  `gorm:"column:claimed_at;index:idx_workflow_notifications_status_claimed,priority:2" json:"claimed_at,omitempty"`
	SentAt            *time.Time                  `gorm:"column:sent_at" json:"sent_at,omitempty"`
	Error             *string                     `gorm:"column:error;type:text" json:"error,omitempty"`
	CreatedAt         time.Time                   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time                   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Notification) TableName() string { return "workflow_notifications" }
