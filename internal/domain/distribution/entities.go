package distribution

import (
	"time"

	"gorm.io/datatypes"
)

type JobStatus string

const (
	JobDraft     JobStatus = "DRAFT"
	JobReady     JobStatus = "READY"
	JobQueued    JobStatus = "QUEUED"
	JobScheduled JobStatus = "SCHEDULED"
	JobSending   JobStatus = "SENDING"
	JobSent      JobStatus = "SENT"
	JobFailed    JobStatus = "FAILED"
)

// ActiveStatuses are the statuses of which a content item may hold at most one job.
var ActiveStatuses = []JobStatus{JobQueued, JobScheduled, JobSending}

func (s JobStatus) Active() bool {
	for _, a := range ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}

func (s JobStatus) Valid() bool {
	switch s {
	case JobDraft, JobReady, JobQueued, JobScheduled, JobSending, JobSent, JobFailed:
		return true
	}
	return false
}

type Mode string

const (
	ModeImmediate Mode = "IMMEDIATE"
	ModeScheduled Mode = "SCHEDULED"
)

// ProfileConfig is the connection config stored per channel.
type ProfileConfig struct {
	AccessToken string `json:"accessToken,omitempty" validate:"omitempty,max=256"`
	ExternalID  string `json:"externalId,omitempty" validate:"omitempty,max=120"`
	SpaceID     string `json:"spaceId,omitempty" validate:"omitempty,max=120"`
}

// Table: distribution_profiles. Unique per (workspace, channel).
type Profile struct {
	ID          string                            `gorm:"column:id;type:char(32);primaryKey" json:"id"`
	WorkspaceID string                            `gorm:"column:workspace_id;type:varchar(64);not null;uniqueIndex:ux_distribution_profiles_ws_channel,priority:1" json:"workspace_id"`
	Channel     Channel                           `gorm:"column:channel;type:varchar(20);not null;uniqueIndex:ux_distribution_profiles_ws_channel,priority:2" json:"channel"`
	Label       string                            `gorm:"column:label;type:varchar(60)" json:"label"`
	Config      datatypes.JSONType[ProfileConfig] `gorm:"column:config" json:"-"`
	CreatedAt   time.Time                         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time                         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string { return "distribution_profiles" }

// Payload is the normalized publish payload. Empty fields are omitted on the wire.
type Payload struct {
	Headline string `json:"headline,omitempty"`
	Caption  string `json:"caption,omitempty"`
	LinkURL  string `json:"linkUrl,omitempty"`
	MediaURL string `json:"mediaUrl,omitempty"`
	CTALabel string `json:"ctaLabel,omitempty"`
}

// Result is written back once a publish attempt finishes.
type Result struct {
	Message     string    `json:"message"`
	DeliveredAt time.Time `json:"deliveredAt"`
}

// Table: distribution_jobs.
// ActiveContentKey mirrors ContentItemID while the job is active and is NULL
// otherwise; its unique index is the storage-level one-active-job guarantee.
type Job struct {
	ID                string                      `gorm:"column:id;type:char(32);primaryKey" json:"id"`
	WorkspaceID       string                      `gorm:"column:workspace_id;type:varchar(64);not null;index:idx_distribution_jobs_ws_status,priority:1" json:"workspace_id"`
	ContentItemID     string                      `gorm:"column:content_item_id;type:varchar(64);not null;index" json:"content_item_id"`
	ApprovalRequestID *string                     `gorm:"column:approval_request_id;type:char(32);index" json:"approval_request_id,omitempty"`
	ProfileID         string                      `gorm:"column:profile_id;type:char(32);not null" json:"profile_id"`
	Channel           Channel                     `gorm:"column:channel;type:varchar(20);not null" json:"channel"`
	Payload           datatypes.JSONType[Payload] `gorm:"column:payload" json:"payload"`
	Status            JobStatus                   `gorm:"column:status;type:varchar(20);not null;index:idx_distribution_jobs_ws_status,priority:2" json:"status"`
	ScheduledFor      *time.Time                  `gorm:"column:scheduled_for" json:"scheduled_for,omitempty"`
	LastAttemptAt     *time.Time                  `gorm:"column:last_attempt_at" json:"last_attempt_at,omitempty"`
	Result            datatypes.JSON              `gorm:"column:result" json:"result,omitempty"`
	ActiveContentKey  *string                     `gorm:"column:active_content_key;type:varchar(64);uniqueIndex:ux_distribution_jobs_active_content" json:"-"`
	CreatedAt         time.Time                   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time                   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Job) TableName() string { return "distribution_jobs" }

// SyncActiveKey keeps ActiveContentKey consistent with Status.
func (j *Job) SyncActiveKey() {
	if j.Status.Active() {
		key := j.ContentItemID
		j.ActiveContentKey = &key
		return
	}
	j.ActiveContentKey = nil
}
