package distribution

import (
	"time"

	domain "contentops-workflow/internal/domain/distribution"
)

// ScheduleInput creates a job, or replaces the job named by JobID.
// ScheduledFor is RFC3339 and only read in SCHEDULED mode.
type ScheduleInput struct {
	JobID             string         `json:"job_id"              validate:"omitempty,hex32"`
	ApprovalRequestID string         `json:"approval_request_id" validate:"omitempty,hex32"`
	ContentItemID     string         `json:"content_item_id"     validate:"required,ident"`
	Channel           domain.Channel `json:"channel"             validate:"required,oneof=WEBFLOW WORDPRESS LINKEDIN FACEBOOK INSTAGRAM REDDIT MAILCHIMP SUBSTACK"`
	Mode              domain.Mode    `json:"mode"                validate:"required,oneof=IMMEDIATE SCHEDULED"`
	ScheduledFor      string         `json:"scheduled_for"`
	Headline          string         `json:"headline"            validate:"max=200"`
	Caption           string         `json:"caption"             validate:"max=2000"`
	LinkURL           string         `json:"link_url"            validate:"omitempty,url"`
	MediaURL          string         `json:"media_url"           validate:"omitempty,url"`
	CTALabel          string         `json:"cta_label"           validate:"max=60"`
}

type ProfileInput struct {
	Channel     domain.Channel `json:"channel"      validate:"required,oneof=WEBFLOW WORDPRESS LINKEDIN FACEBOOK INSTAGRAM REDDIT MAILCHIMP SUBSTACK"`
	Label       string         `json:"label"        validate:"min=2,max=60"`
	AccessToken string         `json:"access_token" validate:"max=256"`
	ExternalID  string         `json:"external_id"  validate:"max=120"`
	SpaceID     string         `json:"space_id"     validate:"max=120"`
}

// ProfileSummary is what the channel list shows for a connection.
// Config is only filled in for admins.
type ProfileSummary struct {
	ID        string                `json:"id"`
	Channel   domain.Channel        `json:"channel"`
	Label     string                `json:"label"`
	HasToken  bool                  `json:"has_token"`
	UpdatedAt time.Time             `json:"updated_at"`
	Config    *domain.ProfileConfig `json:"config,omitempty"`
}

type ChannelDTO struct {
	domain.ChannelInfo
	Connected bool            `json:"connected"`
	Profile   *ProfileSummary `json:"profile,omitempty"`
}
