package distribution

type Channel string

const (
	ChannelWebflow   Channel = "WEBFLOW"
	ChannelWordPress Channel = "WORDPRESS"
	ChannelLinkedIn  Channel = "LINKEDIN"
	ChannelFacebook  Channel = "FACEBOOK"
	ChannelInstagram Channel = "INSTAGRAM"
	ChannelReddit    Channel = "REDDIT"
	ChannelMailchimp Channel = "MAILCHIMP"
	ChannelSubstack  Channel = "SUBSTACK"
)

type ChannelInfo struct {
	Channel     Channel `json:"channel"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
}

// Catalog lists the supported destinations in display order.
var Catalog = []ChannelInfo{
	{ChannelWebflow, "Webflow", "Publishes landing pages and CMS blog entries with full metadata control."},
	{ChannelWordPress, "WordPress", "Sync long-form posts via REST API with custom fields."},
	{ChannelLinkedIn, "LinkedIn", "Share thought-leadership to company page or personal profile."},
	{ChannelFacebook, "Facebook", "Page posts with link previews and image carousels."},
	{ChannelInstagram, "Instagram", "Feed captions with multi-image carousel + hashtags."},
	{ChannelReddit, "Reddit", "Community posts with flair-aware formatting."},
	{ChannelMailchimp, "Mailchimp", "Newsletter campaigns with drag-and-drop blocks."},
	{ChannelSubstack, "Substack", "Email + blog hybrid posts with highlights + paywall toggle."},
}

func (c Channel) Valid() bool {
	_, ok := Lookup(c)
	return ok
}

func Lookup(c Channel) (ChannelInfo, bool) {
	for _, info := range Catalog {
		if info.Channel == c {
			return info, true
		}
	}
	return ChannelInfo{}, false
}
