package distribution

import (
	"strings"

	"contentops-workflow/internal/domain/content"
	domain "contentops-workflow/internal/domain/distribution"
)

// BuildPayload fills the headline and caption from the content item when the
// caller left them blank. Headline falls back from the AI headline to the
// title; caption from the description to the AI outline.
func BuildPayload(item *content.Item, overrides domain.Payload) domain.Payload {
	p := overrides
	if blank(p.Headline) {
		p.Headline = firstSet(item.AIHeadline, &item.Title)
	}
	if blank(p.Caption) {
		p.Caption = firstSet(item.Description, item.AIOutline)
	}
	return p
}

// Sanitize drops whitespace-only fields so a channel adapter never receives an
// empty value. Non-blank values pass through untouched.
func Sanitize(p domain.Payload) domain.Payload {
	for _, f := range []*string{&p.Headline, &p.Caption, &p.LinkURL, &p.MediaURL, &p.CTALabel} {
		if blank(*f) {
			*f = ""
		}
	}
	return p
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// firstSet mirrors a nullish fallback: the first non-nil value wins, even if empty.
func firstSet(vals ...*string) string {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return ""
}
