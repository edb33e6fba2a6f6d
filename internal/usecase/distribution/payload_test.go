package distribution

import (
	"encoding/json"
	"testing"

	"contentops-workflow/internal/domain/content"
	domain "contentops-workflow/internal/domain/distribution"
)

func sp(s string) *string { return &s }

func TestBuildPayload(t *testing.T) {
	tests := []struct {
		name      string
		item      content.Item
		overrides domain.Payload
		want      domain.Payload
	}{
		{
			name: "ai headline wins over title",
			item: content.Item{Title: "Title", AIHeadline: sp("AI headline"), Description: sp("Desc"), AIOutline: sp("Outline")},
			want: domain.Payload{Headline: "AI headline", Caption: "Desc"},
		},
		{
			name: "title and outline fallbacks",
			item: content.Item{Title: "Title", AIOutline: sp("Outline")},
			want: domain.Payload{Headline: "Title", Caption: "Outline"},
		},
		{
			name:      "overrides kept",
			item:      content.Item{Title: "Title", Description: sp("Desc")},
			overrides: domain.Payload{Headline: "Custom", Caption: "Custom caption", LinkURL: "https://x.test/a"},
			want:      domain.Payload{Headline: "Custom", Caption: "Custom caption", LinkURL: "https://x.test/a"},
		},
		{
			name:      "blank override falls back",
			item:      content.Item{Title: "Title"},
			overrides: domain.Payload{Headline: "   "},
			want:      domain.Payload{Headline: "Title"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := tt.item
			if got := BuildPayload(&item, tt.overrides); got != tt.want {
				t.Fatalf("BuildPayload = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	got := Sanitize(domain.Payload{
		Headline: " Launch ",
		Caption:  "   ",
		LinkURL:  "",
		MediaURL: "\t\n",
		CTALabel: "Read more",
	})
	want := domain.Payload{Headline: " Launch ", CTALabel: "Read more"}
	if got != want {
		t.Fatalf("Sanitize = %+v, want %+v", got, want)
	}
}

func TestSanitizeBuildPayload_NeverCarriesEmptyFields(t *testing.T) {
	items := []content.Item{
		{Title: ""},
		{Title: "  ", AIHeadline: sp(""), Description: sp(" "), AIOutline: sp("x")},
		{Title: "T", Description: sp("")},
	}
	for i := range items {
		p := Sanitize(BuildPayload(&items[i], domain.Payload{CTALabel: " "}))
		b, err := json.Marshal(p)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var m map[string]string
		if err := json.Unmarshal(b, &m); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		for k, v := range m {
			if blank(v) {
				t.Fatalf("item %d: field %s is blank in %s", i, k, b)
			}
		}
	}
}
