package summary

import (
	"context"
	"testing"
)

func TestStandardChain(t *testing.T) {
	prefs := fakePrefs{"mr_name": "Sam", "mr_class": "3B"}
	n := &Normalizer{Identity: Standard(prefs, "")}

	tests := []struct {
		name string
		page *Page
		want string
	}{
		{"no page", nil, ""},
		{"meta", &Page{Meta: "meta", Title: "title", URL: "/a/url.html"}, "meta"},
		{"url", &Page{Title: "title", URL: "/a/url.html"}, "url"},
		{"title", &Page{Title: "title"}, "title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.page != nil {
				ctx = WithPage(ctx, *tt.page)
			}
			s := n.Normalize(ctx, nil)
			if s.GameID != tt.want {
				t.Errorf("gameId = %q, want %q", s.GameID, tt.want)
			}
			if s.Name != "Sam" || s.Class != "3B" {
				t.Errorf("identity = %q/%q, want Sam/3B", s.Name, s.Class)
			}
		})
	}
}

func TestStandardConstantBeforeURL(t *testing.T) {
	n := &Normalizer{Identity: Standard(nil, "const")}
	ctx := WithPage(context.Background(), Page{URL: "/a/url.html", Title: "title"})
	if got := n.Normalize(ctx, nil).GameID; got != "const" {
		t.Errorf("gameId = %q, want const", got)
	}
	ctx = WithPage(context.Background(), Page{Meta: "meta"})
	if got := n.Normalize(ctx, nil).GameID; got != "meta" {
		t.Errorf("gameId = %q, want meta", got)
	}
}
