package summary

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/mrraes/bewijs/internal/model"
)

// Field names an identity field resolved through an IdentitySource.
type Field int

const (
	FieldName Field = iota
	FieldClass
	FieldGameID
)

func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldClass:
		return "class"
	case FieldGameID:
		return "gameId"
	}
	return "unknown"
}

// Strategy looks up one identity field. It reports false when it has no value.
type Strategy interface {
	Lookup(ctx context.Context, f Field) (string, bool)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(ctx context.Context, f Field) (string, bool)

// Lookup calls fn.
func (fn StrategyFunc) Lookup(ctx context.Context, f Field) (string, bool) {
	return fn(ctx, f)
}

// IdentitySource is an ordered list of lookup strategies; the first non-empty answer wins.
type IdentitySource []Strategy

// Resolve returns the first non-empty trimmed value for f, or "".
func (s IdentitySource) Resolve(ctx context.Context, f Field) string {
	for _, st := range s {
		if st == nil {
			continue
		}
		if v, ok := st.Lookup(ctx, f); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// PrefReader reads persisted preferences. Missing keys yield "" and a nil error.
type PrefReader interface {
	GetPref(ctx context.Context, key string) (string, error)
}

// PrefsStrategy answers name and class from the persisted prefill values.
type PrefsStrategy struct {
	Prefs PrefReader
}

func (p PrefsStrategy) Lookup(ctx context.Context, f Field) (string, bool) {
	if p.Prefs == nil {
		return "", false
	}
	var key string
	switch f {
	case FieldName:
		key = model.PrefKeyName
	case FieldClass:
		key = model.PrefKeyClass
	default:
		return "", false
	}
	v, err := p.Prefs.GetPref(ctx, key)
	if err != nil {
		slog.Debug("prefill lookup failed", "key", key, "error", err)
		return "", false
	}
	return v, v != ""
}

// PageMeta is the game id published by the host page (the x-game-id meta tag).
type PageMeta string

func (m PageMeta) Lookup(_ context.Context, f Field) (string, bool) {
	return string(m), f == FieldGameID && m != ""
}

// Constant is the globally configured game id.
type Constant string

func (c Constant) Lookup(_ context.Context, f Field) (string, bool) {
	return string(c), f == FieldGameID && c != ""
}

// Location derives the game id from the last path segment of the page URL.
type Location string

func (l Location) Lookup(_ context.Context, f Field) (string, bool) {
	if f != FieldGameID || l == "" {
		return "", false
	}
	id := gameIDFromURL(string(l))
	return id, id != ""
}

func gameIDFromURL(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		p = p[i+1:]
	}
	lower := strings.ToLower(p)
	switch {
	case strings.HasSuffix(lower, ".html"):
		p = p[:len(p)-len(".html")]
	case strings.HasSuffix(lower, ".htm"):
		p = p[:len(p)-len(".htm")]
	}
	return p
}

// Title is the host page title, the last resort for the game id.
type Title string

func (t Title) Lookup(_ context.Context, f Field) (string, bool) {
	return string(t), f == FieldGameID && t != ""
}
