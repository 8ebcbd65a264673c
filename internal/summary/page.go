package summary

import "context"

// Page describes the host page a summary was produced on.
type Page struct {
	Meta  string // x-game-id meta tag
	Title string
	URL   string
}

type pageKey struct{}

// WithPage attaches p to ctx for the page strategies returned by Standard.
func WithPage(ctx context.Context, p Page) context.Context {
	return context.WithValue(ctx, pageKey{}, p)
}

// PageFrom returns the page stored in ctx.
func PageFrom(ctx context.Context) (Page, bool) {
	p, ok := ctx.Value(pageKey{}).(Page)
	return p, ok
}

func fromPage(pick func(Page) Strategy) Strategy {
	return StrategyFunc(func(ctx context.Context, f Field) (string, bool) {
		p, ok := PageFrom(ctx)
		if !ok {
			return "", false
		}
		return pick(p).Lookup(ctx, f)
	})
}

// Standard returns the usual identity chain: persisted prefill for name and class, and for
// the game id the page metadata, gameID, the page URL and finally the page title. Page
// values are read from the context (see WithPage), so one chain serves many requests.
func Standard(prefs PrefReader, gameID string) IdentitySource {
	return IdentitySource{
		PrefsStrategy{Prefs: prefs},
		fromPage(func(p Page) Strategy { return PageMeta(p.Meta) }),
		Constant(gameID),
		fromPage(func(p Page) Strategy { return Location(p.URL) }),
		fromPage(func(p Page) Strategy { return Title(p.Title) }),
	}
}
