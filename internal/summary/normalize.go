// Package summary turns loosely structured session summaries into model.Summary values.
package summary

import (
	"context"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/mrraes/bewijs/internal/model"
)

var goalSep = regexp.MustCompile(`[,\s]+`)

// Normalizer resolves a Raw summary into a model.Summary. It never fails: every field has
// a terminal fallback.
type Normalizer struct {
	Identity IdentitySource
}

// New returns a Normalizer consulting the given strategies in order.
func New(strategies ...Strategy) *Normalizer {
	return &Normalizer{Identity: IdentitySource(strategies)}
}

// Normalize builds the canonical summary for raw. A nil raw is treated as empty.
func (n *Normalizer) Normalize(ctx context.Context, raw Raw) model.Summary {
	if raw == nil {
		raw = Raw{}
	}
	var ids IdentitySource
	if n != nil {
		ids = n.Identity
	}

	s := model.Summary{
		Name:   resolve(ctx, raw, ids, FieldName, "name", "playerName", "student", "studentName"),
		Class:  resolve(ctx, raw, ids, FieldClass, "class", "klas", "group"),
		GameID: resolve(ctx, raw, ids, FieldGameID, "gameId"),
		Mode:   ParseMode(toString(raw["mode"])),
	}

	s.Seconds = seconds(raw["seconds"])
	s.Questions = questionRows(raw["questions"])
	s.Score = toNumber(raw["score"])
	s.Total = toNumber(raw["total"])
	if s.Total == 0 {
		s.Total = float64(len(s.Questions))
	}
	s.Total = math.Max(0, s.Total)

	s.Goals = goals(raw["goals"])
	s.Flags = flags(raw["flags"])
	s.Accommodations = []string{}
	if items, ok := list(raw["accommodations"]); ok {
		for _, it := range items {
			s.Accommodations = append(s.Accommodations, toString(it))
		}
	}
	if len(s.Accommodations) == 0 && s.Flags[model.AccommodationDyscalculia] {
		s.Accommodations = []string{model.AccommodationDyscalculia}
	}
	s.At = date(raw["date"])
	return s
}

// MaxSeconds caps the session duration; larger inputs are clamped to it.
const MaxSeconds = math.MaxInt32

func seconds(v any) int {
	return int(math.Min(MaxSeconds, math.Max(0, math.Floor(toNumber(v)+0.5))))
}

func resolve(ctx context.Context, raw Raw, ids IdentitySource, f Field, keys ...string) string {
	if v := raw.first(keys...); v != nil {
		return safe(v)
	}
	return ids.Resolve(ctx, f)
}

func questionRows(v any) []model.QuestionRow {
	items, ok := list(v)
	rows := make([]model.QuestionRow, 0, len(items))
	if !ok {
		return rows
	}
	for _, it := range items {
		obj, ok := object(it)
		if !ok {
			rows = append(rows, model.QuestionRow{Question: toString(it), Bare: true})
			continue
		}
		r := Raw(obj)
		correct := isCorrect(r.firstPresent("ok", "isCorrect"))
		rows = append(rows, model.QuestionRow{
			Question:      toString(r.firstPresent("q", "question")),
			CorrectAnswer: safe(r.firstPresent("correct", "correctAnswer")),
			GivenAnswer:   safe(r.firstPresent("given", "givenAnswer", "a", "answer", "gegeven")),
			Correct:       &correct,
		})
	}
	return rows
}

func isCorrect(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x == "ok"
	}
	return v != nil && toNumber(v) == 1
}

func goals(v any) []string {
	out := []string{}
	if items, ok := list(v); ok {
		for _, it := range items {
			if truthy(it) {
				out = append(out, toString(it))
			}
		}
		return out
	}
	if !truthy(v) {
		return out
	}
	for _, g := range goalSep.Split(toString(v), -1) {
		if g != "" {
			out = append(out, g)
		}
	}
	return out
}

func flags(v any) map[string]bool {
	out := map[string]bool{}
	obj, ok := object(v)
	if !ok {
		return out
	}
	for k, f := range obj {
		out[k] = truthy(f)
	}
	return out
}

func date(v any) time.Time {
	switch x := v.(type) {
	case time.Time:
		return x
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}
