package summary

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/mrraes/bewijs/internal/model"
)

type fakePrefs map[string]string

func (f fakePrefs) GetPref(_ context.Context, key string) (string, error) {
	return f[key], nil
}

type failingPrefs struct{}

func (failingPrefs) GetPref(context.Context, string) (string, error) {
	return "", errors.New("storage unavailable")
}

func decode(t *testing.T, s string) Raw {
	t.Helper()
	var raw Raw
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		t.Fatalf("decode %s: %v", s, err)
	}
	return raw
}

func TestNormalizeEmpty(t *testing.T) {
	s := New().Normalize(context.Background(), nil)
	if s.Name != "" || s.Class != "" || s.GameID != "" {
		t.Errorf("identity = %q/%q/%q, want empty", s.Name, s.Class, s.GameID)
	}
	if s.Mode != model.ModeFree {
		t.Errorf("mode = %q, want vrij", s.Mode)
	}
	if s.Seconds != 0 || s.Score != 0 || s.Total != 0 {
		t.Errorf("numbers = %d/%v/%v, want zeros", s.Seconds, s.Score, s.Total)
	}
	if s.Questions == nil || s.Goals == nil || s.Flags == nil || s.Accommodations == nil {
		t.Error("collections should be empty, not nil")
	}
}

func TestGameIDFallbackOrder(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		ids  []Strategy
		want string
	}{
		{"metadata first", []Strategy{PageMeta("meta"), Constant("const"), Location("/spel/url.html"), Title("title")}, "meta"},
		{"constant", []Strategy{PageMeta(""), Constant("const"), Location("/spel/url.html"), Title("title")}, "const"},
		{"url", []Strategy{PageMeta(""), Constant(""), Location("https://x.be/spel/url.html?x=1#top"), Title("title")}, "url"},
		{"htm suffix", []Strategy{Location("/a/b/rekenen.htm")}, "rekenen"},
		{"title", []Strategy{PageMeta(""), Constant(""), Location("/spel/"), Title("  Titel  ")}, "Titel"},
		{"nothing", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.ids...).Normalize(ctx, Raw{})
			if s.GameID != tt.want {
				t.Errorf("GameID = %q, want %q", s.GameID, tt.want)
			}
			if s.Name != "" || s.Class != "" {
				t.Errorf("name/class = %q/%q, want empty", s.Name, s.Class)
			}
		})
	}
}

func TestExplicitGameIDWins(t *testing.T) {
	s := New(PageMeta("meta")).Normalize(context.Background(), Raw{"gameId": " telrij "})
	if s.GameID != "telrij" {
		t.Errorf("GameID = %q, want telrij", s.GameID)
	}
}

func TestNameAndClassAliases(t *testing.T) {
	ctx := context.Background()
	prefs := fakePrefs{model.PrefKeyName: "Opgeslagen", model.PrefKeyClass: "1A"}
	n := New(PrefsStrategy{Prefs: prefs})

	tests := []struct {
		raw       Raw
		wantName  string
		wantClass string
	}{
		{Raw{"name": "Eva", "class": "2B"}, "Eva", "2B"},
		{Raw{"playerName": "Jan", "klas": "3C"}, "Jan", "3C"},
		{Raw{"student": "Lies", "group": "G1"}, "Lies", "G1"},
		{Raw{"studentName": " Tom "}, "Tom", "1A"},
		{Raw{"name": "", "playerName": "Ann"}, "Ann", "1A"},
		{Raw{}, "Opgeslagen", "1A"},
	}
	for _, tt := range tests {
		s := n.Normalize(ctx, tt.raw)
		if s.Name != tt.wantName || s.Class != tt.wantClass {
			t.Errorf("Normalize(%v) = %q/%q, want %q/%q", tt.raw, s.Name, s.Class, tt.wantName, tt.wantClass)
		}
	}
}

func TestPrefsErrorsAreAbsent(t *testing.T) {
	s := New(PrefsStrategy{Prefs: failingPrefs{}}).Normalize(context.Background(), Raw{})
	if s.Name != "" || s.Class != "" {
		t.Errorf("name/class = %q/%q, want empty", s.Name, s.Class)
	}
}

func TestModeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"toets", "toets"},
		{"Toetsen", "toets"},
		{"taak", "taak"},
		{"TAAK", "taak"},
		{"task", "taak"},
		{"oefen", "vrij"},
		{"free", "vrij"},
		{"practice", "vrij"},
		{"vrij", "vrij"},
		{"", "vrij"},
		{"  ", "vrij"},
		{"Quiz", "quiz"},
	}
	for _, tt := range tests {
		got := ModeLabel(tt.in)
		if got != tt.want {
			t.Errorf("ModeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if again := ModeLabel(got); again != got {
			t.Errorf("ModeLabel not idempotent for %q: %q then %q", tt.in, got, again)
		}
	}
}

func TestNormalizeModeStaysInEnum(t *testing.T) {
	s := New().Normalize(context.Background(), Raw{"mode": "Quiz"})
	if s.Mode != model.ModeFree {
		t.Errorf("Mode = %q, want vrij", s.Mode)
	}
	s = New().Normalize(context.Background(), Raw{"mode": "Toets"})
	if s.Mode != model.ModeTest {
		t.Errorf("Mode = %q, want toets", s.Mode)
	}
}

func TestNumbers(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name        string
		raw         string
		wantSeconds int
		wantScore   float64
		wantTotal   float64
	}{
		{"plain", `{"seconds":125,"score":7,"total":10}`, 125, 7, 10},
		{"rounding", `{"seconds":12.5}`, 13, 0, 0},
		{"negative seconds", `{"seconds":-4}`, 0, 0, 0},
		{"strings", `{"seconds":"61","score":"3","total":"4"}`, 61, 3, 4},
		{"garbage", `{"seconds":"abc","score":"x"}`, 0, 0, 0},
		{"huge seconds", `{"seconds":1e19}`, MaxSeconds, 0, 0},
		{"huge float seconds", `{"seconds":1e300}`, MaxSeconds, 0, 0},
		{"huge string seconds", `{"seconds":"1e20"}`, MaxSeconds, 0, 0},
		{"total from questions", `{"questions":["a","b","c"]}`, 0, 0, 3},
		{"score above total is kept", `{"score":12,"total":10}`, 0, 12, 10},
		{"negative total floors", `{"total":-3}`, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New().Normalize(ctx, decode(t, tt.raw))
			if s.Seconds != tt.wantSeconds || s.Score != tt.wantScore || s.Total != tt.wantTotal {
				t.Errorf("got %d/%v/%v, want %d/%v/%v", s.Seconds, s.Score, s.Total, tt.wantSeconds, tt.wantScore, tt.wantTotal)
			}
		})
	}
}

func TestGoals(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		raw  Raw
		want []string
	}{
		{Raw{"goals": "a,b c"}, []string{"a", "b", "c"}},
		{Raw{"goals": []any{"a", "b"}}, []string{"a", "b"}},
		{Raw{"goals": []string{"x", "", "y"}}, []string{"x", "y"}},
		{Raw{"goals": " , "}, []string{}},
		{Raw{}, []string{}},
	}
	for _, tt := range tests {
		s := New().Normalize(ctx, tt.raw)
		if !slices.Equal(s.Goals, tt.want) {
			t.Errorf("goals(%v) = %q, want %q", tt.raw["goals"], s.Goals, tt.want)
		}
	}
}

func TestAccommodations(t *testing.T) {
	ctx := context.Background()

	s := New().Normalize(ctx, Raw{"flags": map[string]any{"dyscalculie": true}})
	if !slices.Equal(s.Accommodations, []string{"dyscalculie"}) {
		t.Errorf("synthesized accommodations = %q", s.Accommodations)
	}
	if !s.Dyscalculia() || s.DisplayName() != "— (dyscalculie)" {
		t.Errorf("DisplayName = %q", s.DisplayName())
	}

	s = New().Normalize(ctx, Raw{
		"flags":          map[string]any{"dyscalculie": true},
		"accommodations": []any{"extra tijd"},
	})
	if !slices.Equal(s.Accommodations, []string{"extra tijd"}) {
		t.Errorf("explicit accommodations overwritten: %q", s.Accommodations)
	}

	s = New().Normalize(ctx, Raw{"name": "Eva", "flags": "nope"})
	if len(s.Flags) != 0 || len(s.Accommodations) != 0 || s.DisplayName() != "Eva" {
		t.Errorf("flags=%v acc=%q display=%q", s.Flags, s.Accommodations, s.DisplayName())
	}
}

func TestQuestionRows(t *testing.T) {
	raw := decode(t, `{"questions":[
		"Wat is 2+2?",
		{"q":"3+4","correct":"7","given":"7","ok":true},
		{"question":"5+5","correctAnswer":"10","a":" 9 ","ok":false},
		{"q":"1+1","correct":2,"answer":"","gegeven":"3","ok":"ok"},
		{"q":"2+1","ok":1},
		{"q":"2+2"},
		null
	]}`)
	s := New().Normalize(context.Background(), raw)
	if len(s.Questions) != 7 {
		t.Fatalf("got %d rows, want 7", len(s.Questions))
	}

	q := s.Questions
	if !q[0].Bare || q[0].Question != "Wat is 2+2?" || q[0].Correct != nil {
		t.Errorf("row 0 = %+v, want bare string row", q[0])
	}
	if q[1].Question != "3+4" || q[1].CorrectAnswer != "7" || q[1].GivenAnswer != "7" || !*q[1].Correct {
		t.Errorf("row 1 = %+v", q[1])
	}
	if q[2].Question != "5+5" || q[2].GivenAnswer != "9" || *q[2].Correct {
		t.Errorf("row 2 = %+v", q[2])
	}
	// answer is present (empty) so it wins over gegeven.
	if q[3].CorrectAnswer != "2" || q[3].GivenAnswer != "" || !*q[3].Correct {
		t.Errorf("row 3 = %+v", q[3])
	}
	if !*q[4].Correct {
		t.Errorf("row 4: ok=1 should be correct")
	}
	if q[5].Correct == nil || *q[5].Correct {
		t.Errorf("row 5: object row without ok should be known incorrect")
	}
	if !q[6].Bare || q[6].Question != "" {
		t.Errorf("row 6 = %+v, want empty bare row", q[6])
	}
	if s.Total != 7 {
		t.Errorf("Total = %v, want 7", s.Total)
	}
}

func TestDate(t *testing.T) {
	s := New().Normalize(context.Background(), Raw{"date": "2026-10-16T10:00:00Z"})
	if s.At.IsZero() || s.At.Hour() != 10 {
		t.Errorf("At = %v", s.At)
	}
	s = New().Normalize(context.Background(), Raw{"date": "gisteren"})
	if !s.At.IsZero() {
		t.Errorf("At = %v, want zero", s.At)
	}
}
