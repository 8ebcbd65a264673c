package stamp

import (
	"strings"
	"testing"
	"time"

	"github.com/mrraes/bewijs/internal/model"
)

var at = time.Date(2026, 10, 16, 14, 5, 0, 0, time.UTC)

func sample() model.Summary {
	return model.Summary{
		Name:    "Sam",
		Class:   "3B",
		GameID:  "breuken",
		Mode:    model.ModeTest,
		Seconds: 95,
		Score:   7,
		Total:   10,
	}
}

func TestPayloadFormat(t *testing.T) {
	p := Payload(sample(), at, []byte("geheim"))
	want := "bewijs1|breuken|Sam|3B|7/10|toets|95|202610161405|"
	if !strings.HasPrefix(p, want) {
		t.Fatalf("payload = %q, want prefix %q", p, want)
	}
	if mac := strings.TrimPrefix(p, want); len(mac) != 16 {
		t.Errorf("mac = %q, want 16 hex digits", mac)
	}
}

func TestPayloadEscapesSeparator(t *testing.T) {
	s := sample()
	s.Name = "a|b"
	p := Payload(s, at, nil)
	if !strings.Contains(p, "|a/b|") {
		t.Errorf("payload = %q, separator not replaced", p)
	}
	if !Verify(p, nil) {
		t.Error("payload with escaped name should verify")
	}
}

func TestPayloadTotalFallsBackToQuestions(t *testing.T) {
	s := sample()
	s.Total = 0
	s.Questions = make([]model.QuestionRow, 3)
	if p := Payload(s, at, nil); !strings.Contains(p, "|7/3|") {
		t.Errorf("payload = %q, want score 7/3", p)
	}
}

func TestVerify(t *testing.T) {
	key := []byte("geheim")
	p := Payload(sample(), at, key)

	tests := []struct {
		name    string
		payload string
		key     []byte
		want    bool
	}{
		{"valid", p, key, true},
		{"wrong key", p, []byte("anders"), false},
		{"tampered score", strings.Replace(p, "7/10", "10/10", 1), key, false},
		{"tampered name", strings.Replace(p, "Sam", "Sem", 1), key, false},
		{"truncated", p[:len(p)-1], key, false},
		{"no separator", "bewijs1", key, false},
		{"other version", strings.Replace(p, "bewijs1", "bewijs2", 1), key, false},
		{"empty", "", key, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Verify(tt.payload, tt.key); got != tt.want {
				t.Errorf("Verify = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLongKey(t *testing.T) {
	key := []byte(strings.Repeat("k", 100))
	p := Payload(sample(), at, key)
	if !Verify(p, key) {
		t.Error("long key should verify")
	}
}

func TestSigner(t *testing.T) {
	sign := Signer([]byte("geheim"))
	if got, want := sign(sample(), at), Payload(sample(), at, []byte("geheim")); got != want {
		t.Errorf("Signer = %q, want %q", got, want)
	}
}
