package model

import (
	"encoding/json"
	"slices"
	"time"
)

// Mode represents the kind of session a summary was produced in.
type Mode string

const (
	// ModeFree is free practice.
	ModeFree Mode = "vrij"
	// ModeTask is an assigned task.
	ModeTask Mode = "taak"
	// ModeTest is a graded test.
	ModeTest Mode = "toets"
)

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeFree, ModeTask, ModeTest:
		return true
	}
	return false
}

// AccommodationDyscalculia is the accommodation and flag name for dyscalculia.
const AccommodationDyscalculia = "dyscalculie"

// QuestionRow is one answered (or merely listed) question.
type QuestionRow struct {
	Question      string
	CorrectAnswer string
	GivenAnswer   string
	// Correct is nil when correctness is unknown.
	Correct *bool
	// Bare marks rows that were supplied as a plain string.
	Bare bool
}

// MarshalJSON writes bare rows as a plain string and other rows as an object.
func (q QuestionRow) MarshalJSON() ([]byte, error) {
	if q.Bare {
		return json.Marshal(q.Question)
	}
	return json.Marshal(struct {
		Question      string `json:"question"`
		CorrectAnswer string `json:"correctAnswer"`
		GivenAnswer   string `json:"givenAnswer"`
		IsCorrect     *bool  `json:"isCorrect"`
	}{q.Question, q.CorrectAnswer, q.GivenAnswer, q.Correct})
}

// Summary is the canonical description of one exercise session.
type Summary struct {
	Name           string          `json:"name"`
	Class          string          `json:"class"`
	GameID         string          `json:"gameId"`
	Mode           Mode            `json:"mode"`
	Seconds        int             `json:"seconds"`
	Score          float64         `json:"score"`
	Total          float64         `json:"total"`
	Questions      []QuestionRow   `json:"questions"`
	Goals          []string        `json:"goals"`
	Flags          map[string]bool `json:"flags"`
	Accommodations []string        `json:"accommodations"`
	// At is the session date; zero means the time of rendering.
	At time.Time `json:"date,omitzero"`
}

// Dyscalculia reports whether the dyscalculia accommodation applies.
func (s Summary) Dyscalculia() bool {
	return s.Flags[AccommodationDyscalculia] || slices.Contains(s.Accommodations, AccommodationDyscalculia)
}

// AccommodationSuffix is appended to names when dyscalculia applies.
func (s Summary) AccommodationSuffix() string {
	if s.Dyscalculia() {
		return " (" + AccommodationDyscalculia + ")"
	}
	return ""
}

// DisplayName returns the name as shown on a certificate.
func (s Summary) DisplayName() string {
	name := s.Name
	if name == "" {
		name = "—"
	}
	return name + s.AccommodationSuffix()
}

// Config holds runtime parameters set via CLI flags, environment and config file.
type Config struct {
	Addr          string
	Lang          string
	Timezone      string // IANA zone used for the date on certificates
	DPR           float64
	OutDir        string // where the directory downloader writes files
	GameID        string // global game identifier constant
	FontRegular   string // optional TTF path; Go fonts when empty
	FontBold      string
	QR            bool
	QRSecret      string
	EncodeTimeout time.Duration
	MaxPixels     int64  // largest render accepted, in physical pixels
	PrefsBackend  string // sqlite, redis or none
	DBPath        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}
