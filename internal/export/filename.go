package export

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/mrraes/bewijs/internal/format"
	"github.com/mrraes/bewijs/internal/model"
)

const (
	maxFileRunes = 80
	fileSep      = " — "
	fileExt      = ".png"
)

// Filename derives the download name for s exported at at:
// "<game> — <name> — YYYYMMDD-HHmm.png", at most 80 runes. When too long the name part
// is shortened first, then the game part; the timestamp and extension always survive.
func Filename(s model.Summary, at time.Time) string {
	game := sanitize(s.GameID)
	if game == "" {
		game = "Spel"
	}
	name := s.Name
	if name == "" {
		name = "anoniem"
	}
	name = sanitize(name + s.AccommodationSuffix())
	if name == "" {
		name = "anoniem"
	}
	stamp := format.Stamp(at)

	budget := maxFileRunes - 2*utf8.RuneCountInString(fileSep) - utf8.RuneCountInString(stamp) - len(fileExt)
	g, n := utf8.RuneCountInString(game), utf8.RuneCountInString(name)
	if g+n > budget {
		n = max(budget-g, 1)
		name = truncate(name, n)
	}
	if g+n > budget {
		game = truncate(game, budget-n)
	}
	return game + fileSep + name + fileSep + stamp + fileExt
}

// sanitize removes characters that are unsafe in file names and caps the result at 80
// runes.
func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(`/\:*?"<>|`, r) {
			return -1
		}
		return r
	}, s)
	return truncate(strings.TrimSpace(s), maxFileRunes)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

var (
	unsafePart = regexp.MustCompile(`[^\w\s-]+`)
	spaces     = regexp.MustCompile(`\s+`)
)

// SafeFilePart reduces name to letters, digits, underscores and dashes, for use inside a
// caller-built file name. An empty result becomes "leerling".
func SafeFilePart(name string) string {
	s := unsafePart.ReplaceAllString(strings.TrimSpace(name), "")
	s = spaces.ReplaceAllString(s, "_")
	if len(s) > maxFileRunes {
		s = s[:maxFileRunes]
	}
	if s == "" {
		return "leerling"
	}
	return s
}
