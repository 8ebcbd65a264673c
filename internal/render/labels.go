package render

import (
	"slices"

	"github.com/mrraes/bewijs/internal/model"
)

// Labels are the texts printed on rendered images.
type Labels struct {
	Title          string // prefix, followed by the game id
	GameFallback   string
	Empty          string
	Name           string
	Class          string
	GameID         string
	Date           string
	Mode           string
	Time           string
	Score          string
	Goals          string
	Accommodations string
	Columns        []string
}

// DefaultLabels returns the Dutch labels.
func DefaultLabels() Labels {
	return Labels{
		Title:          "Bewijsje — ",
		GameFallback:   "Spel",
		Empty:          "—",
		Name:           "Naam",
		Class:          "Klas",
		GameID:         "Spel-ID",
		Date:           "Datum",
		Mode:           "Modus",
		Time:           "Tijd",
		Score:          "Score",
		Goals:          "Doelen",
		Accommodations: "Aanpassingen",
		Columns:        slices.Clone(model.DefaultColumns),
	}
}

func (l Labels) columns() []string {
	if len(l.Columns) == 0 {
		return model.DefaultColumns
	}
	return l.Columns
}
