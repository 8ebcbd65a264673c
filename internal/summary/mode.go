package summary

import (
	"strings"

	"github.com/mrraes/bewijs/internal/model"
)

// ModeLabel maps a free-text mode to its label. Unknown non-empty tokens pass through
// lowercased, so ModeLabel(ModeLabel(x)) == ModeLabel(x).
func ModeLabel(m string) string {
	key := strings.ToLower(strings.TrimSpace(m))
	switch {
	case strings.HasPrefix(key, "toet"):
		return string(model.ModeTest)
	case strings.HasPrefix(key, "taa"), key == "task":
		return string(model.ModeTask)
	case key == "oefen", key == "free", key == "vrij", key == "practice":
		return string(model.ModeFree)
	case key == "":
		return string(model.ModeFree)
	}
	return key
}

// ParseMode is ModeLabel restricted to the known modes; anything else is free practice.
func ParseMode(m string) model.Mode {
	if mode := model.Mode(ModeLabel(m)); mode.Valid() {
		return mode
	}
	return model.ModeFree
}
