package export

import (
	"maps"
	"math"
	"time"

	"github.com/mrraes/bewijs/internal/model"
	"github.com/mrraes/bewijs/internal/prompt"
	"github.com/mrraes/bewijs/internal/summary"
)

// MetaOptions describe a table export's metadata block. Score is taken from Score, then
// OK, then Total minus Err.
type MetaOptions struct {
	Name           string          `json:"name"`
	Class          string          `json:"class"`
	GameID         string          `json:"gameId"`
	Mode           string          `json:"mode"`
	Score          *float64        `json:"score"`
	OK             *float64        `json:"ok"`
	Total          *float64        `json:"total"`
	Err            *float64        `json:"err"`
	Seconds        float64         `json:"seconds"`
	Goals          []string        `json:"goals"`
	Flags          map[string]bool `json:"flags"`
	Accommodations []string        `json:"accommodations"`
	Date           time.Time       `json:"date,omitzero"`
	Extra          []string        `json:"extra"`
	OmitScore      bool            `json:"omitScore"`
	OmitDate       bool            `json:"omitDate"`
}

// TableRequest is the JSON form of a table export. When Meta is absent the metadata
// block is built from Options.
type TableRequest struct {
	Meta     summary.Raw  `json:"meta"`
	Options  *MetaOptions `json:"options"`
	Table    model.Table  `json:"table"`
	Filename string       `json:"filename"`
}

// Export resolves the request into a TableExport.
func (r TableRequest) Export() TableExport {
	meta := r.Meta
	if meta == nil && r.Options != nil {
		meta = MakeMeta(*r.Options)
	}
	return TableExport{Meta: meta, Table: r.Table, Filename: r.Filename}
}

// MakeMeta builds a raw summary from o, ready for normalization.
func MakeMeta(o MetaOptions) summary.Raw {
	var score *float64
	if !o.OmitScore {
		switch {
		case o.Score != nil:
			score = o.Score
		case o.OK != nil:
			score = o.OK
		case o.Total != nil:
			v := *o.Total
			if o.Err != nil {
				v -= *o.Err
			}
			score = &v
		}
	}

	name := o.Name
	if name == "" {
		name = "-"
	}
	raw := summary.Raw{
		"name":    name,
		"class":   o.Class,
		"gameId":  o.GameID,
		"mode":    summary.ModeLabel(o.Mode),
		"seconds": math.Max(0, math.Floor(o.Seconds)),
	}
	if score != nil {
		raw["score"] = *score
	}
	switch {
	case o.Total != nil:
		raw["total"] = *o.Total
	case score != nil && o.Err != nil:
		raw["total"] = *score + *o.Err
	}
	if o.Goals != nil {
		raw["goals"] = o.Goals
	}
	if o.Flags != nil {
		raw["flags"] = o.Flags
	}
	if o.Accommodations != nil {
		raw["accommodations"] = o.Accommodations
	}
	if !o.OmitDate {
		d := o.Date
		if d.IsZero() {
			d = time.Now()
		}
		raw["date"] = d
	}
	if len(o.Extra) > 0 {
		raw["extra"] = o.Extra
	}
	return raw
}

// ApplyPrompt returns a copy of raw carrying the identity collected by a prompt. A
// cancelled result leaves raw unchanged.
func ApplyPrompt(raw summary.Raw, r prompt.Result) summary.Raw {
	out := maps.Clone(raw)
	if out == nil {
		out = summary.Raw{}
	}
	switch r.Kind {
	case prompt.KindSimple:
		out["name"] = r.Name
	case prompt.KindExtended:
		out["name"] = r.Name
		out["class"] = r.Class
		flags := map[string]any{}
		switch old := out["flags"].(type) {
		case map[string]any:
			maps.Copy(flags, old)
		case map[string]bool:
			for k, v := range old {
				flags[k] = v
			}
		}
		for k, v := range r.Flags {
			flags[k] = v
		}
		out["flags"] = flags
	}
	return out
}
