// Package render draws proof-of-completion certificates and table exports.
package render

import (
	"image/color"
	"math"
	"strings"
	"time"

	"github.com/mrraes/bewijs/internal/format"
	"github.com/mrraes/bewijs/internal/model"
)

// Geometry is the resolved layout of one render, in logical units.
type Geometry struct {
	Width, Height float64
	RowHeight     float64
	TableX        float64
	TableY        float64
	TableWidth    float64
	Columns       []float64
	Scale         int
}

// Glyph is the correctness mark drawn in a row.
type Glyph int

const (
	GlyphNone Glyph = iota
	GlyphCheck
	GlyphCross
)

func (g Glyph) String() string {
	switch g {
	case GlyphCheck:
		return "check"
	case GlyphCross:
		return "cross"
	}
	return "none"
}

// RowPlacement records where a data row was drawn.
type RowPlacement struct {
	Index  int
	Top    float64
	Bottom float64
	Lines  int
	Glyph  Glyph
}

// StampFunc returns the verification payload for a certificate, or "" for none.
type StampFunc func(s model.Summary, at time.Time) string

// Renderer draws certificates and tables. The zero value renders with Go fonts, Dutch
// labels, scale 1 and Europe/Brussels dates.
type Renderer struct {
	Fonts    *FontSet
	Labels   *Labels
	DPR      float64
	Location *time.Location
	Now      func() time.Time
	Stamp    StampFunc
}

var (
	colorTitle   = color.RGBA{0x0b, 0x13, 0x2b, 0xff}
	colorKey     = color.RGBA{0x6b, 0x72, 0x80, 0xff}
	colorText    = color.RGBA{0x11, 0x18, 0x27, 0xff}
	colorGiven   = color.RGBA{0x37, 0x41, 0x51, 0xff}
	colorRule    = color.RGBA{0xe5, 0xe7, 0xeb, 0xff}
	colorZebra   = color.RGBA{0xf8, 0xfa, 0xfc, 0xff}
	colorCheck   = color.RGBA{0x10, 0xb9, 0x81, 0xff}
	colorCross   = color.RGBA{0xef, 0x44, 0x44, 0xff}
	colorShadow  = color.NRGBA{15, 23, 42, 15}
	colorBgStart = color.RGBA{0xf7, 0xf9, 0xfc, 0xff}
	colorBgEnd   = color.RGBA{0xfb, 0xfd, 0xff, 0xff}
)

func (r *Renderer) labels() Labels {
	if r.Labels == nil {
		return DefaultLabels()
	}
	return *r.Labels
}

func (r *Renderer) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Renderer) location() *time.Location {
	if r.Location == nil {
		return format.LoadZone(format.DefaultZone)
	}
	return r.Location
}

// CertificatePixels is the physical pixel count of a certificate with n question rows.
func (r *Renderer) CertificatePixels(n int) float64 {
	return pixels(certWidth, CertificateHeight(n), r.DPR)
}

// TablePixels is the physical pixel count of a table export with n rows.
func (r *Renderer) TablePixels(n int) float64 {
	return pixels(tableWidth, TableHeight(n), r.DPR)
}

func pixels(w, h, dpr float64) float64 {
	k := float64(DeviceScale(dpr))
	return math.Ceil(w*k) * math.Ceil(h*k)
}

func (r *Renderer) newSurface(w, h float64) *Surface {
	return NewSurface(w, h, r.DPR, r.Fonts)
}

// sessionTime is the date shown on the image.
func (r *Renderer) sessionTime(s model.Summary) time.Time {
	if !s.At.IsZero() {
		return s.At
	}
	return r.now()
}

type metaRow struct{ key, value string }

// metaRows builds the nine-row metadata block shared by both renderers.
func (r *Renderer) metaRows(s model.Summary, rowCount int) []metaRow {
	l := r.labels()
	or := func(v string) string {
		if v == "" {
			return l.Empty
		}
		return v
	}

	goals := l.Empty
	if len(s.Goals) > 0 {
		goals = strings.Join(s.Goals, ", ")
	}
	acc := l.Empty
	switch {
	case len(s.Accommodations) > 0:
		acc = strings.Join(s.Accommodations, ", ")
	case s.Dyscalculia():
		acc = model.AccommodationDyscalculia
	}
	total := s.Total
	if total == 0 {
		total = float64(rowCount)
	}

	return []metaRow{
		{l.Name, s.DisplayName()},
		{l.Class, or(s.Class)},
		{l.GameID, or(s.GameID)},
		{l.Date, format.DateTime(r.sessionTime(s), r.location())},
		{l.Mode, string(s.Mode)},
		{l.Time, format.Duration(s.Seconds)},
		{l.Score, format.Score(s.Score, total)},
		{l.Goals, goals},
		{l.Accommodations, acc},
	}
}

// drawHeader draws the title and the metadata block and returns the y below the block.
func (r *Renderer) drawHeader(surf *Surface, s model.Summary, rowCount int, titleY, metaY, valueX, step float64) float64 {
	l := r.labels()
	game := s.GameID
	if game == "" {
		game = l.GameFallback
	}
	surf.SetColor(colorTitle)
	surf.SetFont(Bold, 28)
	surf.FillText(l.Title+game, 40, titleY)

	surf.SetFont(Medium, 18)
	y := metaY
	for _, m := range r.metaRows(s, rowCount) {
		surf.SetColor(colorKey)
		surf.FillText(m.key+":", 40, y)
		surf.SetColor(colorText)
		surf.FillText(m.value, valueX, y)
		y += step
	}
	return y
}

// drawMark strokes a check or a cross centred near x,y.
func drawMark(surf *Surface, x, y float64, ok bool) Glyph {
	if ok {
		surf.StrokePaths(3, colorCheck, []Point{{x - 8, y}, {x - 1, y + 7}, {x + 10, y - 8}})
		return GlyphCheck
	}
	surf.StrokePaths(3, colorCross,
		[]Point{{x - 8, y - 8}, {x + 8, y + 8}},
		[]Point{{x + 8, y - 8}, {x - 8, y + 8}},
	)
	return GlyphCross
}
