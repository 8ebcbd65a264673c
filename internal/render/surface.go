package render

import (
	"image"
	"image/color"
	"log/slog"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

// Point is a logical coordinate.
type Point struct{ X, Y float64 }

// Stop is a gradient color stop.
type Stop struct {
	Offset float64
	Color  color.Color
}

// Surface is a drawing surface addressed in logical units. One logical unit covers
// Scale() physical pixels; text is rasterised at the physical size so it stays sharp.
type Surface struct {
	// Geometry is what the surface was laid out with.
	Geometry Geometry

	// Rows lists the data rows drawn on the surface, in order.
	Rows []RowPlacement

	dc    *gg.Context
	scale float64
	fonts *FontSet
	faces map[faceKey]font.Face
}

// DeviceScale turns a device pixel ratio into the integer scale used for surfaces.
func DeviceScale(dpr float64) int {
	if math.IsNaN(dpr) || dpr < 1 {
		return 1
	}
	return int(math.Ceil(dpr))
}

// NewSurface creates a surface of width x height logical units for the given device pixel
// ratio. A nil font set uses the embedded Go fonts.
func NewSurface(width, height, dpr float64, fonts *FontSet) *Surface {
	if fonts == nil {
		fonts = DefaultFonts()
	}
	k := DeviceScale(dpr)
	w := int(math.Ceil(width * float64(k)))
	h := int(math.Ceil(height * float64(k)))
	return &Surface{
		Geometry: Geometry{Width: width, Height: height, Scale: k},
		dc:       gg.NewContext(w, h),
		scale:    float64(k),
		fonts:    fonts,
		faces:    make(map[faceKey]font.Face),
	}
}

// Scale is the number of physical pixels per logical unit.
func (s *Surface) Scale() int { return int(s.scale) }

// Image returns the rendered pixels.
func (s *Surface) Image() image.Image { return s.dc.Image() }

// SetFont selects the face used by FillText and MeasureText. size is in logical units.
func (s *Surface) SetFont(w Weight, size float64) {
	key := faceKey{w, size * s.scale}
	face, ok := s.faces[key]
	if !ok {
		var err error
		face, err = s.fonts.newFace(w, key.size)
		if err != nil {
			slog.Warn("font face unavailable", "weight", w, "size", size, "error", err)
			return
		}
		s.faces[key] = face
	}
	s.dc.SetFontFace(face)
}

// SetColor sets the fill and stroke color.
func (s *Surface) SetColor(c color.Color) { s.dc.SetColor(c) }

// FillText draws text with its baseline at y.
func (s *Surface) FillText(text string, x, y float64) {
	if text == "" {
		return
	}
	s.dc.DrawString(text, x*s.scale, y*s.scale)
}

// MeasureText returns the advance width of text in logical units.
func (s *Surface) MeasureText(text string) float64 {
	w, _ := s.dc.MeasureString(text)
	return w / s.scale
}

// FillRect fills an axis-aligned rectangle.
func (s *Surface) FillRect(x, y, w, h float64) {
	k := s.scale
	s.dc.DrawRectangle(x*k, y*k, w*k, h*k)
	s.dc.Fill()
}

// FillRoundedRect fills a rectangle with corner radius r, clamped to half the shorter side.
func (s *Surface) FillRoundedRect(x, y, w, h, r float64) {
	r = math.Max(0, math.Min(r, math.Min(w, h)/2))
	k := s.scale
	s.dc.DrawRoundedRectangle(x*k, y*k, w*k, h*k, r*k)
	s.dc.Fill()
}

// FillLinearGradient fills the whole surface with a gradient running from p0 to p1.
func (s *Surface) FillLinearGradient(p0, p1 Point, stops ...Stop) {
	k := s.scale
	g := gg.NewLinearGradient(p0.X*k, p0.Y*k, p1.X*k, p1.Y*k)
	for _, st := range stops {
		g.AddColorStop(st.Offset, st.Color)
	}
	s.dc.SetFillStyle(g)
	s.dc.DrawRectangle(0, 0, float64(s.dc.Width()), float64(s.dc.Height()))
	s.dc.Fill()
}

// StrokePaths strokes each polyline with the given line width and color.
func (s *Surface) StrokePaths(width float64, c color.Color, paths ...[]Point) {
	k := s.scale
	s.dc.Push()
	defer s.dc.Pop()
	s.dc.SetColor(c)
	s.dc.SetLineWidth(width * k)
	s.dc.SetLineCap(gg.LineCapRound)
	s.dc.SetLineJoin(gg.LineJoinRound)
	for _, p := range paths {
		if len(p) == 0 {
			continue
		}
		s.dc.MoveTo(p[0].X*k, p[0].Y*k)
		for _, pt := range p[1:] {
			s.dc.LineTo(pt.X*k, pt.Y*k)
		}
	}
	s.dc.Stroke()
}

// DropShadow paints a blurred rounded-rectangle shadow offset vertically by dy.
func (s *Surface) DropShadow(x, y, w, h, r, blur, dy float64, c color.Color) {
	k := s.scale
	pad := math.Ceil(blur * k)
	sw := int(math.Ceil(w*k + 2*pad))
	sh := int(math.Ceil(h*k + 2*pad))
	if sw <= 0 || sh <= 0 {
		return
	}
	sc := gg.NewContext(sw, sh)
	sc.SetColor(c)
	sc.DrawRoundedRectangle(pad, pad, w*k, h*k, math.Max(0, math.Min(r, math.Min(w, h)/2))*k)
	sc.Fill()
	shadow := imaging.Blur(sc.Image(), blur*k/2)
	s.dc.DrawImage(shadow, int(math.Round(x*k-pad)), int(math.Round((y+dy)*k-pad)))
}

// DrawImage pastes img, which must already be at physical resolution, at x,y.
func (s *Surface) DrawImage(img image.Image, x, y float64) {
	s.dc.DrawImage(img, int(math.Round(x*s.scale)), int(math.Round(y*s.scale)))
}
