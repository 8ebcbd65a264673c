package render

import (
	"image/color"
	"math"
	"strconv"

	"github.com/mrraes/bewijs/internal/model"
)

const (
	certWidth      = 1200
	certRowHeight  = 44
	certBaseHeight = 560
	certMinHeight  = 780
	certLineHeight = 18
)

// CertificateHeight is the logical height of a certificate with n question rows.
func CertificateHeight(n int) float64 {
	return math.Max(certMinHeight, certBaseHeight+float64(n)*certRowHeight)
}

// Certificate draws the proof-of-completion image for s. Every question row is drawn;
// nothing is truncated or paginated.
func (r *Renderer) Certificate(s model.Summary) *Surface {
	rows := s.Questions
	n := len(rows)
	h := CertificateHeight(n)
	surf := r.newSurface(certWidth, h)

	surf.FillLinearGradient(Point{0, 0}, Point{certWidth, h},
		Stop{0, colorBgStart},
		Stop{1, colorBgEnd},
	)
	y := r.drawHeader(surf, s, n, 50, 90, 190, 28)
	r.drawStamp(surf, s)

	tabX, tabY := 40.0, y+20
	tabW := float64(certWidth - 80)
	tabH := math.Max(120, 60+float64(n)*certRowHeight)

	surf.DropShadow(tabX, tabY, tabW, tabH, 14, 24, 10, colorShadow)
	surf.SetColor(color.White)
	surf.FillRoundedRect(tabX, tabY, tabW, tabH, 14)

	colNo := math.Floor(tabW * 0.08)
	colQ := math.Floor(tabW * 0.52)
	colC := math.Floor(tabW * 0.16)
	colG := math.Floor(tabW * 0.16)
	colR := tabW - (colNo + colQ + colC + colG)
	widths := []float64{colNo, colQ, colC, colG, colR}

	surf.Geometry.RowHeight = certRowHeight
	surf.Geometry.TableX = tabX
	surf.Geometry.TableY = tabY
	surf.Geometry.TableWidth = tabW
	surf.Geometry.Columns = widths

	cols := r.labels().columns()
	surf.SetFont(Bold, 16)
	surf.SetColor(colorText)
	x := tabX + 20
	for i, w := range widths {
		if i < len(cols) {
			surf.FillText(cols[i], x, tabY+24)
		}
		x += w
	}
	surf.SetColor(colorRule)
	surf.FillRect(tabX, tabY+40, tabW, 1)

	surf.SetFont(Medium, 15)
	ry := tabY + 40 + 12
	for i, q := range rows {
		top := ry - 12
		if i%2 == 1 {
			surf.SetColor(colorZebra)
			surf.FillRoundedRect(tabX+2, ry-12, tabW-4, certRowHeight, 6)
		}

		cx := tabX + 20
		surf.SetColor(colorText)
		surf.FillText(strconv.Itoa(i+1), cx, ry)
		cx += colNo

		qBottom := Wrap(surf, q.Question, cx, ry, colQ-16, certLineHeight)
		cx += colQ

		surf.SetColor(colorTitle)
		surf.FillText(q.CorrectAnswer, cx, ry)
		cx += colC
		surf.SetColor(colorGiven)
		surf.FillText(q.GivenAnswer, cx, ry)
		cx += colG

		glyph := GlyphNone
		if q.Correct != nil {
			glyph = drawMark(surf, cx+14, ry-6, *q.Correct)
		}

		lines := int(math.Round((qBottom - ry) / certLineHeight))
		ry = math.Max(ry+certRowHeight, qBottom+16)
		surf.SetColor(colorRule)
		surf.FillRect(tabX, ry-12, tabW, 1)

		surf.Rows = append(surf.Rows, RowPlacement{
			Index:  i,
			Top:    top,
			Bottom: ry - 12,
			Lines:  lines,
			Glyph:  glyph,
		})
	}
	return surf
}
