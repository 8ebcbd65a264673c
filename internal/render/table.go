package render

import (
	"encoding/json"
	"fmt"
	"image/color"
	"math"
	"strconv"

	"github.com/mrraes/bewijs/internal/format"
	"github.com/mrraes/bewijs/internal/model"
)

const (
	tableWidth      = 1200
	tableRowHeight  = 40
	tableBaseHeight = 520
	tableMinHeight  = 760
)

// TableHeight is the logical height of a table export with n rows.
func TableHeight(n int) float64 {
	return math.Max(tableMinHeight, tableBaseHeight+float64(n)*tableRowHeight)
}

// Table draws a generic table export below the metadata block of meta. Cells are drawn
// on one line each; overflowing text is neither wrapped nor clipped.
func (r *Renderer) Table(meta model.Summary, t model.Table) *Surface {
	cols := t.Columns
	if len(cols) == 0 {
		cols = r.labels().columns()
	}
	n := len(t.Rows)
	surf := r.newSurface(tableWidth, TableHeight(n))

	surf.SetColor(color.White)
	surf.FillRect(0, 0, tableWidth, surf.Geometry.Height)
	y := r.drawHeader(surf, meta, n, 50, 90, 190, 26)

	tabX, tabY := 40.0, y+16
	tabW := float64(tableWidth - 80)
	colW := math.Floor((tabW - 40) / float64(len(cols)))

	surf.Geometry.RowHeight = tableRowHeight
	surf.Geometry.TableX = tabX
	surf.Geometry.TableY = tabY
	surf.Geometry.TableWidth = tabW
	for range cols {
		surf.Geometry.Columns = append(surf.Geometry.Columns, colW)
	}

	surf.SetColor(colorText)
	surf.SetFont(Bold, 16)
	for i, c := range cols {
		surf.FillText(c, tabX+20+float64(i)*colW, tabY)
	}
	surf.SetColor(colorRule)
	surf.FillRect(tabX, tabY+10, tabW, 1)

	surf.SetFont(Medium, 15)
	ry := tabY + 34
	for i, row := range t.Rows {
		if i%2 == 1 {
			surf.SetColor(colorZebra)
			surf.FillRoundedRect(tabX+2, ry-24, tabW-4, tableRowHeight, 6)
		}
		surf.SetColor(colorText)
		for j := range cols {
			if j < len(row) {
				surf.FillText(CellText(row[j]), tabX+20+float64(j)*colW, ry)
			}
		}
		surf.SetColor(colorRule)
		surf.FillRect(tabX, ry-14, tabW, 1)
		surf.Rows = append(surf.Rows, RowPlacement{Index: i, Top: ry - 24, Bottom: ry - 24 + tableRowHeight, Lines: 1})
		ry += tableRowHeight
	}
	return surf
}

// CellText is the display text of a table cell.
func CellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return format.Number(x)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	}
	return fmt.Sprint(v)
}
