package render

import (
	"fmt"
	"image"
	"log/slog"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/mrraes/bewijs/internal/model"
)

const stampSize = 120

// drawStamp places the verification QR code in the top-right corner when a stamp is
// configured.
func (r *Renderer) drawStamp(surf *Surface, s model.Summary) {
	if r.Stamp == nil {
		return
	}
	payload := r.Stamp(s, r.sessionTime(s))
	if payload == "" {
		return
	}
	img, err := QRImage(payload, stampSize*surf.Scale())
	if err != nil {
		slog.Warn("verification stamp skipped", "error", err)
		return
	}
	surf.DrawImage(img, surf.Geometry.Width-40-stampSize, 24)
}

// QRImage encodes payload as a square QR code of px pixels without a quiet zone.
func QRImage(payload string, px int) (image.Image, error) {
	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	q.DisableBorder = true
	return q.Image(px), nil
}
