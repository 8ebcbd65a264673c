package render

import (
	"image"

	"github.com/disintegration/imaging"
)

// Thumbnail scales img down to width pixels, keeping the aspect ratio. Images that are
// already narrow enough are returned unchanged.
func Thumbnail(img image.Image, width int) image.Image {
	if width <= 0 || width >= img.Bounds().Dx() {
		return img
	}
	return imaging.Resize(img, width, 0, imaging.Lanczos)
}
