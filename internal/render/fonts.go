package render

import (
	"fmt"
	"maps"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Weight selects a font weight.
type Weight int

const (
	Regular Weight = iota
	Medium
	Bold
)

// FontSet holds parsed fonts. Parsed fonts are shared; faces are created per surface
// because a face is not safe for concurrent use.
type FontSet struct {
	fonts map[Weight]*opentype.Font
}

var goFonts = sync.OnceValue(func() map[Weight]*opentype.Font {
	return map[Weight]*opentype.Font{
		Regular: mustParse(goregular.TTF),
		Medium:  mustParse(gomedium.TTF),
		Bold:    mustParse(gobold.TTF),
	}
})

// DefaultFonts returns the embedded Go fonts.
func DefaultFonts() *FontSet {
	return &FontSet{fonts: maps.Clone(goFonts())}
}

// LoadFonts reads TrueType/OpenType files for the regular and bold weights. Empty paths
// keep the embedded Go font for that weight; a custom regular font also serves medium text.
func LoadFonts(regularPath, boldPath string) (*FontSet, error) {
	fs := DefaultFonts()
	if regularPath != "" {
		f, err := parseFile(regularPath)
		if err != nil {
			return nil, err
		}
		fs.fonts[Regular] = f
		fs.fonts[Medium] = f
	}
	if boldPath != "" {
		f, err := parseFile(boldPath)
		if err != nil {
			return nil, err
		}
		fs.fonts[Bold] = f
	}
	return fs, nil
}

func parseFile(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return f, nil
}

func mustParse(ttf []byte) *opentype.Font {
	f, err := opentype.Parse(ttf)
	if err != nil {
		panic(err)
	}
	return f
}

type faceKey struct {
	weight Weight
	size   float64
}

func (fs *FontSet) newFace(w Weight, size float64) (font.Face, error) {
	f, ok := fs.fonts[w]
	if !ok {
		f = fs.fonts[Regular]
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
