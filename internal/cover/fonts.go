package cover

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontSet holds the parsed title and subtitle typefaces. Fonts are parsed
// once; faces are created per size on demand.
type FontSet struct {
	title    *opentype.Font
	subtitle *opentype.Font

	TitleSource    string
	SubtitleSource string
}

// DefaultFonts returns the embedded Go fonts (bold titles, regular
// subtitles).
func DefaultFonts() (*FontSet, error) {
	return LoadFonts("", "")
}

// LoadFonts parses the given font files. An empty path selects the embedded
// Go font for that role.
func LoadFonts(titlePath, subtitlePath string) (*FontSet, error) {
	title, titleSrc, err := loadFont(titlePath, gobold.TTF, "Go Bold")
	if err != nil {
		return nil, fmt.Errorf("title font: %w", err)
	}
	subtitle, subtitleSrc, err := loadFont(subtitlePath, goregular.TTF, "Go Regular")
	if err != nil {
		return nil, fmt.Errorf("subtitle font: %w", err)
	}
	return &FontSet{
		title:          title,
		subtitle:       subtitle,
		TitleSource:    titleSrc,
		SubtitleSource: subtitleSrc,
	}, nil
}

func loadFont(path string, builtin []byte, builtinName string) (*opentype.Font, string, error) {
	if path == "" {
		f, err := opentype.Parse(builtin)
		if err != nil {
			return nil, "", fmt.Errorf("failed to parse %s: %w", builtinName, err)
		}
		return f, builtinName, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read font: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".ttc") {
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, "", fmt.Errorf("failed to parse font collection %s: %w", path, err)
		}
		f, err := coll.Font(0)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read first font of %s: %w", path, err)
		}
		return f, path, nil
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse font %s: %w", path, err)
	}
	return f, path, nil
}

func (fs *FontSet) titleFace(size float64) (font.Face, error) {
	return newFace(fs.title, size)
}

func (fs *FontSet) subtitleFace(size float64) (font.Face, error) {
	return newFace(fs.subtitle, size)
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %.0fpx face: %w", size, err)
	}
	return face, nil
}
