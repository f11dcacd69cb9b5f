package ui

import (
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
)

const cjkFontName = "NotoSansSC-Regular.ttf"

// CJKFont is used for regular text so translated captions and GB2312
// titles render. Nil when no font file is found, leaving the theme default.
var CJKFont fyne.Resource

func init() {
	candidates := []string{
		// Running from project root
		filepath.Join("assets", "fonts", cjkFontName),
	}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates,
			filepath.Join(filepath.Dir(exe), "assets", "fonts", cjkFontName),
		)
	}
	CJKFont = loadFont(candidates)
}

func loadFont(candidates []string) fyne.Resource {
	for _, p := range candidates {
		if b, err := os.ReadFile(p); err == nil && len(b) > 0 {
			return fyne.NewStaticResource(filepath.Base(p), b)
		}
	}
	return nil
}
