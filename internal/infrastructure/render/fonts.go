package render

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var (
	parseOnce   sync.Once
	regularFont *opentype.Font
	boldFont    *opentype.Font
	parseErr    error
)

func loadFonts() (*opentype.Font, *opentype.Font, error) {
	parseOnce.Do(func() {
		regularFont, parseErr = opentype.Parse(goregular.TTF)
		if parseErr != nil {
			parseErr = fmt.Errorf("failed to parse regular font: %w", parseErr)
			return
		}
		boldFont, parseErr = opentype.Parse(gobold.TTF)
		if parseErr != nil {
			parseErr = fmt.Errorf("failed to parse bold font: %w", parseErr)
		}
	})
	return regularFont, boldFont, parseErr
}

// faceSet holds the faces used by one page render. Faces keep internal buffers and are
// not shared between renders.
type faceSet struct {
	title   font.Face
	heading font.Face
	label   font.Face
	body    font.Face
	strong  font.Face
	small   font.Face
}

func newFaceSet(dpi int) (*faceSet, error) {
	regular, bold, err := loadFonts()
	if err != nil {
		return nil, err
	}

	fs := &faceSet{}
	specs := []struct {
		dst  *font.Face
		font *opentype.Font
		size float64
	}{
		{&fs.title, bold, 18},
		{&fs.heading, bold, 12},
		{&fs.label, bold, 9},
		{&fs.body, regular, 10},
		{&fs.strong, bold, 10},
		{&fs.small, regular, 8},
	}
	for _, s := range specs {
		face, err := opentype.NewFace(s.font, &opentype.FaceOptions{
			Size:    s.size,
			DPI:     float64(dpi),
			Hinting: font.HintingFull,
		})
		if err != nil {
			fs.Close()
			return nil, fmt.Errorf("failed to create font face: %w", err)
		}
		*s.dst = face
	}
	return fs, nil
}

// Close releases every face in the set.
func (fs *faceSet) Close() {
	for _, f := range []font.Face{fs.title, fs.heading, fs.label, fs.body, fs.strong, fs.small} {
		if f != nil {
			f.Close()
		}
	}
}
