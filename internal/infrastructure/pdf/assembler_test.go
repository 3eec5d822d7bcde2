package pdf

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/field-report/internal/domain/report"
	"github.com/garyjia/field-report/internal/infrastructure/render"
)

var testFormat = render.A4(36, render.DefaultMarginMM)

func fakePages(t *testing.T, n int) []*render.RenderedPage {
	t.Helper()
	w, h := testFormat.Size()
	pages := make([]*render.RenderedPage, n)
	for i := range pages {
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		for x := 0; x < w; x++ {
			img.Set(x, i%h, color.Black)
		}
		var buf bytes.Buffer
		require.NoError(t, jpeg.Encode(&buf, img, nil))
		pages[i] = &render.RenderedPage{
			PageIndex: i,
			PageCount: n,
			Width:     w,
			Height:    h,
			DPI:       testFormat.DPI,
			JPEG:      buf.Bytes(),
		}
	}
	return pages
}

func testMeta() Meta {
	return Meta{
		Title:       "Site Inspection",
		Author:      "J. Doe",
		Subject:     "Acme Facilities",
		Date:        time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		GeneratedAt: time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC),
	}
}

func TestAssembler_Assemble(t *testing.T) {
	for _, n := range []int{1, 2, 4} {
		a := NewAssembler(testFormat, zap.NewNop())
		pages := fakePages(t, n)

		artifact, err := a.Assemble(pages, testMeta())
		require.NoError(t, err)

		assert.Equal(t, n, artifact.PageCount)
		assert.Len(t, artifact.Pages, n)
		assert.Equal(t, "Site_Inspection_2024-03-09.pdf", artifact.Filename)
		assert.True(t, bytes.HasPrefix(artifact.Bytes, []byte("%PDF-")))

		require.True(t, strings.HasPrefix(artifact.DataURI, "data:application/pdf;base64,"))
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(artifact.DataURI, "data:application/pdf;base64,"))
		require.NoError(t, err)
		assert.Equal(t, artifact.Bytes, decoded)
	}
}

func TestAssembler_Deterministic(t *testing.T) {
	a := NewAssembler(testFormat, zap.NewNop())
	pages := fakePages(t, 3)

	first, err := a.Assemble(pages, testMeta())
	require.NoError(t, err)
	second, err := a.Assemble(pages, testMeta())
	require.NoError(t, err)

	assert.Equal(t, first.Bytes, second.Bytes)
}

func TestAssembler_Preconditions(t *testing.T) {
	a := NewAssembler(testFormat, zap.NewNop())

	swapped := fakePages(t, 3)
	swapped[1], swapped[2] = swapped[2], swapped[1]

	gap := fakePages(t, 3)
	gap = append(gap[:1], gap[2:]...)

	resized := fakePages(t, 2)
	resized[1].Width--

	missing := fakePages(t, 2)
	missing[1] = nil

	tests := []struct {
		name  string
		pages []*render.RenderedPage
		want  error
	}{
		{"empty", nil, report.ErrEmptyDocument},
		{"out of order", swapped, report.ErrPageOrder},
		{"gap", gap, report.ErrPageOrder},
		{"nil page", missing, report.ErrPageOrder},
		{"mixed sizes", resized, report.ErrPageGeometry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artifact, err := a.Assemble(tt.pages, testMeta())
			assert.Nil(t, artifact)
			assert.ErrorIs(t, err, tt.want)

			var asmErr *report.AssemblyError
			assert.ErrorAs(t, err, &asmErr)
		})
	}
}

func TestVerifier_RejectsWrongPageCount(t *testing.T) {
	a := NewAssembler(testFormat, zap.NewNop())
	artifact, err := a.Assemble(fakePages(t, 2), testMeta())
	require.NoError(t, err)

	v := NewVerifier(testFormat)
	assert.NoError(t, v.Verify(artifact.Bytes, 2))
	assert.ErrorIs(t, v.Verify(artifact.Bytes, 3), ErrPageCountMismatch)
	assert.Error(t, v.Verify([]byte("not a pdf"), 1))
}

func TestVerifier_RejectsOtherPageSize(t *testing.T) {
	a := NewAssembler(testFormat, zap.NewNop())
	artifact, err := a.Assemble(fakePages(t, 1), testMeta())
	require.NoError(t, err)

	letter := render.PageFormat{WidthMM: 215.9, HeightMM: 279.4, DPI: 36}
	assert.ErrorIs(t, NewVerifier(letter).Verify(artifact.Bytes, 1), report.ErrPageGeometry)
}

func TestPreviewer_Thumbnail(t *testing.T) {
	a := NewAssembler(testFormat, zap.NewNop())
	artifact, err := a.Assemble(fakePages(t, 2), testMeta())
	require.NoError(t, err)

	thumb, err := NewPreviewer(0, zap.NewNop()).Thumbnail(artifact.Bytes)
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.InDelta(t, 298, cfg.Width, 2)
	assert.InDelta(t, 421, cfg.Height, 2)

	_, err = NewPreviewer(0, zap.NewNop()).Thumbnail([]byte("garbage"))
	assert.Error(t, err)
}
