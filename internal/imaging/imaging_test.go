package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/thumbnailer/internal/testutil"
	"golang.org/x/image/bmp"
)

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solid(w, h), nil))
	return buf.Bytes()
}

func TestDecodeReportsFormatAndDimensions(t *testing.T) {
	img, err := Decode(encodeJPEG(t, 1024, 768))
	require.NoError(t, err)

	assert.Equal(t, FormatJPEG, img.Format())
	assert.Equal(t, 1024, img.Width())
	assert.Equal(t, 768, img.Height())
	assert.True(t, img.Encodable())
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("invalid_value"))
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDecodeBMPIsNotEncodable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, solid(10, 10)))

	img, err := Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "bmp", img.Format())
	assert.False(t, img.Encodable())

	_, err = img.Bytes()
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestResizeToHeightPreservesAspectRatio(t *testing.T) {
	src, err := Decode(encodeJPEG(t, 1024, 768))
	require.NoError(t, err)

	tests := []struct {
		height int
		width  int
	}{
		{400, 533},
		{200, 267},
		{768, 1024},
		{1, 1},
	}

	for _, tt := range tests {
		out, err := src.ResizeToHeight(tt.height)
		require.NoError(t, err)
		assert.Equal(t, tt.height, out.Height())
		assert.Equal(t, tt.width, out.Width())
	}
}

func TestResizeDoesNotMutateSource(t *testing.T) {
	src, err := Decode(encodeJPEG(t, 300, 150))
	require.NoError(t, err)

	_, err = src.ResizeToHeight(50)
	require.NoError(t, err)

	assert.Equal(t, 300, src.Width())
	assert.Equal(t, 150, src.Height())

	// A second, larger size is computed from the untouched source
	out, err := src.ResizeToHeight(100)
	require.NoError(t, err)
	assert.Equal(t, 200, out.Width())
}

func TestResizeRejectsNonPositiveHeight(t *testing.T) {
	src, err := Decode(encodeJPEG(t, 10, 10))
	require.NoError(t, err)

	_, err = src.ResizeToHeight(0)
	assert.ErrorIs(t, err, ErrInvalidHeight)
}

func TestCheckPixelsReadsOnlyTheHeader(t *testing.T) {
	data := testutil.PNGHeader(t, 100000, 100000)

	cfg, err := CheckPixels(data, DefaultMaxPixels)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Equal(t, Config{Width: 100000, Height: 100000, Format: FormatPNG}, cfg)

	cfg, err = CheckPixels(encodeJPEG(t, 100, 50), 5000)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), cfg.Pixels())

	_, err = CheckPixels(encodeJPEG(t, 100, 51), 5000)
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = CheckPixels([]byte("invalid_value"), DefaultMaxPixels)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestResizeRefusesOversizedCopies(t *testing.T) {
	// 20000x1 compresses to about a hundred bytes; at 400px it would need
	// an 8000000x400 canvas.
	src, err := Decode(testutil.PNG(t, 20000, 1))
	require.NoError(t, err)

	assert.False(t, src.CanResize(400))
	_, err = src.ResizeToHeight(400)
	assert.ErrorIs(t, err, ErrTooLarge)

	strip, err := Decode(testutil.PNG(t, 8000, 1))
	require.NoError(t, err)
	assert.True(t, strip.CanResize(2))
	assert.False(t, strip.CanResize(3))

	square, err := Decode(encodeJPEG(t, 10, 10))
	require.NoError(t, err)
	assert.True(t, square.CanResize(MaxDimension))
	assert.False(t, square.CanResize(MaxDimension+1))
}

func TestEncodeKeepsSourceFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(40, 20)))

	src, err := Decode(buf.Bytes())
	require.NoError(t, err)

	out, err := src.ResizeToHeight(10)
	require.NoError(t, err)
	data, err := out.Bytes()
	require.NoError(t, err)

	again, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, again.Format())
	assert.Equal(t, 20, again.Width())
	assert.Equal(t, 10, again.Height())
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".jpg", Extension(FormatJPEG))
	assert.Equal(t, ".png", Extension(FormatPNG))
	assert.Equal(t, ".bmp", Extension("bmp"))
	assert.Equal(t, "", Extension(""))
}

func TestMatchesExtension(t *testing.T) {
	assert.True(t, MatchesExtension(FormatJPEG, ".jpg"))
	assert.True(t, MatchesExtension(FormatJPEG, ".JPEG"))
	assert.True(t, MatchesExtension(FormatPNG, ".png"))
	assert.True(t, MatchesExtension("bmp", ".bmp"))
	assert.False(t, MatchesExtension(FormatPNG, ".jpg"))
	assert.False(t, MatchesExtension(FormatPNG, ""))
}
