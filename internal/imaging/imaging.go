// Package imaging decodes uploaded images and produces resized copies.
//
// Decoders are registered for jpeg, png, gif, bmp and webp so that any common
// image can be inspected; only jpeg and png can be encoded back.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"strings"

	_ "image/gif"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"

	jpegQuality = 90

	// DefaultMaxPixels is the largest source accepted when no limit is
	// configured: 1024 * 1024 * 1024 / 4 / 3, as in Pillow.
	DefaultMaxPixels = 89478485

	// MaxDimension bounds both sides of a resized copy.
	MaxDimension = 16384
)

var (
	ErrDecode            = errors.New("imaging: not a decodable image")
	ErrUnsupportedFormat = errors.New("imaging: format cannot be encoded")
	ErrInvalidHeight     = errors.New("imaging: target height must be positive")
	ErrTooLarge          = errors.New("imaging: image dimensions too large")
)

// Config is what the image header tells about the pixels behind it.
type Config struct {
	Width  int
	Height int
	Format string
}

func (c Config) Pixels() int64 {
	return int64(c.Width) * int64(c.Height)
}

// Image is a decoded source. It is never modified after Decode.
type Image struct {
	img    image.Image
	format string
}

// DecodeConfig reads only the image header, so oversized images can be
// refused before their pixels are allocated.
func DecodeConfig(data []byte) (Config, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return Config{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// CheckPixels returns ErrTooLarge when the header of data declares more than
// maxPixels pixels.
func CheckPixels(data []byte, maxPixels int64) (Config, error) {
	cfg, err := DecodeConfig(data)
	if err != nil {
		return Config{}, err
	}
	if cfg.Pixels() > maxPixels {
		return cfg, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, cfg.Width, cfg.Height, maxPixels)
	}
	return cfg, nil
}

// Decode reads a complete image and reports the format it was encoded in.
func Decode(data []byte) (*Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &Image{img: img, format: format}, nil
}

func (i *Image) Format() string {
	return i.format
}

func (i *Image) Width() int {
	return i.img.Bounds().Dx()
}

func (i *Image) Height() int {
	return i.img.Bounds().Dy()
}

// Encodable reports whether the source format can be written back.
func (i *Image) Encodable() bool {
	return i.format == FormatJPEG || i.format == FormatPNG
}

// ScaledWidth returns the width that keeps the aspect ratio at the given height.
func (i *Image) ScaledWidth(height int) int {
	w := int(math.Round(float64(i.Width()) * float64(height) / float64(i.Height())))
	if w < 1 {
		w = 1
	}
	return w
}

// CanResize reports whether a copy at the given height stays within
// MaxDimension on both sides.
func (i *Image) CanResize(height int) bool {
	return height > 0 && height <= MaxDimension && i.ScaledWidth(height) <= MaxDimension
}

// ResizeToHeight returns a new image of exactly the given height. The
// receiver is left untouched so it can be resized again at another size.
func (i *Image) ResizeToHeight(height int) (*Image, error) {
	if height <= 0 {
		return nil, ErrInvalidHeight
	}
	if !i.CanResize(height) {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, i.ScaledWidth(height), height)
	}

	dst := image.NewRGBA(image.Rect(0, 0, i.ScaledWidth(height), height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), i.img, i.img.Bounds(), draw.Src, nil)

	return &Image{img: dst, format: i.format}, nil
}

// Encode writes the image in its source format.
func (i *Image) Encode(w io.Writer) error {
	switch i.format {
	case FormatJPEG:
		return jpeg.Encode(w, i.img, &jpeg.Options{Quality: jpegQuality})
	case FormatPNG:
		return png.Encode(w, i.img)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, i.format)
	}
}

// Bytes encodes the image into memory.
func (i *Image) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := i.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Extension returns the canonical file extension for a format.
func Extension(format string) string {
	switch format {
	case FormatJPEG:
		return ".jpg"
	case FormatPNG:
		return ".png"
	case "":
		return ""
	default:
		return "." + format
	}
}

// MatchesExtension reports whether ext (".jpg", ".JPEG", ...) names format.
func MatchesExtension(format, ext string) bool {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return format == FormatJPEG
	case ".png":
		return format == FormatPNG
	default:
		return ext != "" && strings.EqualFold(ext, Extension(format))
	}
}
