package pixel

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	// Registered image formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Channel indices.
const (
	Red   = 0
	Green = 1
	Blue  = 2
	Alpha = 3
)

// ErrEmptyImage is returned for images without pixels.
var ErrEmptyImage = errors.New("image has no pixels")

// Matrix is an image as interleaved 8-bit samples, row-major.
// The sample for row y, column x and channel c is
// Pix[(y*Width+x)*Channels+c].
type Matrix struct {
	Height   int
	Width    int
	Channels int
	Pix      []uint8
}

// New allocates a zeroed matrix.
func New(height, width, channels int) *Matrix {
	return &Matrix{
		Height:   height,
		Width:    width,
		Channels: channels,
		Pix:      make([]uint8, height*width*channels),
	}
}

// At returns the sample at row y, column x, channel c.
func (m *Matrix) At(y, x, c int) uint8 {
	return m.Pix[(y*m.Width+x)*m.Channels+c]
}

// Set stores a sample.
func (m *Matrix) Set(y, x, c int, v uint8) {
	m.Pix[(y*m.Width+x)*m.Channels+c] = v
}

// Len returns the number of pixels.
func (m *Matrix) Len() int {
	return m.Height * m.Width
}

// HasAlpha reports whether the matrix carries an alpha channel.
func (m *Matrix) HasAlpha() bool {
	return m.Channels == 4
}

// Channel returns a flattened copy of channel c in row-major order.
func (m *Matrix) Channel(c int) []uint8 {
	out := make([]uint8, m.Len())
	for i := range out {
		out[i] = m.Pix[i*m.Channels+c]
	}
	return out
}

// FromImage converts any image to a Matrix.
func FromImage(img image.Image) *Matrix {
	b := img.Bounds()
	channels := channelCount(img)

	m := New(b.Dy(), b.Dx(), channels)

	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < m.Height; y++ {
			start := src.PixOffset(b.Min.X, b.Min.Y+y)
			row := src.Pix[start : start+m.Width*4]
			for x := 0; x < m.Width; x++ {
				copy(m.Pix[(y*m.Width+x)*channels:], row[x*4:x*4+channels])
			}
		}
		return m
	}

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			off := (y*m.Width + x) * channels
			m.Pix[off] = c.R
			m.Pix[off+1] = c.G
			m.Pix[off+2] = c.B
			if channels == 4 {
				m.Pix[off+3] = c.A
			}
		}
	}
	return m
}

// channelCount returns 4 when the colour model of img carries alpha.
// Straight-alpha models keep their alpha channel even when every pixel
// is opaque. Decoders also produce premultiplied RGBA for plain RGB data,
// so that model only counts when some pixel is translucent.
func channelCount(img image.Image) int {
	model := img.ColorModel()
	if palette, ok := model.(color.Palette); ok {
		for _, c := range palette {
			if _, _, _, a := c.RGBA(); a != 0xFFFF {
				return 4
			}
		}
		return 3
	}

	switch model {
	case color.NRGBAModel, color.NRGBA64Model, color.NYCbCrAModel, color.AlphaModel, color.Alpha16Model:
		return 4
	case color.RGBAModel, color.RGBA64Model:
		if o, ok := img.(interface{ Opaque() bool }); ok && !o.Opaque() {
			return 4
		}
	}
	return 3
}

// ToImage converts the matrix back to an image: RGBA for three channels
// and NRGBA when the matrix carries alpha.
func (m *Matrix) ToImage() image.Image {
	rect := image.Rect(0, 0, m.Width, m.Height)
	if !m.HasAlpha() {
		img := image.NewRGBA(rect)
		for y := 0; y < m.Height; y++ {
			for x := 0; x < m.Width; x++ {
				img.SetRGBA(x, y, color.RGBA{R: m.At(y, x, Red), G: m.At(y, x, Green), B: m.At(y, x, Blue), A: 0xFF})
			}
		}
		return img
	}

	img := image.NewNRGBA(rect)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: m.At(y, x, Red), G: m.At(y, x, Green), B: m.At(y, x, Blue), A: m.At(y, x, Alpha)})
		}
	}
	return img
}

// Decode reads an image and returns its matrix and format name.
func Decode(r io.Reader) (*Matrix, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, format, ErrEmptyImage
	}
	return FromImage(img), format, nil
}

// Load opens and decodes the image at path.
func Load(path string) (*Matrix, string, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided image path is intentional
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Format returns the registered image format of data without decoding
// the pixels, or an empty string when no decoder recognizes it.
func Format(data []byte) string {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	return format
}
