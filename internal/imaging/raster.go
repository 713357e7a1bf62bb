package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ErrImage reports malformed or empty raster input. Fatal for the page it
// belongs to; other pages of the same document are unaffected.
var ErrImage = errors.New("malformed or empty raster input")

// Page is one document page rendered to an 8-bit grayscale pixel buffer.
// All preprocessing operations take a Page and return a new Page; no
// operation mutates its input.
type Page struct {
	Width  int
	Height int
	Pix    []uint8 // row-major, len == Width*Height
}

// NewPage allocates a zeroed page. Returns ErrImage on non-positive dimensions.
func NewPage(width, height int) (*Page, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrImage, width, height)
	}
	return &Page{Width: width, Height: height, Pix: make([]uint8, width*height)}, nil
}

// At returns the gray value at (x, y). Coordinates are clamped to the page,
// so border samples replicate edge pixels.
func (p *Page) At(x, y int) uint8 {
	if x < 0 {
		x = 0
	} else if x >= p.Width {
		x = p.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= p.Height {
		y = p.Height - 1
	}
	return p.Pix[y*p.Width+x]
}

// Clone returns a deep copy of the page.
func (p *Page) Clone() *Page {
	pix := make([]uint8, len(p.Pix))
	copy(pix, p.Pix)
	return &Page{Width: p.Width, Height: p.Height, Pix: pix}
}

func (p *Page) empty() bool {
	return p == nil || p.Width <= 0 || p.Height <= 0 || len(p.Pix) != p.Width*p.Height
}

// FromImage converts any decoded image to a grayscale page using the
// Rec. 601 luma weights.
func FromImage(img image.Image) (*Page, error) {
	if img == nil {
		return nil, ErrImage
	}
	b := img.Bounds()
	page, err := NewPage(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < page.Height; y++ {
			copy(page.Pix[y*page.Width:(y+1)*page.Width],
				g.Pix[y*g.Stride:y*g.Stride+page.Width])
		}
		return page, nil
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			page.Pix[(y-b.Min.Y)*page.Width+(x-b.Min.X)] = c.Y
		}
	}
	return page, nil
}

// Decode reads an encoded raster (PNG, JPEG, TIFF, BMP) into a page.
func Decode(r io.Reader) (*Page, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrImage, err)
	}
	return FromImage(img)
}

// DecodeBytes decodes an in-memory encoded raster into a page.
func DecodeBytes(data []byte) (*Page, error) {
	if len(data) == 0 {
		return nil, ErrImage
	}
	return Decode(bytes.NewReader(data))
}

// ToImage exposes the page as a stdlib grayscale image (shares the buffer).
func (p *Page) ToImage() *image.Gray {
	return &image.Gray{Pix: p.Pix, Stride: p.Width, Rect: image.Rect(0, 0, p.Width, p.Height)}
}

// EncodePNG writes the page as a PNG.
func (p *Page) EncodePNG(w io.Writer) error {
	if p.empty() {
		return ErrImage
	}
	return png.Encode(w, p.ToImage())
}

// PNGBytes returns the page encoded as PNG.
func (p *Page) PNGBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
