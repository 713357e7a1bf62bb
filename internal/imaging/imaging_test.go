package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
)

// synthetic page with dark horizontal text-like bars on white ground
func barsPage(t *testing.T, w, h int, skewDeg float64) *Page {
	t.Helper()
	p, err := NewPage(w, h)
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	for i := range p.Pix {
		p.Pix[i] = 245
	}
	rad := skewDeg * math.Pi / 180
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// line index along the skewed vertical axis
			v := float64(y) - math.Tan(rad)*float64(x)
			if int(math.Abs(v))%12 < 3 {
				p.Pix[y*w+x] = 20
			}
		}
	}
	return p
}

func TestNewPageRejectsBadDims(t *testing.T) {
	if _, err := NewPage(0, 10); !errors.Is(err, ErrImage) {
		t.Fatalf("err = %v, want ErrImage", err)
	}
	if _, err := NewPage(10, -1); !errors.Is(err, ErrImage) {
		t.Fatalf("err = %v, want ErrImage", err)
	}
}

func TestAtClampsEdges(t *testing.T) {
	p, _ := NewPage(4, 4)
	p.Pix[0] = 11
	p.Pix[15] = 99
	if got := p.At(-5, -5); got != 11 {
		t.Fatalf("At(-5,-5) = %d, want 11", got)
	}
	if got := p.At(100, 100); got != 99 {
		t.Fatalf("At(100,100) = %d, want 99", got)
	}
}

func TestFromImageGrayscale(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(1, 0, color.RGBA{A: 255})

	p, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage: %v", err)
	}
	if p.Pix[0] != 255 || p.Pix[1] != 0 {
		t.Fatalf("pixels = %v, want [255 0]", p.Pix[:2])
	}
}

func TestPNGRoundTrip(t *testing.T) {
	p := barsPage(t, 40, 30, 0)
	var buf bytes.Buffer
	if err := p.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	back, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if back.Width != p.Width || back.Height != p.Height {
		t.Fatalf("dims = %dx%d, want %dx%d", back.Width, back.Height, p.Width, p.Height)
	}
	if !bytes.Equal(back.Pix, p.Pix) {
		t.Fatalf("pixels changed across the round trip")
	}
}

func TestBinarizeProducesTwoLevels(t *testing.T) {
	p := barsPage(t, 64, 64, 0)
	out, err := Binarize(p)
	if err != nil {
		t.Fatalf("Binarize: %v", err)
	}
	var black, white int
	for _, v := range out.Pix {
		switch v {
		case 0:
			black++
		case 255:
			white++
		default:
			t.Fatalf("non-binary pixel value %d", v)
		}
	}
	if black == 0 || white == 0 {
		t.Fatalf("expected both classes, got black=%d white=%d", black, white)
	}
}

func TestBinarizeDoesNotMutateInput(t *testing.T) {
	p := barsPage(t, 32, 32, 0)
	before := append([]uint8(nil), p.Pix...)
	if _, err := Binarize(p); err != nil {
		t.Fatalf("Binarize: %v", err)
	}
	if !bytes.Equal(before, p.Pix) {
		t.Fatalf("input page mutated")
	}
}

func TestDenoiseReducesVariance(t *testing.T) {
	p, _ := NewPage(32, 32)
	// deterministic noise around mid gray
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			p.Pix[y*32+x] = uint8(200 + ((x*31+y*17)%13-6)*3)
		}
	}
	out, err := Denoise(p)
	if err != nil {
		t.Fatalf("Denoise: %v", err)
	}
	if got, before := variance(out.Pix), variance(p.Pix); got >= before {
		t.Fatalf("variance %v not reduced from %v", got, before)
	}
}

func variance(pix []uint8) float64 {
	var sum float64
	for _, v := range pix {
		sum += float64(v)
	}
	mean := sum / float64(len(pix))
	var acc float64
	for _, v := range pix {
		d := float64(v) - mean
		acc += d * d
	}
	return acc / float64(len(pix))
}

func TestEnhanceContrastSpreadsHistogram(t *testing.T) {
	p, _ := NewPage(64, 64)
	// low-contrast ramp around mid gray
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			p.Pix[y*64+x] = uint8(110 + (x % 20))
		}
	}
	out, err := EnhanceContrast(p)
	if err != nil {
		t.Fatalf("EnhanceContrast: %v", err)
	}
	minIn, maxIn := rangeOf(p.Pix)
	minOut, maxOut := rangeOf(out.Pix)
	if int(maxOut)-int(minOut) <= int(maxIn)-int(minIn) {
		t.Fatalf("contrast not improved: in [%d,%d], out [%d,%d]", minIn, maxIn, minOut, maxOut)
	}
}

func rangeOf(pix []uint8) (uint8, uint8) {
	lo, hi := pix[0], pix[0]
	for _, v := range pix {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func TestRotatePreservesDimensions(t *testing.T) {
	p := barsPage(t, 60, 40, 0)
	out, err := Rotate(p, 3.5)
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if out.Width != p.Width || out.Height != p.Height {
		t.Fatalf("dims changed: %dx%d -> %dx%d", p.Width, p.Height, out.Width, out.Height)
	}
}

// single thick dark stroke through the center at the given angle
func strokePage(t *testing.T, w, h int, angleDeg float64) *Page {
	t.Helper()
	p, err := NewPage(w, h)
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	for i := range p.Pix {
		p.Pix[i] = 250
	}
	rad := angleDeg * math.Pi / 180
	cx, cy := float64(w)/2, float64(h)/2
	for s := -float64(w) / 2; s < float64(w)/2; s += 0.25 {
		x := int(cx + s*math.Cos(rad))
		y := int(cy + s*math.Sin(rad))
		for d := -1; d <= 1; d++ {
			if x >= 0 && x < w && y+d >= 0 && y+d < h {
				p.Pix[(y+d)*w+x] = 10
			}
		}
	}
	return p
}

func TestDeskewStraightensSkewedStroke(t *testing.T) {
	skewed := strokePage(t, 200, 150, 6)
	out, err := Deskew(skewed)
	if err != nil {
		t.Fatalf("Deskew: %v", err)
	}
	if bytes.Equal(out.Pix, skewed.Pix) {
		t.Fatalf("expected a rotation for a 6 degree skew")
	}
}

func TestDeskewLeavesStraightPageAlone(t *testing.T) {
	straight := strokePage(t, 200, 150, 0)
	out, err := Deskew(straight)
	if err != nil {
		t.Fatalf("Deskew: %v", err)
	}
	if !bytes.Equal(out.Pix, straight.Pix) {
		t.Fatalf("straight page was modified")
	}
}

func TestPreprocessNeverMutatesInput(t *testing.T) {
	p := barsPage(t, 64, 64, 2)
	before := append([]uint8(nil), p.Pix...)

	if _, err := Preprocess(p, FullOptions()); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if !bytes.Equal(before, p.Pix) {
		t.Fatalf("input mutated by preprocessing")
	}
}

func TestPreprocessEmptyOptionsReturnsClone(t *testing.T) {
	p := barsPage(t, 16, 16, 0)
	out, err := Preprocess(p, Options{})
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if out == p {
		t.Fatalf("expected a copy, got the same page")
	}
	if !bytes.Equal(out.Pix, p.Pix) {
		t.Fatalf("no-op preprocessing changed pixels")
	}
}

func TestPreprocessRejectsEmptyPage(t *testing.T) {
	if _, err := Preprocess(&Page{}, BasicOptions()); !errors.Is(err, ErrImage) {
		t.Fatalf("err = %v, want ErrImage", err)
	}
}
