package imaging

import (
	"math"
)

// otsuThreshold computes the global Otsu threshold for a page histogram.
func otsuThreshold(p *Page) uint8 {
	var hist [256]int
	for _, v := range p.Pix {
		hist[v]++
	}
	total := len(p.Pix)

	var sum float64
	for i, c := range hist {
		sum += float64(i) * float64(c)
	}

	var sumB, wB float64
	var maxVar float64
	var threshold uint8
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > maxVar {
			maxVar = between
			threshold = uint8(t)
		}
	}
	return threshold
}

// Binarize applies a global Otsu threshold producing a two-level image.
func Binarize(p *Page) (*Page, error) {
	if p.empty() {
		return nil, ErrImage
	}
	t := otsuThreshold(p)
	out := p.Clone()
	for i, v := range out.Pix {
		if v > t {
			out.Pix[i] = 255
		} else {
			out.Pix[i] = 0
		}
	}
	return out, nil
}

// Denoise parameters. Strength is fixed; the search and patch windows are
// kept small so the filter stays usable on 300-DPI pages.
const (
	nlmStrength    = 10.0
	nlmPatchRadius = 1 // 3x3 patches
	nlmSearchRad   = 3 // 7x7 search window
)

// Denoise applies non-local-means denoising with a fixed strength parameter.
func Denoise(p *Page) (*Page, error) {
	if p.empty() {
		return nil, ErrImage
	}
	out := p.Clone()
	h2 := nlmStrength * nlmStrength
	patchArea := float64((2*nlmPatchRadius + 1) * (2*nlmPatchRadius + 1))

	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			var weightSum, valueSum float64
			for dy := -nlmSearchRad; dy <= nlmSearchRad; dy++ {
				for dx := -nlmSearchRad; dx <= nlmSearchRad; dx++ {
					// squared distance between the patch around (x,y)
					// and the patch around (x+dx,y+dy)
					var dist float64
					for py := -nlmPatchRadius; py <= nlmPatchRadius; py++ {
						for px := -nlmPatchRadius; px <= nlmPatchRadius; px++ {
							a := float64(p.At(x+px, y+py))
							b := float64(p.At(x+dx+px, y+dy+py))
							dist += (a - b) * (a - b)
						}
					}
					w := math.Exp(-dist / (h2 * patchArea))
					weightSum += w
					valueSum += w * float64(p.At(x+dx, y+dy))
				}
			}
			v := valueSum / weightSum
			if v < 0 {
				v = 0
			} else if v > 255 {
				v = 255
			}
			out.Pix[y*p.Width+x] = uint8(v + 0.5)
		}
	}
	return out, nil
}

// CLAHE parameters matching the usual contrast-limited defaults.
const (
	claheTiles     = 8   // 8x8 tile grid
	claheClipLimit = 2.0 // clip limit relative to the uniform bin height
)

// EnhanceContrast applies contrast-limited adaptive histogram equalization
// over an 8x8 tile grid with bilinear blending between tile mappings.
func EnhanceContrast(p *Page) (*Page, error) {
	if p.empty() {
		return nil, ErrImage
	}

	tilesX, tilesY := claheTiles, claheTiles
	if p.Width < tilesX {
		tilesX = 1
	}
	if p.Height < tilesY {
		tilesY = 1
	}
	tileW := (p.Width + tilesX - 1) / tilesX
	tileH := (p.Height + tilesY - 1) / tilesY

	// per-tile clipped CDF lookup tables
	luts := make([][256]uint8, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			x0, y0 := tx*tileW, ty*tileH
			x1, y1 := x0+tileW, y0+tileH
			if x1 > p.Width {
				x1 = p.Width
			}
			if y1 > p.Height {
				y1 = p.Height
			}
			var hist [256]int
			count := 0
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					hist[p.Pix[y*p.Width+x]]++
					count++
				}
			}
			if count == 0 {
				continue
			}

			// clip and redistribute the excess uniformly
			limit := int(claheClipLimit * float64(count) / 256.0)
			if limit < 1 {
				limit = 1
			}
			excess := 0
			for i := range hist {
				if hist[i] > limit {
					excess += hist[i] - limit
					hist[i] = limit
				}
			}
			share := excess / 256
			for i := range hist {
				hist[i] += share
			}

			cum := 0
			scale := 255.0 / float64(count)
			lut := &luts[ty*tilesX+tx]
			for i := 0; i < 256; i++ {
				cum += hist[i]
				v := float64(cum) * scale
				if v > 255 {
					v = 255
				}
				lut[i] = uint8(v)
			}
		}
	}

	// bilinear interpolation between the four surrounding tile mappings
	out := p.Clone()
	for y := 0; y < p.Height; y++ {
		fy := (float64(y)+0.5)/float64(tileH) - 0.5
		ty0 := int(math.Floor(fy))
		wy := fy - float64(ty0)
		ty1 := ty0 + 1
		if ty0 < 0 {
			ty0, ty1, wy = 0, 0, 0
		}
		if ty1 >= tilesY {
			ty1 = tilesY - 1
			if ty0 >= tilesY {
				ty0 = tilesY - 1
			}
		}
		for x := 0; x < p.Width; x++ {
			fx := (float64(x)+0.5)/float64(tileW) - 0.5
			tx0 := int(math.Floor(fx))
			wx := fx - float64(tx0)
			tx1 := tx0 + 1
			if tx0 < 0 {
				tx0, tx1, wx = 0, 0, 0
			}
			if tx1 >= tilesX {
				tx1 = tilesX - 1
				if tx0 >= tilesX {
					tx0 = tilesX - 1
				}
			}
			v := p.Pix[y*p.Width+x]
			top := (1-wx)*float64(luts[ty0*tilesX+tx0][v]) + wx*float64(luts[ty0*tilesX+tx1][v])
			bot := (1-wx)*float64(luts[ty1*tilesX+tx0][v]) + wx*float64(luts[ty1*tilesX+tx1][v])
			out.Pix[y*p.Width+x] = uint8((1-wy)*top + wy*bot + 0.5)
		}
	}
	return out, nil
}
