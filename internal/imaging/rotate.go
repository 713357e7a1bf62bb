package imaging

import (
	"image"
	"math"
	"sort"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Angles below this are noise; neither AutoRotate nor Deskew corrects them.
const minCorrectionDeg = 0.5

// analysis runs on a downsampled copy to keep the Hough sweep cheap.
const analysisMaxDim = 800

// Rotate returns the page rotated by angleDeg (counterclockwise positive)
// about its center, resampled with cubic interpolation. The source border is
// replicated for samples near the edge; uncovered corners are filled with
// paper white.
func Rotate(p *Page, angleDeg float64) (*Page, error) {
	if p.empty() {
		return nil, ErrImage
	}
	if math.Abs(angleDeg) < 1e-9 {
		return p.Clone(), nil
	}

	const pad = 2 // CatmullRom samples at most 2px beyond the mapped point
	src := padReplicate(p, pad)

	dst := image.NewGray(image.Rect(0, 0, p.Width, p.Height))
	for i := range dst.Pix {
		dst.Pix[i] = 255
	}

	rad := angleDeg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	cx, cy := float64(p.Width)/2, float64(p.Height)/2

	// src (padded) -> dst affine: translate to origin, rotate, translate back
	m := f64.Aff3{
		cos, -sin, cx - cos*(cx+pad) + sin*(cy+pad),
		sin, cos, cy - sin*(cx+pad) - cos*(cy+pad),
	}
	draw.CatmullRom.Transform(dst, m, src, src.Bounds(), draw.Over, nil)

	out, err := FromImage(dst)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func padReplicate(p *Page, pad int) *image.Gray {
	w, h := p.Width+2*pad, p.Height+2*pad
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Pix[y*img.Stride+x] = p.At(x-pad, y-pad)
		}
	}
	return img
}

// AutoRotate detects the dominant text-line angle with a Hough sweep over
// edge pixels and rotates only when the estimate exceeds 0.5 degrees. The
// estimate is the median of the angles of the strongest detected lines.
func AutoRotate(p *Page) (*Page, error) {
	if p.empty() {
		return nil, ErrImage
	}
	small, scale := downsample(p, analysisMaxDim)
	_ = scale

	points := edgePoints(small, 4000)
	if len(points) < 50 {
		return p.Clone(), nil
	}

	angle := houghTextAngle(small, points)
	if math.Abs(angle) <= minCorrectionDeg {
		return p.Clone(), nil
	}
	return Rotate(p, -angle)
}

// Deskew estimates the skew as the angle of the minimum-area bounding
// rectangle of foreground pixels, normalized into [-45, 45] degrees, and
// rotates only when it exceeds 0.5 degrees.
func Deskew(p *Page) (*Page, error) {
	if p.empty() {
		return nil, ErrImage
	}
	small, _ := downsample(p, analysisMaxDim)

	points := foregroundPoints(small, 5000)
	if len(points) < 50 {
		return p.Clone(), nil
	}

	angle := minAreaAngle(points)
	for angle > 45 {
		angle -= 90
	}
	for angle < -45 {
		angle += 90
	}
	if math.Abs(angle) <= minCorrectionDeg {
		return p.Clone(), nil
	}
	return Rotate(p, angle)
}

// downsample picks every nth pixel so analysis stays bounded on large scans.
func downsample(p *Page, maxDim int) (*Page, int) {
	step := 1
	for p.Width/step > maxDim || p.Height/step > maxDim {
		step++
	}
	if step == 1 {
		return p, 1
	}
	w, h := p.Width/step, p.Height/step
	out := &Page{Width: w, Height: h, Pix: make([]uint8, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Pix[y*w+x] = p.Pix[y*step*p.Width+x*step]
		}
	}
	return out, step
}

type point struct{ x, y int }

// edgePoints returns up to limit pixels with strong Sobel gradient.
func edgePoints(p *Page, limit int) []point {
	const gradThreshold = 96
	pts := make([]point, 0, limit)
	stride := 1
	total := (p.Width - 2) * (p.Height - 2)
	if total > limit*4 {
		stride = total / (limit * 4)
		if stride < 1 {
			stride = 1
		}
	}
	i := 0
	for y := 1; y < p.Height-1; y++ {
		for x := 1; x < p.Width-1; x++ {
			i++
			if i%stride != 0 {
				continue
			}
			gx := int(p.At(x+1, y-1)) + 2*int(p.At(x+1, y)) + int(p.At(x+1, y+1)) -
				int(p.At(x-1, y-1)) - 2*int(p.At(x-1, y)) - int(p.At(x-1, y+1))
			gy := int(p.At(x-1, y+1)) + 2*int(p.At(x, y+1)) + int(p.At(x+1, y+1)) -
				int(p.At(x-1, y-1)) - 2*int(p.At(x, y-1)) - int(p.At(x+1, y-1))
			if gx < 0 {
				gx = -gx
			}
			if gy < 0 {
				gy = -gy
			}
			if gx+gy >= gradThreshold*2 {
				pts = append(pts, point{x, y})
				if len(pts) >= limit {
					return pts
				}
			}
		}
	}
	return pts
}

// foregroundPoints returns up to limit pixels darker than the Otsu threshold.
func foregroundPoints(p *Page, limit int) []point {
	t := otsuThreshold(p)
	pts := make([]point, 0, limit)
	stride := 1
	total := p.Width * p.Height
	if total > limit*4 {
		stride = total / (limit * 4)
		if stride < 1 {
			stride = 1
		}
	}
	i := 0
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			i++
			if i%stride != 0 {
				continue
			}
			if p.Pix[y*p.Width+x] < t {
				pts = append(pts, point{x, y})
				if len(pts) >= limit {
					return pts
				}
			}
		}
	}
	return pts
}

// Hough sweep parameters: near-horizontal text lines only.
const (
	houghMaxDeg  = 15.0
	houghStepDeg = 0.25
	houghTopN    = 21
)

// houghTextAngle votes (angle, offset) line candidates for the edge points
// and returns the median angle of the top-N accumulator cells.
func houghTextAngle(p *Page, pts []point) float64 {
	steps := int(2*houghMaxDeg/houghStepDeg) + 1
	diag := math.Hypot(float64(p.Width), float64(p.Height))
	rhoBins := int(diag/2) + 1 // 2px offset resolution

	acc := make([]int, steps*rhoBins)
	sins := make([]float64, steps)
	coss := make([]float64, steps)
	for i := 0; i < steps; i++ {
		a := (-houghMaxDeg + float64(i)*houghStepDeg) * math.Pi / 180
		sins[i] = math.Sin(a)
		coss[i] = math.Cos(a)
	}

	for _, pt := range pts {
		for i := 0; i < steps; i++ {
			// signed distance of the point from a line at this angle
			rho := -float64(pt.x)*sins[i] + float64(pt.y)*coss[i]
			bin := int((rho + diag) / 2)
			if bin >= 0 && bin < rhoBins {
				acc[i*rhoBins+bin]++
			}
		}
	}

	type cell struct {
		votes int
		angle float64
	}
	cells := make([]cell, 0, houghTopN)
	for i := 0; i < steps; i++ {
		for b := 0; b < rhoBins; b++ {
			v := acc[i*rhoBins+b]
			if v < 3 {
				continue
			}
			a := -houghMaxDeg + float64(i)*houghStepDeg
			if len(cells) < houghTopN {
				cells = append(cells, cell{v, a})
				continue
			}
			// replace the weakest retained cell
			minIdx := 0
			for j := 1; j < len(cells); j++ {
				if cells[j].votes < cells[minIdx].votes {
					minIdx = j
				}
			}
			if v > cells[minIdx].votes {
				cells[minIdx] = cell{v, a}
			}
		}
	}
	if len(cells) == 0 {
		return 0
	}
	angles := make([]float64, len(cells))
	for i, c := range cells {
		angles[i] = c.angle
	}
	return median(angles)
}

// minAreaAngle finds the rotation (in degrees) minimizing the axis-aligned
// bounding box area of the point set, swept at 0.5 degree resolution.
func minAreaAngle(pts []point) float64 {
	best := 0.0
	bestArea := math.Inf(1)
	for deg := -45.0; deg <= 45.0; deg += 0.5 {
		rad := deg * math.Pi / 180
		sin, cos := math.Sin(rad), math.Cos(rad)
		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		for _, pt := range pts {
			x := float64(pt.x)*cos - float64(pt.y)*sin
			y := float64(pt.x)*sin + float64(pt.y)*cos
			minX = math.Min(minX, x)
			maxX = math.Max(maxX, x)
			minY = math.Min(minY, y)
			maxY = math.Max(maxY, y)
		}
		area := (maxX - minX) * (maxY - minY)
		if area < bestArea {
			bestArea = area
			best = deg
		}
	}
	return best
}

func median(vals []float64) float64 {
	sort.Float64s(vals)
	n := len(vals)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}
