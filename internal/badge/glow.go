package badge

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// glowExponent shapes the ring falloff; values above 1 keep the centre
// brighter for longer before fading.
const glowExponent = 1.5

// ringOpacity is the mask value of the ring at distance i from the centre.
func ringOpacity(i, radius int) uint8 {
	v := (1 - math.Pow(float64(i)/float64(radius), glowExponent)) * 255
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}

// glowMask paints concentric disks from the outermost ring inwards so that
// each smaller, more opaque disk overwrites the previous one.
func glowMask(size, radius int) *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, size, size))
	c := float64(size) / 2
	for i := radius; i >= 1; i-- {
		fillDisk(mask, c, c, float64(i), ringOpacity(i, radius))
	}
	return mask
}

// fillDisk sets every pixel whose centre lies inside the circle to v.
func fillDisk(dst *image.Gray, cx, cy, r float64, v uint8) {
	b := dst.Bounds()
	x0 := max(b.Min.X, int(math.Floor(cx-r)))
	x1 := min(b.Max.X, int(math.Ceil(cx+r)))
	y0 := max(b.Min.Y, int(math.Floor(cy-r)))
	y1 := min(b.Max.Y, int(math.Ceil(cy+r)))
	r2 := r * r
	for y := y0; y < y1; y++ {
		dy := float64(y) + 0.5 - cy
		for x := x0; x < x1; x++ {
			dx := float64(x) + 0.5 - cx
			if dx*dx+dy*dy <= r2 {
				dst.Pix[dst.PixOffset(x, y)] = v
			}
		}
	}
}

// BuildGlow returns a size x size halo: a radial mask of the given radius,
// tinted with c, with alpha capped at alphaCap, then softened by a wide and a
// narrow Gaussian blur. A zero sigma skips its pass.
func BuildGlow(size, radius int, c color.NRGBA, alphaCap int, wide, narrow float64) *image.NRGBA {
	mask := glowMask(size, radius)
	limit := uint8(max(0, min(255, alphaCap)))

	glow := image.NewNRGBA(mask.Bounds())
	for i, m := range mask.Pix {
		p := glow.Pix[i*4 : i*4+4 : i*4+4]
		p[0], p[1], p[2] = c.R, c.G, c.B
		p[3] = min(m, limit)
	}

	if wide > 0 {
		glow = imaging.Blur(glow, wide)
	}
	if narrow > 0 {
		glow = imaging.Blur(glow, narrow)
	}
	return glow
}
