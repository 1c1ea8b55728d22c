package texture

import (
	"encoding/binary"
	"math"
)

// Quality selects how hard the encoder searches for block endpoints.
type Quality int

const (
	// QualityFast projects onto the principal axis only.
	QualityFast Quality = iota
	// QualitySlow refines endpoints until the block error stops improving.
	QualitySlow
)

// BlockSize is the encoded size of one 4x4 block.
const BlockSize = 8

const (
	alphaThreshold = 128
	refineRounds   = 8
)

type rgb [3]float64

type block struct {
	px     [16]rgb
	opaque [16]bool
}

func (b *block) transparentCount() int {
	n := 0
	for _, ok := range b.opaque {
		if !ok {
			n++
		}
	}
	return n
}

type candidate struct {
	c0, c1  uint16
	indices [16]uint8
	err     float64
}

// encodeBlock compresses one block into dst, which must hold BlockSize bytes.
func encodeBlock(b *block, q Quality, dst []byte) {
	var best candidate
	switch transparent := b.transparentCount(); {
	case transparent == 16:
		best = candidate{}
		for i := range best.indices {
			best.indices[i] = 3
		}
	case transparent > 0:
		best = searchBlock(b, q, true)
	default:
		best = searchBlock(b, q, false)
		// Three-colour mode occasionally fits better even without transparency.
		if q == QualitySlow {
			if alt := searchBlock(b, q, true); alt.err < best.err {
				best = alt
			}
		}
	}
	writeBlock(dst, best)
}

func writeBlock(dst []byte, c candidate) {
	binary.LittleEndian.PutUint16(dst[0:2], c.c0)
	binary.LittleEndian.PutUint16(dst[2:4], c.c1)
	var bits uint32
	for i := 15; i >= 0; i-- {
		bits = bits<<2 | uint32(c.indices[i]&0x3)
	}
	binary.LittleEndian.PutUint32(dst[4:8], bits)
}

func searchBlock(b *block, q Quality, threeColor bool) candidate {
	lo, hi := principalEndpoints(b)
	best := evaluate(b, pack565(lo), pack565(hi), threeColor)
	if q != QualitySlow {
		return best
	}

	for round := 0; round < refineRounds; round++ {
		improved := false
		if e0, e1, ok := leastSquares(b, best.indices, threeColor); ok {
			if c := evaluate(b, pack565(e0), pack565(e1), threeColor); c.err < best.err {
				best = c
				improved = true
			}
		}
		if c := neighbourSearch(b, best, threeColor); c.err < best.err {
			best = c
			improved = true
		}
		if !improved {
			break
		}
	}
	return best
}

// principalEndpoints projects the opaque pixels onto their principal axis and
// returns the extremes.
func principalEndpoints(b *block) (rgb, rgb) {
	var mean rgb
	n := 0.0
	for i, p := range b.px {
		if !b.opaque[i] {
			continue
		}
		for c := 0; c < 3; c++ {
			mean[c] += p[c]
		}
		n++
	}
	if n == 0 {
		return rgb{}, rgb{}
	}
	for c := range mean {
		mean[c] /= n
	}

	var cov [6]float64 // rr rg rb gg gb bb
	for i, p := range b.px {
		if !b.opaque[i] {
			continue
		}
		r, g, bl := p[0]-mean[0], p[1]-mean[1], p[2]-mean[2]
		cov[0] += r * r
		cov[1] += r * g
		cov[2] += r * bl
		cov[3] += g * g
		cov[4] += g * bl
		cov[5] += bl * bl
	}

	axis := rgb{1, 1, 1}
	for iter := 0; iter < 8; iter++ {
		next := rgb{
			cov[0]*axis[0] + cov[1]*axis[1] + cov[2]*axis[2],
			cov[1]*axis[0] + cov[3]*axis[1] + cov[4]*axis[2],
			cov[2]*axis[0] + cov[4]*axis[1] + cov[5]*axis[2],
		}
		length := math.Sqrt(next[0]*next[0] + next[1]*next[1] + next[2]*next[2])
		if length < 1e-9 {
			break
		}
		for c := range next {
			next[c] /= length
		}
		axis = next
	}

	minDot, maxDot := math.Inf(1), math.Inf(-1)
	var lo, hi rgb
	for i, p := range b.px {
		if !b.opaque[i] {
			continue
		}
		d := (p[0]-mean[0])*axis[0] + (p[1]-mean[1])*axis[1] + (p[2]-mean[2])*axis[2]
		if d < minDot {
			minDot, lo = d, p
		}
		if d > maxDot {
			maxDot, hi = d, p
		}
	}
	return lo, hi
}

// leastSquares solves for the endpoints that best reproduce the block given a
// fixed index assignment.
func leastSquares(b *block, indices [16]uint8, threeColor bool) (rgb, rgb, bool) {
	var aa, ab, bb float64
	var ax, bx rgb
	for i, p := range b.px {
		if !b.opaque[i] {
			continue
		}
		alpha, beta, ok := weights(indices[i], threeColor)
		if !ok {
			continue
		}
		aa += alpha * alpha
		ab += alpha * beta
		bb += beta * beta
		for c := 0; c < 3; c++ {
			ax[c] += alpha * p[c]
			bx[c] += beta * p[c]
		}
	}
	det := aa*bb - ab*ab
	if math.Abs(det) < 1e-9 {
		return rgb{}, rgb{}, false
	}
	var e0, e1 rgb
	for c := 0; c < 3; c++ {
		e0[c] = clamp((ax[c]*bb-bx[c]*ab)/det, 0, 255)
		e1[c] = clamp((bx[c]*aa-ax[c]*ab)/det, 0, 255)
	}
	return e0, e1, true
}

func weights(index uint8, threeColor bool) (float64, float64, bool) {
	if threeColor {
		switch index {
		case 0:
			return 1, 0, true
		case 1:
			return 0, 1, true
		case 2:
			return 0.5, 0.5, true
		}
		return 0, 0, false
	}
	switch index {
	case 0:
		return 1, 0, true
	case 1:
		return 0, 1, true
	case 2:
		return 2.0 / 3, 1.0 / 3, true
	default:
		return 1.0 / 3, 2.0 / 3, true
	}
}

// neighbourSearch tries every single-step change of one endpoint channel.
func neighbourSearch(b *block, start candidate, threeColor bool) candidate {
	best := start
	shifts := [3]uint{11, 5, 0}
	limits := [3]int{31, 63, 31}
	for endpoint := 0; endpoint < 2; endpoint++ {
		for ch := 0; ch < 3; ch++ {
			for _, step := range [2]int{-1, 1} {
				c0, c1 := best.c0, best.c1
				target := &c0
				if endpoint == 1 {
					target = &c1
				}
				mask := uint16(limits[ch]) << shifts[ch]
				v := int((*target&mask)>>shifts[ch]) + step
				if v < 0 || v > limits[ch] {
					continue
				}
				*target = (*target &^ mask) | uint16(v)<<shifts[ch]
				if c := evaluate(b, c0, c1, threeColor); c.err < best.err {
					best = c
				}
			}
		}
	}
	return best
}

// evaluate orders the endpoints for the requested mode, assigns the nearest
// palette entry to every pixel and returns the resulting error.
func evaluate(b *block, c0, c1 uint16, threeColor bool) candidate {
	if threeColor {
		if c0 > c1 {
			c0, c1 = c1, c0
		}
	} else {
		if c0 < c1 {
			c0, c1 = c1, c0
		}
	}
	palette, entries := buildPalette(c0, c1)
	out := candidate{c0: c0, c1: c1}
	for i, p := range b.px {
		if !b.opaque[i] {
			out.indices[i] = 3
			continue
		}
		bestIdx, bestErr := 0, math.Inf(1)
		for idx := 0; idx < entries; idx++ {
			if e := distance(p, palette[idx]); e < bestErr {
				bestIdx, bestErr = idx, e
			}
		}
		out.indices[i] = uint8(bestIdx)
		out.err += bestErr
	}
	return out
}

// buildPalette returns the decoded palette and the number of colour entries.
// c0 > c1 selects four colours; otherwise three colours plus transparent.
func buildPalette(c0, c1 uint16) ([4]rgb, int) {
	a, b := unpack565(c0), unpack565(c1)
	var p [4]rgb
	p[0], p[1] = a, b
	if c0 > c1 {
		for c := 0; c < 3; c++ {
			p[2][c] = math.Floor((2*a[c] + b[c]) / 3)
			p[3][c] = math.Floor((a[c] + 2*b[c]) / 3)
		}
		return p, 4
	}
	for c := 0; c < 3; c++ {
		p[2][c] = math.Floor((a[c] + b[c]) / 2)
	}
	return p, 3
}

func distance(a, b rgb) float64 {
	dr, dg, db := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return dr*dr + dg*dg + db*db
}

func pack565(c rgb) uint16 {
	r := uint16(math.Round(clamp(c[0], 0, 255) * 31 / 255))
	g := uint16(math.Round(clamp(c[1], 0, 255) * 63 / 255))
	b := uint16(math.Round(clamp(c[2], 0, 255) * 31 / 255))
	return r<<11 | g<<5 | b
}

func unpack565(v uint16) rgb {
	r := (v >> 11) & 0x1f
	g := (v >> 5) & 0x3f
	b := v & 0x1f
	return rgb{
		float64(r<<3 | r>>2),
		float64(g<<2 | g>>4),
		float64(b<<3 | b>>2),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
