package software

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/fakesss/engine/math"
	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
)

type mipLevel struct {
	width, height int
	texels        []mgl32.Vec4
}

type texture struct {
	format  metadata.InternalFormat
	sampler metadata.SamplerState
	mipmap  bool
	levels  []mipLevel
}

func newTexture(format metadata.InternalFormat, sampler metadata.SamplerState, mipmap bool, width, height int) *texture {
	t := &texture{format: format, sampler: sampler, mipmap: mipmap}
	t.levels = []mipLevel{{width: width, height: height, texels: make([]mgl32.Vec4, width*height)}}
	if mipmap {
		w, h := width, height
		for w > 1 || h > 1 {
			w, h = max(w/2, 1), max(h/2, 1)
			t.levels = append(t.levels, mipLevel{width: w, height: h, texels: make([]mgl32.Vec4, w*h)})
		}
	}
	return t
}

func (t *texture) width() int  { return t.levels[0].width }
func (t *texture) height() int { return t.levels[0].height }

// store applies the format's range and precision.
func (t *texture) store(x, y int, c mgl32.Vec4) {
	l := &t.levels[0]
	if x < 0 || y < 0 || x >= l.width || y >= l.height {
		return
	}
	switch t.format {
	case metadata.InternalFormatRGBA8, metadata.InternalFormatRGB8:
		for i := range c {
			c[i] = float32(gomath.Round(float64(math.Clamp(c[i], 0, 1))*255)) / 255
		}
		if t.format == metadata.InternalFormatRGB8 {
			c[3] = 1
		}
	case metadata.InternalFormatDepth24, metadata.InternalFormatDepth32, metadata.InternalFormatDepth32F:
		c = mgl32.Vec4{math.Clamp(c[0], 0, 1), 0, 0, 1}
	}
	l.texels[y*l.width+x] = c
}

func (t *texture) load(x, y int) mgl32.Vec4 {
	l := &t.levels[0]
	return l.texels[y*l.width+x]
}

func (t *texture) fill(c mgl32.Vec4) {
	l := &t.levels[0]
	for y := 0; y < l.height; y++ {
		for x := 0; x < l.width; x++ {
			t.store(x, y, c)
		}
	}
}

// generateMipmap box-filters each level from the one above.
func (t *texture) generateMipmap() {
	for i := 1; i < len(t.levels); i++ {
		src, dst := &t.levels[i-1], &t.levels[i]
		for y := 0; y < dst.height; y++ {
			for x := 0; x < dst.width; x++ {
				var sum mgl32.Vec4
				n := float32(0)
				for dy := 0; dy < 2; dy++ {
					for dx := 0; dx < 2; dx++ {
						sx, sy := min(2*x+dx, src.width-1), min(2*y+dy, src.height-1)
						sum = sum.Add(src.texels[sy*src.width+sx])
						n++
					}
				}
				dst.texels[y*dst.width+x] = sum.Mul(1 / n)
			}
		}
	}
}

func wrap(coord int, size int, mode metadata.TextureRepeat) int {
	switch mode {
	case metadata.TextureRepeatRepeat:
		coord %= size
		if coord < 0 {
			coord += size
		}
		return coord
	case metadata.TextureRepeatMirroredRepeat:
		period := 2 * size
		coord %= period
		if coord < 0 {
			coord += period
		}
		if coord >= size {
			coord = period - 1 - coord
		}
		return coord
	default:
		return math.Clamp(coord, 0, size-1)
	}
}

func (t *texture) fetch(level, x, y int) mgl32.Vec4 {
	l := &t.levels[level]
	x = wrap(x, l.width, t.sampler.WrapS)
	y = wrap(y, l.height, t.sampler.WrapT)
	return l.texels[y*l.width+x]
}

func (t *texture) sampleLevel(level int, uv mgl32.Vec2, filter metadata.TextureFilter) mgl32.Vec4 {
	l := &t.levels[level]
	u := float64(uv[0]) * float64(l.width)
	v := float64(uv[1]) * float64(l.height)
	if filter == metadata.TextureFilterModeNearest {
		return t.fetch(level, int(gomath.Floor(u)), int(gomath.Floor(v)))
	}
	u -= 0.5
	v -= 0.5
	x0, y0 := int(gomath.Floor(u)), int(gomath.Floor(v))
	fx, fy := float32(u-float64(x0)), float32(v-float64(y0))
	c00 := t.fetch(level, x0, y0)
	c10 := t.fetch(level, x0+1, y0)
	c01 := t.fetch(level, x0, y0+1)
	c11 := t.fetch(level, x0+1, y0+1)
	top := c00.Mul(1 - fx).Add(c10.Mul(fx))
	bottom := c01.Mul(1 - fx).Add(c11.Mul(fx))
	return top.Mul(1 - fy).Add(bottom.Mul(fy))
}

// sample reads level 0 with the magnification filter. Implicit derivatives
// are not modelled, so minification never selects a lower level here.
func (t *texture) sample(uv mgl32.Vec2) mgl32.Vec4 {
	filter := t.sampler.MagFilter
	if filter == metadata.TextureFilterModeLinearMipmapLinear {
		filter = metadata.TextureFilterModeLinear
	}
	return t.sampleLevel(0, uv, filter)
}

// sampleLod reads an explicit level of detail, blending neighbouring levels
// when the min filter is trilinear.
func (t *texture) sampleLod(uv mgl32.Vec2, lod float32) mgl32.Vec4 {
	if !t.sampler.MinFilter.UsesMipmaps() || len(t.levels) == 1 || lod <= 0 {
		return t.sample(uv)
	}
	maxLevel := float32(len(t.levels) - 1)
	lod = math.Clamp(lod, 0, maxLevel)
	lo := int(gomath.Floor(float64(lod)))
	hi := min(lo+1, len(t.levels)-1)
	f := lod - float32(lo)
	a := t.sampleLevel(lo, uv, metadata.TextureFilterModeLinear)
	if hi == lo || f == 0 {
		return a
	}
	b := t.sampleLevel(hi, uv, metadata.TextureFilterModeLinear)
	return a.Mul(1 - f).Add(b.Mul(f))
}
