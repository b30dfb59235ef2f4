package demo

import (
	"fmt"

	"github.com/spaghettifunk/fakesss/engine/core"
	"github.com/spaghettifunk/fakesss/engine/math"
)

// FrameState holds the scalars the user adjusts while the demo runs.
type FrameState struct {
	Exposure     float32
	Bloom        float32
	Density      float32
	Rain         float32
	ShowSpecular bool
}

type adjustment struct {
	key       core.KeyCode
	value     func(s *FrameState) *float32
	delta     float32
	low, high float32
}

func exposure(s *FrameState) *float32 { return &s.Exposure }
func bloom(s *FrameState) *float32    { return &s.Bloom }
func density(s *FrameState) *float32  { return &s.Density }
func rain(s *FrameState) *float32     { return &s.Rain }

// checked in order; the first key hit wins
var adjustments = []adjustment{
	{core.KEY_W, exposure, 0.1, 0.1, 10},
	{core.KEY_S, exposure, -0.1, 0.1, 10},
	{core.KEY_E, bloom, 0.1, 0.1, 1},
	{core.KEY_D, bloom, -0.1, 0.1, 1},
	{core.KEY_R, density, 0.1, 0.5, 3},
	{core.KEY_F, density, -0.1, 0.5, 3},
	{core.KEY_T, rain, 0.1, 0, 1},
	{core.KEY_G, rain, -0.1, 0, 1},
}

// Adjust applies at most one change for the keys hit this frame and reports
// whether anything changed.
func (s *FrameState) Adjust(hit func(core.KeyCode) bool) bool {
	for _, a := range adjustments {
		if !hit(a.key) {
			continue
		}
		v := a.value(s)
		*v = math.Round(math.Step(*v, a.delta, a.low, a.high), 2)
		return true
	}
	if hit(core.KEY_1) {
		s.ShowSpecular = !s.ShowSpecular
		return true
	}
	return false
}

// Title formats the window title.
func (s *FrameState) Title(fps float64) string {
	return fmt.Sprintf("Fake-SSS FPS: %3.1f, Exposure(W/S): %2.1f, Bloom(E/D) %1.1f, Density(R/F) %1.2f, Rain(T/G) %1.1f",
		fps, s.Exposure, s.Bloom, s.Density, s.Rain)
}

const titleInterval = 0.25

// fpsCounter reports the frame rate every titleInterval seconds.
type fpsCounter struct {
	elapsed float64
	frames  int
}

func (c *fpsCounter) Tick(deltaTime float64) (float64, bool) {
	c.elapsed += deltaTime
	c.frames++
	if c.elapsed <= titleInterval {
		return 0, false
	}
	fps := float64(c.frames) / c.elapsed
	c.elapsed = 0
	c.frames = 0
	return fps, true
}
