package renderer

import (
	"fmt"

	"github.com/spaghettifunk/fakesss/engine/core"
	"github.com/spaghettifunk/fakesss/engine/renderer/components"
	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
)

// LightID indexes a light inside its LightSet.
type LightID uint16

// Light is a spotlight together with the shadow target it renders depth into.
type Light struct {
	ID      LightID
	Enabled bool
	components.Spotlight

	shadow *RenderTarget
}

// ShadowMap returns the depth texture written by the shadow stage.
func (l *Light) ShadowMap() metadata.TextureHandle {
	return l.shadow.BufferHandle(metadata.SlotDepth)
}

func (l *Light) ShadowTarget() *RenderTarget {
	return l.shadow
}

// LightSet owns every light and its shadow target. Lights are addressed by
// LightID; removed slots are reused.
type LightSet struct {
	backend    RendererBackend
	shadowSize uint32
	lights     []*Light
}

func NewLightSet(backend RendererBackend, shadowSize uint32) *LightSet {
	return &LightSet{backend: backend, shadowSize: max(shadowSize, 1)}
}

// Add creates the light's shadow target and stores it.
func (s *LightSet) Add(spot components.Spotlight) (LightID, error) {
	id := LightID(len(s.lights))
	for i, l := range s.lights {
		if l == nil {
			id = LightID(i)
			break
		}
	}

	shadow, err := NewRenderTarget(s.backend, fmt.Sprintf("shadow-%d", id), s.shadowSize, s.shadowSize)
	if err != nil {
		return 0, err
	}
	if err := shadow.Attach(metadata.SlotDepth, metadata.DepthAttachment(metadata.InternalFormatDepth32F)); err != nil {
		shadow.Release()
		return 0, fmt.Errorf("light %d shadow map: %w", id, err)
	}

	light := &Light{ID: id, Enabled: true, Spotlight: spot, shadow: shadow}
	if int(id) == len(s.lights) {
		s.lights = append(s.lights, light)
	} else {
		s.lights[id] = light
	}
	core.LogDebug("light %d added at %v", id, spot.Position)
	return id, nil
}

func (s *LightSet) Get(id LightID) (*Light, bool) {
	if int(id) >= len(s.lights) || s.lights[id] == nil {
		return nil, false
	}
	return s.lights[id], true
}

// Remove releases the light and its shadow target.
func (s *LightSet) Remove(id LightID) bool {
	l, ok := s.Get(id)
	if !ok {
		return false
	}
	l.shadow.Release()
	s.lights[id] = nil
	return true
}

// Active returns the enabled lights in ID order.
func (s *LightSet) Active() []*Light {
	out := make([]*Light, 0, len(s.lights))
	for _, l := range s.lights {
		if l != nil && l.Enabled {
			out = append(out, l)
		}
	}
	return out
}

func (s *LightSet) Len() int {
	n := 0
	for _, l := range s.lights {
		if l != nil {
			n++
		}
	}
	return n
}

func (s *LightSet) Destroy() {
	for i := range s.lights {
		s.Remove(LightID(i))
	}
	s.lights = nil
}
