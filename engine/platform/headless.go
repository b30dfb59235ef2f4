package platform

// Headless stands in for a window when frames are rendered off screen. It
// never asks to close; the engine stops after its frame budget.
type Headless struct {
	Title  string
	width  uint32
	height uint32
	Swaps  int
}

func NewHeadless(width, height uint32) *Headless {
	return &Headless{width: width, height: height}
}

func (h *Headless) PumpMessages() bool { return true }

func (h *Headless) SwapBuffers() { h.Swaps++ }

func (h *Headless) SetTitle(title string) { h.Title = title }

func (h *Headless) FramebufferSize() (uint32, uint32) { return h.width, h.height }

func (h *Headless) Shutdown() error { return nil }
