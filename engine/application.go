package engine

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/fakesss/engine/core"
	"github.com/spaghettifunk/fakesss/engine/renderer/components"
	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
)

type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32 `toml:"start_pos_x"`
	// Window starting position y axis, if applicable.
	StartPosY uint32 `toml:"start_pos_y"`
	// Window starting width, if applicable.
	StartWidth uint32 `toml:"start_width"`
	// Window starting height, if applicable.
	StartHeight uint32 `toml:"start_height"`
	// The application name used in windowing, if applicable.
	Name     string `toml:"name"`
	LogLevel string `toml:"log_level"`
	// "opengl" or "software".
	Renderer string `toml:"renderer"`
	// Root of the shaders/, textures/ and meshes/ directories.
	AssetsDir string `toml:"assets_dir"`
	// Background workers for asset decoding.
	Workers int `toml:"workers"`
	// Frames to render before quitting; zero runs until the window closes.
	Frames int `toml:"frames"`

	Pipeline PipelineConfig `toml:"pipeline"`
	Frame    FrameConfig    `toml:"frame"`
	Scene    SceneConfig    `toml:"scene"`
	Lights   []LightConfig  `toml:"lights"`
}

type PipelineConfig struct {
	BlurPasses int    `toml:"blur_passes"`
	ShadowSize uint32 `toml:"shadow_size"`
}

// FrameConfig holds the initial values of the adjustable frame scalars.
type FrameConfig struct {
	Exposure float32 `toml:"exposure"`
	Bloom    float32 `toml:"bloom"`
	Density  float32 `toml:"density"`
	Rain     float32 `toml:"rain"`
}

type SceneConfig struct {
	Mesh        string `toml:"mesh"`
	AlbedoMap   string `toml:"albedo_map"`
	NormalMap   string `toml:"normal_map"`
	SpecularMap string `toml:"specular_map"`
}

type LightConfig struct {
	Position [3]float32 `toml:"position"`
	LookAt   [3]float32 `toml:"look_at"`
	Color    [3]float32 `toml:"color"`
	Lumen    float32    `toml:"lumen"`
	// Outer cone half-angle in degrees.
	OuterAngle float32 `toml:"outer_angle"`
	Near       float32 `toml:"near"`
	Far        float32 `toml:"far"`
}

// Spotlight converts the configuration to a spotlight.
func (lc LightConfig) Spotlight() components.Spotlight {
	s := components.NewSpotlight(mgl32.Vec3(lc.Position), mgl32.Vec3(lc.LookAt))
	s.Color = mgl32.Vec3(lc.Color)
	s.Lumen = lc.Lumen
	s.OuterAngle = mgl32.DegToRad(lc.OuterAngle)
	s.Near = lc.Near
	s.Far = lc.Far
	return *s
}

func (c *ApplicationConfig) RendererType() metadata.RendererType {
	if c.Renderer == metadata.RENDERER_TYPE_SOFTWARE.String() {
		return metadata.RENDERER_TYPE_SOFTWARE
	}
	return metadata.RENDERER_TYPE_OPENGL
}

func defaultLight(position [3]float32, lumen float32) LightConfig {
	return LightConfig{
		Position:   position,
		LookAt:     [3]float32{0, 0.3, 0},
		Color:      [3]float32{1, 1, 1},
		Lumen:      lumen,
		OuterAngle: 40,
		Near:       0.1,
		Far:        10,
	}
}

// DefaultApplicationConfig returns the configuration used when no file is given.
func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		StartPosX:   100,
		StartPosY:   100,
		StartWidth:  1280,
		StartHeight: 720,
		Name:        "FakeSSS",
		LogLevel:    "info",
		Renderer:    metadata.RENDERER_TYPE_OPENGL.String(),
		AssetsDir:   "assets",
		Workers:     3,
		Pipeline:    PipelineConfig{BlurPasses: 2, ShadowSize: 1024},
		Frame:       FrameConfig{Exposure: 2.2, Bloom: 0.4, Density: 1.2, Rain: 0.5},
		Scene: SceneConfig{
			Mesh:        "head.obj",
			AlbedoMap:   "albedo.png",
			NormalMap:   "normal.png",
			SpecularMap: "specular.png",
		},
		Lights: []LightConfig{
			defaultLight([3]float32{0.1, 0.4, -1.5}, 2),
			defaultLight([3]float32{0, 0.4, 1.5}, 3),
		},
	}
}

// LoadApplicationConfig decodes path over the defaults. An empty path returns
// the defaults.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	config := DefaultApplicationConfig()
	if path == "" {
		return config, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfigLoad, err)
	}
	if err := ParseApplicationConfig(data, config); err != nil {
		return nil, err
	}
	return config, nil
}

// ParseApplicationConfig decodes TOML data into config and validates the result.
func ParseApplicationConfig(data []byte, config *ApplicationConfig) error {
	if err := toml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("%w: %w", core.ErrConfigLoad, err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("%w: %w", core.ErrConfigLoad, err)
	}
	return nil
}

func (c *ApplicationConfig) Validate() error {
	var errs []error
	if c.StartWidth == 0 || c.StartHeight == 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d", c.StartWidth, c.StartHeight))
	}
	if c.Renderer != metadata.RENDERER_TYPE_OPENGL.String() && c.Renderer != metadata.RENDERER_TYPE_SOFTWARE.String() {
		errs = append(errs, fmt.Errorf("unknown renderer %q", c.Renderer))
	}
	if c.Pipeline.BlurPasses < 1 {
		errs = append(errs, fmt.Errorf("blur_passes must be at least 1, got %d", c.Pipeline.BlurPasses))
	}
	if c.Pipeline.ShadowSize == 0 {
		errs = append(errs, errors.New("shadow_size must be positive"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	for i, l := range c.Lights {
		if l.Near <= 0 || l.Far <= l.Near {
			errs = append(errs, fmt.Errorf("light %d: near/far %g/%g", i, l.Near, l.Far))
		}
		if l.OuterAngle <= 0 || l.OuterAngle >= 90 {
			errs = append(errs, fmt.Errorf("light %d: outer_angle %g outside (0, 90)", i, l.OuterAngle))
		}
	}
	return errors.Join(errs...)
}
