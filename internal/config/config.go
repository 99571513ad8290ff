// Package config holds the tunable numbers of the walkthrough. Defaults match
// the room the gallery was designed around; a YAML file can override any of
// them.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/goccy/go-yaml"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

// Config holds all settings for a walkthrough session.
type Config struct {
	Room        RoomConfig        `yaml:"room"`
	Motion      MotionConfig      `yaml:"motion"`
	Camera      CameraConfig      `yaml:"camera"`
	Assets      AssetsConfig      `yaml:"assets"`
	Composition CompositionConfig `yaml:"composition"`
	Paintings   []Painting        `yaml:"paintings"`
}

// RoomConfig defines the room geometry.
type RoomConfig struct {
	HalfExtent   float64 `yaml:"half_extent"`   // walkable limit on x and z
	WallDistance float64 `yaml:"wall_distance"` // wall planes sit at +-WallDistance
	WallHeight   float64 `yaml:"wall_height"`
	FloorColor   uint32  `yaml:"floor_color"` // 0xRRGGBB
	WallColor    uint32  `yaml:"wall_color"`
	LightHeight  float64 `yaml:"light_height"`
	Ambient      float64 `yaml:"ambient"`
}

// MotionConfig defines walking.
type MotionConfig struct {
	StepSize         float64 `yaml:"step_size"`     // units per held key per frame
	PersonHeight     float64 `yaml:"person_height"` // eye height, never changed by walking
	MouseSensitivity float64 `yaml:"mouse_sensitivity"`
}

// CameraConfig defines the perspective projection.
type CameraConfig struct {
	FOV  float64 `yaml:"fov"` // vertical, degrees
	Near float64 `yaml:"near"`
	Far  float64 `yaml:"far"`
}

// AssetsConfig locates the assets.
type AssetsConfig struct {
	Root           string  `yaml:"root"`
	FrameMesh      string  `yaml:"frame_mesh"`
	PaintingWidth  float64 `yaml:"painting_width"`
	PaintingHeight float64 `yaml:"painting_height"`
	PaintY         float64 `yaml:"paint_y"` // centre height of the image plane
	FrameY         float64 `yaml:"frame_y"` // origin height of the frame mesh
}

// CompositionConfig controls startup composition.
type CompositionConfig struct {
	// Sequential loads the paintings one after another instead of all at once.
	Sequential bool `yaml:"sequential"`
}

// Painting declares one framed image. X/Y are world x/z coordinates.
type Painting struct {
	Asset    string  `yaml:"asset"`
	PaintX   float64 `yaml:"paint_x"`
	PaintY   float64 `yaml:"paint_y"`
	FrameX   float64 `yaml:"frame_x"`
	FrameY   float64 `yaml:"frame_y"`
	Rotation float64 `yaml:"rotation"` // around the y axis, radians
}

// DefaultConfig returns the gallery room.
func DefaultConfig() *Config {
	return &Config{
		Room: RoomConfig{
			HalfExtent:   980,
			WallDistance: 1000,
			WallHeight:   1000,
			FloorColor:   0xCC00FF,
			WallColor:    0xBBBBBB,
			LightHeight:  500,
			Ambient:      0.25,
		},
		Motion: MotionConfig{
			StepSize:         10,
			PersonHeight:     250,
			MouseSensitivity: 1,
		},
		Camera: CameraConfig{
			FOV:  75,
			Near: 0.1,
			Far:  1000*1000 + 1000*1000,
		},
		Assets: AssetsConfig{
			Root:           "assets",
			FrameMesh:      "frame/frame.gltf",
			PaintingWidth:  160,
			PaintingHeight: 208,
			PaintY:         323,
			FrameY:         200,
		},
		Paintings: DefaultPaintings(),
	}
}

// DefaultPaintings returns one painting per wall.
func DefaultPaintings() []Painting {
	return []Painting{
		{Asset: "a4_3.jpeg", FrameX: 0, PaintX: 0, FrameY: -1000, PaintY: -990, Rotation: 0},
		{Asset: "a3_1.jpeg", FrameX: -1000, PaintX: -990, FrameY: 0, PaintY: 0, Rotation: math.Pi / 2},
		{Asset: "a4_8.jpeg", FrameX: 1000, PaintX: 990, FrameY: 0, PaintY: 0, Rotation: -math.Pi / 2},
		{Asset: "a4_6.jpeg", FrameX: 0, PaintX: 0, FrameY: 1000, PaintY: 990, Rotation: math.Pi},
	}
}

// LoadConfig loads a config from a YAML file on top of the defaults.
// A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// Validate checks that the config describes a usable room.
func (c *Config) Validate() error {
	switch {
	case c.Room.HalfExtent <= 0:
		return fmt.Errorf("%w: room.half_extent must be positive", ErrInvalid)
	case c.Room.HalfExtent >= c.Room.WallDistance:
		return fmt.Errorf("%w: room.half_extent %g must be less than room.wall_distance %g",
			ErrInvalid, c.Room.HalfExtent, c.Room.WallDistance)
	case c.Motion.StepSize <= 0:
		return fmt.Errorf("%w: motion.step_size must be positive", ErrInvalid)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("%w: camera.near must be positive and below camera.far", ErrInvalid)
	case c.Camera.FOV <= 0 || c.Camera.FOV >= 180:
		return fmt.Errorf("%w: camera.fov must be in (0, 180)", ErrInvalid)
	case len(c.Paintings) != 4:
		return fmt.Errorf("%w: want 4 paintings, got %d", ErrInvalid, len(c.Paintings))
	case c.Assets.FrameMesh == "":
		return fmt.Errorf("%w: assets.frame_mesh is empty", ErrInvalid)
	}
	for i, p := range c.Paintings {
		if p.Asset == "" {
			return fmt.Errorf("%w: painting %d has no asset", ErrInvalid, i)
		}
	}
	return nil
}
