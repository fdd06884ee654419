// Package config loads the ptrbridge configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/elizafairlady/go-ptrbridge/logging"
)

// Config is the top-level configuration.
type Config struct {
	Log    Log    `yaml:"log"`
	Mouse  string `yaml:"mouse"`  // mouse device path
	Listen string `yaml:"listen"` // 9P address; empty disables ptrfs
	Scene  Scene  `yaml:"scene"`
}

// Log configures logging.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Scene describes the element tree to mount.
type Scene struct {
	Viewport Size    `yaml:"viewport"`
	Chrome   []Box   `yaml:"chrome"`
	Surface  Surface `yaml:"surface"`
}

// Size is a width and height in device pixels.
type Size struct {
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
}

// Box is a plain rectangle, [x, y, w, h].
type Box struct {
	ID   string    `yaml:"id"`
	Rect []float32 `yaml:"rect"`
}

// Surface describes the rendering surface.
type Surface struct {
	ID       string    `yaml:"id"`
	Origin   []float32 `yaml:"origin"`  // [x, y] device pixels
	Size     Size      `yaml:"size"`
	ViewBox  []float32 `yaml:"viewbox"` // [x, y, w, h] local units
	Zoom     float32   `yaml:"zoom"`
	Pan      []float32 `yaml:"pan"`    // [dx, dy] device pixels
	Rotate   float32   `yaml:"rotate"` // degrees
	Detached bool      `yaml:"detached"`
	Shapes   []Shape   `yaml:"shapes"`
}

// Shape is one element on the surface. Kind is rect, circle, box or
// group; Rect is [x, y, w, h], Circle is [cx, cy, r].
type Shape struct {
	ID       string    `yaml:"id"`
	Kind     string    `yaml:"kind"`
	Rect     []float32 `yaml:"rect,omitempty"`
	Circle   []float32 `yaml:"circle,omitempty"`
	Children []Shape   `yaml:"children,omitempty"`
}

// Default returns the built-in configuration: a surface filling an
// 800x600 viewport with a board shape and a toolbar on top.
func Default() *Config {
	return &Config{
		Log:    Log{Level: "info", Format: "console"},
		Mouse:  "/dev/mouse",
		Listen: "localhost:5640",
		Scene: Scene{
			Viewport: Size{Width: 800, Height: 600},
			Chrome: []Box{
				{ID: "toolbar", Rect: []float32{0, 0, 800, 24}},
			},
			Surface: Surface{
				ID:     "canvas",
				Origin: []float32{0, 24},
				Size:   Size{Width: 800, Height: 576},
				Zoom:   1,
				Shapes: []Shape{
					{ID: "board", Kind: "rect", Rect: []float32{0, 0, 800, 576}},
				},
			},
		},
	}
}

// Load reads the file at path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
// Unknown keys are rejected. The default scene is used only when the
// document has no scene; a given scene replaces it whole.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	scene := cfg.Scene
	cfg.Scene = Scene{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if reflect.ValueOf(cfg.Scene).IsZero() {
		cfg.Scene = scene
	} else if cfg.Scene.Surface.ID == "" {
		cfg.Scene.Surface.ID = scene.Surface.ID
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem in c.
func (c *Config) Validate() error {
	var err error
	if _, lerr := logging.ParseLevel(c.Log.Level); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "json", "console":
	default:
		err = multierr.Append(err, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	if c.Mouse == "" {
		err = multierr.Append(err, errors.New("mouse: path required"))
	}
	return multierr.Append(err, c.Scene.validate())
}

func (s *Scene) validate() error {
	var err error
	if s.Viewport.Width <= 0 || s.Viewport.Height <= 0 {
		err = multierr.Append(err, errors.New("scene.viewport: size must be positive"))
	}
	ids := map[string]bool{"root": true}
	unique := func(where, id string) {
		if id == "" {
			err = multierr.Append(err, fmt.Errorf("%s: id required", where))
			return
		}
		if ids[id] {
			err = multierr.Append(err, fmt.Errorf("%s: duplicate id %q", where, id))
		}
		ids[id] = true
	}
	for i, b := range s.Chrome {
		where := fmt.Sprintf("scene.chrome[%d]", i)
		unique(where, b.ID)
		err = multierr.Append(err, wantLen(where+".rect", b.Rect, 4))
	}

	sf := &s.Surface
	unique("scene.surface", sf.ID)
	if sf.Size.Width < 0 || sf.Size.Height < 0 {
		err = multierr.Append(err, errors.New("scene.surface.size: negative size"))
	}
	if sf.Origin != nil {
		err = multierr.Append(err, wantLen("scene.surface.origin", sf.Origin, 2))
	}
	if sf.Pan != nil {
		err = multierr.Append(err, wantLen("scene.surface.pan", sf.Pan, 2))
	}
	if sf.ViewBox != nil {
		err = multierr.Append(err, wantLen("scene.surface.viewbox", sf.ViewBox, 4))
	}
	if sf.Zoom < 0 {
		err = multierr.Append(err, errors.New("scene.surface.zoom: must not be negative"))
	}

	var walk func(prefix string, shapes []Shape)
	walk = func(prefix string, shapes []Shape) {
		for i, sh := range shapes {
			where := fmt.Sprintf("%s[%d]", prefix, i)
			unique(where, sh.ID)
			switch sh.Kind {
			case "rect", "box":
				err = multierr.Append(err, wantLen(where+".rect", sh.Rect, 4))
			case "circle":
				err = multierr.Append(err, wantLen(where+".circle", sh.Circle, 3))
			case "group":
				walk(where+".children", sh.Children)
				continue
			default:
				err = multierr.Append(err, fmt.Errorf("%s: unknown kind %q", where, sh.Kind))
			}
			if len(sh.Children) > 0 {
				err = multierr.Append(err, fmt.Errorf("%s: only groups have children", where))
			}
		}
	}
	walk("scene.surface.shapes", sf.Shapes)
	return err
}

func wantLen(where string, v []float32, n int) error {
	if len(v) != n {
		return fmt.Errorf("%s: want %d numbers, have %d", where, n, len(v))
	}
	return nil
}
