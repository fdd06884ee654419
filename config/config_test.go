package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestDefaultValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
log:
  level: debug
listen: ""
scene:
  viewport: {width: 1024, height: 768}
  chrome:
    - {id: status, rect: [0, 748, 1024, 20]}
  surface:
    origin: [12, 0]
    size: {width: 1000, height: 740}
    viewbox: [0, 0, 500, 370]
    zoom: 2
    pan: [5, -5]
    rotate: 90
    shapes:
      - {id: board, kind: rect, rect: [0, 0, 500, 370]}
      - id: pieces
        kind: group
        children:
          - {id: king, kind: circle, circle: [40, 40, 10]}
      - {id: note, kind: box, rect: [450, 0, 50, 20]}
`))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "/dev/mouse", cfg.Mouse)
	assert.Empty(t, cfg.Listen)
	assert.Equal(t, Size{Width: 1024, Height: 768}, cfg.Scene.Viewport)
	require.Len(t, cfg.Scene.Chrome, 1)
	assert.Equal(t, "status", cfg.Scene.Chrome[0].ID)

	sf := cfg.Scene.Surface
	assert.Equal(t, "canvas", sf.ID)
	assert.Equal(t, []float32{12, 0}, sf.Origin)
	assert.Equal(t, float32(2), sf.Zoom)
	assert.Equal(t, float32(90), sf.Rotate)
	require.Len(t, sf.Shapes, 3)
	assert.Equal(t, "king", sf.Shapes[1].Children[0].ID)
}

func TestParsePartialScene(t *testing.T) {
	cfg, err := Parse([]byte(`
log: {level: warning}
scene:
  viewport: {width: 200, height: 200}
  surface:
    size: {width: 200, height: 200}
    shapes:
      - {id: a, kind: rect, rect: [0, 0, 200, 200]}
`))
	require.NoError(t, err)

	sc := cfg.Scene
	assert.Empty(t, sc.Chrome)
	assert.Nil(t, sc.Surface.Origin)
	assert.Equal(t, "canvas", sc.Surface.ID)
	assert.Equal(t, Size{Width: 200, Height: 200}, sc.Surface.Size)
	require.Len(t, sc.Surface.Shapes, 1)
	assert.Equal(t, "a", sc.Surface.Shapes[0].ID)
}

func TestParseUnknownField(t *testing.T) {
	_, err := Parse([]byte("mouse: /dev/mouse\nbogus: 1\n"))
	assert.Error(t, err)
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"
	cfg.Mouse = ""
	cfg.Scene.Viewport.Width = 0
	cfg.Scene.Chrome = append(cfg.Scene.Chrome, Box{ID: "toolbar", Rect: []float32{1, 2}})
	cfg.Scene.Surface.Shapes = []Shape{
		{ID: "a", Kind: "circle", Circle: []float32{1, 2}},
		{ID: "b", Kind: "star"},
		{ID: "c", Kind: "rect", Rect: []float32{0, 0, 1, 1}, Children: []Shape{{ID: "d", Kind: "rect"}}},
		{Kind: "group"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	msgs := []string{}
	for _, e := range multierr.Errors(err) {
		msgs = append(msgs, e.Error())
	}
	assert.ElementsMatch(t, []string{
		`log.level: unknown level "loud"`,
		`log.format: unknown format "xml"`,
		"mouse: path required",
		"scene.viewport: size must be positive",
		`scene.chrome[1]: duplicate id "toolbar"`,
		"scene.chrome[1].rect: want 4 numbers, have 2",
		"scene.surface.shapes[0].circle: want 3 numbers, have 2",
		`scene.surface.shapes[1]: unknown kind "star"`,
		"scene.surface.shapes[2]: only groups have children",
		"scene.surface.shapes[3]: id required",
	}, msgs)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ptrbridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mouse: /tmp/mouse\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/mouse", cfg.Mouse)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
