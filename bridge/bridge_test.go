package bridge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/elizafairlady/go-ptrbridge/geom"
	"github.com/elizafairlady/go-ptrbridge/surface"
)

type fixture struct {
	doc     *surface.Document
	surface *surface.Surface
	shape   *surface.Shape
	label   *surface.Box
	got     []*surface.PositionedMove
}

// newFixture lays out a 1000x1000 surface at origin with one shape
// covering it and a label box on top of its corner.
func newFixture(origin geom.Point) *fixture {
	f := &fixture{
		doc:     surface.NewDocument(2000, 2000),
		surface: surface.NewSurface("canvas", origin, geom.Pt(1000, 1000)),
		shape:   surface.NewShape("board", surface.HitRect(geom.XYWH(-5000, -5000, 10000, 10000))),
		label:   surface.NewBox("label", geom.XYWH(0, 0, 10, 10)),
	}
	f.surface.Append(f.shape, f.label)
	f.doc.Root().Append(f.surface)
	f.doc.Root().Listeners().OnPositionedMove(func(ev *surface.PositionedMove) {
		cp := *ev
		f.got = append(f.got, &cp)
	})
	return f
}

func (f *fixture) move(x, y float32) {
	surface.DispatchDeviceMove(&surface.DeviceMove{Target: f.shape, Client: geom.Pt(x, y)})
}

func (f *fixture) positions() []geom.Point {
	var ps []geom.Point
	for _, ev := range f.got {
		ps = append(ps, ev.Position)
	}
	return ps
}

func TestNonTransformableTargetIgnored(t *testing.T) {
	f := newFixture(geom.ZP)
	b := Attach(f.surface, WithScope(f.doc.Root()))
	defer b.Close()

	surface.DispatchDeviceMove(&surface.DeviceMove{Target: f.label, Client: geom.Pt(1, 1)})
	surface.DispatchDeviceMove(&surface.DeviceMove{Target: f.surface, Client: geom.Pt(1, 1)})
	surface.DispatchDeviceMove(&surface.DeviceMove{Target: f.doc.Root(), Client: geom.Pt(1, 1)})

	assert.Empty(t, f.got)
	assert.Equal(t, Stats{Ignored: 3}, b.Stats())
}

func TestTransformableTargetEmitsOnce(t *testing.T) {
	f := newFixture(geom.ZP)
	b := Attach(f.surface)
	defer b.Close()

	ok, err := b.Handle(&surface.DeviceMove{Target: f.shape, Client: geom.Pt(3, 4), Buttons: 1, Msec: 9})
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, f.got, 1)

	ev := f.got[0]
	assert.Same(t, f.shape, ev.Target)
	assert.Equal(t, 1, ev.Buttons)
	assert.Equal(t, uint32(9), ev.Msec)
}

func TestIdentityTransform(t *testing.T) {
	f := newFixture(geom.ZP)
	b := Attach(f.surface)
	defer b.Close()

	pts := []geom.Point{geom.Pt(0, 0), geom.Pt(12.5, 99), geom.Pt(-3, 700.25)}
	for _, p := range pts {
		f.move(p.X, p.Y)
	}
	assert.Equal(t, pts, f.positions())
}

func TestUniformScale(t *testing.T) {
	tests := []struct {
		k      float32
		origin geom.Point
		client geom.Point
	}{
		{2, geom.Pt(10, 20), geom.Pt(110, 60)},
		{4, geom.Pt(0, 0), geom.Pt(8, 16)},
		{0.5, geom.Pt(100, 100), geom.Pt(150, 125)},
	}
	for _, tt := range tests {
		f := newFixture(tt.origin)
		f.surface.ZoomAt(tt.origin, tt.k)
		b := Attach(f.surface)

		f.move(tt.client.X, tt.client.Y)
		want := geom.Pt((tt.client.X-tt.origin.X)/tt.k, (tt.client.Y-tt.origin.Y)/tt.k)
		assert.Equal(t, []geom.Point{want}, f.positions(), "k=%g origin=%v", tt.k, tt.origin)
		b.Close()
	}
}

func TestOrdering(t *testing.T) {
	f := newFixture(geom.Pt(5, 5))
	b := Attach(f.surface)
	defer b.Close()

	f.move(6, 6)
	f.move(7, 7)
	f.move(8, 8)
	assert.Equal(t, []geom.Point{geom.Pt(1, 1), geom.Pt(2, 2), geom.Pt(3, 3)}, f.positions())
	assert.Equal(t, uint64(3), b.Stats().Emitted)
}

func TestTransformRequeried(t *testing.T) {
	f := newFixture(geom.ZP)
	b := Attach(f.surface)
	defer b.Close()

	f.move(50, 50)
	f.surface.Pan(geom.Pt(10, -20))
	f.move(50, 50)

	require.Len(t, f.got, 2)
	assert.Equal(t, geom.Pt(50, 50), f.got[0].Position)
	assert.Equal(t, geom.Pt(40, 70), f.got[1].Position)
}

func TestRotatedSurface(t *testing.T) {
	f := newFixture(geom.ZP)
	f.surface.RotateAt(geom.ZP, 3.14159265/2)
	b := Attach(f.surface)
	defer b.Close()

	// local (1, 0) is drawn at device (0, 1)
	f.move(0, 1)
	require.Len(t, f.got, 1)
	assert.InDelta(t, 1, f.got[0].Position.X, 1e-5)
	assert.InDelta(t, 0, f.got[0].Position.Y, 1e-5)
}

func TestGeometryFailure(t *testing.T) {
	f := newFixture(geom.ZP)

	var errs []error
	b := Attach(f.surface, WithErrorHandler(func(err error, ev *surface.DeviceMove) {
		assert.Same(t, f.shape, ev.Target)
		errs = append(errs, err)
	}))
	defer b.Close()

	f.surface.Detach()
	f.move(1, 1)
	f.surface.Attach()
	f.surface.ZoomAt(geom.ZP, 0)
	f.move(1, 1)

	assert.Empty(t, f.got)
	require.Len(t, errs, 2)
	assert.ErrorIs(t, errs[0], surface.ErrDetached)
	assert.ErrorIs(t, errs[1], geom.ErrSingular)
	assert.Equal(t, Stats{Failed: 2}, b.Stats())

	_, err := b.Handle(&surface.DeviceMove{Target: f.shape})
	assert.True(t, errors.Is(err, geom.ErrSingular))
}

func TestDefaultErrorHandlerLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	f := newFixture(geom.ZP)
	b := Attach(f.surface, WithLogger(zap.New(core)))
	defer b.Close()

	f.surface.Detach()
	f.move(1, 2)

	warns := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warns, 1)
	assert.Equal(t, "board", warns[0].ContextMap()["target"])
	assert.Equal(t, "canvas", warns[0].ContextMap()["surface"])
}

func TestClose(t *testing.T) {
	f := newFixture(geom.ZP)
	b := Attach(f.surface)
	assert.Equal(t, 1, f.surface.Listeners().Count())

	f.move(1, 1)
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
	f.move(2, 2)

	assert.Equal(t, []geom.Point{geom.Pt(1, 1)}, f.positions())
	assert.Equal(t, 0, f.surface.Listeners().Count())
}

func TestDeliveredThroughDocument(t *testing.T) {
	f := newFixture(geom.Pt(100, 100))
	f.surface.ZoomAt(geom.Pt(100, 100), 2)
	b := Attach(f.surface, WithScope(f.doc.Root()))
	defer b.Close()

	// label covers local (0,0)-(10,10): device (100,100)-(120,120)
	f.doc.DeliverMove(geom.Pt(110, 110), 0, 1)
	f.doc.DeliverMove(geom.Pt(140, 160), 0, 2)
	// outside the surface: the root is the target
	f.doc.DeliverMove(geom.Pt(50, 50), 0, 3)

	require.Len(t, f.got, 1)
	assert.Equal(t, geom.Pt(20, 30), f.got[0].Position)
	assert.Equal(t, uint32(2), f.got[0].Msec)
	assert.Equal(t, Stats{Emitted: 1, Ignored: 2}, b.Stats())
}
