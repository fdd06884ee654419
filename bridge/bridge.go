// Package bridge converts raw pointer moves on a rendering surface into
// positioned moves in the surface's local coordinate space.
//
// A Bridge listens for DeviceMove events bubbling through its scope. For
// each event whose target belongs to a surface it queries the surface's
// current device-to-local transform, maps the client point through it,
// and dispatches a PositionedMove on the same target. Targets that do
// not belong to a surface are ignored.
package bridge

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/elizafairlady/go-ptrbridge/surface"
)

// ErrorHandler receives geometry query failures. The event is not
// re-emitted.
type ErrorHandler func(err error, ev *surface.DeviceMove)

// Option configures a Bridge.
type Option func(*Bridge)

// WithScope registers the bridge on el instead of the surface, so
// moves anywhere in el's subtree reach it.
func WithScope(el surface.Element) Option {
	return func(b *Bridge) { b.scope = el }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(b *Bridge) { b.log = log }
}

// WithErrorHandler replaces the default handler, which logs at warn level.
func WithErrorHandler(h ErrorHandler) Option {
	return func(b *Bridge) { b.onError = h }
}

// Stats counts the events seen by a Bridge.
type Stats struct {
	Emitted uint64 // positioned moves dispatched
	Ignored uint64 // targets without an owning surface
	Failed  uint64 // geometry queries that failed
}

// Bridge is a registered pointer bridge. Close releases it.
type Bridge struct {
	surface *surface.Surface
	scope   surface.Element
	log     *zap.Logger
	onError ErrorHandler
	sub     surface.Subscription
	once    sync.Once

	emitted atomic.Uint64
	ignored atomic.Uint64
	failed  atomic.Uint64
}

// Attach registers a bridge for s and returns it.
func Attach(s *surface.Surface, opts ...Option) *Bridge {
	b := &Bridge{
		surface: s,
		scope:   s,
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(b)
	}
	if b.onError == nil {
		b.onError = b.logError
	}
	b.log = b.log.With(zap.String("surface", s.ID()), zap.String("scope", b.scope.ID()))
	b.sub = b.scope.Listeners().OnDeviceMove(b.OnDeviceMove)
	b.log.Debug("bridge attached")
	return b
}

// Surface returns the surface the bridge was attached to.
func (b *Bridge) Surface() *surface.Surface {
	return b.surface
}

// Close unregisters the bridge. Later moves are not converted.
func (b *Bridge) Close() error {
	b.once.Do(func() {
		b.sub.Cancel()
		b.log.Debug("bridge closed")
	})
	return nil
}

// OnDeviceMove is the DeviceMove handler. Geometry failures go to the
// error handler.
func (b *Bridge) OnDeviceMove(ev *surface.DeviceMove) {
	if _, err := b.Handle(ev); err != nil {
		b.onError(err, ev)
	}
}

// Handle converts ev and dispatches the resulting PositionedMove on
// ev.Target. It reports whether an event was dispatched.
func (b *Bridge) Handle(ev *surface.DeviceMove) (bool, error) {
	origin, ok := ev.Target.(surface.TransformableOrigin)
	if !ok {
		b.ignored.Add(1)
		return false, nil
	}
	m, err := origin.DeviceToLocal()
	if err != nil {
		b.failed.Add(1)
		return false, err
	}
	p := m.Apply(ev.Client)
	b.emitted.Add(1)
	surface.DispatchPositionedMove(&surface.PositionedMove{
		Target:   origin,
		Position: p,
		Buttons:  ev.Buttons,
		Msec:     ev.Msec,
	})
	return true, nil
}

// Stats returns the current counters.
func (b *Bridge) Stats() Stats {
	return Stats{
		Emitted: b.emitted.Load(),
		Ignored: b.ignored.Load(),
		Failed:  b.failed.Load(),
	}
}

func (b *Bridge) logError(err error, ev *surface.DeviceMove) {
	b.log.Warn("device to local transform failed",
		zap.String("target", ev.Target.ID()),
		zap.Float32("x", ev.Client.X),
		zap.Float32("y", ev.Client.Y),
		zap.Error(err))
}
