package surface

import (
	"fmt"
	"sync"

	"github.com/elizafairlady/go-ptrbridge/geom"
)

// Surface is a rendering surface: a graphical container whose children
// are expressed in its own local coordinate space. The surface is placed
// on the device at Origin with a viewport of Size device pixels. An
// optional view box is fitted into the viewport, and a view transform
// accumulates pan, zoom and rotation.
//
// Surface itself is not a TransformableOrigin: it has no owning surface.
// Surfaces are expected to sit in device space, under plain boxes; one
// nested inside another surface is hit tested against its device bounds
// and its children convert device points without the outer surface.
type Surface struct {
	node

	mu       sync.RWMutex
	origin   geom.Point
	size     geom.Point
	viewBox  geom.Rectangle
	view     geom.Transform
	attached bool
}

// State is a snapshot of a surface's geometry.
type State struct {
	Origin   geom.Point
	Size     geom.Point
	ViewBox  geom.Rectangle
	View     geom.Transform
	Attached bool
}

// NewSurface returns an attached surface at origin with the given
// viewport size.
func NewSurface(id string, origin, size geom.Point) *Surface {
	return &Surface{
		node:     node{id: id},
		origin:   origin,
		size:     size,
		attached: true,
	}
}

// Append adds children on top of the surface's existing children.
func (s *Surface) Append(children ...Element) *Surface {
	adopt(s, children...)
	return s
}

// Place moves and resizes the viewport on the device.
func (s *Surface) Place(origin, size geom.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.origin = origin
	s.size = size
}

// SetViewBox sets the local rectangle fitted into the viewport.
// An empty rectangle makes one local unit equal one device pixel.
func (s *Surface) SetViewBox(r geom.Rectangle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewBox = r
}

// Pan translates the view by d device pixels.
func (s *Surface) Pan(d geom.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = s.view.Offset(d)
}

// ZoomAt scales the view by f, keeping device point p fixed.
func (s *Surface) ZoomAt(p geom.Point, f float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = s.view.Scale(p.Sub(s.origin), geom.Pt(f, f))
}

// RotateAt rotates the view by radians about device point p.
func (s *Surface) RotateAt(p geom.Point, radians float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = s.view.Rotate(p.Sub(s.origin), radians)
}

// Reset discards accumulated pan, zoom and rotation.
func (s *Surface) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = geom.Identity()
}

// Attach marks the surface as laid out.
func (s *Surface) Attach() {
	s.mu.Lock()
	s.attached = true
	s.mu.Unlock()
}

// Detach marks the surface as not laid out. Geometry queries fail
// with ErrDetached until Attach is called.
func (s *Surface) Detach() {
	s.mu.Lock()
	s.attached = false
	s.mu.Unlock()
}

// Attached reports whether the surface is laid out.
func (s *Surface) Attached() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attached
}

// Bounds returns the viewport rectangle in device space.
func (s *Surface) Bounds() geom.Rectangle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return geom.XYWH(s.origin.X, s.origin.Y, s.size.X, s.size.Y)
}

// State returns a snapshot of the surface geometry.
func (s *Surface) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Origin:   s.origin,
		Size:     s.size,
		ViewBox:  s.viewBox,
		View:     s.view,
		Attached: s.attached,
	}
}

// ScreenCTM returns the current local-to-device transform.
func (s *Surface) ScreenCTM() (geom.Transform, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.attached {
		return geom.Transform{}, fmt.Errorf("surface %q: %w", s.id, ErrDetached)
	}
	if s.size.X <= 0 || s.size.Y <= 0 {
		return geom.Transform{}, fmt.Errorf("surface %q: %w", s.id, ErrZeroSize)
	}
	return fitViewBox(s.viewBox, s.size).Then(s.view).Offset(s.origin), nil
}

// DeviceToLocal returns the inverse of the current screen transform.
// It is computed on every call.
func (s *Surface) DeviceToLocal() (geom.Transform, error) {
	ctm, err := s.ScreenCTM()
	if err != nil {
		return geom.Transform{}, err
	}
	inv, err := ctm.Invert()
	if err != nil {
		return geom.Transform{}, fmt.Errorf("surface %q: %w", s.id, err)
	}
	return inv, nil
}

// fitViewBox maps vb into a viewport of the given size, scaled
// uniformly to fit and centred.
func fitViewBox(vb geom.Rectangle, size geom.Point) geom.Transform {
	if vb.Empty() {
		return geom.Identity()
	}
	k := size.X / vb.Dx()
	if ky := size.Y / vb.Dy(); ky < k {
		k = ky
	}
	align := geom.Pt((size.X-vb.Dx()*k)/2, (size.Y-vb.Dy()*k)/2)
	return geom.Identity().
		Offset(vb.Min.Mul(-1)).
		Scale(geom.ZP, geom.Pt(k, k)).
		Offset(align)
}

func (s *Surface) hit(p geom.Point) (bool, bool) {
	in := p.In(s.Bounds())
	return in, in
}

func (s *Surface) childSpace(p geom.Point) (geom.Point, bool) {
	m, err := s.DeviceToLocal()
	if err != nil {
		return p, false
	}
	return m.Apply(p), true
}
