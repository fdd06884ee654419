package surface

import (
	"fmt"

	"github.com/elizafairlady/go-ptrbridge/geom"
)

// HitShape is a hit area in surface-local coordinates.
type HitShape interface {
	Contains(p geom.Point) bool
}

// HitRect is a rectangular hit area.
type HitRect geom.Rectangle

// Contains reports whether p lies inside or on the rectangle.
func (r HitRect) Contains(p geom.Point) bool {
	return p.In(geom.Rectangle(r))
}

// HitCircle is a circular hit area.
type HitCircle struct {
	Center geom.Point
	Radius float32
}

// Contains reports whether p lies inside or on the circle.
func (c HitCircle) Contains(p geom.Point) bool {
	d := p.Sub(c.Center)
	return d.X*d.X+d.Y*d.Y <= c.Radius*c.Radius
}

// Shape is a graphical element drawn on a surface.
type Shape struct {
	node
	Hit HitShape
}

// NewShape returns a shape with hit area h.
func NewShape(id string, h HitShape) *Shape {
	return &Shape{node: node{id: id}, Hit: h}
}

// OwnerSurface returns the surface the shape is drawn on, or nil.
func (s *Shape) OwnerSurface() *Surface {
	return ownerSurface(s)
}

// DeviceToLocal returns the owning surface's current device-to-local
// transform.
func (s *Shape) DeviceToLocal() (geom.Transform, error) {
	return deviceToLocal(s)
}

func (s *Shape) hit(p geom.Point) (bool, bool) {
	return false, s.Hit != nil && s.Hit.Contains(p)
}

// Group collects elements on a surface. A group has no area of its own
// and is only hit through its children.
type Group struct {
	node
}

// NewGroup returns an empty group.
func NewGroup(id string) *Group {
	return &Group{node: node{id: id}}
}

// Append adds children on top of the group's existing children.
func (g *Group) Append(children ...Element) *Group {
	adopt(g, children...)
	return g
}

// OwnerSurface returns the surface the group belongs to, or nil.
func (g *Group) OwnerSurface() *Surface {
	return ownerSurface(g)
}

// DeviceToLocal returns the owning surface's current device-to-local
// transform.
func (g *Group) DeviceToLocal() (geom.Transform, error) {
	return deviceToLocal(g)
}

func (g *Group) hit(geom.Point) (bool, bool) {
	return true, false
}

func deviceToLocal(el Element) (geom.Transform, error) {
	s := ownerSurface(el)
	if s == nil {
		return geom.Transform{}, fmt.Errorf("%s: %w", el.ID(), ErrNoSurface)
	}
	return s.DeviceToLocal()
}

var (
	_ TransformableOrigin = (*Shape)(nil)
	_ TransformableOrigin = (*Group)(nil)
)
