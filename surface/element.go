// Package surface models the host side of the pointer bridge: a tree of
// elements, the rendering surfaces that define local coordinate spaces,
// hit testing, and a typed, bubbling listener graph for move events.
//
// Elements are created and arranged by one goroutine. Surface geometry
// may be changed from any goroutine.
package surface

import (
	"errors"

	"github.com/elizafairlady/go-ptrbridge/geom"
)

// Geometry query errors.
var (
	ErrDetached  = errors.New("surface not attached")
	ErrZeroSize  = errors.New("surface has zero size")
	ErrNoSurface = errors.New("element has no owning surface")
)

// Element is a node in the element tree.
type Element interface {
	ID() string
	Parent() Element
	// Children returns the element's children in paint order.
	// The slice must not be modified.
	Children() []Element
	Listeners() *Listeners

	base() *node
	// hit reports, for p in the parent's space, whether hit testing
	// should descend into the children and whether the element itself
	// is under p.
	hit(p geom.Point) (descend, self bool)
	// childSpace maps p from the parent's space to the children's.
	childSpace(p geom.Point) (geom.Point, bool)
}

// TransformableOrigin is implemented by elements that belong to a
// rendering surface and can report its current device-to-local transform.
type TransformableOrigin interface {
	Element
	OwnerSurface() *Surface
	DeviceToLocal() (geom.Transform, error)
}

type node struct {
	id       string
	parent   Element
	children []Element
	ls       Listeners
}

func (n *node) ID() string            { return n.id }
func (n *node) Parent() Element       { return n.parent }
func (n *node) Children() []Element   { return n.children }
func (n *node) Listeners() *Listeners { return &n.ls }
func (n *node) base() *node           { return n }

func (n *node) childSpace(p geom.Point) (geom.Point, bool) {
	return p, true
}

// adopt moves each child under parent, detaching it from any previous
// parent first.
func adopt(parent Element, children ...Element) {
	pb := parent.base()
	for _, c := range children {
		if c == nil {
			continue
		}
		Remove(c)
		c.base().parent = parent
		pb.children = append(pb.children, c)
	}
}

// Remove detaches el from its parent. It is a no-op for roots.
func Remove(el Element) {
	b := el.base()
	if b.parent == nil {
		return
	}
	pb := b.parent.base()
	for i, c := range pb.children {
		if c == el {
			pb.children = append(pb.children[:i], pb.children[i+1:]...)
			break
		}
	}
	b.parent = nil
}

// ownerSurface returns the nearest Surface ancestor of el, or nil.
func ownerSurface(el Element) *Surface {
	for p := el.Parent(); p != nil; p = p.Parent() {
		if s, ok := p.(*Surface); ok {
			return s
		}
	}
	return nil
}

// Box is a plain rectangular element, such as a toolbar or a label.
// Its rectangle is expressed in its parent's space. Boxes are never
// transformable, even inside a surface.
type Box struct {
	node
	Rect geom.Rectangle
}

// NewBox returns a box covering r.
func NewBox(id string, r geom.Rectangle) *Box {
	return &Box{node: node{id: id}, Rect: r}
}

// Append adds children on top of b's existing children.
func (b *Box) Append(children ...Element) *Box {
	adopt(b, children...)
	return b
}

func (b *Box) hit(p geom.Point) (bool, bool) {
	in := p.In(b.Rect)
	return in, in
}
