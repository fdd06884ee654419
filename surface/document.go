package surface

import "github.com/elizafairlady/go-ptrbridge/geom"

// Document is the host for an element tree: it owns the root box that
// spans the device viewport and turns raw pointer positions into
// targeted, bubbling DeviceMove events.
type Document struct {
	root *Box
}

// NewDocument returns a document whose root covers a viewport of the
// given size in device pixels.
func NewDocument(width, height float32) *Document {
	return &Document{root: NewBox("root", geom.XYWH(0, 0, width, height))}
}

// Root returns the root element.
func (d *Document) Root() *Box {
	return d.root
}

// HitTest returns the deepest, topmost element under device point p.
// Later children are on top of earlier ones. If nothing else is under
// p the root is returned.
func (d *Document) HitTest(p geom.Point) Element {
	if el := hitTest(d.root, p); el != nil {
		return el
	}
	return d.root
}

func hitTest(el Element, p geom.Point) Element {
	descend, self := el.hit(p)
	if descend {
		if cp, ok := el.childSpace(p); ok {
			kids := el.Children()
			for i := len(kids) - 1; i >= 0; i-- {
				if h := hitTest(kids[i], cp); h != nil {
					return h
				}
			}
		}
	}
	if self {
		return el
	}
	return nil
}

// DeliverMove dispatches a DeviceMove for the element under client and
// returns that element.
func (d *Document) DeliverMove(client geom.Point, buttons int, msec uint32) Element {
	target := d.HitTest(client)
	DispatchDeviceMove(&DeviceMove{
		Target:  target,
		Client:  client,
		Buttons: buttons,
		Msec:    msec,
	})
	return target
}

// Find returns the element with the given id, searching depth first,
// or nil.
func (d *Document) Find(id string) Element {
	return find(d.root, id)
}

func find(el Element, id string) Element {
	if el.ID() == id {
		return el
	}
	for _, c := range el.Children() {
		if f := find(c, id); f != nil {
			return f
		}
	}
	return nil
}
