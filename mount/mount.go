// Package mount builds a document and its rendering surface from a
// scene description.
package mount

import (
	"fmt"
	"math"

	"github.com/elizafairlady/go-ptrbridge/config"
	"github.com/elizafairlady/go-ptrbridge/geom"
	"github.com/elizafairlady/go-ptrbridge/surface"
)

// Build creates the document for sc. The surface is appended first and
// chrome boxes on top of it, in order. The scene is assumed valid.
func Build(sc config.Scene) (*surface.Document, *surface.Surface, error) {
	doc := surface.NewDocument(sc.Viewport.Width, sc.Viewport.Height)

	s, err := buildSurface(sc.Surface)
	if err != nil {
		return nil, nil, err
	}
	doc.Root().Append(s)
	for _, b := range sc.Chrome {
		r, err := rect(b.Rect)
		if err != nil {
			return nil, nil, fmt.Errorf("chrome %s: %w", b.ID, err)
		}
		doc.Root().Append(surface.NewBox(b.ID, r))
	}
	return doc, s, nil
}

func buildSurface(c config.Surface) (*surface.Surface, error) {
	origin, err := point(c.Origin)
	if err != nil {
		return nil, fmt.Errorf("surface %s origin: %w", c.ID, err)
	}
	s := surface.NewSurface(c.ID, origin, geom.Pt(c.Size.Width, c.Size.Height))
	if c.ViewBox != nil {
		vb, err := rect(c.ViewBox)
		if err != nil {
			return nil, fmt.Errorf("surface %s viewbox: %w", c.ID, err)
		}
		s.SetViewBox(vb)
	}
	if c.Zoom != 0 && c.Zoom != 1 {
		s.ZoomAt(origin, c.Zoom)
	}
	if c.Rotate != 0 {
		center := origin.Add(geom.Pt(c.Size.Width/2, c.Size.Height/2))
		s.RotateAt(center, float32(float64(c.Rotate)*math.Pi/180))
	}
	if c.Pan != nil {
		d, err := point(c.Pan)
		if err != nil {
			return nil, fmt.Errorf("surface %s pan: %w", c.ID, err)
		}
		s.Pan(d)
	}
	if c.Detached {
		s.Detach()
	}

	kids, err := buildShapes(c.Shapes)
	if err != nil {
		return nil, err
	}
	s.Append(kids...)
	return s, nil
}

func buildShapes(shapes []config.Shape) ([]surface.Element, error) {
	var els []surface.Element
	for _, sh := range shapes {
		var el surface.Element
		switch sh.Kind {
		case "rect":
			r, err := rect(sh.Rect)
			if err != nil {
				return nil, fmt.Errorf("shape %s: %w", sh.ID, err)
			}
			el = surface.NewShape(sh.ID, surface.HitRect(r))
		case "circle":
			if len(sh.Circle) != 3 {
				return nil, fmt.Errorf("shape %s: circle wants 3 numbers", sh.ID)
			}
			el = surface.NewShape(sh.ID, surface.HitCircle{
				Center: geom.Pt(sh.Circle[0], sh.Circle[1]),
				Radius: sh.Circle[2],
			})
		case "box":
			r, err := rect(sh.Rect)
			if err != nil {
				return nil, fmt.Errorf("box %s: %w", sh.ID, err)
			}
			el = surface.NewBox(sh.ID, r)
		case "group":
			kids, err := buildShapes(sh.Children)
			if err != nil {
				return nil, err
			}
			el = surface.NewGroup(sh.ID).Append(kids...)
		default:
			return nil, fmt.Errorf("shape %s: unknown kind %q", sh.ID, sh.Kind)
		}
		els = append(els, el)
	}
	return els, nil
}

func point(v []float32) (geom.Point, error) {
	switch len(v) {
	case 0:
		return geom.ZP, nil
	case 2:
		return geom.Pt(v[0], v[1]), nil
	}
	return geom.ZP, fmt.Errorf("want 2 numbers, have %d", len(v))
}

func rect(v []float32) (geom.Rectangle, error) {
	if len(v) != 4 {
		return geom.ZR, fmt.Errorf("want 4 numbers, have %d", len(v))
	}
	return geom.XYWH(v[0], v[1], v[2], v[3]), nil
}
