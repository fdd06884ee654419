package ptrfs

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/elizafairlady/go-ptrbridge/geom"
)

// ctl applies each line of msg to the surface. It stops at the first
// bad line.
func (s *Server) ctl(msg string) error {
	for _, line := range strings.Split(msg, "\n") {
		f := strings.Fields(line)
		if len(f) == 0 {
			continue
		}
		if err := s.ctlCmd(f[0], f[1:]); err != nil {
			return fmt.Errorf("%w: %q: %v", errBadCtl, line, err)
		}
		s.log.Debug("ctl", zap.String("cmd", line))
	}
	return nil
}

func (s *Server) ctlCmd(cmd string, args []string) error {
	switch cmd {
	case "pan":
		v, err := floats(args, 2, 2)
		if err != nil {
			return err
		}
		s.surface.Pan(geom.Pt(v[0], v[1]))
	case "zoom":
		v, err := floats(args, 1, 3)
		if err != nil {
			return err
		}
		if v[0] == 0 {
			return errors.New("zero zoom")
		}
		s.surface.ZoomAt(s.about(v[1:]), v[0])
	case "rotate":
		v, err := floats(args, 1, 3)
		if err != nil {
			return err
		}
		s.surface.RotateAt(s.about(v[1:]), float32(float64(v[0])*math.Pi/180))
	case "reset":
		s.surface.Reset()
	case "attach":
		s.surface.Attach()
	case "detach":
		s.surface.Detach()
	default:
		return errors.New("unknown command")
	}
	return nil
}

// about returns the explicit device point in v, or the viewport centre.
func (s *Server) about(v []float32) geom.Point {
	if len(v) == 2 {
		return geom.Pt(v[0], v[1])
	}
	b := s.surface.Bounds()
	return b.Min.Add(b.Size().Div(2))
}

// floats parses args as numbers. Optional trailing values come in
// pairs, so the count must be lo or hi.
func floats(args []string, lo, hi int) ([]float32, error) {
	if len(args) != lo && len(args) != hi {
		return nil, fmt.Errorf("want %d or %d arguments", lo, hi)
	}
	v := make([]float32, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 32)
		if err != nil {
			return nil, err
		}
		v[i] = float32(f)
	}
	return v, nil
}
