// Package ptrfs serves a pointer bridge over 9P2000.
//
// The root directory holds three files:
//
//	position	latest converted position: "x y msec target\n"
//	ctl	surface control; reads return the surface state
//	stats	bridge counters
//
// ctl accepts one command per line:
//
//	pan dx dy
//	zoom f [x y]
//	rotate deg [x y]
//	reset
//	attach
//	detach
//
// zoom and rotate default to the centre of the surface viewport.
package ptrfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"9fans.net/go/plan9"
	"go.uber.org/zap"

	"github.com/elizafairlady/go-ptrbridge/bridge"
	"github.com/elizafairlady/go-ptrbridge/surface"
)

// Qid paths.
const (
	qidRoot = iota
	qidPosition
	qidCtl
	qidStats
)

type file struct {
	name string
	path uint64
	mode plan9.Perm
}

var files = []file{
	{"position", qidPosition, 0444},
	{"ctl", qidCtl, 0664},
	{"stats", qidStats, 0444},
}

var rootQid = plan9.Qid{Path: qidRoot, Type: plan9.QTDIR}

// Server is a 9P file server for one bridge.
type Server struct {
	surface *surface.Surface
	bridge  *bridge.Bridge
	log     *zap.Logger
	sub     surface.Subscription
	start   uint32

	mu   sync.Mutex
	last []byte

	wg    sync.WaitGroup
	cmu   sync.Mutex
	conns map[io.Closer]struct{}
}

// New returns a server for b. It records every positioned move that
// reaches b's surface.
func New(b *bridge.Bridge, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		surface: b.Surface(),
		bridge:  b,
		log:     log,
		start:   uint32(time.Now().Unix()),
		conns:   make(map[io.Closer]struct{}),
	}
	s.sub = s.surface.Listeners().OnPositionedMove(s.record)
	return s
}

func (s *Server) record(ev *surface.PositionedMove) {
	line := fmt.Sprintf("%s %s %d %s\n",
		ftoa(ev.Position.X), ftoa(ev.Position.Y), ev.Msec, ev.Target.ID())
	s.mu.Lock()
	s.last = []byte(line)
	s.mu.Unlock()
}

// Position returns the contents of the position file.
func (s *Server) Position() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Serve accepts connections on ln until ctx is done or ln fails.
// It returns nil when ctx ends it.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	s.log.Info("ptrfs listening", zap.String("addr", ln.Addr().String()))
	for {
		nc, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.ServeConn(nc)
		}()
	}
}

// ServeConn serves 9P on rwc until it fails or is closed.
func (s *Server) ServeConn(rwc io.ReadWriteCloser) {
	s.cmu.Lock()
	s.conns[rwc] = struct{}{}
	s.cmu.Unlock()
	defer func() {
		s.cmu.Lock()
		delete(s.conns, rwc)
		s.cmu.Unlock()
	}()
	newConn(s, rwc).serve()
}

// Close stops recording positions, closes open connections and waits
// for their handlers.
func (s *Server) Close() error {
	s.sub.Cancel()
	s.cmu.Lock()
	for c := range s.conns {
		c.Close()
	}
	s.cmu.Unlock()
	s.wg.Wait()
	return nil
}

func (s *Server) contents(path uint64) []byte {
	switch path {
	case qidPosition:
		return s.Position()
	case qidCtl:
		st := s.surface.State()
		sx, hx, ox, hy, sy, oy := st.View.Elems()
		return []byte(fmt.Sprintf("surface %s\norigin %s %s\nsize %s %s\nview %s %s %s %s %s %s\nattached %t\n",
			s.surface.ID(),
			ftoa(st.Origin.X), ftoa(st.Origin.Y),
			ftoa(st.Size.X), ftoa(st.Size.Y),
			ftoa(sx), ftoa(hx), ftoa(ox), ftoa(hy), ftoa(sy), ftoa(oy),
			st.Attached))
	case qidStats:
		st := s.bridge.Stats()
		return []byte(fmt.Sprintf("emitted %d\nignored %d\nfailed %d\n", st.Emitted, st.Ignored, st.Failed))
	}
	return nil
}

func (s *Server) dir(f file) *plan9.Dir {
	return &plan9.Dir{
		Qid:   plan9.Qid{Path: f.path, Type: plan9.QTFILE},
		Mode:  f.mode,
		Atime: s.start,
		Mtime: s.start,
		Name:  f.name,
		Uid:   "none",
		Gid:   "none",
		Muid:  "none",
	}
}

func (s *Server) rootDir() *plan9.Dir {
	return &plan9.Dir{
		Qid:   rootQid,
		Mode:  plan9.Perm(plan9.DMDIR | 0555),
		Atime: s.start,
		Mtime: s.start,
		Name:  "/",
		Uid:   "none",
		Gid:   "none",
		Muid:  "none",
	}
}

func lookup(name string) (file, bool) {
	for _, f := range files {
		if f.name == name {
			return f, true
		}
	}
	return file{}, false
}

func lookupPath(path uint64) (file, bool) {
	for _, f := range files {
		if f.path == path {
			return f, true
		}
	}
	return file{}, false
}

func ftoa(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

var errBadCtl = errors.New("bad ctl message")
