// Ptrbridge converts pointer moves on a rendering surface into the
// surface's local coordinates.
//
// It reads raw moves from a Plan 9 mouse device, hit tests them against
// the configured scene, and passes moves over the surface through the
// pointer bridge. Converted positions are logged at debug level and
// served over 9P.
//
// Usage:
//
//	ptrbridge [-c config.yaml] [-m mousefile] [-a addr] [-v]
//
// Connect with any 9P client, for example:
//
//	9p -a localhost:5640 read position
//	echo 'zoom 2' | 9p -a localhost:5640 write ctl
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/elizafairlady/go-ptrbridge/bridge"
	"github.com/elizafairlady/go-ptrbridge/config"
	"github.com/elizafairlady/go-ptrbridge/input"
	"github.com/elizafairlady/go-ptrbridge/logging"
	"github.com/elizafairlady/go-ptrbridge/mount"
	"github.com/elizafairlady/go-ptrbridge/ptrfs"
	"github.com/elizafairlady/go-ptrbridge/surface"
)

var (
	configPath = flag.String("c", "", "configuration file")
	mousePath  = flag.String("m", "", "mouse device (overrides config)")
	addr       = flag.String("a", "", "9P listen address (overrides config)")
	verbose    = flag.Bool("v", false, "log converted positions")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ptrbridge: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}
	if *mousePath != "" {
		cfg.Mouse = *mousePath
	}
	if *addr != "" {
		cfg.Listen = *addr
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}

	log, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	defer log.Sync()

	doc, surf, err := mount.Build(cfg.Scene)
	if err != nil {
		return fmt.Errorf("mount: %w", err)
	}
	b := bridge.Attach(surf,
		bridge.WithScope(doc.Root()),
		bridge.WithLogger(log.Named("bridge")))
	defer b.Close()

	if log.Core().Enabled(zap.DebugLevel) {
		sub := surf.Listeners().OnPositionedMove(func(ev *surface.PositionedMove) {
			log.Debug("move",
				zap.String("target", ev.Target.ID()),
				zap.Float32("x", ev.Position.X),
				zap.Float32("y", ev.Position.Y),
				zap.Uint32("msec", ev.Msec))
		})
		defer sub.Cancel()
	}

	mouse, err := os.Open(cfg.Mouse)
	if err != nil {
		return fmt.Errorf("open mouse: %w", err)
	}
	defer mouse.Close()

	var ln net.Listener
	if cfg.Listen != "" {
		if ln, err = net.Listen("tcp", cfg.Listen); err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer stop()
		r := input.NewReader(mouse, log.Named("input"))
		return r.Run(ctx, func(m input.Mouse) {
			doc.DeliverMove(m.Point, m.Buttons, m.Msec)
		}, nil)
	})
	// Reads on the device do not observe ctx.
	g.Go(func() error {
		<-ctx.Done()
		mouse.Close()
		return nil
	})

	if ln != nil {
		srv := ptrfs.New(b, log.Named("ptrfs"))
		defer srv.Close()
		g.Go(func() error {
			return srv.Serve(ctx, ln)
		})
	}

	log.Info("ptrbridge running",
		zap.String("surface", surf.ID()),
		zap.String("mouse", cfg.Mouse),
		zap.String("listen", cfg.Listen))
	err = g.Wait()
	if ctx.Err() != nil && err != nil {
		log.Debug("shutdown", zap.Error(err))
		return nil
	}
	return err
}
