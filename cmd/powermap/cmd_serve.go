package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"powermap/internal/pipeline"
	"powermap/internal/server"
)

var (
	serveAddr  string
	serveRoot  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the built site locally",
	Long: `Serves a built directory (dist/ by default) over HTTP for local
inspection. With --watch, edits to source files under data/ re-run the
dataset join after a short debounce, so the maps refresh on reload.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Serving runs until interrupted; the build timeout does not apply.
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			logger.Info("Received shutdown signal")
			cancel()
		}()

		p := newPipeline()
		root := serveRoot
		if root == "" {
			root = cfg.Resolve(workspace, cfg.Paths.DistDir)
		}
		if err := server.ValidateRoot(root); err != nil {
			return err
		}

		addr := serveAddr
		if addr == "" {
			addr = cfg.Server.Addr
		}

		if serveWatch || cfg.Server.Watch {
			debounce, err := time.ParseDuration(cfg.Server.Debounce)
			if err != nil {
				debounce = 500 * time.Millisecond
			}
			w, err := server.NewWatcher(p.DataPath(""), debounce, func() error {
				return p.RebuildJoin(ctx)
			})
			if err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}
			if err := w.Start(ctx); err != nil {
				return err
			}
			defer w.Stop()
			logger.Info("Watching for source changes", zap.Duration("debounce", debounce))
		}

		srv := server.New(server.Options{
			Addr:    addr,
			Root:    root,
			DataDir: p.DataPath(""),
			Logger:  logger,
		})
		fmt.Printf("serving %s on http://%s\n", root, displayAddr(addr))
		return srv.Run(ctx)
	},
}

var mapsCmd = &cobra.Command{
	Use:   "maps",
	Short: "Render static snapshots of the map pages",
	Long: `Serves the built site on a local port and captures each configured map
page with headless Chrome, writing PNGs under maps/. Requires a built
dist/ and a Chrome or Chromium install (downloaded on first use).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := buildContext()
		defer cancel()
		return runSnapshot(ctx)
	},
}

// runSnapshot serves dist/ on a local port for the duration of the capture.
func runSnapshot(ctx context.Context) error {
	p := newPipeline()
	root := cfg.Resolve(workspace, cfg.Paths.DistDir)
	if err := server.ValidateRoot(root); err != nil {
		return err
	}

	addr := "127.0.0.1:8791"
	srv := server.New(server.Options{Addr: addr, Root: root, Logger: logger})

	serveCtx, stopServe := context.WithCancel(ctx)
	defer stopServe()
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(serveCtx) }()

	if err := waitForServer(ctx, addr); err != nil {
		return err
	}

	s, err := p.Snapshot(ctx, "http://"+addr)
	stopServe()
	if serveErr := <-errCh; err == nil && serveErr != nil {
		err = serveErr
	}
	if err != nil {
		return err
	}
	printSummaries([]pipeline.Summary{s})
	return nil
}

// waitForServer polls until the listener accepts connections.
func waitForServer(ctx context.Context, addr string) error {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := net.DialTimeout("tcp", addr, 200*time.Millisecond)
		if err == nil {
			conn.Close()
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("server on %s did not start", addr)
}

// displayAddr makes a bare ":8080" printable as "localhost:8080".
func displayAddr(addr string) string {
	if host, port, err := net.SplitHostPort(addr); err == nil && host == "" {
		return net.JoinHostPort("localhost", port)
	}
	return addr
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().StringVar(&serveRoot, "root", "", "Directory to serve (default: dist/)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Rebuild map-data.json when sources change")
}
