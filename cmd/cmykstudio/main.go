// Command cmykstudio runs the CMYK portrait studio.
//
// Usage:
//
//	cmykstudio [serve] [-config studio.yaml]   # run the studio server
//	cmykstudio separate <image> [outdir]       # write the four CMYK layers as PNGs
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/ayusman/cmykstudio/internal/app"
	"github.com/ayusman/cmykstudio/internal/archive"
	"github.com/ayusman/cmykstudio/internal/config"
	"github.com/ayusman/cmykstudio/internal/detector"
	"github.com/ayusman/cmykstudio/internal/parts"
	"github.com/ayusman/cmykstudio/internal/separation"
	"github.com/ayusman/cmykstudio/internal/server"
	"github.com/ayusman/cmykstudio/internal/store"
	"github.com/ayusman/cmykstudio/internal/tracking"
	"github.com/ayusman/cmykstudio/internal/tray"
)

func main() {
	args := os.Args[1:]
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "serve":
		err = serve(args)
	case "separate":
		err = separate(args)
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "cmykstudio:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: cmykstudio [serve] [-config file] [-addr addr] [-log-level level] | separate <image> [outdir]")
	os.Exit(2)
}

func serve(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to studio YAML config")
	addr := fs.String("addr", "", "listen address, overrides the config file")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.Parse(args)

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadFile(*configPath); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return run(ctx, logger, cfg)
}

func run(ctx context.Context, logger *slog.Logger, cfg *config.Config) error {
	if err := os.MkdirAll(cfg.Data.Dir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(cfg.Data.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	catalog := parts.Default()
	if cfg.Data.PartsFile != "" {
		if catalog, err = parts.LoadFile(cfg.Data.PartsFile); err != nil {
			return fmt.Errorf("load parts: %w", err)
		}
	}

	var items []archive.Item
	if cfg.Data.ArchiveFile != "" {
		if items, err = archive.LoadFile(cfg.Data.ArchiveFile); err != nil {
			return fmt.Errorf("load archive: %w", err)
		}
	}

	det := detector.DefaultConfig()
	det.MinConfidence = cfg.Tracking.MinConfidence
	studio, err := app.New(app.Config{
		Store:     st,
		Catalog:   catalog,
		Archive:   items,
		Smoothing: cfg.Tracking.Smoothing,
		Canvas:    tracking.CanvasSize{Width: cfg.Tracking.CanvasWidth, Height: cfg.Tracking.CanvasHeight},
		CameraID:  cfg.Tracking.CameraID,
		FPS:       int(cfg.Tracking.FPS),
		Detector:  det,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := studio.Close(); err != nil {
			logger.Error("close studio", "err", err)
		}
	}()

	if cfg.Tracking.Enabled && !studio.Tracking() {
		if err := studio.SetTracking(true); err != nil {
			return err
		}
	}
	if cfg.Tracking.Camera {
		if err := studio.Start(); err != nil {
			// Manual placement keeps working without a tracker.
			logger.Warn("live tracking unavailable", "err", err)
		}
	}

	srv := server.New(server.Config{
		App:       studio,
		StaticDir: firstDir(cfg.Server.StaticDir, "web", "../web", filepath.Join(cfg.Data.Dir, "web")),
		PartsDir:  firstDir(cfg.Server.PartsDir, "parts", "web/parts", filepath.Join(cfg.Data.Dir, "parts")),
		Logger:    logger,
	})

	if !cfg.Tray {
		return srv.ListenAndServe(ctx, cfg.Server.Addr)
	}
	return runWithTray(ctx, logger, cfg.Server.Addr, srv, studio)
}

// runWithTray serves in the background while the tray owns the main
// goroutine, as systray requires.
func runWithTray(ctx context.Context, logger *slog.Logger, addr string, srv *server.Server, studio *app.App) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	t := tray.New(studio.Tracking())
	t.SetLayerCount(studio.Scene().Len())
	t.OnToggle(func(enabled bool) {
		if err := studio.SetTracking(enabled); err != nil {
			logger.Error("toggle tracking", "err", err)
		}
	})
	t.OnOpen(func() { openBrowser(logger, studioURL(addr)) })
	t.OnQuit(cancel)

	unsubscribe := studio.Subscribe(func(s app.Snapshot) {
		t.SetTracking(s.Tracking)
		t.SetLayerCount(len(s.Layers))
	})
	defer unsubscribe()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(ctx, addr)
		t.Quit()
	}()

	t.Run()
	cancel()
	return <-errCh
}

func separate(args []string) error {
	if len(args) < 1 {
		usage()
	}
	src := args[0]
	outDir := filepath.Dir(src)
	if len(args) > 1 {
		outDir = args[1]
	}

	img, err := separation.Open(src)
	if err != nil {
		return err
	}
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	paths, err := separation.Separate(img).Save(outDir, base)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Println(p)
	}
	return nil
}

// firstDir returns configured when set, else the first candidate that is an
// existing directory, else "".
func firstDir(configured string, candidates ...string) string {
	if configured != "" {
		return configured
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

func studioURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(logger *slog.Logger, url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		logger.Warn("open browser", "url", url, "err", err)
	}
}
