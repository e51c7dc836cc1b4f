// Command handcount runs the hand gesture counter: it watches a camera,
// resolves finger poses into numbers and named gestures, and serves the
// committed result over HTTP.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/weiting/handcount/internal/app"
	"github.com/weiting/handcount/internal/config"
	"github.com/weiting/handcount/internal/gesture"
	"github.com/weiting/handcount/internal/logging"
	"github.com/weiting/handcount/internal/server"
	"github.com/weiting/handcount/internal/store"
	"github.com/weiting/handcount/internal/tray"
)

// version is set at build time via -ldflags.
var version = "dev"

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "handcount",
		Short: "Count fingers and recognize hand gestures from a camera",
		Long: `Handcount watches a camera, resolves hand poses into digits,
two-hand numbers, and named gestures, and exposes the stable result
over an HTTP API and WebSocket stream.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "path to the config file")

	root.AddCommand(newServeCmd())
	root.AddCommand(newVersionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("handcount %s\n", version)
		},
	}
}

func newServeCmd() *cobra.Command {
	var withTray bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the detection pipeline and HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(withTray)
		},
	}
	cmd.Flags().BoolVar(&withTray, "tray", false, "show a system tray icon")

	return cmd
}

func runServe(withTray bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer logger.Sync()

	dbPath := cfg.Storage.DatabasePath
	if dbPath == "" {
		dbPath, err = defaultDatabasePath()
		if err != nil {
			return err
		}
	}
	st, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	a := app.New(app.Config{
		Store:                  st,
		Logger:                 logger,
		CameraID:               cfg.Camera.DeviceID,
		Width:                  cfg.Camera.Width,
		Height:                 cfg.Camera.Height,
		IdleFPS:                cfg.Camera.IdleFPS,
		ActiveFPS:              cfg.Camera.ActiveFPS,
		Mirror:                 cfg.Camera.Mirror,
		IdleTimeout:            time.Duration(cfg.Engine.IdleTimeoutMs) * time.Millisecond,
		StabilityWindow:        time.Duration(cfg.Engine.StabilityWindowMs) * time.Millisecond,
		MotionThreshold:        cfg.Engine.MotionThreshold,
		MaxHands:               cfg.Engine.MaxHands,
		MinDetectionConfidence: cfg.Engine.MinDetectionConfidence,
		MinTrackingConfidence:  cfg.Engine.MinTrackingConfidence,
	})

	staticDir := cfg.Server.StaticDir
	if staticDir == "" {
		staticDir = findWebDir()
	}
	if staticDir != "" {
		logger.Info("serving static files", zap.String("dir", staticDir))
	}

	srv := server.New(server.Config{
		StaticDir:  staticDir,
		Store:      st,
		Camera:     a.Camera(),
		State:      a.State(),
		Controller: a,
		Logger:     logger,
	})

	trayUI := tray.New()
	a.SetCommitHook(func(snap gesture.Snapshot) {
		srv.Broadcaster().Publish(snap)
		if withTray {
			trayUI.SetLastGesture(snap.Name)
		}
	})

	if err := a.Start(); err != nil {
		return fmt.Errorf("start pipeline: %w", err)
	}
	defer a.Stop()

	if !withTray {
		return srv.ListenAndServe(cfg.Server.ListenAddress)
	}

	// systray must own the main thread, so the server moves to a
	// goroutine.
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(cfg.Server.ListenAddress)
	}()

	trayUI.OnToggle(func(enabled bool) {
		if enabled {
			if err := a.Start(); err != nil {
				logger.Error("failed to restart pipeline", zap.Error(err))
			}
		} else {
			a.Stop()
		}
	})
	trayUI.OnDashboard(func() {
		openBrowser("http://localhost"+cfg.Server.ListenAddress, logger)
	})

	done := make(chan struct{})
	trayUI.OnQuit(func() {
		close(done)
	})

	go func() {
		select {
		case err := <-errCh:
			logger.Error("http server exited", zap.Error(err))
		case <-done:
		}
	}()

	trayUI.Run()
	return nil
}

// defaultConfigPath returns ~/.handcount/config.toml, falling back to a
// relative path when the home directory is unknown.
func defaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(homeDir, ".handcount", "config.toml")
}

func defaultDatabasePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	dbDir := filepath.Join(homeDir, ".handcount")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}

	return filepath.Join(dbDir, "handcount.db"), nil
}

// findWebDir searches for the web directory in common locations and
// returns the first existing one, or empty string if none is found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if absPath, err := filepath.Abs(p); err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".handcount", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

// openBrowser opens the given URL with the platform opener.
func openBrowser(url string, logger *zap.Logger) {
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
		logger.Warn("failed to open browser", zap.Error(err))
	}
}
