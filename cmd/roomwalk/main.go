// roomwalk is a first-person walk through a square gallery room hung with
// framed paintings.
//
// Usage:
//
//	roomwalk              - Open the room
//	roomwalk paintings    - Print the painting layout
//
// Global flags:
//
//	--config <path>    - YAML config overlaid on the defaults
//	--assets <dir>     - Asset root (default: assets)
//	--log-file <path>  - Write logs to a rotating file instead of stderr
package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"chosenoffset.com/roomwalk/internal/assets"
	"chosenoffset.com/roomwalk/internal/compose"
	"chosenoffset.com/roomwalk/internal/config"
	"chosenoffset.com/roomwalk/internal/game"
	ebitenrender "chosenoffset.com/roomwalk/internal/render/ebiten"
)

const windowTitle = "Room Walk"

var (
	flagConfig     string
	flagAssets     string
	flagWidth      int
	flagHeight     int
	flagSequential bool
	flagDebug      bool
	flagLogFile    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "roomwalk",
	Short: "Walk through a gallery room",
	Long: `Roomwalk opens a window onto a square room with four framed paintings.

Click to look around with the mouse, walk with W A S D and press Esc to
release the pointer.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		return nil
	},
	RunE: runWalk,
}

var paintingsCmd = &cobra.Command{
	Use:   "paintings",
	Short: "Print the painting layout",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-3s %-12s %-16s %-16s %s\n", "#", "ASSET", "FRAME", "PAINTING", "ROTATION")
		for i, p := range cfg.Paintings {
			fmt.Fprintf(out, "%-3d %-12s %-16s %-16s %.0f°\n", i, p.Asset,
				fmt.Sprintf("(%g, %g)", p.FrameX, p.FrameY),
				fmt.Sprintf("(%g, %g)", p.PaintX, p.PaintY),
				p.Rotation*180/math.Pi)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagAssets, "assets", "", "Asset root directory (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to a rotating file")
	rootCmd.Flags().IntVar(&flagWidth, "width", 1280, "Window width")
	rootCmd.Flags().IntVar(&flagHeight, "height", 720, "Window height")
	rootCmd.Flags().BoolVar(&flagSequential, "sequential", false, "Load paintings one at a time")

	rootCmd.AddCommand(paintingsCmd)
}

func setupLogging() {
	var w io.Writer = os.Stderr
	if flagLogFile != "" {
		w = &lumberjack.Logger{
			Filename:   flagLogFile,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
		}
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "roomwalk",
	})
	if flagDebug {
		logger.SetLevel(log.DebugLevel)
	}
	log.SetDefault(logger)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagAssets != "" {
		cfg.Assets.Root = flagAssets
	}
	if cmd.Flags().Changed("sequential") {
		cfg.Composition.Sequential = flagSequential
	}
	return cfg, nil
}

func runWalk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if flagWidth <= 0 || flagHeight <= 0 {
		return fmt.Errorf("invalid window size %dx%d", flagWidth, flagHeight)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	// The first interrupt closes the window; a second one kills the process.
	context.AfterFunc(ctx, stop)

	engine := ebitenrender.NewEngine()
	engine.SetWindowSize(flagWidth, flagHeight)
	engine.SetWindowTitle(windowTitle + " (loading)")
	engine.SetWindowResizable(true)

	composer := compose.New(cfg,
		assets.NewMeshLoader(cfg.Assets.Root),
		assets.NewImageLoader(cfg.Assets.Root))
	m := game.NewManager(cfg, ebitenrender.NewRenderer(), ebitenrender.NewInputManager(), composer, flagWidth, flagHeight)
	m.StatusChanged.AddListener(func(_ context.Context, s game.Status) {
		switch s.State {
		case game.StateWalking:
			engine.SetWindowTitle(windowTitle)
		case game.StateFailed:
			engine.SetWindowTitle(windowTitle + " (failed)")
		}
	})

	log.Info("Starting", "assets", cfg.Assets.Root, "paintings", len(cfg.Paintings),
		"sequential", cfg.Composition.Sequential)
	m.Start(ctx)
	if err := engine.RunGame(m); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}
