package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/spanmark/internal/app"
	"github.com/zjrosen/spanmark/internal/cachemanager"
	"github.com/zjrosen/spanmark/internal/config"
	"github.com/zjrosen/spanmark/internal/document"
	"github.com/zjrosen/spanmark/internal/labels"
	"github.com/zjrosen/spanmark/internal/log"
	"github.com/zjrosen/spanmark/internal/mode"
	"github.com/zjrosen/spanmark/internal/mode/shared"
	"github.com/zjrosen/spanmark/internal/presentation"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	darkBackground = lipgloss.HasDarkBackground()
}

var (
	darkBackground = true
	zoneOnce       sync.Once
)

// newModel builds the application model. Span click zones need the global
// bubblezone manager before the first model exists.
func newModel(opts app.Options) app.Model {
	zoneOnce.Do(zone.NewGlobal)
	return app.New(opts)
}

const localConfigPath = ".spanmark/config.yaml"

var (
	version     = "dev"
	cfgFile     string
	debugFlag   bool
	objectsFile string
	cfg         config.Config
)

var rootCmd = &cobra.Command{
	Use:   "spanmark [file]",
	Short: "Label spans of text in the terminal",
	Long: `A terminal user interface for labeling spans of a text document.

Select a run of tokens with the mouse or keyboard to create a span under the
active label. Click a span to toggle it, double-click to remove it. The object
list is saved per document and can be exported as JSON.`,
	Version:           version,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	PersistentPreRunE: initDiagnostics,
	RunE:              runApp,
}

var logCleanup func()

func init() {
	cobra.OnInitialize(initConfig)
	cobra.OnFinalize(func() {
		shutdownTracing()
		if logCleanup != nil {
			logCleanup()
		}
	})

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/spanmark/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false,
		"write debug logs and traces (also SPANMARK_DEBUG)")
	rootCmd.PersistentFlags().String("store", "",
		"annotation store driver: sqlite or memory")
	rootCmd.Flags().StringVar(&objectsFile, "objects", "",
		"start from the object list in this JSON file instead of the stored one")
	rootCmd.Flags().Bool("no-watch", false,
		"do not reload the document when it changes on disk")

	_ = viper.BindPFlag("store.driver", rootCmd.PersistentFlags().Lookup("store"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("auto_reload", defaults.AutoReload)
	viper.SetDefault("store.driver", defaults.Store.Driver)
	viper.SetDefault("store.path", defaults.Store.Path)
	viper.SetDefault("ui.max_caption_width", defaults.UI.MaxCaptionWidth)
	viper.SetDefault("ui.show_help", defaults.UI.ShowHelp)
	viper.SetDefault("undefined.color", defaults.Undefined.Color)
	viper.SetDefault("undefined.caption", defaults.Undefined.Caption)
	viper.SetDefault("active_label", defaults.ActiveLabel)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .spanmark/config.yaml (current directory)
		// 2. ~/.config/spanmark/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "spanmark"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .spanmark/config.yaml
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if writeErr := config.WriteDefaultConfig(localConfigPath); writeErr == nil {
				viper.SetConfigFile(localConfigPath)
				_ = viper.ReadInConfig()
			}
		}
	}

	_ = viper.Unmarshal(&cfg)
	if len(cfg.Categories) == 0 && !viper.IsSet("categories") {
		cfg.Categories = defaults.Categories
	}
}

// configPath returns the file label and category changes are written to.
func configPath() string {
	if p := viper.ConfigFileUsed(); p != "" {
		return p
	}
	return localConfigPath
}

func initLogging(_ *cobra.Command, _ []string) error {
	if !debugFlag && os.Getenv("SPANMARK_DEBUG") == "" {
		return nil
	}
	logPath := os.Getenv("SPANMARK_LOG")
	if logPath == "" {
		logPath = "debug.log"
	}
	cleanup, err := log.Init(logPath)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	logCleanup = cleanup
	debugFlag = true
	log.Info(log.CatConfig, "spanmark starting", "version", version, "config", viper.ConfigFileUsed())
	return nil
}

func runApp(cmd *cobra.Command, args []string) error {
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	path, err := resolveDocument(args)
	if err != nil {
		return err
	}
	text, err := readDocument(path)
	if err != nil {
		return err
	}

	var objects []document.Span
	if objectsFile != "" {
		data, err := os.ReadFile(objectsFile) //nolint:gosec // G304: user-chosen objects file
		if err != nil {
			return fmt.Errorf("reading objects: %w", err)
		}
		if objects, err = presentation.ParseObjects(data); err != nil {
			return err
		}
	}

	repo, err := openRepository(cfg.Store)
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	noWatch, _ := cmd.Flags().GetBool("no-watch")
	loader := document.NewLoader(cachemanager.NewInMemoryCacheManager[string, []document.Token](
		"tokens", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval))

	model := newModel(app.Options{
		Services: mode.Services{
			Config:     &cfg,
			ConfigPath: configPath(),
			Repository: repo,
			Clock:      shared.RealClock{},
			Clipboard:  shared.SystemClipboard{},
			Background: labels.BackgroundFor(darkBackground),
		},
		Loader:  loader,
		Path:    path,
		Text:    text,
		Objects: objects,
		Watch:   cfg.AutoReload && !noWatch,
		Debug:   debugFlag,
	})
	p := tea.NewProgram(
		&model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()

	// Clean up watcher resources
	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
