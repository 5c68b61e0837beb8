package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/folio/internal/app"
	"github.com/zjrosen/folio/internal/cachemanager"
	"github.com/zjrosen/folio/internal/config"
	"github.com/zjrosen/folio/internal/log"
	"github.com/zjrosen/folio/internal/store"
	"github.com/zjrosen/folio/internal/store/sqlite"
	"github.com/zjrosen/folio/internal/tracing"
)

func init() {
	// Force lipgloss/termenv to query the terminal background color BEFORE
	// any Bubble Tea program starts, so the OSC response cannot race the
	// input loop.
	_ = lipgloss.HasDarkBackground()
}

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:     "folio",
	Short:   "A terminal desktop for reading documents side by side",
	Long:    `Folio hosts multiple document panes on one terminal canvas, with per-window paging, zoom, bookmarks, and a session that survives restarts.`,
	Version: version,
	RunE:    runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/folio/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "",
		"directory for the session database and logs")
	rootCmd.PersistentFlags().Bool("debug", false,
		"write debug-level entries to the log file")
	rootCmd.Flags().String("drop-dir", "",
		"directory watched for incoming documents")
	rootCmd.Flags().Bool("no-auto-open", false,
		"disable opening windows for dropped files")

	_ = viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("drop_dir", rootCmd.Flags().Lookup("drop-dir"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("data_dir", defaults.DataDir)
	viper.SetDefault("auto_open", defaults.AutoOpen)
	viper.SetDefault("auto_open_debounce", defaults.AutoOpenDebounce)
	viper.SetDefault("ui.show_status_bar", defaults.UI.ShowStatusBar)
	viper.SetDefault("ui.markdown_style", defaults.UI.MarkdownStyle)
	viper.SetDefault("ui.default_window_width", defaults.UI.DefaultWindowWidth)
	viper.SetDefault("ui.default_window_height", defaults.UI.DefaultWindowHeight)
	viper.SetDefault("theme.highlight", defaults.Theme.Highlight)
	viper.SetDefault("theme.subtle", defaults.Theme.Subtle)
	viper.SetDefault("theme.error", defaults.Theme.Error)
	viper.SetDefault("theme.success", defaults.Theme.Success)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .folio/config.yaml (current directory)
		// 2. ~/.config/folio/config.yaml (user config)
		if _, err := os.Stat(".folio/config.yaml"); err == nil {
			viper.SetConfigFile(".folio/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "folio"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			home, homeErr := os.UserHomeDir()
			if homeErr == nil {
				defaultPath := filepath.Join(home, ".config", "folio", "config.yaml")
				if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
					viper.SetConfigFile(defaultPath)
					_ = viper.ReadInConfig()
				}
			}
			// If the write fails, continue with defaults.
		}
	}

	_ = viper.Unmarshal(&cfg)
	if cfg.DataDir == "" {
		cfg.DataDir = config.DefaultDataDir()
	}
}

// openStore opens the SQLite store with the payload cache in front,
// falling back to memory when the database cannot be opened.
func openStore() store.Store {
	inner := sqlite.Open(cfg.DatabasePath())
	return store.NewCached(inner, cachemanager.New())
}

func runApp(cmd *cobra.Command, args []string) error {
	cleanup, err := log.Init(cfg.LogPath())
	if err == nil {
		defer cleanup()
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug || os.Getenv("FOLIO_DEBUG") != "" {
		log.SetMinLevel(log.LevelDebug)
	}

	provider, err := tracing.NewProvider(cfg.Tracing.Enabled, cfg.TraceFilePath())
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = provider.Shutdown(ctx)
		cancel()
	}()

	if noAutoOpen, _ := cmd.Flags().GetBool("no-auto-open"); noAutoOpen {
		cfg.AutoOpen = false
	}

	st := openStore()
	defer func() { _ = st.Close() }()

	model := app.New(cfg, st)
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err = p.Run()

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
