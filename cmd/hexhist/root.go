package main

import (
	"github.com/Zaphoood/hexhist/lib/document"
	"github.com/Zaphoood/hexhist/src/config"
	"github.com/Zaphoood/hexhist/src/logging"
	"github.com/Zaphoood/hexhist/src/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type flags struct {
	configPath  string
	bytesPerRow int
	logFile     string
	logLevel    string
}

func newRootCommand(version string) *cobra.Command {
	var f flags
	rootCmd := &cobra.Command{
		Use:     "hexhist [FILE]",
		Short:   "Terminal hex editor with undo history",
		Version: version,
		Args:    cobra.MaximumNArgs(1),
		// Errors from running the editor are not usage errors
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return run(cfg, args)
		},
	}

	rootCmd.Flags().StringVarP(&f.configPath, "config", "c", "", "config file path (default $XDG_CONFIG_HOME/hexhist/config.yaml)")
	rootCmd.Flags().IntVar(&f.bytesPerRow, "bytes-per-row", 0, "number of bytes shown per row")
	rootCmd.Flags().StringVar(&f.logFile, "log-file", "", "write logs to this file")
	rootCmd.Flags().StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	return rootCmd
}

// loadConfig applies flags that were given on top of the loaded config
func loadConfig(cmd *cobra.Command, f flags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if cmd.Flags().Changed("bytes-per-row") {
		cfg.BytesPerRow = f.bytesPerRow
	}
	if cmd.Flags().Changed("log-file") {
		cfg.LogFile = f.logFile
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	return cfg, cfg.Validate()
}

func run(cfg config.Config, args []string) error {
	closer, err := logging.Setup(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	var file *document.File
	if len(args) == 1 {
		f := document.NewFile(args[0])
		if err := f.Load(); err != nil {
			return err
		}
		file = &f
	}

	log.Info().Int("bytes_per_row", cfg.BytesPerRow).Msg("Starting hexhist")
	p := tea.NewProgram(tui.NewMainModel(file, cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error().Err(err).Msg("Program failed")
		return err
	}
	return nil
}
