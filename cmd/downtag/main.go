package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"downtag/internal/api"
	"downtag/internal/config"
	"downtag/internal/engine"
	"downtag/internal/filename"
	"downtag/internal/logging"
	"downtag/internal/server"
	"downtag/internal/tags"
	"downtag/internal/version"
)

var (
	// Flags
	flagConfig     string
	flagDir        string
	flagExt        string
	flagDelay      string
	flagProxy      string
	flagDryRun     bool
	flagNoProgress bool
	flagDebug      bool
	flagPort       string

	// logFile mirrors log events as JSON when the config names a log file.
	logFile io.Writer
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "downtag",
		Short: "Tag downloaded audio files from their file names",
		Long: `downtag scans a directory for audio files named "ARTIST - TITLE", looks up
cover art on Last.fm and rewrites each file's tags.`,
		Version:       version.Short(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			dir, err := cfg.ResolveDir()
			if err != nil {
				return fmt.Errorf("failed to resolve directory: %w", err)
			}

			eng, err := setupEngine(cfg, log)
			if err != nil {
				return err
			}
			eng.DryRun = flagDryRun
			eng.Out = os.Stdout
			if !flagNoProgress {
				eng.Progress = os.Stderr
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if _, err := eng.Run(ctx, dir); err != nil {
				return fmt.Errorf("batch stopped: %w", err)
			}
			return nil
		},
	}

	// Custom version template
	rootCmd.SetVersionTemplate(fmt.Sprintf("%s\n", version.Full()))

	var parseCmd = &cobra.Command{
		Use:   "parse NAME...",
		Short: "Show how file names are parsed",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range args {
				switch r := filename.Parse(tags.TrimExt(name)).(type) {
				case filename.Parsed:
					fmt.Printf("%s\n", name)
					fmt.Printf("  Title:    %s\n", r.Title)
					fmt.Printf("  Artists:  %s\n", filename.Oxfordize(r.Artists()))
					if r.Remix != "" {
						fmt.Printf("  Remix:    %s\n", r.Remix)
					}
					if r.Featured != "" {
						fmt.Printf("  Featured: %s\n", r.Featured)
					}
				case filename.Unparsed:
					fmt.Printf("%s\n  (could not parse file name)\n", r.Name)
				}
			}
		},
	}

	var listCmd = &cobra.Command{
		Use:   "list",
		Short: "List eligible files and whether they are already tagged",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			dir, err := cfg.ResolveDir()
			if err != nil {
				return fmt.Errorf("failed to resolve directory: %w", err)
			}

			files, err := engine.Enumerate(afero.NewOsFs(), dir, cfg.Extension)
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", dir, err)
			}

			fmt.Printf("%d %s file(s) in %s\n", len(files), cfg.Extension, dir)
			for _, path := range files {
				s, err := tags.Inspect(path)
				if err != nil {
					log.Warn().Err(err).Str("file", filepath.Base(path)).Msg("could not read tags")
					fmt.Printf("  [?] %s\n", filepath.Base(path))
					continue
				}
				mark := " "
				if s.Comment == cfg.Comment {
					mark = "x"
				}
				fmt.Printf("  [%s] %s\n", mark, filepath.Base(path))
			}
			return nil
		},
	}

	var serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			dir, err := cfg.ResolveDir()
			if err != nil {
				return fmt.Errorf("failed to resolve directory: %w", err)
			}

			eng, err := setupEngine(cfg, log)
			if err != nil {
				return err
			}

			log.Info().Str("dir", dir).Msgf("Starting Server on port %s...", flagPort)
			return server.Start(eng, dir, flagPort)
		},
	}
	serveCmd.Flags().StringVarP(&flagPort, "port", "P", "8080", "Server port")

	// Root-only flags
	rootCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Parse and report without lookups or writes")
	rootCmd.Flags().BoolVar(&flagNoProgress, "no-progress", false, "Disable the progress bar")

	// Global Flags
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", config.DefaultFile, "Config file (JSON)")
	rootCmd.PersistentFlags().StringVarP(&flagDir, "dir", "d", "", "Directory to scan (default: the executable's directory)")
	rootCmd.PersistentFlags().StringVarP(&flagExt, "ext", "e", "", "File extension to tag (default: .opus)")
	rootCmd.PersistentFlags().StringVar(&flagDelay, "delay", "", "Wait after each tagged file, e.g. 250ms")
	rootCmd.PersistentFlags().StringVar(&flagProxy, "proxy", "", "Proxy URL (http/https/socks5), overrides DOWNTAG_PROXY")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the config, applies flag overrides and builds the logger.
// Priority: Flag > Env > Config file > Defaults
func setup() (*config.Config, zerolog.Logger, error) {
	log := logging.New(os.Stderr, logging.Level(flagDebug))

	cfg, err := config.LoadConfig(flagConfig)
	if err != nil {
		return nil, log, fmt.Errorf("failed to load config: %w", err)
	}

	if flagDir != "" {
		cfg.Dir = flagDir
	}
	if flagExt != "" {
		cfg.Extension = flagExt
	}
	if flagProxy != "" {
		cfg.Proxy = flagProxy
	}
	if flagDelay != "" {
		if err := cfg.Delay.Set(flagDelay); err != nil {
			return nil, log, fmt.Errorf("invalid --delay: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, log, err
	}

	if cfg.LogFile != "" {
		logFile = logging.File(cfg.LogFile)
		log = logging.New(os.Stderr, logging.Level(flagDebug), logFile)
	}

	if !tags.Supported(cfg.Extension) {
		log.Warn().Str("ext", cfg.Extension).Strs("supported", tags.Extensions()).Msg("no tag backend for this extension, every file will fail")
	}

	return cfg, log, nil
}

// setupEngine builds the track-info client and the engine from cfg.
func setupEngine(cfg *config.Config, log zerolog.Logger) (*engine.Engine, error) {
	if cfg.APIKey == "" {
		log.Warn().Msg("LASTFM_API_KEY is not set, track info lookups will fail and files get no artwork")
	}

	client := api.NewClient(cfg.APIKey)
	client.BaseURL = cfg.BaseURL
	client.ImageIndex = cfg.ImageIndex
	client.SetUserAgent(cfg.UserAgent)
	client.SetTimeout(cfg.Timeout.Duration)
	if err := client.SetProxy(cfg.Proxy); err != nil {
		return nil, fmt.Errorf("failed to set proxy: %w", err)
	}

	eng := engine.New(client, log)
	eng.Tagger = engine.NewTagger(cfg.Comment)
	eng.Ext = cfg.Extension
	eng.SetDelay(cfg.Delay.Duration)
	if logFile != nil {
		eng.NewLogger = func(w io.Writer) zerolog.Logger {
			return logging.New(w, logging.Level(flagDebug), logFile)
		}
	}
	return eng, nil
}
