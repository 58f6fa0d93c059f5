package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	cfgpkg "github.com/KaramelBytes/molscope-cli/internal/config"
	"github.com/KaramelBytes/molscope-cli/internal/runs"
	"github.com/KaramelBytes/molscope-cli/internal/service"
	"github.com/KaramelBytes/molscope-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile            string
	debug              bool
	flagAPIURL         string
	flagHTTPTimeoutSec int

	// Loaded configuration
	cfg *cfgpkg.Global

	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
)

// errReported wraps failures that were already shown to the user.
var errReported = errors.New("already reported")

var rootCmd = &cobra.Command{
	Use:   "molscope",
	Short: "MolScope CLI: explore skin-sensitization predictions from the terminal",
	Long: `MolScope submits molecules to a property-prediction service, then lets you search,
sort, page and export the results, and launch counterfactual or chemical-space
requests for selected molecules.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "✗ Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.molscope/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "prediction API base URL (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds, 0 waits forever (overrides config)")
}

func loadConfig() {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("api-url") && flagAPIURL != "" {
		cfg.APIURL = flagAPIURL
	}
	if f.Changed("http-timeout") && flagHTTPTimeoutSec >= 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	logger.Debug("config loaded", "api_url", cfg.APIURL, "runs_dir", cfg.RunsDir, "http_timeout_sec", cfg.HTTPTimeoutSec)
}

// requireConfig returns the loaded configuration or the reason it is missing.
func requireConfig() (*cfgpkg.Global, error) {
	if cfg == nil {
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	return cfg, nil
}

func newClient() (*service.Client, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, err
	}
	return service.NewClient(c.APIURL, time.Duration(c.HTTPTimeoutSec)*time.Second, service.WithLogger(logger)), nil
}

func openStore() (*runs.Store, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, err
	}
	dir, err := utils.ExpandHome(c.RunsDir)
	if err != nil {
		return nil, err
	}
	return runs.Open(dir)
}

// defaultModel resolves the model for a command: flag, then config, then the
// built-in default.
func defaultModel(flag string) (service.ModelChoice, error) {
	if flag != "" {
		return service.ParseModelChoice(flag)
	}
	if cfg != nil && cfg.DefaultModel != "" {
		return service.ParseModelChoice(cfg.DefaultModel)
	}
	return service.DefaultModel, nil
}

// runRef returns the optional run argument, "" meaning the latest run.
func runRef(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
