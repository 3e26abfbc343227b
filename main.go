package main

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/fmuoria/hiring-agent/internal/config"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "hiring-agent",
	Short: "Hiring tracker dashboard backed by n8n agent workflows",
	Long: `Uploads hiring tracker CSV files to the n8n workflows whose keywords match
the file name, and renders their metrics, tables and recommendations.

Without a subcommand the desktop dashboard is started.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
	RunE: runGUI,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "configuration file (default: $HIRING_AGENT_CONFIG, ./config.yaml or the user config directory)")

	rootCmd.AddCommand(guiCmd, serveCmd, runCmd, matchCmd, generateCmd)
}

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("Failed to read .env file")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogger() {
	level := log.InfoLevel
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level = log.ParseLevel(v)
	}

	log.DefaultLogger = log.Logger{
		Level:      level,
		TimeFormat: "15:04:05",
		Writer: &log.ConsoleWriter{
			Writer:      os.Stderr,
			ColorOutput: log.IsTerminal(os.Stderr.Fd()),
		},
	}
}

// loadConfig resolves, loads and checks the configuration. Problems are
// logged as warnings; the returned config is always usable.
func loadConfig() (*config.Config, string) {
	path := configFile
	if path == "" {
		var err error
		if path, err = config.GetConfigPath(); err != nil {
			log.Warn().Err(err).Msg("Could not resolve config path")
		}
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Using empty configuration")
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Warn().Err(err).Msg("Ignoring invalid environment override")
	}
	if err := cfg.Validate(); err != nil {
		log.Warn().Err(err).Msg("Configuration has problems")
	}

	log.Info().
		Str("path", path).
		Str("base_url", cfg.N8N.BaseURL).
		Int("agents", cfg.N8N.Agents.Len()).
		Int("enabled", len(cfg.N8N.Agents.Enabled())).
		Msg("Configuration loaded")
	return cfg, path
}
