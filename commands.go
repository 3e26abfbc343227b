package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/fmuoria/hiring-agent/internal/agent"
	"github.com/fmuoria/hiring-agent/internal/api"
	"github.com/fmuoria/hiring-agent/internal/export"
	"github.com/fmuoria/hiring-agent/internal/gui"
	"github.com/fmuoria/hiring-agent/internal/ingestion"
	"github.com/fmuoria/hiring-agent/internal/render"
	"github.com/fmuoria/hiring-agent/internal/sample"
)

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Start the desktop dashboard",
	RunE:  runGUI,
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, path := loadConfig()
	gui.NewApp(cfg, path).Run()
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Serves the analyze, report and download endpoints. The port comes from --port or $PORT.`,
	RunE:  runServe,
}

var (
	servePort      string
	serveUploadDir string
)

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "listen port (default $PORT or 8080)")
	serveCmd.Flags().StringVar(&serveUploadDir, "uploads-dir", os.Getenv("UPLOADS_DIR"), "keep a copy of analyzed uploads here")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, _ := loadConfig()
	server := api.NewServer(agent.NewHiringAgent(cfg, nil))
	server.SetUploadDir(serveUploadDir)

	port := servePort
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", srv.Addr).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-sigChan:
		log.Info().Msg("Shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

var (
	runBaseURL     string
	runInsightsOut string
	runExcelOut    string
)

var runCmd = &cobra.Command{
	Use:   "run <file.csv|dir>...",
	Short: "Run CSV files through their agents and print the results",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyze,
}

func init() {
	runCmd.Flags().StringVar(&runBaseURL, "base-url", "", "n8n base URL for this run")
	runCmd.Flags().StringVar(&runInsightsOut, "insights", "", "write consolidated insights to this file")
	runCmd.Flags().StringVar(&runExcelOut, "excel", "", "export the run to this Excel workbook")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, _ := loadConfig()

	uploads, err := ingestion.LoadPaths(args)
	if err != nil {
		return err
	}
	if len(uploads) == 0 {
		return fmt.Errorf("no CSV files found in %s", strings.Join(args, ", "))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hiringAgent := agent.NewHiringAgent(cfg, nil)
	hiringAgent.SetProgressCallback(func(current, total int, message string) {
		log.Info().Int("current", current).Int("total", total).Msg(message)
	})

	report, runErr := hiringAgent.Process(ctx, uploads, agent.RunOptions{BaseURL: runBaseURL})
	if report == nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	for _, file := range report.Files {
		fmt.Fprintf(out, "\n### Results for %s\n", file.File)
		if len(file.Pairs) == 0 {
			fmt.Fprintln(out, "No agent matched this file")
		}
		group := ""
		for _, pair := range file.Pairs {
			if pair.Group != "" && pair.Group != group {
				group = pair.Group
				fmt.Fprintf(out, "\n# %s\n", group)
			}
			pair.View.Title = pair.Heading()
			if err := render.WriteText(out, pair.View); err != nil {
				return err
			}
		}
	}

	if len(report.Insights) > 0 {
		fmt.Fprintln(out, "\n### Consolidated Insights")
		if err := export.WriteInsightsText(out, report.Insights); err != nil {
			return err
		}
	}

	if runInsightsOut != "" {
		if err := export.SaveInsightsText(report.Insights, runInsightsOut); err != nil {
			return err
		}
		log.Info().Str("path", runInsightsOut).Msg("Insights saved")
	}
	if runExcelOut != "" {
		if err := export.ExportToExcel(report, runExcelOut); err != nil {
			return err
		}
		log.Info().Str("path", runExcelOut).Msg("Workbook saved")
	}
	return runErr
}

var matchCmd = &cobra.Command{
	Use:   "match <filename>...",
	Short: "Show which agents each filename would be sent to",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _ := loadConfig()
		agents := cfg.N8N.Agents.All()
		out := cmd.OutOrStdout()

		for _, name := range args {
			matched := agent.OrderByGroups(agent.Match(name, agents, cfg.DefaultAgent), cfg.N8N.Groups)
			fmt.Fprintf(out, "%s -> [%s]\n", name, strings.Join(matched, ", "))
			for _, e := range agent.Explain(name, agents) {
				if len(e.Hits) > 0 || e.NameMatch {
					fmt.Fprintf(out, "  %s: hits=%v name_match=%t enabled=%t\n", e.AgentID, e.Hits, e.NameMatch, e.Enabled)
				}
			}
		}
		return nil
	},
}

var (
	generateOut  string
	generateSeed uint64
)

var generateCmd = &cobra.Command{
	Use:   "generate-roles",
	Short: "Write a sample OpenRoles.csv",
	RunE: func(cmd *cobra.Command, args []string) error {
		roles := sample.GenerateOpenRoles(generateSeed, time.Now())

		f, err := os.Create(generateOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", generateOut, err)
		}
		if err := sample.WriteCSV(f, roles); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}

		s := sample.Summarize(roles)
		log.Info().
			Str("path", generateOut).
			Int("roles", s.Roles).
			Int("active", s.Active).
			Int("open_positions", s.OpenPositions).
			Int("target_headcount", s.TargetHeadcount).
			Float64("fill_rate", s.FillRate).
			Msg("Generated open roles")
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generateOut, "output", "o", sample.OpenRolesFileName, "output CSV path")
	generateCmd.Flags().Uint64Var(&generateSeed, "seed", 42, "random seed")
}
