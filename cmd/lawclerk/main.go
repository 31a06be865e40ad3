package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"lawclerk/internal/app"
	"lawclerk/internal/paginate"
	"lawclerk/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

var (
	flagConfig  string
	flagBaseURL string
	draftType   string
	draftOut    string
	draftRemote bool
)

func loadApplication() (*app.Application, error) {
	path := flagConfig
	if path == "" {
		path = app.DefaultConfigPath()
	}
	cfg, err := app.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}
	return app.NewApplication(cfg), nil
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()
	return ctx, cancel
}

func main() {
	root := &cobra.Command{
		Use:     "lawclerk",
		Short:   "Terminal client for the legal research backend",
		Long:    "lawclerk is an interactive terminal client for agentic legal research: clarifying dialogue, case search, document analysis and draft export.\n\nRun without arguments for the interactive session.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApplication()
			if err != nil {
				return err
			}
			defer application.Close()

			ctx, cancel := signalContext()
			defer cancel()
			application.Engine.Bootstrap(ctx)

			p := tea.NewProgram(tui.NewMainModel(application), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return err
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	root.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "backend base URL (overrides config)")

	draftCmd := &cobra.Command{
		Use:   "draft",
		Short: "Draft a legal document without the TUI",
		Long:  "Fetch a draft for the saved research session and write it as a PDF.\n\nExamples:\n  - lawclerk draft --type memo --out memo.pdf\n  - lawclerk draft --type complaint --remote",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApplication()
			if err != nil {
				return err
			}
			defer application.Close()

			ctx, cancel := signalContext()
			defer cancel()
			application.Engine.Bootstrap(ctx)

			if draftRemote {
				dl, err := application.Engine.RequestDraftDownload(ctx, draftType)
				if err != nil {
					return err
				}
				out := draftOut
				if out == "" {
					out = filepath.Join(application.Config.DownloadDir, dl.Filename)
				}
				if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
					return err
				}
				if err := os.WriteFile(out, dl.Data, 0o644); err != nil {
					return err
				}
				fmt.Println("saved", out)
				return nil
			}

			document, err := application.Engine.RequestDraft(ctx, draftType)
			if err != nil {
				return err
			}
			out := draftOut
			if out == "" {
				out = draftType + ".pdf"
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := paginate.WritePDF(document, paginate.A4(), f); err != nil {
				return err
			}
			fmt.Println("saved", out)
			return nil
		},
	}
	draftCmd.Flags().StringVar(&draftType, "type", "memo", "document type: memo|motion|complaint")
	draftCmd.Flags().StringVar(&draftOut, "out", "", "output path (defaults next to cwd, or download dir with --remote)")
	draftCmd.Flags().BoolVar(&draftRemote, "remote", false, "download the backend-rendered PDF instead of rendering locally")
	root.AddCommand(draftCmd)

	uploadCmd := &cobra.Command{
		Use:   "upload <file.pdf>",
		Short: "Upload a PDF for extraction and analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApplication()
			if err != nil {
				return err
			}
			defer application.Close()

			ctx, cancel := signalContext()
			defer cancel()

			resp, err := application.Engine.UploadDocument(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("uploaded %s (session %s)\n", resp.Filename, resp.ContextID)
			if resp.Analysis != nil && !resp.Analysis.Empty() {
				fmt.Printf("extracted %d facts, %d parties, %d issues\n",
					len(resp.Analysis.Facts), len(resp.Analysis.Parties), len(resp.Analysis.LegalIssues))
			}
			return nil
		},
	}
	root.AddCommand(uploadCmd)

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget the saved research session for the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := flagConfig
			if path == "" {
				path = app.DefaultConfigPath()
			}
			cfg, err := app.LoadConfig(path)
			if err != nil {
				return err
			}
			if flagBaseURL != "" {
				cfg.BaseURL = flagBaseURL
			}
			store := app.NewSessionStore("")
			if err := store.ClearContextID(cfg.BaseURL); err != nil {
				return err
			}
			fmt.Println("session cleared")
			return nil
		},
	}
	root.AddCommand(resetCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
