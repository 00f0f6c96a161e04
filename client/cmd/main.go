package main

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"placegallery/backend/models"
	"placegallery/client/api"
	"placegallery/client/shell"
	"placegallery/client/ui"
	"placegallery/config"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		cfgPath string
		baseURL string
		token   string
		noLive  bool
	)

	cmd := &cobra.Command{
		Use:   "gallery",
		Short: "Browse and edit your place gallery in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if baseURL != "" {
				cfg.Client.BaseURL = baseURL
			}
			if token != "" {
				cfg.Client.Token = token
			}
			if cfg.Client.Token == "" {
				return errors.New("no API token: set client.token, GALLERY_TOKEN or --token")
			}
			return run(cmd.Context(), cfg.Client, !noLive)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "gallery.yaml", "path to the YAML config file")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "backend URL (overrides config)")
	cmd.Flags().StringVar(&token, "token", "", "API token (overrides config)")
	cmd.Flags().BoolVar(&noLive, "no-live", false, "do not subscribe to server events")
	return cmd
}

func run(ctx context.Context, cfg config.Client, live bool) error {
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer logFile.Close()

	log := logrus.New()
	log.SetOutput(logFile)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	client := api.New(cfg.BaseURL, cfg.Token)

	var events <-chan models.Event
	if live {
		events, err = client.Subscribe(ctx)
		if err != nil {
			log.WithError(err).Warn("realtime feed unavailable")
			events = nil
		}
	}

	sh := shell.New(client, shell.WithLogger(log), shell.WithContext(ctx))
	_, err = tea.NewProgram(ui.New(sh, events), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
