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

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"placegallery/backend/filestore"
	"placegallery/backend/handlers"
	"placegallery/backend/models"
	"placegallery/backend/router"
	"placegallery/backend/ws"
	"placegallery/config"
	"placegallery/database"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var cfgPath string
	var addr string

	root := &cobra.Command{
		Use:           "gallery-server",
		Short:         "Serve the place gallery API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cfgPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if err := serve(cmd.Context(), cfg, log); err != nil {
				log.WithError(err).Error("server stopped")
				return err
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "gallery.yaml", "path to the YAML config file")
	root.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	root.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Create the owner account and sample places in an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cfgPath)
			if err != nil {
				return err
			}
			db, err := models.InitDB(cfg.Server.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			token, err := database.Seed(cmd.Context(), models.NewStore(db), bcrypt.DefaultCost, log)
			if err != nil {
				return err
			}
			if token == "" {
				log.Info("database already seeded")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	})
	return root
}

func setup(cfgPath string) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	log := logrus.New()
	if strings.EqualFold(cfg.Server.LogFormat, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	log.SetLevel(level)
	return cfg, log, nil
}

func newFileStore(ctx context.Context, cfg config.Server) (filestore.Store, string, error) {
	if cfg.Minio.Endpoint == "" {
		fs, err := filestore.NewLocal(cfg.UploadDir, strings.TrimRight(cfg.PublicURL, "/")+"/uploads")
		return fs, cfg.UploadDir, err
	}

	client, err := minio.New(cfg.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Minio.KeyID, cfg.Minio.SecretKey, ""),
		Secure: cfg.Minio.Secure,
	})
	if err != nil {
		return nil, "", err
	}
	fs, err := filestore.OpenMinio(ctx, client, cfg.Minio.Bucket)
	if err != nil {
		return nil, "", err
	}
	return fs, "", nil
}

func serve(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := models.InitDB(cfg.Server.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	log.WithField("path", cfg.Server.DBPath).Info("database connected and schema applied")

	store := models.NewStore(db)
	token, err := database.Seed(ctx, store, bcrypt.DefaultCost, log)
	if err != nil {
		log.WithError(err).Warn("seeding failed")
	}
	if token != "" {
		log.WithField("token", token).Warn("new owner token; it is shown only once")
	}

	files, uploadDir, err := newFileStore(ctx, cfg.Server)
	if err != nil {
		return err
	}

	hub := ws.NewHub(log)
	go hub.Run()
	defer hub.Stop()

	handlers.SetStore(store)
	handlers.SetFileStore(files)
	handlers.SetLogger(log)
	handlers.SetHub(hub)
	go handlers.StartTokenCleanup(ctx)

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: router.New(router.Options{
			Context:   ctx,
			Log:       log,
			UploadDir: uploadDir,
			RateLimit: cfg.Server.RateLimit,
			RateBurst: cfg.Server.RateBurst,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Server started on %s", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
