package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-contacts-cache/internal/config"
	"github.com/goliatone/go-contacts-cache/internal/httpapi"
	"github.com/goliatone/go-contacts-cache/internal/logging"
	"github.com/goliatone/go-contacts-cache/internal/store"
	"github.com/goliatone/go-contacts-cache/pkg/di"
)

// NewApp builds the contacts-api command tree.
func NewApp() *cli.Command {
	return &cli.Command{
		Name:  "contacts-api",
		Usage: "Categories and contacts API with a cache-aside layer",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file",
				Sources: cli.EnvVars(config.EnvPrefix + "CONFIG"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
		},
	}
}

func loadConfig(cmd *cli.Command) (config.Config, *log.Logger, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.Init(cfg.Log)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address, overrides server.addr"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr := cmd.String("addr"); addr != "" {
				cfg.Server.Addr = addr
			}

			container, err := di.NewContainer(ctx, cfg, di.WithLogger(logger))
			if err != nil {
				return err
			}
			defer container.Close()

			router := httpapi.NewRouter(httpapi.Config{
				Categories: container.Categories(),
				Contacts:   container.Contacts(),
				Logger:     logger,
				Gatherer:   container.Registry(),
				Health:     container.Health,
			})

			return serve(ctx, cfg.Server, router, logger)
		},
	}
}

// serve runs srv until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, cfg config.ServerConfig, handler http.Handler, logger log.Interface) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.Addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "manage the database schema",
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply pending migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runMigration(ctx, cmd, "up")
				},
			},
			{
				Name:  "down",
				Usage: "roll back the last migration",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runMigration(ctx, cmd, "down")
				},
			},
		},
	}
}

func runMigration(ctx context.Context, cmd *cli.Command, direction string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if cfg.DB.Driver == store.DriverSQLite {
		if direction == "down" {
			return errors.New("migrate down requires the postgres driver")
		}
		db, err := store.Open(ctx, cfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()
		return store.CreateSchema(ctx, db)
	}

	m, err := store.NewMigrator(cfg.DB.DSN, logger)
	if err != nil {
		return err
	}
	defer m.Close()

	if direction == "down" {
		return m.Down()
	}
	return m.Up()
}
