// Package servecmder provides the serve command that runs the read-only
// papers API.
package servecmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/quizpaper/api"
	"github.com/papercomputeco/quizpaper/cmd/quizpaper/storeopen"
	"github.com/papercomputeco/quizpaper/pkg/cliui"
	"github.com/papercomputeco/quizpaper/pkg/config"
	"github.com/papercomputeco/quizpaper/pkg/logger"
	"github.com/papercomputeco/quizpaper/pkg/storage"
)

type serveCommander struct {
	configDir string
	debug     bool
	cfg       *config.Config
	logger    *slog.Logger

	// flag targets, read back through viper
	listen      string
	driver      string
	sqlitePath  string
	postgresDSN string
}

var flagKeys = append([]string{config.FlagAPIListen}, config.StorageFlags...)

const serveLongDesc string = `Run the quizpaper API server.

Serves stored papers over HTTP so they can be shared on the local network:

  GET /ping                    Health check
  GET /v1/papers               List papers (?tag=travel&limit=10)
  GET /v1/papers/:id           Get a paper as JSON
  GET /v1/papers/:id/preview   Get the plain text preview of a paper

Examples:
  quizpaper serve
  quizpaper serve --listen :9000 --sqlite ./papers.db`

const serveShortDesc string = "Run the quizpaper API server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, flagKeys)
			cmder.cfg = config.FromViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Absent when the command runs without the root command.
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageDriver, &cmder.driver)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgresDSN, &cmder.postgresDSN)

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	c.logger = newLogger(os.Stderr, c.debug)

	var driver storage.Driver
	err := cliui.Step(os.Stderr, "Opening paper store", func() error {
		var err error
		driver, err = storeopen.Open(ctx, c.cfg.Storage, c.configDir, c.logger)
		return err
	})
	if err != nil {
		return err
	}
	defer driver.Close()

	server := api.NewServer(api.Config{ListenAddr: c.cfg.API.Listen}, driver, c.logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		c.logger.Info("shutting down API server")
		if err := server.Shutdown(); err != nil {
			return fmt.Errorf("shutting down API server: %w", err)
		}
		return nil
	}
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	return logger.New(logger.WithDebug(debug), logger.WithPretty(true), logger.WithWriter(w), logger.WithComponent("serve"))
}
