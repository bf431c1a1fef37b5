package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/searchktools/fastweb/app"
	"github.com/searchktools/fastweb/config"
	"github.com/searchktools/fastweb/logging"
)

// Set with -ldflags "-X main.version=..."
var version = "dev"

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "fastweb",
		Short: "fastweb - minimal one-request-per-connection HTTP server",
		Long: `fastweb accepts TCP connections, dispatches each one to a bounded worker
pool, matches the request against a route table and writes one response
before closing the connection.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("fastweb version {{.Version}}\n")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (yaml, json or toml)")
	config.RegisterFlags(root.PersistentFlags())

	load := func(cmd *cobra.Command) (*config.Config, error) {
		return config.Load(configPath, cmd.Flags())
	}

	root.AddCommand(
		newServeCmd(load),
		newRoutesCmd(load),
		newVersionCmd(),
	)
	return root
}

type loader func(cmd *cobra.Command) (*config.Config, error)

func newServeCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the server with the demo routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}

			logger, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			a, err := build(cfg, logger)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}
}

func newRoutesCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the route table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}

			a, err := build(cfg, zap.NewNop())
			if err != nil {
				return err
			}
			if err := a.Engine().Err(); err != nil {
				return err
			}
			return printRoutes(cmd.OutOrStdout(), a)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fastweb version %s\n", version)
		},
	}
}

func build(cfg *config.Config, logger *zap.Logger) (*app.App, error) {
	a, err := app.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	registerRoutes(a.Engine())
	return a, nil
}

func printRoutes(w io.Writer, a *app.App) error {
	for _, route := range a.Engine().Routes() {
		if _, err := fmt.Fprintf(w, "%-7s %s\n", route.Method, route.Pattern); err != nil {
			return err
		}
	}
	return nil
}
