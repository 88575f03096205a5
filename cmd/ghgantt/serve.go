package main

import (
	"errors"

	"github.com/h0rv/ghgantt/internal/auth"
	"github.com/h0rv/ghgantt/internal/logging"
	"github.com/h0rv/ghgantt/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		addrFlag    string
		releaseFlag bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve timelines over HTTP",
		Long: `Start an HTTP server exposing:

  GET /healthz
  GET /api/repos/{owner}/{repository}/timeline?format=json|csv|png

Requests may carry "Authorization: Bearer <token>"; otherwise the locally
resolved token is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(false)
			if err != nil {
				return err
			}
			defer e.closeLog()

			if addrFlag != "" {
				e.cfg.Server.Addr = addrFlag
			}

			cred, err := auth.Resolve(auth.DefaultProviders(e.cfg.Account)...)
			if err != nil {
				if !errors.Is(err, auth.ErrNoToken) {
					return err
				}
				e.log.Warn().Msg("no default token; requests must send their own")
			}

			log := logging.Component(e.log, "http")
			router := server.NewRouter(server.Config{
				DefaultCredential: cred,
				Release:           releaseFlag,
			}, log, e.builder())

			ctx, cancel := signalContext()
			defer cancel()

			return server.Serve(ctx, e.cfg.Server.Addr, router, log)
		},
	}

	cmd.Flags().StringVar(&addrFlag, "addr", "", "Listen address. Overrides the config file.")
	cmd.Flags().BoolVar(&releaseFlag, "release", false, "Run gin in release mode.")

	return cmd
}
