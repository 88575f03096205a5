package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/h0rv/ghgantt/internal/auth"
	"github.com/spf13/cobra"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored GitHub token",
	}
	cmd.AddCommand(newLoginCmd(), newLogoutCmd(), newStatusCmd())
	return cmd
}

func newLoginCmd() *cobra.Command {
	var (
		tokenFlag string
		noVerify  bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a GitHub token in the system keyring",
		Long: `Store a GitHub token in the system keyring.

Without --token the token is read from standard input, e.g.
  gh auth token | ghgantt auth login`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(false)
			if err != nil {
				return err
			}
			defer e.closeLog()

			token := strings.TrimSpace(tokenFlag)
			if token == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("no token given: pass --token or pipe it on stdin")
				}
				token = strings.TrimSpace(line)
			}
			if token == "" {
				return errors.New("token is empty")
			}

			var verifier auth.Verifier
			if !noVerify {
				verifier = e.graphQL()
			}

			ctx, cancel := signalContext()
			defer cancel()
			login, err := auth.VerifyAndLogin(ctx, e.cfg.Account, token, verifier)
			if err != nil {
				return err
			}
			if login != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", login)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Token stored without verification")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tokenFlag, "token", "", "GitHub token to store.")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Store the token without checking it against GitHub.")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored GitHub token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(false)
			if err != nil {
				return err
			}
			defer e.closeLog()

			if err := auth.Logout(e.cfg.Account); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which token source is active and who it belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(false)
			if err != nil {
				return err
			}
			defer e.closeLog()

			out := cmd.OutOrStdout()
			for _, p := range auth.DefaultProviders(e.cfg.Account) {
				token, err := p.GetToken()
				if err != nil || token == "" {
					fmt.Fprintf(out, "  %-8s no token\n", p.Name())
					continue
				}

				ctx, cancel := signalContext()
				login, err := e.graphQL().Viewer(ctx, auth.Credential(token))
				cancel()
				if err != nil {
					fmt.Fprintf(out, "* %-8s token present, verification failed: %v\n", p.Name(), err)
				} else {
					fmt.Fprintf(out, "* %-8s logged in as %s\n", p.Name(), login)
				}
				return nil
			}

			_, err = auth.Resolve(auth.DefaultProviders(e.cfg.Account)...)
			return err
		},
	}
}
