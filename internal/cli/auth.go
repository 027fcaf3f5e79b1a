package cli

import (
	"fmt"
	"time"

	"garageadmin/internal/console"
	"garageadmin/internal/logger"

	"github.com/spf13/cobra"
)

func loginCmd(a *app) *cobra.Command {
	var (
		email    string
		password string
		offline  bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Long: `Log in with an admin email and password. The token is written to the
session file and sent with every later command.

--offline checks the demo credentials locally and stores a placeholder token
that the API does not accept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" && email != "" {
				p, err := a.prompt(cmd, "Password: ")
				if err != nil {
					return err
				}
				password = p
			}

			var auth console.Authenticator = console.NewRemoteAuthenticator(a.client)
			if offline {
				auth = console.NewStaticAuthenticator()
			}

			sess, err := auth.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := a.store.Save(sess); err != nil {
				return fmt.Errorf("save session: %w", err)
			}

			logger.Info("session stored", "path", a.store.Path(), "offline", sess.Offline)
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", sess.Email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "admin email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "admin password (prompted when omitted)")
	cmd.Flags().BoolVar(&offline, "offline", false, "check the demo credentials locally without calling the API")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.store.Require()
			if err != nil {
				return err
			}

			mode := "api"
			if sess.Offline {
				mode = "offline"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s session since %s)\n",
				orDash(sess.Email), mode, sess.LoggedAt.Format(time.RFC3339))
			return nil
		},
	}
}
