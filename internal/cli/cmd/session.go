package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/buytown/admin-console/internal/app"
	"github.com/buytown/admin-console/internal/auth"
)

var (
	loginIdentity string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in as a BuyTown administrator",
	Long:  "Exchange administrator credentials for a session token. The password falls back to BUYTOWN_PASSWORD.",
	RunE: func(cmd *cobra.Command, args []string) error {
		password := loginPassword
		if password == "" {
			password = os.Getenv("BUYTOWN_PASSWORD")
		}
		return openApp(cmd.Context(), func(a *app.App) error {
			err := a.Sessions.Login(cmd.Context(), loginIdentity, password)
			result := auth.ResultOf(err)
			if !result.Success {
				return errors.New(result.Error)
			}
			printWhoami(cmd.OutOrStdout(), a.Sessions.State())
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return openApp(cmd.Context(), func(a *app.App) error {
			a.Sessions.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return openApp(cmd.Context(), func(a *app.App) error {
			printWhoami(cmd.OutOrStdout(), a.Sessions.State())
			return nil
		})
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Show which credential requests are sent with",
	RunE: func(cmd *cobra.Command, args []string) error {
		return openApp(cmd.Context(), func(a *app.App) error {
			printToken(cmd.OutOrStdout(), a.Sessions.State())
			return nil
		})
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginIdentity, "identity", "u", "", "administrator email or username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "administrator password")
	_ = loginCmd.MarkFlagRequired("identity")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, tokenCmd)
}

func printWhoami(w io.Writer, s auth.State) {
	if !s.IsAuthenticated {
		fmt.Fprintln(w, "Not logged in.")
		return
	}
	id, role := auth.UnknownUserID, "-"
	if s.User != nil {
		id = s.User.ID
		if s.User.RoleID != "" {
			role = s.User.RoleID
		}
	}
	fmt.Fprintf(w, "Logged in as user %s (role %s)\n", id, role)
}

func printToken(w io.Writer, s auth.State) {
	switch {
	case s.IsAuthenticated:
		fmt.Fprintln(w, "Requests use the administrator session token.")
	case s.ServiceToken != nil:
		fmt.Fprintln(w, "Requests use the service token.")
	default:
		fmt.Fprintln(w, "No credential available.")
	}
	if s.ServiceToken != nil {
		fmt.Fprintf(w, "Service token expires at %s\n", s.ServiceToken.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
	}
}
