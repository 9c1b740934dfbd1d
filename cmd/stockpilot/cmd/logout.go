// ABOUTME: Logout command invalidating the server-held refresh token
// ABOUTME: Authenticates, then runs the full logout teardown as a round-trip check

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log in and immediately revoke the session",
	Long:  `Authenticate, then invalidate the refresh token server-side. Useful to verify the full session round trip.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runLogout(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

// runLogout executes the login+logout round trip and returns an exit code
func runLogout(ctx context.Context, w io.Writer) int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(w, errorStyle.Render("Error:"), err)
		return 2
	}

	email, password, err := resolveCredentials(cfg)
	if err != nil {
		fmt.Fprintln(w, errorStyle.Render("Error:"), err)
		return 2
	}

	mgr, _, err := newSession(ctx, cfg)
	if err != nil {
		fmt.Fprintln(w, errorStyle.Render("Error:"), err)
		return 2
	}

	if err := mgr.Login(ctx, email, password); err != nil {
		fmt.Fprintln(w, errorStyle.Render("Error:"), err)
		return 1
	}

	mgr.Logout(ctx)

	if mgr.AccessToken() != "" {
		fmt.Fprintln(w, errorStyle.Render("Error:"), "session not cleared")
		return 1
	}

	fmt.Fprintln(w, successStyle.Render("Session revoked"))
	return 0
}
