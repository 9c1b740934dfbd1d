// ABOUTME: Me command showing the authenticated profile
// ABOUTME: Logs in, fetches the profile, and prints it as text or JSON

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the authenticated user profile",
	Long:  `Authenticate and display the current user, role, workspace, and memberships.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runMe(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(meCmd)
}

// runMe executes the profile lookup and returns an exit code
func runMe(ctx context.Context, w io.Writer) int {
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

	me := mgr.Me()
	if me == nil {
		fmt.Fprintln(w, errorStyle.Render("Error:"), "profile unavailable")
		return 1
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(me, "", "  ")
		fmt.Fprintln(w, string(data))
		return 0
	}

	roles := make([]string, 0, len(me.Memberships))
	for _, m := range me.Memberships {
		roles = append(roles, fmt.Sprintf("%d:%s", m.WorkspaceID, m.Role))
	}

	fmt.Fprintln(w, labelStyle.Render("Email:      "), valueStyle.Render(me.User.Email))
	fmt.Fprintln(w, labelStyle.Render("Role:       "), valueStyle.Render(me.Role))
	fmt.Fprintln(w, labelStyle.Render("Workspace:  "), valueStyle.Render(fmt.Sprintf("%d", me.CurrentWorkspace.ID)))
	fmt.Fprintln(w, labelStyle.Render("Memberships:"), valueStyle.Render(strings.Join(roles, ", ")))
	return 0
}
