// ABOUTME: Login command verifying credentials against the backend
// ABOUTME: Prompts for missing credentials and reports the authenticated identity

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/stockpilot/stockpilot-go/config"
	"github.com/stockpilot/stockpilot-go/session"
)

var loginEmail string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verify credentials against the Stockpilot backend",
	Long:  `Authenticate with email and password and report the resulting identity and workspace.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runLogin(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Login email (overrides STOCKPILOT_EMAIL)")
	rootCmd.AddCommand(loginCmd)
}

// resolveCredentials picks credentials from flags and environment, then
// prompts interactively for whatever is still missing.
func resolveCredentials(cfg *config.Config) (string, string, error) {
	email := loginEmail
	if email == "" {
		email = cfg.Email
	}
	password := cfg.Password

	var fields []huh.Field
	if email == "" {
		fields = append(fields, huh.NewInput().Title("Email").Value(&email))
	}
	if password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&password))
	}

	if len(fields) > 0 {
		form := huh.NewForm(huh.NewGroup(fields...))
		if err := form.Run(); err != nil {
			return "", "", fmt.Errorf("prompt aborted: %w", err)
		}
	}

	if email == "" || password == "" {
		return "", "", fmt.Errorf("email and password are required")
	}
	return email, password, nil
}

// runLogin executes the login flow and returns an exit code
func runLogin(ctx context.Context, w io.Writer) int {
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
		if errors.Is(err, session.ErrInvalidCredentials) {
			fmt.Fprintln(w, errorStyle.Render("Login failed:"), "invalid email or password")
			return 1
		}
		fmt.Fprintln(w, errorStyle.Render("Error:"), err)
		return 2
	}

	fmt.Fprintln(w, successStyle.Render("Login OK"))
	if me := mgr.Me(); me != nil {
		fmt.Fprintln(w, labelStyle.Render("User:     "), valueStyle.Render(me.User.Email))
		fmt.Fprintln(w, labelStyle.Render("Role:     "), valueStyle.Render(me.Role))
		fmt.Fprintln(w, labelStyle.Render("Workspace:"), valueStyle.Render(fmt.Sprintf("%d", me.CurrentWorkspace.ID)))
	}
	return 0
}
