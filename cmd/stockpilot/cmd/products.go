// ABOUTME: Products command listing the catalog through the SDK
// ABOUTME: Exercises the authenticated retry path end to end from the CLI

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stockpilot/stockpilot-go/inventory"
)

var (
	productsPage  int
	productsLimit int
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List products in the current workspace",
	Long:  `Authenticate and list catalog products with their aggregated stock.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runProducts(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	productsCmd.Flags().IntVar(&productsPage, "page", 1, "Page number")
	productsCmd.Flags().IntVar(&productsLimit, "limit", 10, "Items per page")
	rootCmd.AddCommand(productsCmd)
}

// runProducts executes the product listing and returns an exit code
func runProducts(ctx context.Context, w io.Writer) int {
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

	mgr, c, err := newSession(ctx, cfg)
	if err != nil {
		fmt.Fprintln(w, errorStyle.Render("Error:"), err)
		return 2
	}

	if err := mgr.Login(ctx, email, password); err != nil {
		fmt.Fprintln(w, errorStyle.Render("Error:"), err)
		return 1
	}

	list, err := inventory.New(c).ListProducts(ctx, productsPage, productsLimit)
	if err != nil {
		fmt.Fprintln(w, errorStyle.Render("Error:"), err)
		return 1
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(list, "", "  ")
		fmt.Fprintln(w, string(data))
		return 0
	}

	fmt.Fprintln(w, labelStyle.Render(fmt.Sprintf("Page %d/%d (%d total)",
		list.Pagination.Page, list.Pagination.TotalPages, list.Pagination.Total)))
	for _, p := range list.Data {
		fmt.Fprintf(w, "%s  %s  %s\n",
			valueStyle.Render(fmt.Sprintf("%-8d", p.ID)),
			valueStyle.Render(fmt.Sprintf("%-30s", p.Name)),
			labelStyle.Render(fmt.Sprintf("stock %d", p.Stock)))
	}
	return 0
}
