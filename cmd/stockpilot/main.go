// ABOUTME: Entry point for the stockpilot CLI
// ABOUTME: Command-line tool for exercising the Stockpilot API client

package main

import (
	"fmt"
	"os"

	"github.com/stockpilot/stockpilot-go/cmd/stockpilot/cmd"
	"github.com/stockpilot/stockpilot-go/logger"
)

func main() {
	logger.Init()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
