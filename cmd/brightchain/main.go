package main

import (
	"os"

	"github.com/spf13/cobra"

	"brightchain/cmd/cli"
)

func main() {
	rootCmd := &cobra.Command{Use: "brightchain"}
	cli.RegisterRoutes(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
