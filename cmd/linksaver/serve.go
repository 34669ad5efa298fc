package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linksaver/internal/app"
	"github.com/MrSnakeDoc/linksaver/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Runs the HTTP API. Configuration is read from LINKSAVER_* environment
variables and an optional .env file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := app.New(context.Background(), config.Load())
		if err != nil {
			return err
		}
		return a.Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
