package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "linksaver",
	Short: "Self-hosted bookmark service",
	Long: `LinkSaver stores bookmarks per user, enriches each one with its title,
icon and a short summary, and keeps them in a manual order.`,
	SilenceUsage: true,
}
