package main

import (
	"log/slog"

	"github.com/floofybot/floofy/internal/bot"
	"github.com/spf13/cobra"
)

var deployCmd = &cobra.Command{
	Use:   "deploy-commands",
	Short: "Register every slash command globally and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		b := bot.NewBot(cfg)
		b.LoadModules()

		if err := b.DeployCommands(); err != nil {
			return err
		}

		slog.Info("deployed commands")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deployCmd)
}
