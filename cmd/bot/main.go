package main

import (
	"log"

	"github.com/Jacobbrewer1/ticketeer/cmd/bot/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          config.AppName,
	Short:        "Discord support ticket bot",
	RunE:         runBot,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to Discord and serve the monitoring endpoints",
	RunE:  runBot,
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy the JSON documents from DATA_DIR into MongoDB",
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(importCmd)
}

func runBot(cmd *cobra.Command, _ []string) error {
	a, cleanup, err := InitializeApp(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	a.Info("Starting application")
	return a.Run()
}

func runImport(cmd *cobra.Command, _ []string) error {
	im, cleanup, err := InitializeImporter(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	return im.Run(cmd.Context())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalln(err)
	}
}
