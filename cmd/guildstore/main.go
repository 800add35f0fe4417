package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"guildstore/internal/di"
	"guildstore/internal/structures"
)

var (
	// Global flags
	flags structures.CliFlags

	confirmReset bool
)

var rootCmd = &cobra.Command{
	Use:   "guildstore",
	Short: "Persistent store for guild reward campaigns",
	Long: `guildstore keeps social campaigns, app installations and campaigns per
guild in a single versioned document and serves them over HTTP.

Run without a subcommand to start the server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all stored demo data",
	RunE:  runReset,
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the stored document as JSON",
	RunE:  runDump,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "config.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&flags.DebugMode, "debug", "d", false, "enable debug logging to stdout")
	resetCmd.Flags().BoolVar(&confirmReset, "yes", false, "confirm the reset")

	rootCmd.AddCommand(serveCmd, resetCmd, dumpCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	app, cleanup, err := di.InitApp(&flags)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer cleanup()
	return app.Run()
}

func runReset(cmd *cobra.Command, args []string) error {
	if !confirmReset {
		return errors.New("refusing to reset without --yes")
	}
	admin, cleanup, err := di.InitAdmin(&flags)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer admin.Close()
	defer cleanup()

	if err := admin.Store.Reset(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "store reset")
	return nil
}

func runDump(cmd *cobra.Command, args []string) error {
	admin, cleanup, err := di.InitAdmin(&flags)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer admin.Close()
	defer cleanup()

	doc, err := admin.Store.Export()
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

func main() {
	log.SetFlags(0)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
