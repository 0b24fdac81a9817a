// Package cli wires the warehouse loader and the CSV validator into a cobra
// command tree. Commands resolve their configuration from defaults, an
// optional JSON config file, and FLEXIWH_* environment variables; a .env file
// in the working directory is loaded before anything else so DSNs can stay
// out of the shell history.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "flexiwh",
	Short: "Star-schema warehouse loader for freelance earnings data",
	Long: `flexiwh loads cleaned CSV exports into a star-schema warehouse
(five dimension tables and one fact table) and verifies referential
integrity after every load. The validate subcommand checks the CSV files
themselves, without touching any store.`,
	SilenceUsage: true,
}

// Execute runs the root command. A .env file, when present, is loaded first.
func Execute() error {
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to JSON config file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

// newLogger builds the console logger shared by all commands.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level}))
}
