// Command plexus inspects and reconciles community DAG chains: it
// replays block logs into a chain view, prints frontier summaries, and
// computes frontier diffs against remote peers.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/noodlenet/plexus/internal/config"
	"github.com/noodlenet/plexus/internal/debug"
)

var rootCmd = &cobra.Command{
	Use:   "plexus",
	Short: "Inspect and reconcile community DAG chains",
	Long: `plexus replays signed-block logs into a per-community DAG chain view
and answers frontier queries against it.

A chain view tracks every block version per height, forward links,
holes (heights referenced but not yet stored), structural
inconsistencies, and the current terminal (tip) set. Frontier summaries
and diffs use a deterministic wire encoding, so two peers can compare
them byte for byte.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		// Changed flags override config file and environment.
		cmd.Flags().Visit(func(f *pflag.Flag) {
			config.Set(f.Name, f.Value.String())
		})
		level := config.GetString("log-level")
		if config.GetBool("verbose") {
			level = "debug"
		}
		debug.Init(debug.Options{
			LogFile: config.GetString("log-file"),
			Level:   level,
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("personal", false, "follow personal (previous) links instead of community links")
	rootCmd.PersistentFlags().Int("cache-size", 0, "terminal cache capacity (default 100000)")
	rootCmd.PersistentFlags().String("log-file", "", "write logs to a size-rotated file instead of stderr")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("json", false, "machine-readable output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "plexus: %v\n", err)
		os.Exit(1)
	}
}
