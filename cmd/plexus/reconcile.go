package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/noodlenet/plexus/internal/wire"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <blocks.jsonl> <frontier.bin>",
	Short: "Diff a local chain against a remote frontier",
	Long: `Replay a local block log, then reconcile against a remote peer's
frontier file (raw wire bytes, as produced by "frontier --wire --out").

The diff lists the height ranges the remote holds that we lack, and
the block references in conflict. Both peers are expected to reconcile
independently; no reverse diff is produced.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := replayBlocks(args[0])
		if err != nil {
			return err
		}
		raw, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("reading remote frontier: %w", err)
		}
		remote, err := wire.FrontierFromBytes(raw)
		if err != nil {
			return err
		}
		diff, err := c.Reconcile(remote)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(diff)
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}
