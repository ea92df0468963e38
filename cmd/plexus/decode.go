package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/noodlenet/plexus/internal/wire"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <message.bin>",
	Short: "Decode a frontier or diff wire message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading message: %w", err)
		}

		var out any
		if isDiff, _ := cmd.Flags().GetBool("diff"); isDiff {
			out, err = wire.FrontierDiffFromBytes(raw)
		} else {
			out, err = wire.FrontierFromBytes(raw)
		}
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	decodeCmd.Flags().Bool("diff", false, "decode a frontier diff instead of a frontier")
	rootCmd.AddCommand(decodeCmd)
}
