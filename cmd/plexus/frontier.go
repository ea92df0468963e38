package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var frontierCmd = &cobra.Command{
	Use:   "frontier <blocks.jsonl>",
	Short: "Replay a block log and print its frontier",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := replayBlocks(args[0])
		if err != nil {
			return err
		}
		front := c.Frontier()

		if wireOut, _ := cmd.Flags().GetBool("wire"); wireOut {
			b, err := front.ToBytes()
			if err != nil {
				return fmt.Errorf("encoding frontier: %w", err)
			}
			if outPath, _ := cmd.Flags().GetString("out"); outPath != "" {
				return os.WriteFile(outPath, b, 0o644)
			}
			fmt.Println(hex.EncodeToString(b))
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(front)
	},
}

func init() {
	frontierCmd.Flags().Bool("wire", false, "emit the deterministic wire encoding (hex, or raw with --out)")
	frontierCmd.Flags().String("out", "", "write raw wire bytes to a file")
	rootCmd.AddCommand(frontierCmd)
}
