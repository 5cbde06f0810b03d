package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nanaian/bgm/sbn"
)

func newSbnListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sbn-list <archive.bin>",
		Short: "List the record names in an SBN archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			archive, err := sbn.Decode(data)
			if err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}
			for _, r := range archive.Records {
				fmt.Fprintf(cmd.OutOrStdout(), "%-32s offset=%#x length=%#x\n", r.Name, r.Offset, r.Length)
			}
			return nil
		},
	}
}
