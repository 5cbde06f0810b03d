package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nanaian/bgm/bgm"
)

func newRoundtripCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roundtrip <file.bin>",
		Short: "Decode then re-encode a BGM file and report any byte mismatch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			mismatch, err := roundtripCompare(data)
			if err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}
			if mismatch < 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "match: OK")
				return nil
			}
			return fmt.Errorf("mismatch at byte offset %#x", mismatch)
		},
	}
}

// roundtripCompare decodes data, re-encodes the result, and returns the
// offset of the first differing byte, or -1 if the re-encoding is
// byte-identical to the input.
func roundtripCompare(data []byte) (int, error) {
	b, err := bgm.DecodeBytes(data)
	if err != nil {
		return 0, err
	}
	reEncoded, err := b.AsBytes()
	if err != nil {
		return 0, err
	}
	if bytes.Equal(data, reEncoded) {
		return -1, nil
	}
	n := len(data)
	if len(reEncoded) < n {
		n = len(reEncoded)
	}
	for i := 0; i < n; i++ {
		if data[i] != reEncoded[i] {
			return i, nil
		}
	}
	return n, nil
}
