// Command bgmtool inspects, decodes, re-encodes and round-trip-checks BGM
// files, and lists the contents of the SBN archives they're normally found
// in.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nanaian/bgm/bgm"
	"github.com/nanaian/bgm/bgmio"
	"github.com/nanaian/bgm/bgmlog"
)

var verbose bool

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bgmtool",
		Short:         "Inspect and round-trip Paper Mario 64 BGM files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log decode/encode region resolution to stderr")
	root.AddCommand(newInfoCmd())
	root.AddCommand(newDecodeCmd())
	root.AddCommand(newRoundtripCmd())
	root.AddCommand(newSbnListCmd())
	return root
}

// decodeFile reads and decodes a BGM file, logging region resolution to
// stderr when -v/--verbose was passed.
func decodeFile(path string) (*bgm.Bgm, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	logger := bgmlog.Nop()
	if verbose {
		logger = bgmlog.StdLogger(bgmlog.LevelDebug, func(line string) { fmt.Fprintln(os.Stderr, line) })
	}
	b, err := bgm.DecodeWithLogger(bgmio.NewReader(data), logger)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return b, nil
}
