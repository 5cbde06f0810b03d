package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nanaian/bgm/bgm"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file.bin>",
		Short: "Print a BGM file's header, segment and track-list summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := decodeFile(args[0])
			if err != nil {
				return err
			}
			dumpInfo(cmd.OutOrStdout(), b)
			return nil
		},
	}
}

func dumpInfo(w io.Writer, b *bgm.Bgm) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, "                  BGM FILE INFORMATION            ")
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, "Name        : %s\n", b.Name)
	fmt.Fprintf(w, "Track lists : %d\n", len(b.TrackLists))
	fmt.Fprintf(w, "Drums       : %d\n", len(b.Drums))
	fmt.Fprintf(w, "Voices      : %d\n", len(b.Voices))
	fmt.Fprintln(w, "--------------------------------------------------")

	for i, seg := range b.Segments {
		if seg == nil {
			fmt.Fprintf(w, "Segment #%d  : (empty)\n", i)
			continue
		}
		fmt.Fprintf(w, "Segment #%d  : %q, %d subsegments\n", i, seg.Name, len(seg.Subsegments))
	}

	for i, tl := range b.TrackLists {
		used := 0
		for _, t := range tl.Tracks {
			if t.Seq != nil {
				used++
			}
		}
		fmt.Fprintf(w, "TrackList #%d: %q, %d/%d tracks in use\n", i, tl.Name, used, len(tl.Tracks))
	}
}
