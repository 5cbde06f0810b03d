package main

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/nanaian/bgm/bgm"
	"github.com/nanaian/bgm/cmdseq"
	"github.com/nanaian/bgm/segment"
	"github.com/nanaian/bgm/track"
)

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <file.bin> <out.json>",
		Short: "Decode a BGM file to a structural JSON dump",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := decodeFile(args[0])
			if err != nil {
				return err
			}
			js, err := json.MarshalIndent(jsonBgm(b), "", "  ")
			if err != nil {
				return err
			}
			return os.WriteFile(args[1], js, 0o644)
		},
	}
}

// The jsonXxx types mirror the decoded object graph but replace pointer
// identity with sequential ids, since JSON has no way to express sharing.

type jsonBgmDoc struct {
	Name       string          `json:"name"`
	Segments   [4]*jsonSegment `json:"segments"`
	TrackLists []*jsonTrackList `json:"track_lists"`
	Drums      int             `json:"drum_count"`
	Voices     int             `json:"voice_count"`
}

type jsonSegment struct {
	Name        string              `json:"name"`
	Subsegments []jsonSubsegment `json:"subsegments"`
}

type jsonSubsegment struct {
	Flags        uint8 `json:"flags"`
	TrackListRef int   `json:"track_list_ref,omitempty"`
	Unknown      bool  `json:"unknown,omitempty"`
}

type jsonTrackList struct {
	ID     int          `json:"id"`
	Name   string       `json:"name"`
	Tracks []*jsonTrack `json:"tracks"`
}

type jsonTrack struct {
	Instrument uint8 `json:"instrument"`
	Volume     uint8 `json:"volume"`
	Pan        uint8 `json:"pan"`
	Reverb     uint8 `json:"reverb"`
	Flags      uint8 `json:"flags"`
	SeqRef     int   `json:"seq_ref,omitempty"`
	CommandLen int   `json:"command_count"`
}

func jsonBgm(b *bgm.Bgm) *jsonBgmDoc {
	tlID := make(map[*track.TrackList]int, len(b.TrackLists))
	seqID := make(map[*cmdseq.CommandSeq]int)
	nextSeqID := 1

	doc := &jsonBgmDoc{
		Name:   string(bytes.TrimRight(b.Name[:], "\x00")),
		Drums:  len(b.Drums),
		Voices: len(b.Voices),
	}

	for i, tl := range b.TrackLists {
		tlID[tl] = i + 1
	}

	for i, seg := range b.Segments {
		if seg == nil {
			continue
		}
		js := &jsonSegment{Name: seg.Name}
		for _, sub := range seg.Subsegments {
			switch s := sub.(type) {
			case segment.SubsegTracks:
				js.Subsegments = append(js.Subsegments, jsonSubsegment{
					Flags:        s.Flags,
					TrackListRef: tlID[s.List],
				})
			case segment.SubsegUnknown:
				js.Subsegments = append(js.Subsegments, jsonSubsegment{Flags: s.Flags, Unknown: true})
			}
		}
		doc.Segments[i] = js
	}

	for _, tl := range b.TrackLists {
		jtl := &jsonTrackList{ID: tlID[tl], Name: tl.Name}
		for _, t := range tl.Tracks {
			jt := &jsonTrack{
				Instrument: t.Instrument,
				Volume:     t.Volume,
				Pan:        t.Pan,
				Reverb:     t.Reverb,
				Flags:      t.Flags,
			}
			if t.Seq != nil {
				id, ok := seqID[t.Seq]
				if !ok {
					id = nextSeqID
					nextSeqID++
					seqID[t.Seq] = id
				}
				jt.SeqRef = id
				jt.CommandLen = len(t.Seq.Commands)
			}
			jtl.Tracks = append(jtl.Tracks, jt)
		}
		doc.TrackLists = append(doc.TrackLists, jtl)
	}

	return doc
}
