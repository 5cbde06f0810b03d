package bgm

import (
	"github.com/nanaian/bgm/bgmio"
	"github.com/nanaian/bgm/bgmlog"
	"github.com/nanaian/bgm/cmdseq"
	"github.com/nanaian/bgm/segment"
	"github.com/nanaian/bgm/track"
)

// Encode writes b to w. Diagnostics go nowhere; use EncodeWithLogger to
// observe them.
func (b *Bgm) Encode(w *bgmio.Writer) error {
	return b.EncodeWithLogger(w, bgmlog.Nop())
}

// EncodeWithLogger is Encode, reporting each region's size and start offset
// to log as it goes. The regions are emitted in the order the decoder
// expects to find them — header, segment subsegment-lists, track blocks,
// command sequences, drum table, voice table — each 4-byte aligned. Every
// subsegment-to-track-list and track-to-sequence pointer starts as a
// reserved placeholder in its own region's scratch buffer; once every
// region's size is known, the placeholders are backpatched with absolute
// file offsets, the header is built with the now-known region offsets, and
// the header and scratch buffers are concatenated into w.
func (b *Bgm) EncodeWithLogger(w *bgmio.Writer, log *bgmlog.Logger) error {
	distinctSeqs, seqOrder := collectSequences(b.TrackLists)
	log.Debug("bgm", "%d segments, %d track lists, %d distinct command sequences", countSegments(b), len(b.TrackLists), len(distinctSeqs))

	segScratch := bgmio.NewWriter()
	var segRelOffset [NumSegments]uint32
	var segListFixups []segment.ListFixup
	for i, seg := range b.Segments {
		if seg == nil {
			continue
		}
		segRelOffset[i] = segScratch.Pos()
		fixups, err := segment.Encode(segScratch, seg)
		if err != nil {
			return bgmio.NewEncodeError(bgmio.KindInvariant, err)
		}
		segListFixups = append(segListFixups, fixups...)
	}
	segScratch.AlignPad(4)

	tlScratch := bgmio.NewWriter()
	tlRelOffset := make(map[*track.TrackList]uint32, len(b.TrackLists))
	var tlSeqFixups []track.SeqFixup
	for _, tl := range b.TrackLists {
		tlRelOffset[tl] = tlScratch.Pos()
		fixups, err := track.EncodeTrackList(tlScratch, tl)
		if err != nil {
			return bgmio.NewEncodeError(bgmio.KindInvariant, err)
		}
		tlSeqFixups = append(tlSeqFixups, fixups...)
	}
	tlScratch.AlignPad(4)

	seqScratch := bgmio.NewWriter()
	seqRelOffset := make(map[*cmdseq.CommandSeq]uint32, len(distinctSeqs))
	for _, seq := range seqOrder {
		seqRelOffset[seq] = seqScratch.Pos()
		if err := seq.Encode(seqScratch); err != nil {
			return bgmio.NewEncodeError(bgmio.KindInvariant, err)
		}
	}
	seqScratch.AlignPad(4)

	const (
		segStart = headerSize
	)
	tlStart := segStart + segScratch.Pos()
	seqStart := tlStart + tlScratch.Pos()
	drumStart := seqStart + seqScratch.Pos()
	drumBytes := uint32(len(b.Drums) * DrumSize)
	voiceStart := drumStart + drumBytes
	log.Debug("bgm", "regions: segments@%#x tracklists@%#x sequences@%#x drums@%#x voices@%#x", segStart, tlStart, seqStart, drumStart, voiceStart)

	for _, fx := range segListFixups {
		off, ok := tlRelOffset[fx.List]
		if !ok {
			return bgmio.NewEncodeError(bgmio.KindInvariant, errUnregisteredTrackList)
		}
		segScratch.Backpatch(fx.Placeholder, tlStart+off)
	}
	for _, fx := range tlSeqFixups {
		off, ok := seqRelOffset[fx.Seq]
		if !ok {
			return bgmio.NewEncodeError(bgmio.KindInvariant, errUnregisteredSequence)
		}
		tlScratch.Backpatch(fx.Placeholder, seqStart+off)
	}

	header := bgmio.NewWriter()
	header.WriteBytes(b.Name[:])
	for i := range b.Segments {
		if b.Segments[i] == nil {
			header.WriteU32(0)
			continue
		}
		header.WriteU32(segStart + segRelOffset[i])
	}
	if len(b.Drums) > 0 {
		header.WriteU32(drumStart)
	} else {
		header.WriteU32(0)
	}
	header.WriteU16(uint16(len(b.Drums)))
	if len(b.Voices) > 0 {
		header.WriteU32(voiceStart)
	} else {
		header.WriteU32(0)
	}
	header.WriteU16(uint16(len(b.Voices)))
	header.WriteBytes(b.Reserved[:])

	w.WriteBytes([]byte(Magic))
	w.WriteBytes(header.Bytes())
	w.WriteBytes(segScratch.Bytes())
	w.WriteBytes(tlScratch.Bytes())
	w.WriteBytes(seqScratch.Bytes())
	for _, d := range b.Drums {
		w.WriteBytes(d.Data[:])
	}
	for _, v := range b.Voices {
		w.WriteBytes(v.Data[:])
	}
	return nil
}

// collectSequences walks trackLists in order and returns the set of
// distinct CommandSeq pointers reachable from them, plus that same set in
// first-encounter order — the order the command-sequence region emits them
// in, mirroring the order track-list blocks are walked.
func collectSequences(trackLists []*track.TrackList) (map[*cmdseq.CommandSeq]bool, []*cmdseq.CommandSeq) {
	seen := map[*cmdseq.CommandSeq]bool{}
	var order []*cmdseq.CommandSeq
	for _, tl := range trackLists {
		for _, t := range tl.Tracks {
			if t.Seq == nil || seen[t.Seq] {
				continue
			}
			seen[t.Seq] = true
			order = append(order, t.Seq)
		}
	}
	return seen, order
}

func countSegments(b *Bgm) int {
	n := 0
	for _, seg := range b.Segments {
		if seg != nil {
			n++
		}
	}
	return n
}

// AsBytes encodes b and returns the resulting bytes, for callers that don't
// need to write to a pre-existing bgmio.Writer.
func (b *Bgm) AsBytes() ([]byte, error) {
	w := bgmio.NewWriter()
	if err := b.Encode(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}
