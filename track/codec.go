package track

import (
	"bytes"

	"github.com/nanaian/bgm/bgmio"
	"github.com/nanaian/bgm/cmdseq"
)

func decodeName(raw []byte) string {
	return string(bytes.TrimRight(raw, "\x00"))
}

func encodeName(name string, width int) []byte {
	b := make([]byte, width)
	copy(b, name)
	return b
}

// DecodeTrackList reads one fixed-size track-list block from cur, which
// must be positioned at the block's start. seqCache is the shared-sequence
// table (absolute file offset -> already-decoded CommandSeq), threaded in
// from the caller so that tracks across different track-lists that point at
// the same offset end up sharing one CommandSeq by pointer identity.
func DecodeTrackList(cur *bgmio.Reader, seqCache map[uint32]*cmdseq.CommandSeq) (*TrackList, error) {
	blockPos := cur.Pos()
	nameBytes, err := cur.ReadBytes(NameSize)
	if err != nil {
		return nil, bgmio.NewDecodeError(bgmio.KindTruncated, blockPos, err)
	}

	tl := &TrackList{Name: decodeName(nameBytes), DecodedPos: blockPos}
	for i := 0; i < NumTracks; i++ {
		trackPos := cur.Pos()
		t, err := decodeTrack(cur, trackPos, seqCache)
		if err != nil {
			return nil, err
		}
		tl.Tracks[i] = t
	}
	return tl, nil
}

func decodeTrack(cur *bgmio.Reader, trackPos uint32, seqCache map[uint32]*cmdseq.CommandSeq) (*Track, error) {
	offset, err := cur.ReadU16()
	if err != nil {
		return nil, bgmio.NewDecodeError(bgmio.KindTruncated, trackPos, err)
	}
	instrument, err := cur.ReadU8()
	if err != nil {
		return nil, bgmio.NewDecodeError(bgmio.KindTruncated, trackPos, err)
	}
	volume, err := cur.ReadU8()
	if err != nil {
		return nil, bgmio.NewDecodeError(bgmio.KindTruncated, trackPos, err)
	}
	pan, err := cur.ReadU8()
	if err != nil {
		return nil, bgmio.NewDecodeError(bgmio.KindTruncated, trackPos, err)
	}
	reverb, err := cur.ReadU8()
	if err != nil {
		return nil, bgmio.NewDecodeError(bgmio.KindTruncated, trackPos, err)
	}
	flags, err := cur.ReadU8()
	if err != nil {
		return nil, bgmio.NewDecodeError(bgmio.KindTruncated, trackPos, err)
	}
	reserved, err := cur.ReadU8()
	if err != nil {
		return nil, bgmio.NewDecodeError(bgmio.KindTruncated, trackPos, err)
	}

	t := &Track{
		Instrument: instrument,
		Volume:     volume,
		Pan:        pan,
		Reverb:     reverb,
		Flags:      flags,
		Reserved:   reserved,
	}
	if offset == 0 {
		return t, nil
	}

	abs := uint32(offset)
	if seq, ok := seqCache[abs]; ok {
		t.Seq = seq
		t.DecodedPos = abs
		return t, nil
	}

	resumePos := cur.Pos()
	if err := cur.Seek(abs); err != nil {
		return nil, bgmio.NewDecodeError(bgmio.KindOffsetOutOfRange, trackPos, err)
	}
	seq, err := cmdseq.Decode(cur)
	if err != nil {
		return nil, err
	}
	if err := cur.Seek(resumePos); err != nil {
		return nil, bgmio.NewDecodeError(bgmio.KindOffsetOutOfRange, trackPos, err)
	}

	seqCache[abs] = seq
	t.Seq = seq
	t.DecodedPos = abs
	return t, nil
}

// SeqFixup is a reserved, not-yet-resolved Track.Seq offset field in a
// track-list block that EncodeTrackList has just written. The caller that
// owns the overall file layout backpatches it once Seq's final absolute
// offset is known.
type SeqFixup struct {
	Placeholder bgmio.Placeholder
	Seq         *cmdseq.CommandSeq
}

// EncodeTrackList writes one fixed-size track-list block to w. Every
// non-empty track's sequence offset is written as a reserved placeholder;
// the returned fixups tell the caller which placeholder belongs to which
// CommandSeq so it can backpatch them once the command-sequence region's
// layout is known.
func EncodeTrackList(w *bgmio.Writer, tl *TrackList) ([]SeqFixup, error) {
	w.WriteBytes(encodeName(tl.Name, NameSize))
	var fixups []SeqFixup
	for _, t := range tl.Tracks {
		if t.Seq == nil {
			w.WriteU16(0)
		} else {
			ph := w.Reserve(bgmio.Width16)
			fixups = append(fixups, SeqFixup{Placeholder: ph, Seq: t.Seq})
		}
		w.WriteU8(t.Instrument)
		w.WriteU8(t.Volume)
		w.WriteU8(t.Pan)
		w.WriteU8(t.Reverb)
		w.WriteU8(t.Flags)
		w.WriteU8(t.Reserved)
	}
	return fixups, nil
}
