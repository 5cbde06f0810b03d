package segment

import (
	"bytes"

	"github.com/nanaian/bgm/bgmio"
	"github.com/nanaian/bgm/cmdseq"
	"github.com/nanaian/bgm/track"
)

func decodeName(raw []byte) string {
	return string(bytes.TrimRight(raw, "\x00"))
}

func encodeName(name string, width int) []byte {
	b := make([]byte, width)
	copy(b, name)
	return b
}

// Decode reads one segment (name field, then its subsegment descriptor
// list up to the sentinel) from cur, which must be positioned at the
// segment's start. trackListCache and seqCache are the shared-object
// tables threaded in from the Bgm decoder, spanning every segment in the
// file so that two Tracks subsegments anywhere in the Bgm that reference
// the same on-disk track-list offset end up sharing one *track.TrackList.
func Decode(cur *bgmio.Reader, trackListCache map[uint32]*track.TrackList, seqCache map[uint32]*cmdseq.CommandSeq) (*Segment, error) {
	segPos := cur.Pos()
	nameBytes, err := cur.ReadBytes(NameSize)
	if err != nil {
		return nil, bgmio.NewDecodeError(bgmio.KindTruncated, segPos, err)
	}
	seg := &Segment{Name: decodeName(nameBytes)}

	for {
		descPos := cur.Pos()
		flags, err := cur.ReadU8()
		if err != nil {
			return nil, bgmio.NewDecodeError(bgmio.KindTruncated, descPos, err)
		}
		payload, err := cur.ReadBytes(3)
		if err != nil {
			return nil, bgmio.NewDecodeError(bgmio.KindTruncated, descPos, err)
		}

		if flags == sentinelFlags {
			break
		}

		if tracksFlags[flags] {
			ptr := uint32(payload[0])<<16 | uint32(payload[1])<<8 | uint32(payload[2])
			tl, ok := trackListCache[ptr]
			if !ok {
				resumePos := cur.Pos()
				if err := cur.Seek(ptr); err != nil {
					return nil, bgmio.NewDecodeError(bgmio.KindOffsetOutOfRange, descPos, err)
				}
				tl, err = track.DecodeTrackList(cur, seqCache)
				if err != nil {
					return nil, err
				}
				if err := cur.Seek(resumePos); err != nil {
					return nil, bgmio.NewDecodeError(bgmio.KindOffsetOutOfRange, descPos, err)
				}
				trackListCache[ptr] = tl
			}
			seg.Subsegments = append(seg.Subsegments, SubsegTracks{Flags: flags, List: tl})
		} else {
			var data [3]byte
			copy(data[:], payload)
			seg.Subsegments = append(seg.Subsegments, SubsegUnknown{Flags: flags, Data: data})
		}
	}

	return seg, nil
}

// ListFixup is a reserved, not-yet-resolved track-list pointer field in a
// subsegment descriptor that Encode has just written. The caller that owns
// the overall file layout backpatches it once List's final absolute offset
// is known.
type ListFixup struct {
	Placeholder bgmio.Placeholder
	List        *track.TrackList
}

// Encode writes seg to w: its name field, one descriptor per subsegment,
// and the terminating sentinel. Every Tracks subsegment's pointer field is
// written as a reserved placeholder; the returned fixups tell the caller
// which placeholder belongs to which TrackList, since track-list blocks
// themselves are emitted separately by the caller that owns the overall
// region layout.
func Encode(w *bgmio.Writer, seg *Segment) ([]ListFixup, error) {
	w.WriteBytes(encodeName(seg.Name, NameSize))

	var fixups []ListFixup
	for _, sub := range seg.Subsegments {
		switch s := sub.(type) {
		case SubsegTracks:
			w.WriteU8(s.Flags)
			ph := w.Reserve(bgmio.Width24)
			fixups = append(fixups, ListFixup{Placeholder: ph, List: s.List})
		case SubsegUnknown:
			w.WriteU8(s.Flags)
			w.WriteBytes(s.Data[:])
		}
	}

	w.WriteU8(sentinelFlags)
	w.WriteBytes([]byte{0, 0, 0})
	return fixups, nil
}
