package bgm

import (
	"fmt"
	"sort"

	"github.com/nanaian/bgm/bgmio"
	"github.com/nanaian/bgm/bgmlog"
	"github.com/nanaian/bgm/cmdseq"
	"github.com/nanaian/bgm/segment"
	"github.com/nanaian/bgm/track"
)

const headerSize = 40

// Decode reads a Bgm from cur, which must be positioned at offset 0 of a
// buffer holding just the file: every offset stored in the file is seeked
// to as an absolute position in cur's buffer, so an SBN entry is decoded
// from its own slice (sbn.Sbn.Bytes), not by seeking into the archive.
// Diagnostics go nowhere; use DecodeWithLogger to observe them.
func Decode(cur *bgmio.Reader) (*Bgm, error) {
	return DecodeWithLogger(cur, bgmlog.Nop())
}

// DecodeWithLogger is Decode, reporting segment and region resolution to
// log as it goes — useful for tracing which on-disk offset a shared
// TrackList or CommandSeq was first decoded from.
func DecodeWithLogger(cur *bgmio.Reader, log *bgmlog.Logger) (*Bgm, error) {
	magic, err := cur.ReadBytes(4)
	if err != nil {
		return nil, bgmio.NewDecodeError(bgmio.KindTruncated, 0, err)
	}
	if string(magic) != Magic {
		return nil, bgmio.NewDecodeError(bgmio.KindBadMagic, 0, fmt.Errorf("got %q", magic))
	}

	b := &Bgm{}
	nameBytes, err := cur.ReadBytes(4)
	if err != nil {
		return nil, bgmio.NewDecodeError(bgmio.KindTruncated, cur.Pos(), err)
	}
	copy(b.Name[:], nameBytes)

	var segOffsets [NumSegments]uint32
	for i := range segOffsets {
		segOffsets[i], err = cur.ReadU32()
		if err != nil {
			return nil, bgmio.NewDecodeError(bgmio.KindTruncated, cur.Pos(), err)
		}
	}

	drumOffset, err := cur.ReadU32()
	if err != nil {
		return nil, bgmio.NewDecodeError(bgmio.KindTruncated, cur.Pos(), err)
	}
	drumCount, err := cur.ReadU16()
	if err != nil {
		return nil, bgmio.NewDecodeError(bgmio.KindTruncated, cur.Pos(), err)
	}
	voiceOffset, err := cur.ReadU32()
	if err != nil {
		return nil, bgmio.NewDecodeError(bgmio.KindTruncated, cur.Pos(), err)
	}
	voiceCount, err := cur.ReadU16()
	if err != nil {
		return nil, bgmio.NewDecodeError(bgmio.KindTruncated, cur.Pos(), err)
	}
	reserved, err := cur.ReadBytes(4)
	if err != nil {
		return nil, bgmio.NewDecodeError(bgmio.KindTruncated, cur.Pos(), err)
	}
	copy(b.Reserved[:], reserved)

	trackListCache := map[uint32]*track.TrackList{}
	seqCache := map[uint32]*cmdseq.CommandSeq{}

	for i, off := range segOffsets {
		if off == 0 {
			continue
		}
		log.Debug("bgm", "segment %d at %#x", i, off)
		if err := cur.Seek(off); err != nil {
			return nil, bgmio.NewDecodeError(bgmio.KindOffsetOutOfRange, headerSize, err)
		}
		seg, err := segment.Decode(cur, trackListCache, seqCache)
		if err != nil {
			log.Error("bgm", "segment %d: %v", i, err)
			return nil, err
		}
		b.Segments[i] = seg
	}
	b.TrackLists = orderedTrackLists(trackListCache)
	log.Debug("bgm", "%d distinct track lists, %d distinct command sequences", len(trackListCache), len(seqCache))

	if drumOffset != 0 && drumCount > 0 {
		if err := cur.Seek(drumOffset); err != nil {
			return nil, bgmio.NewDecodeError(bgmio.KindOffsetOutOfRange, headerSize, err)
		}
		for i := 0; i < int(drumCount); i++ {
			raw, err := cur.ReadBytes(DrumSize)
			if err != nil {
				return nil, bgmio.NewDecodeError(bgmio.KindTruncated, cur.Pos(), err)
			}
			var d Drum
			copy(d.Data[:], raw)
			b.Drums = append(b.Drums, d)
		}
	}

	if voiceOffset != 0 && voiceCount > 0 {
		if err := cur.Seek(voiceOffset); err != nil {
			return nil, bgmio.NewDecodeError(bgmio.KindOffsetOutOfRange, headerSize, err)
		}
		for i := 0; i < int(voiceCount); i++ {
			raw, err := cur.ReadBytes(VoiceSize)
			if err != nil {
				return nil, bgmio.NewDecodeError(bgmio.KindTruncated, cur.Pos(), err)
			}
			var v Voice
			copy(v.Data[:], raw)
			b.Voices = append(b.Voices, v)
		}
	}

	return b, nil
}

func orderedTrackLists(cache map[uint32]*track.TrackList) []*track.TrackList {
	offsets := make([]uint32, 0, len(cache))
	for off := range cache {
		offsets = append(offsets, off)
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })

	lists := make([]*track.TrackList, 0, len(cache))
	for _, off := range offsets {
		lists = append(lists, cache[off])
	}
	return lists
}

// DecodeBytes is a convenience wrapper around Decode for callers that have
// a whole file in memory already, such as an SBN entry's payload.
func DecodeBytes(data []byte) (*Bgm, error) {
	return Decode(bgmio.NewReader(data))
}
