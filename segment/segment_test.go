package segment

import (
	"bytes"
	"testing"

	"github.com/nanaian/bgm/bgmio"
	"github.com/nanaian/bgm/cmdseq"
	"github.com/nanaian/bgm/track"
)

func trackListBytes(t *testing.T, name string) []byte {
	t.Helper()
	buf := make([]byte, track.BlockSize)
	copy(buf, encodeName(name, track.NameSize))
	return buf
}

func TestDecodeSegmentUnknownOnly(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(encodeName("intro", NameSize))
	buf.Write([]byte{0x30, 0xAA, 0xBB, 0xCC}) // loop-marker style unknown
	buf.Write([]byte{0x50, 0x01, 0x02, 0x03}) // another unknown
	buf.Write([]byte{sentinelFlags, 0, 0, 0})

	seg, err := Decode(bgmio.NewReader(buf.Bytes()), map[uint32]*track.TrackList{}, map[uint32]*cmdseq.CommandSeq{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if seg.Name != "intro" {
		t.Fatalf("Name: got %q, want %q", seg.Name, "intro")
	}
	if len(seg.Subsegments) != 2 {
		t.Fatalf("got %d subsegments, want 2", len(seg.Subsegments))
	}
	u0, ok := seg.Subsegments[0].(SubsegUnknown)
	if !ok || u0.Flags != 0x30 || u0.Data != [3]byte{0xAA, 0xBB, 0xCC} {
		t.Fatalf("subsegment 0: got %#v", seg.Subsegments[0])
	}
}

func TestDecodeSegmentSharesTrackListAcrossSubsegments(t *testing.T) {
	segHeader := NameSize
	listOffset := uint32(segHeader + descriptorSize*2 + descriptorSize) // after name + 2 descriptors + sentinel

	var buf bytes.Buffer
	buf.Write(encodeName("loop", NameSize))
	buf.Write([]byte{0x01, byte(listOffset >> 16), byte(listOffset >> 8), byte(listOffset)})
	buf.Write([]byte{0x01, byte(listOffset >> 16), byte(listOffset >> 8), byte(listOffset)})
	buf.Write([]byte{sentinelFlags, 0, 0, 0})
	buf.Write(trackListBytes(t, "shared"))

	cache := map[uint32]*track.TrackList{}
	seg, err := Decode(bgmio.NewReader(buf.Bytes()), cache, map[uint32]*cmdseq.CommandSeq{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(seg.Subsegments) != 2 {
		t.Fatalf("got %d subsegments, want 2", len(seg.Subsegments))
	}
	a := seg.Subsegments[0].(SubsegTracks)
	b := seg.Subsegments[1].(SubsegTracks)
	if a.List != b.List {
		t.Fatalf("subsegments decoded from the same track-list offset must share one *track.TrackList")
	}
	if len(cache) != 1 {
		t.Fatalf("trackListCache: got %d entries, want 1", len(cache))
	}
}

func TestEncodeSegmentRoundTrip(t *testing.T) {
	seg := NewSegment("fanfare")
	tl := track.NewTrackList("brass")
	seg.Subsegments = []Subsegment{
		SubsegTracks{Flags: 0x02, List: tl},
		SubsegUnknown{Flags: 0x50, Data: [3]byte{0x01, 0x02, 0x03}},
	}

	w := bgmio.NewWriter()
	fixups, err := Encode(w, seg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(fixups) != 1 || fixups[0].List != tl {
		t.Fatalf("got fixups %#v, want exactly one for tl", fixups)
	}
	w.Backpatch(fixups[0].Placeholder, 0x001000)

	decoded, err := Decode(bgmio.NewReader(append(w.Bytes(), trackListBytes(t, "brass")...)), map[uint32]*track.TrackList{0x001000: tl}, map[uint32]*cmdseq.CommandSeq{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Name != "fanfare" {
		t.Fatalf("Name: got %q, want %q", decoded.Name, "fanfare")
	}
	if len(decoded.Subsegments) != 2 {
		t.Fatalf("got %d subsegments, want 2", len(decoded.Subsegments))
	}
	got := decoded.Subsegments[0].(SubsegTracks)
	if got.List != tl {
		t.Fatalf("decoded Tracks subsegment did not reuse the cached TrackList")
	}
}
