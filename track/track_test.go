package track

import (
	"bytes"
	"testing"

	"github.com/nanaian/bgm/bgmio"
	"github.com/nanaian/bgm/cmdseq"
)

func buildTrackListBytes(t *testing.T, name string, seqOffsets [NumTracks]uint16, seqBodies map[uint16][]byte, totalLen int) []byte {
	t.Helper()
	buf := make([]byte, totalLen)
	copy(buf, encodeName(name, NameSize))

	pos := NameSize
	for i := 0; i < NumTracks; i++ {
		off := seqOffsets[i]
		buf[pos] = byte(off >> 8)
		buf[pos+1] = byte(off)
		buf[pos+2] = byte(0x40 + i) // instrument
		buf[pos+3] = 0x7F           // volume
		buf[pos+4] = 0x40           // pan
		buf[pos+5] = 0x00           // reverb
		buf[pos+6] = 0x00           // flags
		buf[pos+7] = 0x00           // reserved
		pos += recordSize
	}
	for off, body := range seqBodies {
		copy(buf[off:], body)
	}
	return buf
}

func TestDecodeTrackListEmpty(t *testing.T) {
	var offs [NumTracks]uint16
	data := buildTrackListBytes(t, "drums", offs, nil, BlockSize)

	cur := bgmio.NewReader(data)
	tl, err := DecodeTrackList(cur, map[uint32]*cmdseq.CommandSeq{})
	if err != nil {
		t.Fatalf("DecodeTrackList: %v", err)
	}
	if tl.Name != "drums" {
		t.Fatalf("Name: got %q, want %q", tl.Name, "drums")
	}
	for i, tr := range tl.Tracks {
		if tr.Seq != nil {
			t.Fatalf("track %d: got non-nil Seq, want nil", i)
		}
		if tr.Instrument != uint8(0x40+i) {
			t.Fatalf("track %d: Instrument got %#x, want %#x", i, tr.Instrument, 0x40+i)
		}
	}
}

func TestDecodeTrackListSharesSequenceByOffset(t *testing.T) {
	seqOff := uint16(BlockSize)
	seqBody := []byte{0x01, 0x00} // DelayShort(1), End
	var offs [NumTracks]uint16
	offs[0] = seqOff
	offs[1] = seqOff // same offset: must share the decoded CommandSeq

	data := buildTrackListBytes(t, "melody", offs, map[uint16][]byte{seqOff: seqBody}, BlockSize+len(seqBody))

	cache := map[uint32]*cmdseq.CommandSeq{}
	tl, err := DecodeTrackList(bgmio.NewReader(data), cache)
	if err != nil {
		t.Fatalf("DecodeTrackList: %v", err)
	}
	if tl.Tracks[0].Seq == nil || tl.Tracks[1].Seq == nil {
		t.Fatalf("expected both tracks to have a decoded sequence")
	}
	if tl.Tracks[0].Seq != tl.Tracks[1].Seq {
		t.Fatalf("tracks decoded from the same offset must share one *CommandSeq by pointer identity")
	}
	if len(cache) != 1 {
		t.Fatalf("seqCache: got %d entries, want 1", len(cache))
	}
}

func TestEncodeTrackListRoundTrip(t *testing.T) {
	seqOff := uint16(BlockSize)
	seqBody := []byte{0x7F, 0x00}
	var offs [NumTracks]uint16
	offs[5] = seqOff

	data := buildTrackListBytes(t, "lead", offs, map[uint16][]byte{seqOff: seqBody}, BlockSize+len(seqBody))

	tl, err := DecodeTrackList(bgmio.NewReader(data), map[uint32]*cmdseq.CommandSeq{})
	if err != nil {
		t.Fatalf("DecodeTrackList: %v", err)
	}

	w := bgmio.NewWriter()
	fixups, err := EncodeTrackList(w, tl)
	if err != nil {
		t.Fatalf("EncodeTrackList: %v", err)
	}
	if len(fixups) != 1 || fixups[0].Seq != tl.Tracks[5].Seq {
		t.Fatalf("got fixups %#v, want exactly one for Tracks[5].Seq", fixups)
	}
	w.Backpatch(fixups[0].Placeholder, uint32(seqOff))
	if !bytes.Equal(w.Bytes(), data[:BlockSize]) {
		t.Fatalf("re-encoded block mismatch:\n got %x\nwant %x", w.Bytes(), data[:BlockSize])
	}
}
