// Package track implements the track and track-list codec: the fixed-size
// block of 16 channel records that a Tracks subsegment points at, and the
// shared-ownership bookkeeping that lets two subsegments point at the same
// on-disk block without decoding it twice.
package track

import "github.com/nanaian/bgm/cmdseq"

// NumTracks is the fixed number of Track slots in every TrackList.
const NumTracks = 16

// NameSize is the width, in bytes, of a TrackList's ASCII display name
// field, zero-padded like the Segment name field.
const NameSize = 16

// recordSize is the on-disk width of one Track record: a 16-bit absolute
// file offset to its CommandSeq (0 meaning "no sequence"), followed by six
// single-byte fields (instrument, volume, pan, reverb, flags, reserved)
// preserved verbatim.
const recordSize = 8

// BlockSize is the total on-disk width of a TrackList block: its name field
// plus NumTracks fixed-size Track records. It is already a multiple of 4,
// so no inter-track-list padding is required.
const BlockSize = NameSize + NumTracks*recordSize

// Track holds one channel's playback parameters and a shared reference to
// the command sequence it plays. Seq is nil for an empty track.
type Track struct {
	Instrument uint8
	Volume     uint8
	Pan        uint8
	Reverb     uint8
	Flags      uint8
	Reserved   uint8

	Seq *cmdseq.CommandSeq

	// DecodedPos is the absolute file offset Seq was decoded from. It is
	// meaningless (0) for an empty track or one built by hand.
	DecodedPos uint32
}

// TrackList is the fixed-cardinality group of 16 Tracks that one or more
// Subsegments may share by pointer identity. Two TrackLists decoded from the
// same on-disk offset are the same *TrackList, never merely equal copies.
type TrackList struct {
	Name   string
	Tracks [NumTracks]*Track

	// DecodedPos is the absolute file offset this TrackList was decoded
	// from, 0 for a TrackList built by hand.
	DecodedPos uint32
}

// NewTrackList returns a TrackList with all 16 slots populated by empty
// Tracks, ready for a caller to fill in.
func NewTrackList(name string) *TrackList {
	tl := &TrackList{Name: name}
	for i := range tl.Tracks {
		tl.Tracks[i] = &Track{}
	}
	return tl
}
