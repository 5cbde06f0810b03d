// Package segment implements the segment and subsegment codec: the fixed
// four-slot segment table each Bgm carries, and the variable-length,
// sentinel-terminated subsegment descriptor list each occupied slot points
// at.
package segment

import "github.com/nanaian/bgm/track"

// NameSize is the width, in bytes, of a Segment's ASCII display name field.
const NameSize = 16

// descriptorSize is the on-disk width of one subsegment descriptor: a
// flags byte plus three payload bytes.
const descriptorSize = 4

// sentinelFlags terminates a subsegment descriptor list. Its three payload
// bytes are always zero.
const sentinelFlags = 0xFF

// tracksFlags is the set of subsegment flags bytes whose three payload
// bytes are a 24-bit pointer into a track-list block, selecting the Tracks
// variant; every other flags byte, including the documented loop-marker
// values 0x30 and 0x50, selects the Unknown variant and carries opaque data.
var tracksFlags = map[uint8]bool{
	0x01: true, // melody-kind track list
	0x02: true, // percussion-kind track list
}

// Subsegment is a tagged variant: either Tracks (a shared TrackList
// reference) or Unknown (opaque preserved bytes).
type Subsegment interface {
	flagsByte() uint8
}

// SubsegTracks references a shared TrackList. Multiple SubsegTracks across
// the whole Bgm may point at the same TrackList by pointer identity if they
// were decoded from the same on-disk offset.
type SubsegTracks struct {
	Flags uint8
	List  *track.TrackList
}

func (s SubsegTracks) flagsByte() uint8 { return s.Flags }

// SubsegUnknown preserves a descriptor whose flags byte isn't in
// tracksFlags. Data is never interpreted by this codec, even for the
// documented loop-marker values.
type SubsegUnknown struct {
	Flags uint8
	Data  [3]byte
}

func (s SubsegUnknown) flagsByte() uint8 { return s.Flags }

// Segment is a human-readable name plus an ordered list of Subsegments.
type Segment struct {
	Name        string
	Subsegments []Subsegment
}

// NewSegment returns an empty, named Segment.
func NewSegment(name string) *Segment {
	return &Segment{Name: name}
}
