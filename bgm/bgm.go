// Package bgm implements the top-level BGM file codec: the fixed header,
// the four-slot segment table, the drum and voice tables, and the object
// graph that ties a decoded file's segments, track-lists and command
// sequences together by shared pointer identity.
package bgm

import (
	"github.com/nanaian/bgm/segment"
	"github.com/nanaian/bgm/track"
)

// Magic is the four-byte signature every BGM file begins with.
const Magic = "BGM "

// NumSegments is the fixed number of segment-table slots.
const NumSegments = 4

// DrumSize and VoiceSize are the fixed on-disk widths of one Drum and one
// Voice record.
const (
	DrumSize  = 8
	VoiceSize = 8
)

// Drum is a small fixed-width record of preserved bytes.
type Drum struct {
	Data [DrumSize]byte
}

// Voice is a small fixed-width record of preserved bytes.
type Voice struct {
	Data [VoiceSize]byte
}

// Bgm is the root of the decoded object graph.
type Bgm struct {
	Name     [4]byte
	Segments [NumSegments]*segment.Segment

	// TrackLists holds every distinct TrackList reachable from Segments,
	// in ascending on-disk offset order after Decode (first-added order for
	// a Bgm built by hand). A TrackList appears here
	// exactly once even if several Subsegments across the file share it.
	TrackLists []*track.TrackList

	Drums  []Drum
	Voices []Voice

	// Reserved preserves header bytes this codec assigns no meaning to,
	// verbatim, for round-trip.
	Reserved [4]byte
}

// NewBgm returns an empty Bgm named name, truncated or space-padded to four
// bytes.
func NewBgm(name string) *Bgm {
	b := &Bgm{}
	for i := range b.Name {
		b.Name[i] = ' '
	}
	copy(b.Name[:], name)
	return b
}

// AddSegment creates a new, empty Segment named name in the first free
// slot and returns its slot index and the Segment itself. It returns -1,
// nil if all four slots are occupied.
func (b *Bgm) AddSegment(name string) (int, *segment.Segment) {
	for i, s := range b.Segments {
		if s == nil {
			seg := segment.NewSegment(name)
			b.Segments[i] = seg
			return i, seg
		}
	}
	return -1, nil
}

// AddTrackList creates a new TrackList named name, registers it in
// b.TrackLists, and returns it. The returned pointer is itself the
// TrackList's identity — share it across Subsegments to express the
// format's track-list sharing.
func (b *Bgm) AddTrackList(name string) *track.TrackList {
	tl := track.NewTrackList(name)
	b.TrackLists = append(b.TrackLists, tl)
	return tl
}
