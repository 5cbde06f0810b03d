package bgm

import "errors"

var (
	errUnregisteredTrackList = errors.New("bgm: subsegment references a TrackList not reachable from Bgm.TrackLists")
	errUnregisteredSequence  = errors.New("bgm: track references a CommandSeq not reachable from any TrackList in Bgm.TrackLists")
)
