package sbn

import (
	"bytes"

	"github.com/nanaian/bgm/bgmio"
)

// ReadIndex reads an archive's record table from cur, which must be
// positioned at the start of the archive. The table is a 32-bit record
// count followed by that many fixed-width records; it stops at the count,
// never at a sentinel, so it fails only when the buffer ends before the
// count or any of the counted records has been read in full.
func ReadIndex(cur *bgmio.Reader) ([]Record, error) {
	count, err := cur.ReadU32()
	if err != nil {
		return nil, bgmio.NewDecodeError(bgmio.KindTruncated, cur.Pos(), err)
	}

	records := make([]Record, 0, count)
	for i := uint32(0); i < count; i++ {
		raw, err := cur.ReadBytes(nameSize)
		if err != nil {
			return nil, bgmio.NewDecodeError(bgmio.KindTruncated, cur.Pos(), err)
		}
		offset, err := cur.ReadU32()
		if err != nil {
			return nil, bgmio.NewDecodeError(bgmio.KindTruncated, cur.Pos(), err)
		}
		length, err := cur.ReadU32()
		if err != nil {
			return nil, bgmio.NewDecodeError(bgmio.KindTruncated, cur.Pos(), err)
		}
		records = append(records, Record{
			Name:   string(bytes.TrimRight(raw, "\x00")),
			Offset: offset,
			Length: length,
		})
	}
	return records, nil
}

// Decode reads a whole archive: its index, retaining data for later
// extraction via Sbn.Bytes.
func Decode(data []byte) (*Sbn, error) {
	cur := bgmio.NewReader(data)
	records, err := ReadIndex(cur)
	if err != nil {
		return nil, err
	}
	return &Sbn{Records: records, data: data}, nil
}
