// Package sbn reads the archive container a BGM file is normally found
// inside: a flat, name-indexed table of offset/length records, each
// pointing at one embedded BGM. It is an out-of-core collaborator — the
// codec proper only ever sees the byte slice one record's Offset/Length
// selects out of the archive.
package sbn

// nameSize is the width, in bytes, of a record's ASCII name field.
const nameSize = 32

// recordSize is the on-disk width of one index record: a name field plus
// two big-endian 32-bit fields.
const recordSize = nameSize + 4 + 4

// Record names one embedded file and the byte range of the archive it
// occupies.
type Record struct {
	Name   string
	Offset uint32
	Length uint32
}

// Sbn is a decoded archive index plus the raw archive bytes it indexes
// into. Sbn itself holds no parsed Bgm; callers extract an entry's bytes
// with Bytes and decode them with bgm.DecodeBytes.
type Sbn struct {
	Records []Record

	data []byte
}

// Bytes returns the raw bytes of r's region of the archive.
func (s *Sbn) Bytes(r Record) []byte {
	return s.data[r.Offset : r.Offset+r.Length]
}
