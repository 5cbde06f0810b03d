package sbn

import (
	"errors"

	"github.com/nanaian/bgm/bgmio"
)

// ErrNotImplemented is returned by Encode. The reference this package is
// grounded on never implemented archive encoding either; nothing in this
// codec writes SBN archives, only BGM files within them.
var ErrNotImplemented = errors.New("sbn: archive encoding is not implemented")

// Encode always fails with an *bgmio.EncodeError of KindNotImplemented
// wrapping ErrNotImplemented.
func (s *Sbn) Encode() ([]byte, error) {
	return nil, bgmio.NewEncodeError(bgmio.KindNotImplemented, ErrNotImplemented)
}
